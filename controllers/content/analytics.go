package controllers

import (
	"fmt"
	"lms/database"
	"lms/middleware"
	"lms/models"
	contentModels "lms/models/content"
	"lms/utils"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const reportWeekCount = 14

// sumTrackedSeconds totals recorded viewing time with optional filters
func sumTrackedSeconds(db *gorm.DB, userID uint, weeklyContentID uint, round int, since *time.Time) uint {
	query := db.Model(&contentModels.TimeTracking{}).Where("user_id = ?", userID)
	if weeklyContentID != 0 {
		query = query.Where("weekly_content_id = ?", weeklyContentID)
	}
	if round != 0 {
		query = query.Where("attempt_round = ?", round)
	}
	if since != nil {
		query = query.Where("date >= ?", *since)
	}

	var total uint
	query.Select("COALESCE(SUM(duration_seconds), 0)").Scan(&total)
	return total
}

// overallProgress is the share of all published materials the student has
// ever completed, regardless of round
func overallProgress(db *gorm.DB, userID uint) float64 {
	var totalMats int64
	db.Model(&contentModels.Material{}).
		Joins("JOIN weekly_contents ON weekly_contents.id = materials.weekly_content_id").
		Where("materials.is_deleted = ? AND weekly_contents.is_deleted = ?", false, false).
		Count(&totalMats)
	if totalMats == 0 {
		return 0
	}

	var doneMats int64
	db.Model(&contentModels.CompletedMaterial{}).
		Joins("JOIN materials ON materials.id = completed_materials.material_id").
		Where("completed_materials.user_id = ? AND materials.is_deleted = ?", userID, false).
		Distinct("completed_materials.material_id").
		Count(&doneMats)

	return round2(float64(doneMats) / float64(totalMats) * 100)
}

// quizResultsForWeek collects the student's attempts on the week's quizzes
// together with each wrong answer and the option that was correct
func quizResultsForWeek(db *gorm.DB, userID, weeklyContentID uint) []fiber.Map {
	results := []fiber.Map{}

	var attempts []contentModels.StudentQuizAttempt
	db.Joins("JOIN quizzes ON quizzes.id = student_quiz_attempts.quiz_id").
		Joins("JOIN materials ON materials.id = quizzes.material_id").
		Where("student_quiz_attempts.user_id = ? AND materials.weekly_content_id = ?", userID, weeklyContentID).
		Order("student_quiz_attempts.attempt_round asc").
		Find(&attempts)

	for _, attempt := range attempts {
		mistakes := []fiber.Map{}

		var wrongAnswers []contentModels.StudentAnswer
		db.Where("attempt_id = ? AND is_correct = ?", attempt.ID, false).Find(&wrongAnswers)

		for _, ans := range wrongAnswers {
			var question contentModels.QuizQuestion
			if err := db.Where("id = ?", ans.QuestionID).First(&question).Error; err != nil {
				continue
			}

			var selected contentModels.QuizOption
			db.Where("id = ?", ans.SelectedOptionID).First(&selected)

			correctText := ""
			var correct contentModels.QuizOption
			if err := db.Where("question_id = ? AND is_correct = ?", question.ID, true).First(&correct).Error; err == nil {
				correctText = correct.OptionText
			}

			mistakes = append(mistakes, fiber.Map{
				"question":        question.QuestionText,
				"selected_option": selected.OptionText,
				"correct_option":  correctText,
			})
		}

		results = append(results, fiber.Map{
			"attempt_id": attempt.ID,
			"round":      attempt.AttemptRound,
			"score":      attempt.Score,
			"correct":    attempt.CorrectAnswers,
			"wrong":      attempt.WrongAnswers,
			"mistakes":   mistakes,
		})
	}

	return results
}

// GetStudentAnalytics is the student's own dashboard: total time, overall
// progress and a per-week breakdown with questions and quiz results
func GetStudentAnalytics(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return unauthorized(c)
	}

	db := database.Database.Db

	var weeks []contentModels.WeeklyContent
	if err := db.Where("is_deleted = ?", false).Order("week_number asc").Find(&weeks).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch analytics!", nil)
	}

	breakdown := []fiber.Map{}
	for i := range weeks {
		week := &weeks[i]

		var progress contentModels.StudentProgress
		percentage := float64(0)
		round := 1
		if err := db.Where("user_id = ? AND weekly_content_id = ?", user.ID, week.ID).First(&progress).Error; err == nil {
			percentage = progress.CompletionPercentage
			round = progress.CurrentAttemptRound
		}

		weekSeconds := sumTrackedSeconds(db, user.ID, week.ID, 0, nil)

		var questions []string
		db.Model(&contentModels.StudentQuestion{}).
			Where("user_id = ? AND weekly_content_id = ?", user.ID, week.ID).
			Order("created_at asc").
			Pluck("question_text", &questions)
		if questions == nil {
			questions = []string{}
		}

		breakdown = append(breakdown, fiber.Map{
			"week_number":  week.WeekNumber,
			"week_title":   week.Title,
			"progress":     percentage,
			"round":        round,
			"duration":     fmt.Sprintf("%d dk", weekSeconds/60),
			"questions":    questions,
			"quiz_results": quizResultsForWeek(db, user.ID, week.ID),
		})
	}

	totalSeconds := sumTrackedSeconds(db, user.ID, 0, 0, nil)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Analytics fetched successfully!", fiber.Map{
		"total_time_spent": utils.FormatDuration(totalSeconds),
		"overall_progress": overallProgress(db, user.ID),
		"total_points":     user.TotalPoints,
		"weekly_breakdown": breakdown,
	})
}

// GetTeacherAnalytics lists every student with headline numbers. Requires
// the staff permission via routing.
func GetTeacherAnalytics(c *fiber.Ctx) error {
	db := database.Database.Db

	var students []models.User
	if err := db.Where("is_student = ? AND is_deleted = ?", true, false).
		Order("first_name asc").Find(&students).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch analytics!", nil)
	}

	rows := []fiber.Map{}
	for i := range students {
		student := &students[i]
		totalSeconds := sumTrackedSeconds(db, student.ID, 0, 0, nil)

		rows = append(rows, fiber.Map{
			"student_id":       student.ID,
			"full_name":        student.FullName(),
			"email":            student.Email,
			"department":       student.Department,
			"total_points":     student.TotalPoints,
			"total_time_spent": utils.FormatDuration(totalSeconds),
			"overall_progress": overallProgress(db, student.ID),
		})
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Student list fetched successfully!", rows)
}

// GetTeacherStudentDetail is one student's drill-down for staff: progress
// rows per week plus viewing time over the last seven days
func GetTeacherStudentDetail(c *fiber.Ctx) error {
	studentID := c.Locals("studentID").(int)

	db := database.Database.Db

	var student models.User
	if err := db.Where("id = ? AND is_deleted = ?", studentID, false).First(&student).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Öğrenci bulunamadı.", nil)
	}

	var weeks []contentModels.WeeklyContent
	db.Where("is_deleted = ?", false).Order("week_number asc").Find(&weeks)

	weekAgo := today().AddDate(0, 0, -7)

	progressRows := []fiber.Map{}
	recentTime := []fiber.Map{}
	for i := range weeks {
		week := &weeks[i]

		percentage := float64(0)
		isCompleted := false
		round := 1
		var progress contentModels.StudentProgress
		if err := db.Where("user_id = ? AND weekly_content_id = ?", student.ID, week.ID).First(&progress).Error; err == nil {
			percentage = progress.CompletionPercentage
			isCompleted = progress.IsCompleted
			round = progress.CurrentAttemptRound
		}

		progressRows = append(progressRows, fiber.Map{
			"week_number":  week.WeekNumber,
			"week_title":   week.Title,
			"progress":     percentage,
			"is_completed": isCompleted,
			"round":        round,
		})

		weekSeconds := sumTrackedSeconds(db, student.ID, week.ID, 0, &weekAgo)
		recentTime = append(recentTime, fiber.Map{
			"week_number": week.WeekNumber,
			"duration":    fmt.Sprintf("%d dk", weekSeconds/60),
		})
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Student analytics fetched successfully!", fiber.Map{
		"student_id":       student.ID,
		"full_name":        student.FullName(),
		"department":       student.Department,
		"total_points":     student.TotalPoints,
		"progress":         progressRows,
		"last_7_days_time": recentTime,
	})
}

// BulkAcademicReport is the staff export across all students, optionally
// filtered by department. Every student gets a fixed 14 week grid with
// per-round durations and quiz scores so missing weeks still show zeros.
func BulkAcademicReport(c *fiber.Ctx) error {
	db := database.Database.Db

	department := c.Query("department")

	query := db.Where("is_student = ? AND is_deleted = ?", true, false)
	if department != "" {
		query = query.Where("department = ?", department)
	}

	var students []models.User
	if err := query.Order("first_name asc").Find(&students).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to build report!", nil)
	}

	var weeks []contentModels.WeeklyContent
	db.Where("is_deleted = ?", false).Find(&weeks)
	weeksByNumber := make(map[int]*contentModels.WeeklyContent, len(weeks))
	for i := range weeks {
		weeksByNumber[weeks[i].WeekNumber] = &weeks[i]
	}

	report := []fiber.Map{}
	for i := range students {
		student := &students[i]

		weekRows := []fiber.Map{}
		for weekNumber := 1; weekNumber <= reportWeekCount; weekNumber++ {
			row := fiber.Map{
				"week_number":      weekNumber,
				"progress":         float64(0),
				"round_1_duration": "0 dk",
				"round_2_duration": "0 dk",
				"round_1_score":    nil,
				"round_2_score":    nil,
				"material_details": []fiber.Map{},
			}

			week, ok := weeksByNumber[weekNumber]
			if ok {
				var progress contentModels.StudentProgress
				if err := db.Where("user_id = ? AND weekly_content_id = ?", student.ID, week.ID).First(&progress).Error; err == nil {
					row["progress"] = progress.CompletionPercentage
				}

				row["round_1_duration"] = fmt.Sprintf("%d dk", sumTrackedSeconds(db, student.ID, week.ID, 1, nil)/60)
				row["round_2_duration"] = fmt.Sprintf("%d dk", sumTrackedSeconds(db, student.ID, week.ID, 2, nil)/60)

				var attempts []contentModels.StudentQuizAttempt
				db.Joins("JOIN quizzes ON quizzes.id = student_quiz_attempts.quiz_id").
					Joins("JOIN materials ON materials.id = quizzes.material_id").
					Where("student_quiz_attempts.user_id = ? AND materials.weekly_content_id = ?", student.ID, week.ID).
					Find(&attempts)
				for _, attempt := range attempts {
					switch attempt.AttemptRound {
					case 1:
						row["round_1_score"] = attempt.Score
					case 2:
						row["round_2_score"] = attempt.Score
					}
				}

				materialDetails := []fiber.Map{}
				var materials []contentModels.Material
				db.Where("weekly_content_id = ? AND is_deleted = ?", week.ID, false).Find(&materials)
				for _, material := range materials {
					var seconds uint
					db.Model(&contentModels.TimeTracking{}).
						Where("user_id = ? AND material_id = ?", student.ID, material.ID).
						Select("COALESCE(SUM(duration_seconds), 0)").Scan(&seconds)
					materialDetails = append(materialDetails, fiber.Map{
						"material_id": material.ID,
						"title":       material.Title,
						"type":        material.ContentType,
						"duration":    fmt.Sprintf("%d dk", seconds/60),
					})
				}
				row["material_details"] = materialDetails
			}

			weekRows = append(weekRows, row)
		}

		report = append(report, fiber.Map{
			"student_id":   student.ID,
			"full_name":    student.FullName(),
			"email":        student.Email,
			"department":   student.Department,
			"total_points": student.TotalPoints,
			"total_time":   utils.FormatDuration(sumTrackedSeconds(db, student.ID, 0, 0, nil)),
			"weeks":        weekRows,
		})
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Academic report generated successfully!", report)
}
