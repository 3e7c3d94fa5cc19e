package controllers

import (
	"lms/database"
	"lms/middleware"
	"lms/models"
	contentModels "lms/models/content"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type optionResponse struct {
	ID         uint   `json:"id"`
	OptionText string `json:"option_text"`
	IsCorrect  bool   `json:"is_correct"`
}

type questionResponse struct {
	ID           uint             `json:"id"`
	QuestionText string           `json:"question_text"`
	Order        int              `json:"order"`
	Options      []optionResponse `json:"options"`
}

type quizResponse struct {
	ID          uint               `json:"id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Questions   []questionResponse `json:"questions"`
}

type materialResponse struct {
	ID          uint          `json:"id"`
	ContentType string        `json:"content_type"`
	Title       string        `json:"title"`
	EmbedURL    string        `json:"embed_url"`
	PointValue  uint          `json:"point_value"`
	Quiz        *quizResponse `json:"quiz,omitempty"`
}

// buildWeekResponse assembles the full week payload a client renders:
// catalog data plus the per-student lock and progress state
func buildWeekResponse(db *gorm.DB, user *models.User, week *contentModels.WeeklyContent) fiber.Map {
	locked, lockReason := isWeekLocked(db, user, week)

	progressValue := float64(0)
	isCompleted := false
	var progress contentModels.StudentProgress
	if err := db.Where("user_id = ? AND weekly_content_id = ?", user.ID, week.ID).First(&progress).Error; err == nil {
		progressValue = progress.CompletionPercentage
		isCompleted = progress.IsCompleted
	}

	var materials []contentModels.Material
	db.Where("weekly_content_id = ? AND is_deleted = ?", week.ID, false).Order("id asc").Find(&materials)

	materialList := make([]materialResponse, len(materials))
	for i, mat := range materials {
		materialList[i] = materialResponse{
			ID:          mat.ID,
			ContentType: mat.ContentType,
			Title:       mat.Title,
			EmbedURL:    mat.EmbedURL,
			PointValue:  mat.PointValue,
		}
		if mat.ContentType == contentModels.MaterialQuiz {
			materialList[i].Quiz = buildQuizResponse(db, mat.ID)
		}
	}

	var flashcards []contentModels.Flashcard
	db.Where("weekly_content_id = ?", week.ID).Order("order_index asc").Find(&flashcards)

	return fiber.Map{
		"id":                week.ID,
		"week_number":       week.WeekNumber,
		"title":             week.Title,
		"description":       week.Description,
		"release_date":      week.ReleaseDate,
		"intro_title":       week.IntroTitle,
		"intro_video_url":   week.IntroVideoURL,
		"intro_description": week.IntroDescription,
		"is_locked":         locked,
		"lock_reason":       lockReason,
		"is_intro_watched":  isIntroWatched(db, user),
		"materials":         materialList,
		"flashcards":        flashcards,
		"progress":          progressValue,
		"is_completed":      isCompleted,
	}
}

func buildQuizResponse(db *gorm.DB, materialID uint) *quizResponse {
	var quiz contentModels.Quiz
	if err := db.Where("material_id = ?", materialID).First(&quiz).Error; err != nil {
		return nil
	}

	var questions []contentModels.QuizQuestion
	db.Where("quiz_id = ?", quiz.ID).Order("order_index asc").Find(&questions)

	questionList := make([]questionResponse, len(questions))
	for i, q := range questions {
		var options []contentModels.QuizOption
		db.Where("question_id = ?", q.ID).Order("id asc").Find(&options)

		optionList := make([]optionResponse, len(options))
		for j, o := range options {
			optionList[j] = optionResponse{ID: o.ID, OptionText: o.OptionText, IsCorrect: o.IsCorrect}
		}
		questionList[i] = questionResponse{
			ID:           q.ID,
			QuestionText: q.QuestionText,
			Order:        q.OrderIndex,
			Options:      optionList,
		}
	}

	return &quizResponse{
		ID:          quiz.ID,
		Title:       quiz.Title,
		Description: quiz.Description,
		Questions:   questionList,
	}
}

// applyWeekOneIntro copies week 1's intro fields onto a week payload.
// Only week 1's intro is authoritative system-wide.
func applyWeekOneIntro(db *gorm.DB, data fiber.Map) {
	var weekOne contentModels.WeeklyContent
	if err := db.Where("week_number = ? AND is_deleted = ?", 1, false).First(&weekOne).Error; err != nil {
		return
	}
	data["intro_video_url"] = weekOne.IntroVideoURL
	data["intro_title"] = weekOne.IntroTitle
	data["intro_description"] = weekOne.IntroDescription
}

// GetWeeklyContents lists every week with per-student lock state. With
// ?week_number= it returns that single week.
func GetWeeklyContents(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return unauthorized(c)
	}

	db := database.Database.Db

	if weekNumber := c.QueryInt("week_number"); weekNumber > 0 {
		var week contentModels.WeeklyContent
		if err := db.Where("week_number = ? AND is_deleted = ?", weekNumber, false).First(&week).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Bu hafta henüz boş.", nil)
		}

		data := buildWeekResponse(db, user, &week)
		applyWeekOneIntro(db, data)
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Weekly content fetched successfully!", data)
	}

	var weeks []contentModels.WeeklyContent
	db.Where("is_deleted = ?", false).Order("week_number asc").Find(&weeks)

	list := make([]fiber.Map, len(weeks))
	for i := range weeks {
		list[i] = buildWeekResponse(db, user, &weeks[i])
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Weekly contents fetched successfully!", list)
}

// GetWeekDetail returns one week by its number in the unlock chain
func GetWeekDetail(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return unauthorized(c)
	}

	weekNumber := c.Locals("weekNumber").(int)

	db := database.Database.Db

	var week contentModels.WeeklyContent
	if err := db.Where("week_number = ? AND is_deleted = ?", weekNumber, false).First(&week).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Hafta içeriği bulunamadı.", nil)
	}

	data := buildWeekResponse(db, user, &week)
	applyWeekOneIntro(db, data)
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Week detail fetched successfully!", data)
}

type upsertOption struct {
	OptionText string `json:"option_text"`
	IsCorrect  bool   `json:"is_correct"`
}

type upsertQuestion struct {
	QuestionText string         `json:"question_text"`
	Options      []upsertOption `json:"options"`
}

type upsertQuiz struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Questions   []upsertQuestion `json:"questions"`
}

type upsertMaterial struct {
	ID          uint        `json:"id"`
	ContentType string      `json:"content_type"`
	Title       string      `json:"title"`
	EmbedURL    string      `json:"embed_url"`
	PointValue  uint        `json:"point_value"`
	Quiz        *upsertQuiz `json:"quiz"`
}

type upsertFlashcard struct {
	ID       uint   `json:"id"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type upsertWeekRequest struct {
	WeekNumber       int               `json:"week_number"`
	Title            string            `json:"title"`
	Description      string            `json:"description"`
	ReleaseDate      *time.Time        `json:"release_date"`
	IntroTitle       string            `json:"intro_title"`
	IntroVideoURL    string            `json:"intro_video_url"`
	IntroDescription string            `json:"intro_description"`
	Materials        []upsertMaterial  `json:"materials"`
	Flashcards       []upsertFlashcard `json:"flashcards"`
}

// UpsertWeeklyContent creates or replaces a week and its material and
// flashcard sets. Instructor only; materials left out of the payload are
// removed (their quiz trees with them).
func UpsertWeeklyContent(c *fiber.Ctx) error {
	reqData := new(upsertWeekRequest)
	if err := c.BodyParser(reqData); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	db := database.Database.Db

	var savedWeek contentModels.WeeklyContent
	err := db.Transaction(func(tx *gorm.DB) error {
		var week contentModels.WeeklyContent
		err := tx.Where("week_number = ? AND is_deleted = ?", reqData.WeekNumber, false).First(&week).Error
		if err == gorm.ErrRecordNotFound {
			week = contentModels.WeeklyContent{WeekNumber: reqData.WeekNumber}
		} else if err != nil {
			return err
		}

		week.Title = reqData.Title
		week.Description = reqData.Description
		week.ReleaseDate = reqData.ReleaseDate
		if reqData.IntroTitle != "" {
			week.IntroTitle = reqData.IntroTitle
		}
		week.IntroVideoURL = reqData.IntroVideoURL
		week.IntroDescription = reqData.IntroDescription

		if err := tx.Save(&week).Error; err != nil {
			return err
		}

		// Any intro info supplied updates week 1's system-wide intro
		if week.WeekNumber != 1 && (reqData.IntroVideoURL != "" || reqData.IntroDescription != "") {
			introTitle := reqData.IntroTitle
			if introTitle == "" {
				introTitle = "Genel Tanıtım"
			}
			if err := tx.Model(&contentModels.WeeklyContent{}).
				Where("week_number = ? AND is_deleted = ?", 1, false).
				Updates(map[string]interface{}{
					"intro_title":       introTitle,
					"intro_video_url":   reqData.IntroVideoURL,
					"intro_description": reqData.IntroDescription,
				}).Error; err != nil {
				return err
			}
		}

		keepMaterialIDs := make([]uint, 0, len(reqData.Materials))
		for _, item := range reqData.Materials {
			var material contentModels.Material

			if item.ID != 0 {
				err := tx.Where("id = ? AND weekly_content_id = ? AND is_deleted = ?", item.ID, week.ID, false).First(&material).Error
				if err != nil && err != gorm.ErrRecordNotFound {
					return err
				}
			}

			material.WeeklyContentID = week.ID
			material.ContentType = item.ContentType
			material.Title = item.Title
			material.EmbedURL = item.EmbedURL
			material.PointValue = item.PointValue

			if err := tx.Save(&material).Error; err != nil {
				return err
			}
			keepMaterialIDs = append(keepMaterialIDs, material.ID)

			if material.ContentType == contentModels.MaterialQuiz && item.Quiz != nil {
				if err := replaceQuiz(tx, material.ID, item.Quiz); err != nil {
					return err
				}
			}
		}

		// Soft-remove materials dropped from the payload
		if err := tx.Model(&contentModels.Material{}).
			Where("weekly_content_id = ? AND is_deleted = ?", week.ID, false).
			Not("id IN ?", append(keepMaterialIDs, 0)).
			Update("is_deleted", true).Error; err != nil {
			return err
		}

		keepCardIDs := make([]uint, 0, len(reqData.Flashcards))
		for idx, item := range reqData.Flashcards {
			var card contentModels.Flashcard

			if item.ID != 0 {
				err := tx.Where("id = ? AND weekly_content_id = ?", item.ID, week.ID).First(&card).Error
				if err != nil && err != gorm.ErrRecordNotFound {
					return err
				}
			}

			card.WeeklyContentID = week.ID
			card.Question = item.Question
			card.Answer = item.Answer
			card.OrderIndex = idx

			if err := tx.Save(&card).Error; err != nil {
				return err
			}
			keepCardIDs = append(keepCardIDs, card.ID)
		}

		if err := tx.Where("weekly_content_id = ?", week.ID).
			Not("id IN ?", append(keepCardIDs, 0)).
			Delete(&contentModels.Flashcard{}).Error; err != nil {
			return err
		}

		savedWeek = week
		return nil
	})
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to save weekly content!", nil)
	}

	user, _ := currentUser(c)
	data := buildWeekResponse(db, user, &savedWeek)
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Weekly content saved successfully!", data)
}

// replaceQuiz rebuilds the quiz tree under a material from scratch
func replaceQuiz(tx *gorm.DB, materialID uint, data *upsertQuiz) error {
	var existing contentModels.Quiz
	if err := tx.Where("material_id = ?", materialID).First(&existing).Error; err == nil {
		var questionIDs []uint
		tx.Model(&contentModels.QuizQuestion{}).Where("quiz_id = ?", existing.ID).Pluck("id", &questionIDs)

		if len(questionIDs) > 0 {
			tx.Where("question_id IN ?", questionIDs).Delete(&contentModels.QuizOption{})
		}
		tx.Where("quiz_id = ?", existing.ID).Delete(&contentModels.QuizQuestion{})
		tx.Delete(&existing)
	}

	quiz := contentModels.Quiz{
		MaterialID:  materialID,
		Title:       data.Title,
		Description: data.Description,
	}
	if err := tx.Create(&quiz).Error; err != nil {
		return err
	}

	for idx, q := range data.Questions {
		question := contentModels.QuizQuestion{
			QuizID:       quiz.ID,
			QuestionText: q.QuestionText,
			OrderIndex:   idx,
		}
		if err := tx.Create(&question).Error; err != nil {
			return err
		}

		for _, o := range q.Options {
			option := contentModels.QuizOption{
				QuestionID: question.ID,
				OptionText: o.OptionText,
				IsCorrect:  o.IsCorrect,
			}
			if err := tx.Create(&option).Error; err != nil {
				return err
			}
		}
	}

	return nil
}

// CompleteIntroVideo flags the system-wide intro video as watched for
// the student. One record per student, idempotent.
func CompleteIntroVideo(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return unauthorized(c)
	}

	db := database.Database.Db

	var completion contentModels.IntroVideoCompletion
	err = db.Where("user_id = ?", user.ID).First(&completion).Error
	if err == gorm.ErrRecordNotFound {
		completion = contentModels.IntroVideoCompletion{UserID: user.ID}
	} else if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to save intro completion!", nil)
	}

	completion.IsWatched = true
	completion.WatchedAt = time.Now()

	if err := db.Save(&completion).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to save intro completion!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Genel tanıtım tamamlandı. Sistem kilidi açıldı.", nil)
}
