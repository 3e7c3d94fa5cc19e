package controllers

import (
	"context"
	"fmt"
	"lms/config"
	"lms/database"
	"lms/middleware"
	contentModels "lms/models/content"
	"lms/utils"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

var errDuplicateAttempt = fmt.Errorf("quiz already attempted this round")

// analysisFallback is returned when the AI provider fails or times out
const analysisFallback = "Tebrikler, sınavı tamamladın! Şu an detaylı analiz oluşturulamıyor ama başarılarının devamını dilerim."

// SubmitQuiz grades one full submission of a quiz in the student's
// current round. The whole grade-and-complete step is one transaction
// with the tracker row locked, so a racing duplicate either sees the
// existing attempt or trips the unique index.
func SubmitQuiz(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return unauthorized(c)
	}

	quizID := c.Locals("quizID").(int)

	reqData := new(struct {
		Answers []struct {
			QuestionID uint `json:"question_id"`
			OptionID   uint `json:"option_id"`
		} `json:"answers"`
	})

	if err := c.BodyParser(reqData); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	db := database.Database.Db

	var quiz contentModels.Quiz
	if err := db.Where("id = ?", quizID).First(&quiz).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Sınav bulunamadı.", nil)
	}

	var material contentModels.Material
	if err := db.Where("id = ? AND is_deleted = ?", quiz.MaterialID, false).First(&material).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Sınav materyali bulunamadı.", nil)
	}

	var (
		attempt      contentModels.StudentQuizAttempt
		currentRound int
		isCompleted  bool
	)

	err = db.Transaction(func(tx *gorm.DB) error {
		var progress contentModels.StudentProgress
		err := forUpdate(tx).
			Where("user_id = ? AND weekly_content_id = ?", user.ID, material.WeeklyContentID).
			First(&progress).Error
		if err == gorm.ErrRecordNotFound {
			created, err := getOrCreateProgress(tx, user.ID, material.WeeklyContentID)
			if err != nil {
				return err
			}
			progress = *created
		} else if err != nil {
			return err
		}

		currentRound = progress.CurrentAttemptRound

		var existing int64
		if err := tx.Model(&contentModels.StudentQuizAttempt{}).
			Where("user_id = ? AND quiz_id = ? AND attempt_round = ?", user.ID, quiz.ID, currentRound).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return errDuplicateAttempt
		}

		attempt = contentModels.StudentQuizAttempt{
			UserID:       user.ID,
			QuizID:       quiz.ID,
			AttemptRound: currentRound,
		}
		if err := tx.Create(&attempt).Error; err != nil {
			// A racing submission hit the unique index first
			if strings.Contains(strings.ToLower(err.Error()), "unique") || strings.Contains(strings.ToLower(err.Error()), "duplicate") {
				return errDuplicateAttempt
			}
			return err
		}

		correctCount := 0
		for _, ans := range reqData.Answers {
			var question contentModels.QuizQuestion
			if err := tx.Where("id = ? AND quiz_id = ?", ans.QuestionID, quiz.ID).First(&question).Error; err != nil {
				log.Printf("Quiz answer skipped: question %d not in quiz %d", ans.QuestionID, quiz.ID)
				continue
			}

			var option contentModels.QuizOption
			if err := tx.Where("id = ? AND question_id = ?", ans.OptionID, question.ID).First(&option).Error; err != nil {
				log.Printf("Quiz answer skipped: option %d not in question %d", ans.OptionID, question.ID)
				continue
			}

			if option.IsCorrect {
				correctCount++
			}

			// Correctness is frozen here; later edits to the option
			// never change recorded answers
			answer := contentModels.StudentAnswer{
				AttemptID:        attempt.ID,
				QuestionID:       question.ID,
				SelectedOptionID: option.ID,
				IsCorrect:        option.IsCorrect,
			}
			if err := tx.Create(&answer).Error; err != nil {
				return err
			}
		}

		var totalQuestions int64
		if err := tx.Model(&contentModels.QuizQuestion{}).Where("quiz_id = ?", quiz.ID).Count(&totalQuestions).Error; err != nil {
			return err
		}

		score := 0
		if totalQuestions > 0 {
			score = int(float64(correctCount)/float64(totalQuestions)*100 + 0.5)
		}

		attempt.Score = score
		attempt.CorrectAnswers = correctCount
		attempt.WrongAnswers = int(totalQuestions) - correctCount
		if err := tx.Save(&attempt).Error; err != nil {
			return err
		}

		// The quiz material counts as done for this round
		var completion contentModels.CompletedMaterial
		err = tx.Where("user_id = ? AND material_id = ? AND attempt_round = ?", user.ID, material.ID, currentRound).
			First(&completion).Error
		if err == gorm.ErrRecordNotFound {
			completion = contentModels.CompletedMaterial{
				UserID:       user.ID,
				MaterialID:   material.ID,
				AttemptRound: currentRound,
			}
			if err := tx.Create(&completion).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		if err := recalcWeekProgress(tx, &progress, currentRound); err != nil {
			return err
		}
		isCompleted = progress.IsCompleted
		return nil
	})
	if err == errDuplicateAttempt {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false,
			fmt.Sprintf("Bu haftanın testini %d. tur için zaten çözdünüz.", currentRound), nil)
	}
	if err != nil {
		log.Printf("Quiz submission failed: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to submit quiz!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Quiz submitted successfully!", fiber.Map{
		"attempt_id":    attempt.ID,
		"score":         attempt.Score,
		"correct":       attempt.CorrectAnswers,
		"wrong":         attempt.WrongAnswers,
		"current_round": currentRound,
		"is_completed":  isCompleted,
	})
}

// GetLastQuizAttempt returns the student's most recent attempt of a quiz
func GetLastQuizAttempt(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return unauthorized(c)
	}

	quizID := c.Locals("quizID").(int)

	db := database.Database.Db

	var attempt contentModels.StudentQuizAttempt
	if err := db.Where("user_id = ? AND quiz_id = ?", user.ID, quizID).
		Order("created_at desc").First(&attempt).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Sınav denemesi bulunamadı.", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Last attempt fetched successfully!", fiber.Map{
		"id":              attempt.ID,
		"score":           attempt.Score,
		"correct":         attempt.CorrectAnswers,
		"wrong":           attempt.WrongAnswers,
		"correct_answers": attempt.CorrectAnswers,
		"wrong_answers":   attempt.WrongAnswers,
		"round":           attempt.AttemptRound,
	})
}

// QuizAIAnalysis generates feedback for an attempt and, when the student
// is still in round 1 with at least one wrong answer, promotes them to
// round 2. Promotion happens whether or not the AI call succeeds, and no
// database lock is held while waiting on the provider.
func QuizAIAnalysis(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return unauthorized(c)
	}

	attemptID := c.Locals("attemptID").(int)

	db := database.Database.Db

	var attempt contentModels.StudentQuizAttempt
	if err := db.Where("id = ? AND user_id = ?", attemptID, user.ID).First(&attempt).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Sınav verisi bulunamadı. Lütfen sayfayı yenileyip tekrar deneyin.", nil)
	}

	var quiz contentModels.Quiz
	if err := db.Where("id = ?", attempt.QuizID).First(&quiz).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Sınav bulunamadı.", nil)
	}

	var material contentModels.Material
	if err := db.Unscoped().Where("id = ?", quiz.MaterialID).First(&material).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Sınav materyali bulunamadı.", nil)
	}

	feedback := generateAttemptFeedback(db, user.FirstName, &quiz, &attempt)

	// Round promotion is evaluated regardless of the AI outcome
	roundUpgraded := false
	currentRound := attempt.AttemptRound

	err = db.Transaction(func(tx *gorm.DB) error {
		var progress contentModels.StudentProgress
		err := forUpdate(tx).
			Where("user_id = ? AND weekly_content_id = ?", user.ID, material.WeeklyContentID).
			First(&progress).Error
		if err != nil {
			return err
		}

		currentRound = progress.CurrentAttemptRound

		if attempt.WrongAnswers > 0 && progress.CurrentAttemptRound == 1 {
			progress.CurrentAttemptRound = 2
			progress.CompletionPercentage = 0
			progress.IsCompleted = false
			progress.LastAccessed = time.Now()
			if err := tx.Save(&progress).Error; err != nil {
				return err
			}
			roundUpgraded = true
			currentRound = 2
		}
		return nil
	})
	if err != nil {
		log.Printf("Round promotion check failed for attempt %d: %v", attempt.ID, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Sistemsel bir hata oluştu.", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Analysis generated successfully!", fiber.Map{
		"ai_feedback":    feedback,
		"round_upgraded": roundUpgraded,
		"current_round":  currentRound,
	})
}

// generateAttemptFeedback builds the advisor prompt from wrong answers
// and asks the text generator. Falls back to a canned message on any
// provider failure or empty result.
func generateAttemptFeedback(db *gorm.DB, userName string, quiz *contentModels.Quiz, attempt *contentModels.StudentQuizAttempt) string {
	var wrongAnswers []contentModels.StudentAnswer
	db.Where("attempt_id = ? AND is_correct = ?", attempt.ID, false).Find(&wrongAnswers)

	if userName == "" {
		userName = "öğrencim"
	}

	details := ""
	for _, ans := range wrongAnswers {
		var question contentModels.QuizQuestion
		if err := db.Where("id = ?", ans.QuestionID).First(&question).Error; err != nil {
			continue
		}

		var selected contentModels.QuizOption
		db.Where("id = ?", ans.SelectedOptionID).First(&selected)

		correctText := "?"
		var correct contentModels.QuizOption
		if err := db.Where("question_id = ? AND is_correct = ?", question.ID, true).First(&correct).Error; err == nil {
			correctText = correct.OptionText
		}

		details += fmt.Sprintf("Soru: %s\nÖğrencinin Yanlış Cevabı: %s\nDoğru Cevap: %s\n\n",
			question.QuestionText, selected.OptionText, correctText)
	}

	prompt := fmt.Sprintf(
		"Bir eğitim danışmanı olarak, öğrencim %s için '%s' sınavındaki %%%d başarısını analiz et. Hataları:\n%s\n"+
			"Lütfen mesaja direkt '%s, merhaba!' veya 'Selam %s!' gibi samimi bir girişle başla. "+
			"Hatalarını nazikçe açıkla, moral ver ve gelişim için ne yapması gerektiğini söyle.",
		userName, quiz.Title, attempt.Score, details, userName, userName,
	)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(config.AppConfig.GeminiTimeout)*time.Second)
	defer cancel()

	feedback, err := utils.Generator.Generate(ctx, prompt)
	if err != nil || feedback == "" {
		log.Printf("AI analysis unavailable for attempt %d: %v", attempt.ID, err)
		return analysisFallback
	}
	return feedback
}
