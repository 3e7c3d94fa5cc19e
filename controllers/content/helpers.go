package controllers

import (
	"fmt"
	"lms/config"
	"lms/database"
	"lms/middleware"
	"lms/models"
	contentModels "lms/models/content"
	"math"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// currentUser loads the authenticated user set by JWTMiddleware
func currentUser(c *fiber.Ctx) (*models.User, error) {
	if user, ok := c.Locals("currentUser").(*models.User); ok {
		return user, nil
	}

	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return nil, fiber.ErrUnauthorized
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// unauthorized is the shared bail-out for handlers that need a user
func unauthorized(c *fiber.Ctx) error {
	return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// today returns the current date truncated to midnight UTC, matching the
// date-typed column on TimeTracking
func today() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// forUpdate takes a row lock where the dialect supports it. SQLite
// serialises writers on the whole file, so the clause is skipped there.
func forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// getOrCreateProgress returns the tracker row for (student, week),
// creating it at round 1 on first touch
func getOrCreateProgress(tx *gorm.DB, userID, weeklyContentID uint) (*contentModels.StudentProgress, error) {
	var progress contentModels.StudentProgress
	err := tx.Where("user_id = ? AND weekly_content_id = ?", userID, weeklyContentID).First(&progress).Error
	if err == gorm.ErrRecordNotFound {
		progress = contentModels.StudentProgress{
			UserID:              userID,
			WeeklyContentID:     weeklyContentID,
			CurrentAttemptRound: 1,
			LastAccessed:        time.Now(),
		}
		if err := tx.Create(&progress).Error; err != nil {
			return nil, err
		}
		return &progress, nil
	}
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

// recalcWeekProgress re-derives percentage and completion from the
// completed-material count within the given round. Idempotent; called
// after every material or quiz completion event.
func recalcWeekProgress(tx *gorm.DB, progress *contentModels.StudentProgress, round int) error {
	var totalMats int64
	if err := tx.Model(&contentModels.Material{}).
		Where("weekly_content_id = ? AND is_deleted = ?", progress.WeeklyContentID, false).
		Count(&totalMats).Error; err != nil {
		return err
	}

	// Completions of since-removed materials never count
	var doneMats int64
	if err := tx.Model(&contentModels.CompletedMaterial{}).
		Joins("JOIN materials ON materials.id = completed_materials.material_id").
		Where("completed_materials.user_id = ? AND materials.weekly_content_id = ? AND materials.is_deleted = ? AND completed_materials.attempt_round = ?",
			progress.UserID, progress.WeeklyContentID, false, round).
		Count(&doneMats).Error; err != nil {
		return err
	}

	percentage := float64(0)
	if totalMats > 0 {
		percentage = round2(float64(doneMats) / float64(totalMats) * 100)
	}

	progress.CompletionPercentage = percentage
	progress.IsCompleted = percentage >= 100
	progress.LastAccessed = time.Now()

	return tx.Save(progress).Error
}

// isWeekLocked evaluates the unlock chain for a student. Returns the
// lock state plus a human-readable reason. Never stored.
func isWeekLocked(db *gorm.DB, user *models.User, week *contentModels.WeeklyContent) (bool, string) {
	if user.IsTeacher || user.IsStaff {
		return false, ""
	}

	if config.AppConfig.IntroGateEnabled && !isIntroWatched(db, user) {
		return true, "Devam etmek için lütfen genel tanıtım videosunu izleyin."
	}

	if week.ReleaseDate != nil && time.Now().Before(*week.ReleaseDate) {
		return true, fmt.Sprintf("Bu içerik %s tarihinde erişime açılacaktır.", week.ReleaseDate.Format("02.01.2006"))
	}

	if week.WeekNumber > 1 {
		var previousWeek contentModels.WeeklyContent
		err := db.Where("week_number = ? AND is_deleted = ?", week.WeekNumber-1, false).First(&previousWeek).Error
		if err == nil {
			var prevProgress contentModels.StudentProgress
			err = db.Where("user_id = ? AND weekly_content_id = ?", user.ID, previousWeek.ID).First(&prevProgress).Error
			if err != nil || !prevProgress.IsCompleted {
				return true, fmt.Sprintf("Bu haftayı açmak için lütfen %d. haftayı %%100 tamamlayın.", week.WeekNumber-1)
			}
		}
	}

	return false, ""
}

func isIntroWatched(db *gorm.DB, user *models.User) bool {
	if user.IsTeacher || user.IsStaff {
		return true
	}
	var completion contentModels.IntroVideoCompletion
	if err := db.Where("user_id = ?", user.ID).First(&completion).Error; err != nil {
		return false
	}
	return completion.IsWatched
}

// materialAward resolves the points paid for a first-time round 1
// completion, honouring the configurable 10-points policy
func materialAward(pointValue uint) uint {
	if config.AppConfig.PointsTenAwardsOne && pointValue == 10 {
		return 1
	}
	return pointValue
}
