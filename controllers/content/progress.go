package controllers

import (
	"lms/database"
	"lms/middleware"
	contentModels "lms/models/content"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// TrackActivity adds viewing time to the per-day counter for a material.
// Rows are scoped by the student's current round for the week, so a
// round promotion starts fresh counters without touching round 1 data.
func TrackActivity(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return unauthorized(c)
	}

	reqData := new(struct {
		WeeklyContentID uint `json:"weekly_content_id"`
		MaterialID      uint `json:"material_id"`
		Seconds         uint `json:"seconds"`
	})

	if err := c.BodyParser(reqData); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	if reqData.Seconds == 0 {
		reqData.Seconds = 30 // default heartbeat interval
	}

	db := database.Database.Db

	var week contentModels.WeeklyContent
	if err := db.Where("id = ? AND is_deleted = ?", reqData.WeeklyContentID, false).First(&week).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "İçerik bulunamadı.", nil)
	}

	var tracking contentModels.TimeTracking
	err = db.Transaction(func(tx *gorm.DB) error {
		progress, err := getOrCreateProgress(tx, user.ID, week.ID)
		if err != nil {
			return err
		}

		// Row lock keeps concurrent heartbeats additive
		err = forUpdate(tx).
			Where("user_id = ? AND weekly_content_id = ? AND material_id = ? AND attempt_round = ? AND date = ?",
				user.ID, week.ID, reqData.MaterialID, progress.CurrentAttemptRound, today()).
			First(&tracking).Error
		if err == gorm.ErrRecordNotFound {
			tracking = contentModels.TimeTracking{
				UserID:          user.ID,
				WeeklyContentID: week.ID,
				MaterialID:      reqData.MaterialID,
				AttemptRound:    progress.CurrentAttemptRound,
				Date:            today(),
			}
			if err := tx.Create(&tracking).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		tracking.DurationSeconds += reqData.Seconds
		return tx.Save(&tracking).Error
	})
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to track activity!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Activity tracked successfully!", fiber.Map{
		"material_id":               tracking.MaterialID,
		"round":                     tracking.AttemptRound,
		"total_seconds_in_material": tracking.DurationSeconds,
	})
}

// CompleteMaterial marks a material done for the student's current round
// and recomputes the week's progress. Points are awarded only the first
// time in round 1; repeating is idempotent.
func CompleteMaterial(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return unauthorized(c)
	}

	reqData := new(struct {
		MaterialID uint `json:"material_id"`
	})

	if err := c.BodyParser(reqData); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	db := database.Database.Db

	var material contentModels.Material
	if err := db.Where("id = ? AND is_deleted = ?", reqData.MaterialID, false).First(&material).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Materyal bulunamadı.", nil)
	}

	var (
		currentRound    int
		newPoints       uint
		progressPercent float64
	)

	err = db.Transaction(func(tx *gorm.DB) error {
		// Lock the tracker row so completion and recompute are one unit
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

		var completion contentModels.CompletedMaterial
		err = tx.Where("user_id = ? AND material_id = ? AND attempt_round = ?",
			user.ID, material.ID, currentRound).First(&completion).Error
		if err == gorm.ErrRecordNotFound {
			completion = contentModels.CompletedMaterial{
				UserID:       user.ID,
				MaterialID:   material.ID,
				AttemptRound: currentRound,
			}
			if err := tx.Create(&completion).Error; err != nil {
				return err
			}

			// Points only for first completion in round 1
			if currentRound == 1 {
				newPoints = materialAward(material.PointValue)
				if newPoints > 0 {
					if err := tx.Model(user).Update("total_points", gorm.Expr("total_points + ?", newPoints)).Error; err != nil {
						return err
					}
					user.TotalPoints += newPoints
				}
			}
		} else if err != nil {
			return err
		}

		if err := recalcWeekProgress(tx, &progress, currentRound); err != nil {
			return err
		}
		progressPercent = progress.CompletionPercentage
		return nil
	})
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to complete material!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Material completed successfully!", fiber.Map{
		"material_id":        material.ID,
		"round":              currentRound,
		"current_percentage": progressPercent,
		"new_points_earned":  newPoints,
		"total_points":       user.TotalPoints,
	})
}

// GetCompletedMaterialIds returns the material ids the student finished
// in the current round of each week. The per-week round scoping is one
// join against the tracker rows instead of a dynamic OR filter.
func GetCompletedMaterialIds(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return unauthorized(c)
	}

	db := database.Database.Db

	var materialIDs []uint
	err = db.Model(&contentModels.CompletedMaterial{}).
		Joins("JOIN materials ON materials.id = completed_materials.material_id").
		Joins("JOIN student_progresses ON student_progresses.weekly_content_id = materials.weekly_content_id AND student_progresses.user_id = completed_materials.user_id").
		Where("completed_materials.user_id = ? AND materials.is_deleted = ? AND completed_materials.attempt_round = student_progresses.current_attempt_round", user.ID, false).
		Pluck("completed_materials.material_id", &materialIDs).Error
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch completed materials!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Completed material ids fetched successfully!", materialIDs)
}

// GetStudentProgressList lists the student's tracker rows ordered by week
func GetStudentProgressList(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return unauthorized(c)
	}

	db := database.Database.Db

	type progressRow struct {
		ID                   uint    `json:"id"`
		WeeklyContentID      uint    `json:"weekly_content_id"`
		WeekNumber           int     `json:"week_number"`
		WeekTitle            string  `json:"week_title"`
		CompletionPercentage float64 `json:"completion_percentage"`
		IsCompleted          bool    `json:"is_completed"`
		CurrentAttemptRound  int     `json:"current_attempt_round"`
	}

	var rows []progressRow
	err = db.Model(&contentModels.StudentProgress{}).
		Select("student_progresses.id, student_progresses.weekly_content_id, weekly_contents.week_number, weekly_contents.title as week_title, student_progresses.completion_percentage, student_progresses.is_completed, student_progresses.current_attempt_round").
		Joins("JOIN weekly_contents ON weekly_contents.id = student_progresses.weekly_content_id").
		Where("student_progresses.user_id = ?", user.ID).
		Order("weekly_contents.week_number asc").
		Scan(&rows).Error
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch progress!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Progress fetched successfully!", rows)
}
