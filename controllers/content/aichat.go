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
	"time"

	"github.com/gofiber/fiber/v2"
)

const chatFallback = "Şu an genel bilgi havuzuna erişim sağlanamıyor, lütfen birazdan tekrar deneyin."

// AIChat answers a free-form student question, optionally scoped to one
// week's content. The question is recorded for teacher analytics when it
// belongs to a real week; chat always answers with 200 even when the
// provider is down.
func AIChat(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return unauthorized(c)
	}

	reqData := new(struct {
		Message         string `json:"message"`
		WeeklyContentID uint   `json:"weekly_content_id"`
	})

	if err := c.BodyParser(reqData); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	db := database.Database.Db

	prompt := reqData.Message
	if reqData.WeeklyContentID != 0 {
		var week contentModels.WeeklyContent
		if err := db.Where("id = ? AND is_deleted = ?", reqData.WeeklyContentID, false).First(&week).Error; err == nil {
			prompt = fmt.Sprintf("Öğrenci şu an '%d. Hafta: %s' konusunu çalışıyor. Sorusu: %s",
				week.WeekNumber, week.Title, reqData.Message)

			question := contentModels.StudentQuestion{
				UserID:          user.ID,
				WeeklyContentID: week.ID,
				QuestionText:    reqData.Message,
			}
			if err := db.Create(&question).Error; err != nil {
				log.Printf("Failed to record student question: %v", err)
			}
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(config.AppConfig.GeminiTimeout)*time.Second)
	defer cancel()

	answer, err := utils.Generator.Generate(ctx, prompt)
	if err != nil || answer == "" {
		log.Printf("AI chat unavailable for user %d: %v", user.ID, err)
		answer = chatFallback
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Chat response generated successfully!", fiber.Map{
		"reply": answer,
	})
}
