package contentValidator

import (
	"lms/middleware"
	contentModels "lms/models/content"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

func intParam(c *fiber.Ctx, name, local, message string) error {
	value, err := strconv.Atoi(c.Params(name))
	if err != nil || value < 1 {
		return middleware.ValidationErrorResponse(c, map[string]string{name: message})
	}
	c.Locals(local, value)
	return c.Next()
}

// WeekNumberParam validates the :week_number route param
func WeekNumberParam() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return intParam(c, "week_number", "weekNumber", "Week number must be a positive integer!")
	}
}

// QuizIDParam validates the :quiz_id route param
func QuizIDParam() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return intParam(c, "quiz_id", "quizID", "Quiz id must be a positive integer!")
	}
}

// AttemptIDParam validates the :attempt_id route param
func AttemptIDParam() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return intParam(c, "attempt_id", "attemptID", "Attempt id must be a positive integer!")
	}
}

// StudentIDParam validates the :student_id route param
func StudentIDParam() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return intParam(c, "student_id", "studentID", "Student id must be a positive integer!")
	}
}

// TrackActivity validator middleware
func TrackActivity() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			WeeklyContentID uint `json:"weekly_content_id"`
			MaterialID      uint `json:"material_id"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.WeeklyContentID == 0 {
			errors["weekly_content_id"] = "Weekly content id is required!"
		}
		if reqData.MaterialID == 0 {
			errors["material_id"] = "Material id is required!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}
		return c.Next()
	}
}

// CompleteMaterial validator middleware
func CompleteMaterial() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			MaterialID uint `json:"material_id"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if reqData.MaterialID == 0 {
			return middleware.ValidationErrorResponse(c, map[string]string{"material_id": "Material id is required!"})
		}
		return c.Next()
	}
}

// SubmitQuiz validator middleware
func SubmitQuiz() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Answers []struct {
				QuestionID uint `json:"question_id"`
				OptionID   uint `json:"option_id"`
			} `json:"answers"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if len(reqData.Answers) == 0 {
			errors["answers"] = "At least one answer is required!"
		}
		for _, ans := range reqData.Answers {
			if ans.QuestionID == 0 || ans.OptionID == 0 {
				errors["answers"] = "Every answer needs a question id and an option id!"
				break
			}
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}
		return c.Next()
	}
}

// AIChat validator middleware
func AIChat() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Message string `json:"message"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if strings.TrimSpace(reqData.Message) == "" {
			return middleware.ValidationErrorResponse(c, map[string]string{"message": "Message cannot be empty!"})
		}
		return c.Next()
	}
}

var allowedContentTypes = map[string]bool{
	contentModels.MaterialVideo:   true,
	contentModels.MaterialPodcast: true,
	contentModels.MaterialQuiz:    true,
	contentModels.MaterialPdf:     true,
}

// UpsertWeek validator middleware
func UpsertWeek() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			WeekNumber  int        `json:"week_number"`
			Title       string     `json:"title"`
			ReleaseDate *time.Time `json:"release_date"`
			Materials   []struct {
				ContentType string `json:"content_type"`
				Title       string `json:"title"`
				Quiz        *struct {
					Questions []struct {
						QuestionText string `json:"question_text"`
						Options      []struct {
							OptionText string `json:"option_text"`
							IsCorrect  bool   `json:"is_correct"`
						} `json:"options"`
					} `json:"questions"`
				} `json:"quiz"`
			} `json:"materials"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.WeekNumber < 1 {
			errors["week_number"] = "Week number must be at least 1!"
		}
		if strings.TrimSpace(reqData.Title) == "" {
			errors["title"] = "Title is required!"
		}

		for _, material := range reqData.Materials {
			if !allowedContentTypes[material.ContentType] {
				errors["materials"] = "Content type must be one of video, podcast, quiz, pdf!"
				break
			}
			if strings.TrimSpace(material.Title) == "" {
				errors["materials"] = "Every material needs a title!"
				break
			}
			if material.ContentType == contentModels.MaterialQuiz && material.Quiz != nil {
				for _, question := range material.Quiz.Questions {
					if strings.TrimSpace(question.QuestionText) == "" {
						errors["materials"] = "Every quiz question needs text!"
						break
					}
					hasCorrect := false
					for _, option := range question.Options {
						if option.IsCorrect {
							hasCorrect = true
							break
						}
					}
					if !hasCorrect {
						errors["materials"] = "Every quiz question needs at least one correct option!"
						break
					}
				}
			}
			if _, ok := errors["materials"]; ok {
				break
			}
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}
		return c.Next()
	}
}
