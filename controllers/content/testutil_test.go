package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"lms/config"
	"lms/database"
	"lms/middleware"
	"lms/models"
	contentModels "lms/models/content"
	"lms/utils"
	contentValidator "lms/validators/content"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// stubGenerator stands in for the Gemini client in tests
type stubGenerator struct {
	reply string
	err   error
}

func (s *stubGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	return s.reply, s.err
}

func (s *stubGenerator) GenerateStream(ctx context.Context, prompt string) (<-chan string, error) {
	text, err := s.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}
	ch := make(chan string, 1)
	ch <- text
	close(ch)
	return ch, nil
}

func setupTest(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// One connection so every query sees the same in-memory database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	database.RunMigrations(db)
	database.Database = database.DbInstance{Db: db}

	config.AppConfig = &config.Config{
		JWTKey:        "test-secret",
		SaltRound:     4,
		GeminiTimeout: 1,
	}

	utils.Generator = &stubGenerator{err: fmt.Errorf("provider offline")}

	return db
}

// newTestApp wires the content routes behind a middleware that injects
// the given user, standing in for JWT auth
func newTestApp(user *models.User) *fiber.App {
	app := fiber.New()

	app.Use(func(c *fiber.Ctx) error {
		c.Locals("userId", user.ID)
		return c.Next()
	})

	contentGroup := app.Group("/contents")
	contentGroup.Get("/list", GetWeeklyContents)
	contentGroup.Post("/list", middleware.RequireTeacher(), contentValidator.UpsertWeek(), UpsertWeeklyContent)
	contentGroup.Get("/week/:week_number", contentValidator.WeekNumberParam(), GetWeekDetail)
	contentGroup.Post("/weeks/complete-intro", CompleteIntroVideo)
	contentGroup.Post("/track-activity", contentValidator.TrackActivity(), TrackActivity)
	contentGroup.Post("/complete-material", contentValidator.CompleteMaterial(), CompleteMaterial)
	contentGroup.Get("/completed-materials-ids", GetCompletedMaterialIds)
	contentGroup.Get("/studentprogress", GetStudentProgressList)
	contentGroup.Post("/quiz/:quiz_id/submit", contentValidator.QuizIDParam(), contentValidator.SubmitQuiz(), SubmitQuiz)
	contentGroup.Get("/quiz-last-attempt/:quiz_id", contentValidator.QuizIDParam(), GetLastQuizAttempt)
	contentGroup.Get("/quiz-analysis/:attempt_id", contentValidator.AttemptIDParam(), QuizAIAnalysis)
	contentGroup.Post("/ai-chat", contentValidator.AIChat(), AIChat)
	contentGroup.Get("/analytics", GetStudentAnalytics)
	contentGroup.Get("/teacher/analytics", middleware.RequireStaff(), GetTeacherAnalytics)
	contentGroup.Get("/teacher/analytics/:student_id", middleware.RequireStaff(), contentValidator.StudentIDParam(), GetTeacherStudentDetail)
	contentGroup.Get("/teacher/report", middleware.RequireStaff(), BulkAcademicReport)

	return app
}

func doJSON(t *testing.T, app *fiber.App, method, target string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var envelope map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))

	return resp.StatusCode, envelope
}

func responseData(t *testing.T, envelope map[string]interface{}) map[string]interface{} {
	t.Helper()
	data, ok := envelope["data"].(map[string]interface{})
	require.True(t, ok, "expected object data, got %v", envelope["data"])
	return data
}

func seedStudent(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	user := &models.User{
		FirstName: "Ayşe",
		LastName:  "Yılmaz",
		Email:     email,
		Password:  "hashed",
		IsStudent: true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedWeek(t *testing.T, db *gorm.DB, weekNumber, materialCount int) (*contentModels.WeeklyContent, []contentModels.Material) {
	t.Helper()

	week := &contentModels.WeeklyContent{
		WeekNumber: weekNumber,
		Title:      fmt.Sprintf("%d. Hafta", weekNumber),
	}
	require.NoError(t, db.Create(week).Error)

	materials := make([]contentModels.Material, materialCount)
	for i := 0; i < materialCount; i++ {
		materials[i] = contentModels.Material{
			WeeklyContentID: week.ID,
			ContentType:     contentModels.MaterialVideo,
			Title:           fmt.Sprintf("Video %d", i+1),
			PointValue:      10,
		}
		require.NoError(t, db.Create(&materials[i]).Error)
	}

	return week, materials
}

// seedQuiz attaches a quiz material to the week with questionCount
// questions of two options each. Returns per-question correct and wrong
// option ids in question order.
func seedQuiz(t *testing.T, db *gorm.DB, week *contentModels.WeeklyContent, questionCount int) (*contentModels.Quiz, []contentModels.QuizQuestion, [][2]uint) {
	t.Helper()

	material := &contentModels.Material{
		WeeklyContentID: week.ID,
		ContentType:     contentModels.MaterialQuiz,
		Title:           "Haftalık Test",
	}
	require.NoError(t, db.Create(material).Error)

	quiz := &contentModels.Quiz{MaterialID: material.ID, Title: "Haftalık Test"}
	require.NoError(t, db.Create(quiz).Error)

	questions := make([]contentModels.QuizQuestion, questionCount)
	optionIDs := make([][2]uint, questionCount)
	for i := 0; i < questionCount; i++ {
		questions[i] = contentModels.QuizQuestion{
			QuizID:       quiz.ID,
			QuestionText: fmt.Sprintf("Soru %d", i+1),
			OrderIndex:   i,
		}
		require.NoError(t, db.Create(&questions[i]).Error)

		correct := contentModels.QuizOption{QuestionID: questions[i].ID, OptionText: "Doğru", IsCorrect: true}
		require.NoError(t, db.Create(&correct).Error)
		wrong := contentModels.QuizOption{QuestionID: questions[i].ID, OptionText: "Yanlış"}
		require.NoError(t, db.Create(&wrong).Error)

		optionIDs[i] = [2]uint{correct.ID, wrong.ID}
	}

	return quiz, questions, optionIDs
}
