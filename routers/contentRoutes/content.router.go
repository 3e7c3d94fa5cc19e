package contentRoutes

import (
	controllers "lms/controllers/content"
	"lms/middleware"
	validators "lms/validators/content"

	"github.com/gofiber/fiber/v2"
)

// SetupContentRoutes sets up the weekly content, progress, quiz and
// analytics routes. Everything requires a logged-in user.
func SetupContentRoutes(app *fiber.App) {
	contentGroup := app.Group("/contents")

	// Weekly catalog
	contentGroup.Get("/list", middleware.JWTMiddleware, controllers.GetWeeklyContents)
	contentGroup.Post("/list", middleware.JWTMiddleware, middleware.RequireTeacher(), validators.UpsertWeek(), controllers.UpsertWeeklyContent)
	contentGroup.Get("/week/:week_number", middleware.JWTMiddleware, validators.WeekNumberParam(), controllers.GetWeekDetail)
	contentGroup.Post("/weeks/complete-intro", middleware.JWTMiddleware, controllers.CompleteIntroVideo)

	// Progress and time tracking
	contentGroup.Post("/track-activity", middleware.JWTMiddleware, validators.TrackActivity(), controllers.TrackActivity)
	contentGroup.Post("/complete-material", middleware.JWTMiddleware, validators.CompleteMaterial(), controllers.CompleteMaterial)
	contentGroup.Get("/completed-materials-ids", middleware.JWTMiddleware, controllers.GetCompletedMaterialIds)
	contentGroup.Get("/studentprogress", middleware.JWTMiddleware, controllers.GetStudentProgressList)

	// Quiz flow
	contentGroup.Post("/quiz/:quiz_id/submit", middleware.JWTMiddleware, validators.QuizIDParam(), validators.SubmitQuiz(), controllers.SubmitQuiz)
	contentGroup.Get("/quiz-last-attempt/:quiz_id", middleware.JWTMiddleware, validators.QuizIDParam(), controllers.GetLastQuizAttempt)
	contentGroup.Get("/quiz-analysis/:attempt_id", middleware.JWTMiddleware, validators.AttemptIDParam(), controllers.QuizAIAnalysis)

	// AI assistant
	contentGroup.Post("/ai-chat", middleware.JWTMiddleware, validators.AIChat(), controllers.AIChat)

	// Analytics
	contentGroup.Get("/analytics", middleware.JWTMiddleware, controllers.GetStudentAnalytics)
	contentGroup.Get("/teacher/analytics", middleware.JWTMiddleware, middleware.RequireStaff(), controllers.GetTeacherAnalytics)
	contentGroup.Get("/teacher/analytics/:student_id", middleware.JWTMiddleware, middleware.RequireStaff(), validators.StudentIDParam(), controllers.GetTeacherStudentDetail)
	contentGroup.Get("/teacher/report", middleware.JWTMiddleware, middleware.RequireStaff(), controllers.BulkAcademicReport)
}
