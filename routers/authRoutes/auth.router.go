package authRoutes

import (
	authControllers "lms/controllers/auth"
	authValidators "lms/validators/auth"

	"github.com/gofiber/fiber/v2"
)

func SetupAuthRoutes(app *fiber.App) {
	authGroup := app.Group("/auth")

	authGroup.Post("/send-otp", authValidators.SendOTP(), authControllers.SendOTP)
	authGroup.Post("/register", authValidators.Register(), authControllers.Register)
	authGroup.Post("/login", authValidators.Login(), authControllers.Login)
	authGroup.Post("/password-reset/send-otp", authValidators.SendOTP(), authControllers.SendResetOTP)
	authGroup.Post("/password-reset/confirm", authValidators.PasswordReset(), authControllers.PasswordResetConfirm)
}
