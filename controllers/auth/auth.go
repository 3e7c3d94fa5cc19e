package authController

import (
	"lms/config"
	"lms/database"
	"lms/middleware"
	"lms/models"
	"lms/utils"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SendOTP mails a registration verification code. The email must not be
// registered yet.
func SendOTP(c *fiber.Ctx) error {
	reqData := new(struct {
		Email string `json:"email"`
	})

	if err := c.BodyParser(reqData); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	db := database.Database.Db

	if err := db.Where("email = ? AND is_deleted = ?", reqData.Email, false).First(&models.User{}).Error; err == nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Bu e-posta zaten kayıtlı.", nil)
	}

	return issueOTP(c, reqData.Email, "Kayıt Doğrulama")
}

// SendResetOTP mails a password-reset code. The email must belong to an
// existing account.
func SendResetOTP(c *fiber.Ctx) error {
	reqData := new(struct {
		Email string `json:"email"`
	})

	if err := c.BodyParser(reqData); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	db := database.Database.Db

	if err := db.Where("email = ? AND is_deleted = ?", reqData.Email, false).First(&models.User{}).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Bu e-posta adresiyle kayıtlı bir kullanıcı bulunamadı.", nil)
	}

	return issueOTP(c, reqData.Email, "Şifre Sıfırlama")
}

// issueOTP upserts the single live code for an email and mails it
func issueOTP(c *fiber.Ctx, email, description string) error {
	db := database.Database.Db
	code := utils.GenerateOTP()
	expiresAt := time.Now().Add(5 * time.Minute)

	var otpRecord models.EmailOTP
	err := db.Where("email = ?", email).First(&otpRecord).Error
	if err == gorm.ErrRecordNotFound {
		otpRecord = models.EmailOTP{Email: email}
	} else if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create OTP!", nil)
	}

	otpRecord.Code = code
	otpRecord.ExpiresAt = expiresAt
	otpRecord.IsUsed = false
	otpRecord.Description = description

	if err := db.Save(&otpRecord).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create OTP!", nil)
	}

	if err := utils.SendOTPEmail(code, email, description); err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "E-posta hatası.", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Kod gönderildi.", nil)
}

// Register creates a student account after checking the OTP code
func Register(c *fiber.Ctx) error {
	reqData := new(struct {
		Email     string `json:"email"`
		Password  string `json:"password"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Code      string `json:"code"`
	})

	if err := c.BodyParser(reqData); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	db := database.Database.Db

	if err := db.Where("email = ? AND is_deleted = ?", reqData.Email, false).First(&models.User{}).Error; err == nil {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Bu e-posta adresi zaten kullanımda.", nil)
	}

	if !consumeOTP(db, reqData.Email, reqData.Code) {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Doğrulama kodu geçersiz veya hatalı.", nil)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(reqData.Password), config.AppConfig.SaltRound)
	if err != nil {
		log.Printf("Error hashing password: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process your request!", nil)
	}

	newUser := models.User{
		Email:     reqData.Email,
		Password:  string(hashedPassword),
		FirstName: reqData.FirstName,
		LastName:  reqData.LastName,
		IsStudent: true,
	}

	if err := db.Create(&newUser).Error; err != nil {
		log.Printf("Error saving user to database: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to register user!", nil)
	}

	utils.SendWelcomeEmail(newUser.Email, newUser.FullName())

	newUser.Password = ""
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "User registered successfully.", newUser)
}

// Login verifies credentials and returns a bearer token
func Login(c *fiber.Ctx) error {
	reqData := new(struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	})

	if err := c.BodyParser(reqData); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Failed to parse request body!", nil)
	}

	db := database.Database.Db

	var user models.User
	if err := db.Where("email = ? AND is_deleted = ?", reqData.Email, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid email or password!", nil)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(reqData.Password)); err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid email or password!", nil)
	}

	now := time.Now()
	user.LastLogin = &now
	db.Save(&user)

	token, err := middleware.GenerateJWT(user.ID, user.Email, user.FullName(), user.IsTeacher, user.IsStudent, user.IsStaff)
	if err != nil {
		log.Printf("Error generating JWT: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to login!", nil)
	}

	user.Password = ""
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Login successful.", fiber.Map{
		"token": token,
		"user":  user,
	})
}

// PasswordResetConfirm checks the reset code and updates the password
func PasswordResetConfirm(c *fiber.Ctx) error {
	reqData := new(struct {
		Email       string `json:"email"`
		Code        string `json:"code"`
		NewPassword string `json:"new_password"`
	})

	if err := c.BodyParser(reqData); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	db := database.Database.Db

	var user models.User
	if err := db.Where("email = ? AND is_deleted = ?", reqData.Email, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Bu e-posta adresiyle kayıtlı bir kullanıcı bulunamadı.", nil)
	}

	if !consumeOTP(db, reqData.Email, reqData.Code) {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Doğrulama kodu geçersiz veya hatalı.", nil)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(reqData.NewPassword), config.AppConfig.SaltRound)
	if err != nil {
		log.Printf("Error hashing password: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process your request!", nil)
	}

	user.Password = string(hashedPassword)
	if err := db.Save(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to reset password!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Şifreniz başarıyla sıfırlandı.", nil)
}

// consumeOTP validates a live code for an email and deletes it on success
func consumeOTP(db *gorm.DB, email, code string) bool {
	var otpRecord models.EmailOTP
	err := db.Where("email = ? AND code = ? AND is_used = ? AND is_deleted = ?", email, code, false, false).First(&otpRecord).Error
	if err != nil {
		return false
	}

	if otpRecord.ExpiresAt.Before(time.Now()) {
		return false
	}

	// Hard delete so the unique email index stays usable for the next code
	db.Unscoped().Delete(&otpRecord)
	return true
}
