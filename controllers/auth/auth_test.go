package authController

import (
	"bytes"
	"encoding/json"
	"lms/config"
	"lms/database"
	"lms/models"
	authValidator "lms/validators/auth"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupAuthTest(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	database.RunMigrations(db)
	database.Database = database.DbInstance{Db: db}

	config.AppConfig = &config.Config{
		JWTKey:    "test-secret",
		SaltRound: 4,
	}

	app := fiber.New()
	authGroup := app.Group("/auth")
	authGroup.Post("/register", authValidator.Register(), Register)
	authGroup.Post("/login", authValidator.Login(), Login)
	authGroup.Post("/password-reset/confirm", authValidator.PasswordReset(), PasswordResetConfirm)

	return app, db
}

func postJSON(t *testing.T, app *fiber.App, target string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))

	req := httptest.NewRequest("POST", target, &buf)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var envelope map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))

	return resp.StatusCode, envelope
}

func seedOTP(t *testing.T, db *gorm.DB, email, code string) {
	t.Helper()
	require.NoError(t, db.Create(&models.EmailOTP{
		Email:     email,
		Code:      code,
		ExpiresAt: time.Now().Add(5 * time.Minute),
	}).Error)
}

func TestRegisterWithValidCode(t *testing.T) {
	app, db := setupAuthTest(t)
	seedOTP(t, db, "ayse@test.edu.tr", "123456")

	status, envelope := postJSON(t, app, "/auth/register", map[string]interface{}{
		"email":      "ayse@test.edu.tr",
		"password":   "gizlisifre",
		"first_name": "Ayşe",
		"last_name":  "Yılmaz",
		"code":       "123456",
	})
	require.Equal(t, 201, status)

	data := envelope["data"].(map[string]interface{})
	assert.Equal(t, true, data["is_student"])
	assert.Equal(t, false, data["is_teacher"])
	assert.Nil(t, data["password"])

	var user models.User
	require.NoError(t, db.Where("email = ?", "ayse@test.edu.tr").First(&user).Error)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("gizlisifre")))

	// The code is single use
	var otps int64
	db.Unscoped().Model(&models.EmailOTP{}).Count(&otps)
	assert.EqualValues(t, 0, otps)
}

func TestRegisterRejectsBadCode(t *testing.T) {
	app, db := setupAuthTest(t)
	seedOTP(t, db, "ayse@test.edu.tr", "123456")

	status, envelope := postJSON(t, app, "/auth/register", map[string]interface{}{
		"email":      "ayse@test.edu.tr",
		"password":   "gizlisifre",
		"first_name": "Ayşe",
		"last_name":  "Yılmaz",
		"code":       "654321",
	})
	assert.Equal(t, 400, status)
	assert.Equal(t, "Doğrulama kodu geçersiz veya hatalı.", envelope["message"])
}

func TestRegisterRejectsExpiredCode(t *testing.T) {
	app, db := setupAuthTest(t)
	require.NoError(t, db.Create(&models.EmailOTP{
		Email:     "ayse@test.edu.tr",
		Code:      "123456",
		ExpiresAt: time.Now().Add(-time.Minute),
	}).Error)

	status, _ := postJSON(t, app, "/auth/register", map[string]interface{}{
		"email":      "ayse@test.edu.tr",
		"password":   "gizlisifre",
		"first_name": "Ayşe",
		"last_name":  "Yılmaz",
		"code":       "123456",
	})
	assert.Equal(t, 400, status)
}

func TestRegisterRejectsTakenEmail(t *testing.T) {
	app, db := setupAuthTest(t)
	require.NoError(t, db.Create(&models.User{Email: "ayse@test.edu.tr", Password: "x"}).Error)
	seedOTP(t, db, "ayse@test.edu.tr", "123456")

	status, envelope := postJSON(t, app, "/auth/register", map[string]interface{}{
		"email":      "ayse@test.edu.tr",
		"password":   "gizlisifre",
		"first_name": "Ayşe",
		"last_name":  "Yılmaz",
		"code":       "123456",
	})
	assert.Equal(t, 409, status)
	assert.Equal(t, "Bu e-posta adresi zaten kullanımda.", envelope["message"])
}

func TestRegisterEnforcesMailDomain(t *testing.T) {
	app, _ := setupAuthTest(t)
	config.AppConfig.AllowedMailDomain = "test.edu.tr"

	status, envelope := postJSON(t, app, "/auth/register", map[string]interface{}{
		"email":      "ayse@gmail.com",
		"password":   "gizlisifre",
		"first_name": "Ayşe",
		"last_name":  "Yılmaz",
		"code":       "123456",
	})
	assert.Equal(t, 422, status)

	errors := envelope["data"].(map[string]interface{})
	assert.Equal(t, "Geçerli bir kurum adresi giriniz.", errors["email"])
}

func TestLogin(t *testing.T) {
	app, db := setupAuthTest(t)

	hashed, err := bcrypt.GenerateFromPassword([]byte("gizlisifre"), 4)
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.User{
		Email:     "ayse@test.edu.tr",
		Password:  string(hashed),
		IsStudent: true,
	}).Error)

	status, envelope := postJSON(t, app, "/auth/login", map[string]interface{}{
		"email":    "ayse@test.edu.tr",
		"password": "gizlisifre",
	})
	require.Equal(t, 200, status)

	data := envelope["data"].(map[string]interface{})
	assert.NotEmpty(t, data["token"])

	var user models.User
	require.NoError(t, db.Where("email = ?", "ayse@test.edu.tr").First(&user).Error)
	assert.NotNil(t, user.LastLogin)

	status, _ = postJSON(t, app, "/auth/login", map[string]interface{}{
		"email":    "ayse@test.edu.tr",
		"password": "yanlissifre",
	})
	assert.Equal(t, 401, status)
}

func TestPasswordResetConfirm(t *testing.T) {
	app, db := setupAuthTest(t)

	hashed, err := bcrypt.GenerateFromPassword([]byte("eskisifre"), 4)
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.User{
		Email:    "ayse@test.edu.tr",
		Password: string(hashed),
	}).Error)
	seedOTP(t, db, "ayse@test.edu.tr", "123456")

	status, envelope := postJSON(t, app, "/auth/password-reset/confirm", map[string]interface{}{
		"email":        "ayse@test.edu.tr",
		"code":         "123456",
		"new_password": "yenisifre1",
	})
	require.Equal(t, 200, status)
	assert.Equal(t, "Şifreniz başarıyla sıfırlandı.", envelope["message"])

	var user models.User
	require.NoError(t, db.Where("email = ?", "ayse@test.edu.tr").First(&user).Error)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("yenisifre1")))
	assert.Error(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("eskisifre")))
}
