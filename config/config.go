package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port      string
	JWTKey    string
	SaltRound int

	EmailSender       string
	Password          string // SMTP App Password
	AllowedMailDomain string // e.g. "bingol.edu.tr"; empty allows any domain

	GeminiApiKey  string
	GeminiApiUrl  string
	GeminiModel   string
	GeminiTimeout int // seconds

	// PointsTenAwardsOne mirrors an older grading policy where a material
	// worth exactly 10 points paid out a single point instead.
	PointsTenAwardsOne bool

	// IntroGateEnabled locks every week until the student has watched the
	// general intro video. Off until product settles the behaviour.
	IntroGateEnabled bool
}

// AppConfig is a global variable to access configuration
var AppConfig *Config

// LoadConfig initializes configuration from environment variables or defaults
func LoadConfig() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found. Using system environment variables.")
	}

	AppConfig = &Config{
		Port:      getEnv("PORT", "3000"),
		JWTKey:    getEnv("JWT_SECRET_KEY", "defaultSecret"),
		SaltRound: getEnvInt("SALT_ROUND", 10),

		EmailSender:       getEnv("EMAIL_SENDER", "defaultSecret"),
		Password:          getEnv("PASSWORD", "defaultSecret"),
		AllowedMailDomain: getEnv("ALLOWED_MAIL_DOMAIN", ""),

		GeminiApiKey:  getEnv("GEMINI_API_KEY", ""),
		GeminiApiUrl:  getEnv("GEMINI_API_URL", "https://generativelanguage.googleapis.com/v1beta"),
		GeminiModel:   getEnv("GEMINI_MODEL", "gemini-2.5-pro"),
		GeminiTimeout: getEnvInt("GEMINI_TIMEOUT_SECONDS", 30),

		PointsTenAwardsOne: getEnvBool("POINTS_TEN_AWARDS_ONE", false),
		IntroGateEnabled:   getEnvBool("INTRO_GATE_ENABLED", false),
	}

	// Validate critical configuration
	if AppConfig.JWTKey == "defaultSecret" {
		log.Println("Warning: Using default JWT_SECRET_KEY. Update it in your environment.")
	}
	if AppConfig.GeminiApiKey == "" {
		log.Println("Warning: GEMINI_API_KEY is empty. AI features will return fallback responses.")
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt retrieves an environment variable as an integer or returns the default integer value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to int: %v", key, err)
		return defaultValue
	}
	return intValue
}

// getEnvBool retrieves an environment variable as a boolean or returns the default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to bool: %v", key, err)
		return defaultValue
	}
	return boolValue
}
