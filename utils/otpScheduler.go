package utils

import (
	"lms/database"
	"lms/models"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// purgeExpiredOTPs deletes verification codes past their expiry
func purgeExpiredOTPs() {
	db := database.Database.Db

	result := db.Unscoped().Where("expires_at < ?", time.Now()).Delete(&models.EmailOTP{})
	if result.Error != nil {
		log.Printf("[OTP-SCHEDULER] Error purging expired OTPs: %v", result.Error)
		return
	}

	if result.RowsAffected > 0 {
		log.Printf("[OTP-SCHEDULER] Purged %d expired OTP record(s)", result.RowsAffected)
	}
}

// StartOTPScheduler runs the OTP cleanup every hour
func StartOTPScheduler() {
	c := cron.New()

	if _, err := c.AddFunc("@hourly", purgeExpiredOTPs); err != nil {
		log.Printf("[OTP-SCHEDULER] Failed to register cleanup job: %v", err)
		return
	}

	c.Start()
	log.Println("[OTP-SCHEDULER] Started. Expired codes are purged hourly.")
}
