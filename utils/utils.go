package utils

import (
	"fmt"
	"math/rand"
	"time"
)

// GenerateOTP generates a 6-digit OTP
func GenerateOTP() string {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	otp := ""
	for i := 0; i < 6; i++ {
		otp += fmt.Sprintf("%d", rng.Intn(10))
	}
	return otp
}

// FormatDuration renders seconds as "X saat Y dakika" for analytics output
func FormatDuration(totalSeconds uint) string {
	return fmt.Sprintf("%d saat %d dakika", totalSeconds/3600, (totalSeconds%3600)/60)
}
