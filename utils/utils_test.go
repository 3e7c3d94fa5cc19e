package utils

import (
	"testing"
)

func TestGenerateOTP(t *testing.T) {
	otp := GenerateOTP()
	if len(otp) != 6 {
		t.Errorf("GenerateOTP() length = %d, want 6", len(otp))
	}
	for _, r := range otp {
		if r < '0' || r > '9' {
			t.Errorf("GenerateOTP() contains non-digit %q", r)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		name    string
		seconds uint
		want    string
	}{
		{"zero", 0, "0 saat 0 dakika"},
		{"under a minute", 59, "0 saat 0 dakika"},
		{"minutes only", 1800, "0 saat 30 dakika"},
		{"exact hour", 3600, "1 saat 0 dakika"},
		{"mixed", 3720, "1 saat 2 dakika"},
		{"multi hour", 7265, "2 saat 1 dakika"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatDuration(tt.seconds); got != tt.want {
				t.Errorf("FormatDuration(%d) = %q, want %q", tt.seconds, got, tt.want)
			}
		})
	}
}
