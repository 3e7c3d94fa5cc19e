package content

import (
	"time"

	"gorm.io/gorm"
)

// StudentProgress is the per-student, per-week tracker row. Percentage
// and IsCompleted are always derived from completed-material counts in
// the current round, never set independently.
type StudentProgress struct {
	gorm.Model
	UserID               uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_student_week"`
	WeeklyContentID      uint      `json:"weekly_content_id" gorm:"not null;uniqueIndex:idx_student_week"`
	CompletionPercentage float64   `json:"completion_percentage" gorm:"default:0"`
	IsCompleted          bool      `json:"is_completed" gorm:"default:false"`
	CurrentAttemptRound  int       `json:"current_attempt_round" gorm:"default:1"` // 1, promoted once to 2
	LastAccessed         time.Time `json:"last_accessed"`
}

// TimeTracking accumulates time-on-material in whole seconds, one row
// per (student, week, material, round, calendar day). The counter only
// ever grows; round 1 rows are untouched by a round promotion.
type TimeTracking struct {
	gorm.Model
	UserID          uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_time_slot"`
	WeeklyContentID uint      `json:"weekly_content_id" gorm:"not null;uniqueIndex:idx_time_slot"`
	MaterialID      uint      `json:"material_id" gorm:"not null;uniqueIndex:idx_time_slot"`
	AttemptRound    int       `json:"attempt_round" gorm:"not null;default:1;uniqueIndex:idx_time_slot"`
	Date            time.Time `json:"date" gorm:"type:date;not null;uniqueIndex:idx_time_slot"`
	DurationSeconds uint      `json:"duration_seconds" gorm:"default:0"`
}

// StudentQuestion stores a question the student asked the AI assistant,
// attached to a week for the analytics breakdown
type StudentQuestion struct {
	gorm.Model
	UserID          uint   `json:"user_id" gorm:"index;not null"`
	WeeklyContentID uint   `json:"weekly_content_id" gorm:"index;not null"`
	QuestionText    string `json:"question_text" gorm:"type:text"`
}
