package content

import "gorm.io/gorm"

// Material content types
const (
	MaterialVideo   = "video"
	MaterialPodcast = "podcast"
	MaterialQuiz    = "quiz"
	MaterialPdf     = "pdf"
)

// Material is a single learning item inside a week. A material of kind
// "quiz" owns exactly one Quiz.
type Material struct {
	gorm.Model
	WeeklyContentID uint   `json:"weekly_content_id" gorm:"index;not null"`
	ContentType     string `json:"content_type" gorm:"size:10;not null"` // video, podcast, quiz, pdf
	Title           string `json:"title"`
	EmbedURL        string `json:"embed_url"` // video/podcast embed code or PDF download link
	PointValue      uint   `json:"point_value" gorm:"default:0"`
	IsDeleted       bool   `gorm:"default:false"`
}

// CompletedMaterial marks a material done for one student in one attempt
// round. Re-completion in the same round is idempotent; rows from earlier
// rounds are kept for reporting.
type CompletedMaterial struct {
	gorm.Model
	UserID       uint `json:"user_id" gorm:"not null;uniqueIndex:idx_completion_round"`
	MaterialID   uint `json:"material_id" gorm:"not null;uniqueIndex:idx_completion_round"`
	AttemptRound int  `json:"attempt_round" gorm:"not null;default:1;uniqueIndex:idx_completion_round"`
}
