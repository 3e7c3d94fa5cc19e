package content

import (
	"time"

	"gorm.io/gorm"
)

// WeeklyContent is one week of the course. Week numbers are unique and
// form the sequential unlock chain.
type WeeklyContent struct {
	gorm.Model
	WeekNumber  int    `json:"week_number" gorm:"uniqueIndex;not null"`
	Title       string `json:"title"`
	Description string `json:"description" gorm:"type:text"`

	// Students cannot open the week before this date. Null means no gate.
	ReleaseDate *time.Time `json:"release_date"`

	// Intro fields are authoritative only on week 1; detail responses for
	// every week copy week 1's values.
	IntroTitle       string `json:"intro_title" gorm:"default:'Genel Tanıtım'"`
	IntroVideoURL    string `json:"intro_video_url"`
	IntroDescription string `json:"intro_description" gorm:"type:text"`

	IsDeleted bool `gorm:"default:false"`
}

// IntroVideoCompletion is a single per-student flag for the system-wide
// intro video. Watching it once covers every week.
type IntroVideoCompletion struct {
	gorm.Model
	UserID    uint      `json:"user_id" gorm:"uniqueIndex;not null"`
	IsWatched bool      `json:"is_watched" gorm:"default:false"`
	WatchedAt time.Time `json:"watched_at"`
}

// Flashcard is a question/answer study card attached to a week
type Flashcard struct {
	gorm.Model
	WeeklyContentID uint   `json:"weekly_content_id" gorm:"index;not null"`
	Question        string `json:"question" gorm:"type:text"`
	Answer          string `json:"answer" gorm:"type:text"`
	OrderIndex      int    `json:"order" gorm:"default:0"`
}
