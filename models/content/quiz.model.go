package content

import "gorm.io/gorm"

// Quiz is the exam attached to a material of kind "quiz"
type Quiz struct {
	gorm.Model
	MaterialID  uint   `json:"material_id" gorm:"uniqueIndex;not null"`
	Title       string `json:"title"`
	Description string `json:"description" gorm:"type:text"`
}

// QuizQuestion is one question inside a quiz, ordered by OrderIndex
type QuizQuestion struct {
	gorm.Model
	QuizID       uint   `json:"quiz_id" gorm:"index;not null"`
	QuestionText string `json:"question_text" gorm:"type:text"`
	OrderIndex   int    `json:"order" gorm:"default:0"`
}

// QuizOption is one answer choice of a question
type QuizOption struct {
	gorm.Model
	QuestionID uint   `json:"question_id" gorm:"index;not null"`
	OptionText string `json:"option_text"`
	IsCorrect  bool   `json:"is_correct" gorm:"default:false"`
}

// StudentQuizAttempt is the overall result of one submission. The unique
// index serialises duplicate submissions for the same round.
type StudentQuizAttempt struct {
	gorm.Model
	UserID         uint `json:"user_id" gorm:"not null;uniqueIndex:idx_attempt_round"`
	QuizID         uint `json:"quiz_id" gorm:"not null;uniqueIndex:idx_attempt_round"`
	AttemptRound   int  `json:"attempt_round" gorm:"not null;default:1;uniqueIndex:idx_attempt_round"`
	Score          int  `json:"score"`
	CorrectAnswers int  `json:"correct_answers"`
	WrongAnswers   int  `json:"wrong_answers"`
}

// StudentAnswer is the answer given to one question within an attempt.
// IsCorrect is snapshotted at submission time and never re-evaluated,
// even if the option is edited later.
type StudentAnswer struct {
	gorm.Model
	AttemptID        uint `json:"attempt_id" gorm:"index;not null"`
	QuestionID       uint `json:"question_id" gorm:"not null"`
	SelectedOptionID uint `json:"selected_option_id" gorm:"not null"`
	IsCorrect        bool `json:"is_correct"`
}
