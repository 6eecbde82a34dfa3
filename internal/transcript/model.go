package transcript

import (
	"time"

	"github.com/eleven-am/interview-backend/internal/shared"
)

// Entry is one concluded question with the full accumulated answer.
type Entry struct {
	ID             string             `gorm:"primaryKey" json:"id"`
	SessionID      string             `gorm:"not null;index" json:"session_id"`
	QuestionNumber int                `gorm:"not null" json:"question_number"`
	Question       string             `gorm:"not null" json:"question"`
	Segments       shared.StringSlice `gorm:"type:text" json:"segments"`
	FullAnswer     string             `json:"full_answer"`
	WordCount      int                `json:"word_count"`
	Reason         string             `gorm:"not null" json:"reason"`
	CreatedAt      time.Time          `json:"created_at"`
}
