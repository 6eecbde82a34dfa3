package question

import "time"

type Question struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	Position  int       `gorm:"not null;uniqueIndex" json:"position"`
	Text      string    `gorm:"not null" json:"text"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
