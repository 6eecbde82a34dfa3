package session

import (
	"strconv"
	"time"
)

type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusEnded     Status = "ended"
)

// Record is the registry view of an interview, kept in Redis so restarts and
// other instances can enumerate live interviews. The turn-level state lives
// in the in-process session.
type Record struct {
	ID             string    `json:"id"`
	Status         Status    `json:"status"`
	TotalQuestions int       `json:"total_questions"`
	QuestionIndex  int       `json:"question_index"`
	StartedAt      time.Time `json:"started_at"`
	LastActiveAt   time.Time `json:"last_active_at"`
}

func (r *Record) RedisKey() string {
	return "interview:" + r.ID
}

type Metrics struct {
	Date           string `json:"date"`
	Hour           int    `json:"hour"`
	Sessions       int64  `json:"sessions"`
	JudgeChecks    int64  `json:"judge_checks"`
	Completed      int64  `json:"completed"`
	NoAnswer       int64  `json:"no_answer"`
	ForcedComplete int64  `json:"forced_complete"`
}

func MetricsRedisKey(date string, hour int) string {
	return "interview:metrics:" + date + ":" + strconv.Itoa(hour)
}
