package dto

import "time"

type CreateInterviewResponse struct {
	SessionID      string `json:"session_id"`
	TotalQuestions int    `json:"total_questions"`
}

type InterviewInfo struct {
	SessionID      string `json:"session_id"`
	QuestionIndex  int    `json:"question_index"`
	TotalQuestions int    `json:"total_questions"`
	State          string `json:"state"`
}

type InterviewListResponse struct {
	Interviews []InterviewInfo `json:"interviews"`
	Count      int             `json:"count"`
}

type QuestionResponse struct {
	Question string `json:"question,omitempty"`
	Number   int    `json:"number"`
	Total    int    `json:"total"`
	Done     bool   `json:"done"`
}

type TranscriptResponse struct {
	QuestionNumber int       `json:"question_number"`
	Question       string    `json:"question"`
	Segments       []string  `json:"segments"`
	FullAnswer     string    `json:"full_answer"`
	WordCount      int       `json:"word_count"`
	Reason         string    `json:"reason"`
	CreatedAt      time.Time `json:"created_at"`
}

type TranscriptListResponse struct {
	SessionID   string               `json:"session_id"`
	Transcripts []TranscriptResponse `json:"transcripts"`
}

type MetricsResponse struct {
	Date           string `json:"date"`
	Hour           int    `json:"hour"`
	Sessions       int64  `json:"sessions"`
	JudgeChecks    int64  `json:"judge_checks"`
	Completed      int64  `json:"completed"`
	NoAnswer       int64  `json:"no_answer"`
	ForcedComplete int64  `json:"forced_complete"`
}

type MetricsListResponse struct {
	Hours   int               `json:"hours"`
	Metrics []MetricsResponse `json:"metrics"`
}
