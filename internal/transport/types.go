package transport

import "encoding/json"

type MessageType string

const (
	MessageTypeTranscript         MessageType = "transcript"
	MessageTypeRecordingStarted   MessageType = "recording_started"
	MessageTypeCheckingCompletion MessageType = "checking_completion"
	MessageTypeWaitContinue       MessageType = "wait_continue"
	MessageTypeMoveToNext         MessageType = "move_to_next"
	MessageTypeHealthUpdate       MessageType = "health_update"
	MessageTypeError              MessageType = "error"
)

type ControlType string

const (
	ControlStartListening ControlType = "start_listening"
	ControlTTSFinished    ControlType = "tts_finished"
)

type ServerEvent struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// ClientEnvelope is a text control frame from the client. Binary frames
// carry raw audio and never pass through here.
type ClientEnvelope struct {
	Type ControlType `json:"type"`
}

func ParseControl(data []byte) (ClientEnvelope, error) {
	var env ClientEnvelope
	err := json.Unmarshal(data, &env)
	return env, err
}

type TranscriptEvent struct {
	Transcript string `json:"transcript"`
	IsFinal    bool   `json:"is_final"`
	FullAnswer string `json:"full_answer"`
	Live       string `json:"live"`
}

type RecordingStartedEvent struct {
	Message string `json:"message"`
}

type CheckingCompletionEvent struct {
	Message     string  `json:"message"`
	HealthScore float64 `json:"health_score"`
}

type WaitContinueEvent struct {
	Message          string `json:"message"`
	ConsecutiveWaits int    `json:"consecutive_waits"`
}

type MoveToNextEvent struct {
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

type HealthUpdateEvent struct {
	HealthScore    float64 `json:"health_score"`
	NetworkLatency float64 `json:"network_latency"`
}

type ErrorEvent struct {
	Source  string `json:"source"`
	Message string `json:"message"`
}
