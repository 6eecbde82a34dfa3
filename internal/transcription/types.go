package transcription

import "time"

type Config struct {
	APIKey  string
	BaseURL string
	// KeepAliveInterval bounds how long the upstream socket sits idle
	// before we nudge it. Zero means the default of 5s.
	KeepAliveInterval time.Duration
}

// SessionOptions mirror the recognizer's streaming query parameters. The
// defaults are tuned for interview answers: interim results on, aggressive
// endpointing, linear PCM at 16 kHz mono.
type SessionOptions struct {
	Model          string
	Language       string
	Encoding       string
	SampleRate     int
	Channels       int
	SmartFormat    bool
	InterimResults bool
	NoDelay        bool
	EndpointingMs  int
	VADEvents      bool
}

func DefaultSessionOptions() SessionOptions {
	return SessionOptions{
		Model:          "nova-2",
		Language:       "en-US",
		Encoding:       "linear16",
		SampleRate:     16000,
		Channels:       1,
		SmartFormat:    true,
		InterimResults: true,
		NoDelay:        true,
		EndpointingMs:  100,
		VADEvents:      true,
	}
}

type TranscriptEvent struct {
	Text       string
	IsFinal    bool
	Confidence float64
}

type Callbacks struct {
	OnOpen       func()
	OnTranscript func(event TranscriptEvent)
	OnClose      func()
	OnError      func(error)
}
