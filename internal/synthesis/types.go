package synthesis

import "time"

type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

type Request struct {
	Text string
}

// Result is the synthesized question audio. MimeType is whatever the
// provider returned, wav by default.
type Result struct {
	Audio    []byte
	MimeType string
}
