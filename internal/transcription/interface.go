package transcription

// Recognizer is a live bidirectional speech-to-text stream. SendAudio pushes
// raw PCM frames; transcripts arrive through the Callbacks passed at dial.
type Recognizer interface {
	SendAudio(pcm []byte) error
	IsConnected() bool
	Close() error
}
