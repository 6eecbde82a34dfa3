package interview

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/eleven-am/interview-backend/internal/judge"
	"github.com/eleven-am/interview-backend/internal/synthesis"
	"github.com/eleven-am/interview-backend/internal/transcription"
	"github.com/eleven-am/interview-backend/internal/transport"
)

type fakeConn struct {
	mu     sync.Mutex
	events []transport.ServerEvent
	msgs   chan transport.ClientEnvelope
	audio  chan []byte
	closed bool
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		msgs:  make(chan transport.ClientEnvelope, 8),
		audio: make(chan []byte, 64),
	}
}

func (c *fakeConn) Send(_ context.Context, evt transport.ServerEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, evt)
	return nil
}

func (c *fakeConn) Messages() <-chan transport.ClientEnvelope { return c.msgs }
func (c *fakeConn) AudioIn() <-chan []byte                    { return c.audio }

func (c *fakeConn) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.closed
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) eventsOfType(typ transport.MessageType) []transport.ServerEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []transport.ServerEvent
	for _, e := range c.events {
		if e.Type == string(typ) {
			out = append(out, e)
		}
	}
	return out
}

type fakeRecognizer struct {
	mu     sync.Mutex
	sent   [][]byte
	closed bool
}

func (r *fakeRecognizer) SendAudio(pcm []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, pcm)
	return nil
}

func (r *fakeRecognizer) IsConnected() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return !r.closed
}

func (r *fakeRecognizer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func (r *fakeRecognizer) sentCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sent)
}

type fakeSink struct {
	mu      sync.Mutex
	entries []SinkEntry
}

func (s *fakeSink) Record(_ context.Context, entry SinkEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	return nil
}

func (s *fakeSink) recorded() []SinkEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]SinkEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

type fakeSessionMetrics struct {
	mu        sync.Mutex
	concluded []string
	checks    int
}

func (m *fakeSessionMetrics) QuestionConcluded(_ context.Context, reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.concluded = append(m.concluded, reason)
}

func (m *fakeSessionMetrics) JudgeChecked(_ context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checks++
}

type fakeSynth struct {
	lastText string
}

func (s *fakeSynth) Synthesize(_ context.Context, req synthesis.Request) (*synthesis.Result, error) {
	s.lastText = req.Text
	return &synthesis.Result{Audio: []byte("audio"), MimeType: "audio/mpeg"}, nil
}

type staticJudge struct{ verdict judge.Verdict }

func (j staticJudge) Judge(context.Context, string, string, string) judge.Verdict {
	return j.verdict
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestSession_QuestionCursor(t *testing.T) {
	s := NewSession(SessionConfig{
		Questions: []string{"first", "second"},
		Engine:    DefaultEngineConfig(),
		Judge:     staticJudge{judge.VerdictWait},
	})

	if s.TotalQuestions() != 2 {
		t.Fatalf("TotalQuestions() = %d", s.TotalQuestions())
	}
	if s.CurrentQuestion() != "" {
		t.Errorf("CurrentQuestion() = %q before first advance", s.CurrentQuestion())
	}

	q, n, ok := s.NextQuestion()
	if !ok || q != "first" || n != 1 {
		t.Fatalf("NextQuestion() = %q, %d, %v", q, n, ok)
	}
	if s.Engine().Question() != "first" {
		t.Errorf("engine question = %q", s.Engine().Question())
	}

	q, n, ok = s.NextQuestion()
	if !ok || q != "second" || n != 2 {
		t.Fatalf("NextQuestion() = %q, %d, %v", q, n, ok)
	}

	if _, _, ok := s.NextQuestion(); ok {
		t.Error("expected exhausted question list")
	}
}

func TestSession_SynthesizeCurrent(t *testing.T) {
	synth := &fakeSynth{}
	s := NewSession(SessionConfig{
		Questions:   []string{"describe goroutines"},
		Engine:      DefaultEngineConfig(),
		Judge:       staticJudge{judge.VerdictWait},
		Synthesizer: synth,
	})

	if _, err := s.SynthesizeCurrent(context.Background()); err == nil {
		t.Error("expected error before any question is active")
	}

	s.NextQuestion()
	result, err := s.SynthesizeCurrent(context.Background())
	if err != nil {
		t.Fatalf("SynthesizeCurrent() error = %v", err)
	}
	if result.MimeType != "audio/mpeg" {
		t.Errorf("MimeType = %q", result.MimeType)
	}
	if synth.lastText != "describe goroutines" {
		t.Errorf("synthesized %q", synth.lastText)
	}
}

func TestSession_ExchangeRelaysAudioAndTranscripts(t *testing.T) {
	recognizer := &fakeRecognizer{}
	cbCh := make(chan transcription.Callbacks, 1)

	s := NewSession(SessionConfig{
		Questions:      []string{"q1"},
		Engine:         DefaultEngineConfig(),
		FrameThreshold: 2,
		Judge:          staticJudge{judge.VerdictWait},
		RecognizerFactory: func(cb transcription.Callbacks) (transcription.Recognizer, error) {
			cbCh <- cb
			return recognizer, nil
		},
	})
	s.NextQuestion()

	conn := newFakeConn()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = s.RunExchange(ctx, conn)
	}()
	callbacks := <-cbCh

	// Audio before listening starts is dropped.
	conn.audio <- []byte{1, 2}
	conn.audio <- []byte{3, 4}

	conn.msgs <- transport.ClientEnvelope{Type: transport.ControlTTSFinished}
	waitFor(t, 2*time.Second, func() bool {
		return len(conn.eventsOfType(transport.MessageTypeRecordingStarted)) > 0
	})
	waitFor(t, 2*time.Second, s.Engine().IsListening)

	conn.audio <- []byte{5, 6}
	conn.audio <- []byte{7, 8}
	waitFor(t, 2*time.Second, func() bool { return recognizer.sentCount() == 1 })

	callbacks.OnTranscript(transcription.TranscriptEvent{Text: "hello there", IsFinal: true})
	waitFor(t, 2*time.Second, func() bool {
		return len(conn.eventsOfType(transport.MessageTypeTranscript)) > 0
	})

	evt := conn.eventsOfType(transport.MessageTypeTranscript)[0]
	payload, ok := evt.Payload.(transport.TranscriptEvent)
	if !ok {
		t.Fatalf("unexpected payload type %T", evt.Payload)
	}
	if payload.FullAnswer != "hello there" || !payload.IsFinal {
		t.Errorf("payload = %+v", payload)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("RunExchange did not stop on context cancel")
	}
	if recognizer.IsConnected() {
		t.Error("expected recognizer closed after exchange")
	}
}

func TestSession_ConclusionRecordsAndNotifies(t *testing.T) {
	sink := &fakeSink{}
	metrics := &fakeSessionMetrics{}

	cfg := DefaultEngineConfig()
	cfg.InitialPause = 50 * time.Millisecond

	s := NewSession(SessionConfig{
		Questions: []string{"only question"},
		Engine:    cfg,
		Judge:     staticJudge{judge.VerdictComplete},
		Sink:      sink,
		Metrics:   metrics,
		RecognizerFactory: func(cb transcription.Callbacks) (transcription.Recognizer, error) {
			return &fakeRecognizer{}, nil
		},
	})
	s.NextQuestion()

	conn := newFakeConn()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() { _ = s.RunExchange(ctx, conn) }()

	conn.msgs <- transport.ClientEnvelope{Type: transport.ControlStartListening}
	waitFor(t, 2*time.Second, s.Engine().IsListening)

	s.Engine().HandleTranscript("the complete answer", true)

	waitFor(t, 3*time.Second, func() bool { return len(sink.recorded()) == 1 })

	entry := sink.recorded()[0]
	if entry.SessionID != s.ID() {
		t.Errorf("entry session = %q, want %q", entry.SessionID, s.ID())
	}
	if entry.QuestionNumber != 1 || entry.Question != "only question" {
		t.Errorf("entry = %+v", entry)
	}
	if entry.Reason != string(ReasonComplete) || entry.FullAnswer != "the complete answer" {
		t.Errorf("entry = %+v", entry)
	}

	waitFor(t, 2*time.Second, func() bool {
		return len(conn.eventsOfType(transport.MessageTypeMoveToNext)) > 0
	})
	if len(conn.eventsOfType(transport.MessageTypeCheckingCompletion)) == 0 {
		t.Error("expected a checking_completion event before conclusion")
	}

	metrics.mu.Lock()
	defer metrics.mu.Unlock()
	if metrics.checks == 0 {
		t.Error("expected judge check counted")
	}
	if len(metrics.concluded) != 1 || metrics.concluded[0] != string(ReasonComplete) {
		t.Errorf("concluded metrics = %v", metrics.concluded)
	}
}

func TestSession_RecognizerDialFailure(t *testing.T) {
	dialErr := errors.New("upstream unavailable")
	s := NewSession(SessionConfig{
		Questions: []string{"q"},
		Engine:    DefaultEngineConfig(),
		Judge:     staticJudge{judge.VerdictWait},
		RecognizerFactory: func(cb transcription.Callbacks) (transcription.Recognizer, error) {
			return nil, dialErr
		},
	})
	s.NextQuestion()

	conn := newFakeConn()
	if err := s.RunExchange(context.Background(), conn); !errors.Is(err, dialErr) {
		t.Fatalf("RunExchange() error = %v, want %v", err, dialErr)
	}

	events := conn.eventsOfType(transport.MessageTypeError)
	if len(events) != 1 {
		t.Fatalf("expected one error event, got %d", len(events))
	}
}
