package interview

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/eleven-am/interview-backend/internal/judge"
	"github.com/eleven-am/interview-backend/internal/synthesis"
	"github.com/eleven-am/interview-backend/internal/transcription"
	"github.com/eleven-am/interview-backend/internal/transport"
	"github.com/google/uuid"
)

const (
	tickPeriod         = 400 * time.Millisecond
	healthReportPeriod = 5 * time.Second
	intentBufferSize   = 64
)

// Sink durably records a concluded question. Failures are logged and the
// interview proceeds; losing one record must not stall the candidate.
type Sink interface {
	Record(ctx context.Context, entry SinkEntry) error
}

type SinkEntry struct {
	SessionID      string
	QuestionNumber int
	Question       string
	Segments       []string
	FullAnswer     string
	WordCount      int
	Reason         string
}

// Metrics counts notable session events. Implementations must be safe for
// concurrent use; a nil Metrics disables counting.
type Metrics interface {
	QuestionConcluded(ctx context.Context, reason string)
	JudgeChecked(ctx context.Context)
}

// RecognizerFactory dials the upstream recognizer for one exchange.
type RecognizerFactory func(cb transcription.Callbacks) (transcription.Recognizer, error)

type SessionConfig struct {
	Questions         []string
	Engine            EngineConfig
	FrameThreshold    int
	Judge             judge.Judge
	Limiter           CheckLimiter
	Sink              Sink
	Metrics           Metrics
	Synthesizer       synthesis.Synthesizer
	RecognizerFactory RecognizerFactory
	Log               *slog.Logger
}

// Session owns one interview attempt: the question cursor, the turn engine,
// the frame buffer and the duplex relay of one live exchange. All turn state
// mutations funnel through the run loop; the relay loops only emit intents.
type Session struct {
	id        string
	questions []string

	engine         *Engine
	monitor        *HealthMonitor
	timer          *AdaptiveTimer
	frames         *FrameBuffer
	frameThreshold int

	sink         Sink
	metrics      Metrics
	synth        synthesis.Synthesizer
	dialUpstream RecognizerFactory
	log          *slog.Logger

	mu              sync.Mutex
	questionIndex   int
	currentQuestion string
	conn            transport.Connection
	exchangeCtx     context.Context
	exchangeCancel  context.CancelFunc
}

type intent struct {
	transcript *transcription.TranscriptEvent
	control    transport.ControlType
}

func NewSession(cfg SessionConfig) *Session {
	log := cfg.Log
	if log == nil {
		log = slog.Default()
	}

	id := uuid.New().String()
	monitor := NewHealthMonitor()

	s := &Session{
		id:             id,
		questions:      cfg.Questions,
		monitor:        monitor,
		timer:          NewAdaptiveTimer(),
		frames:         NewFrameBuffer(cfg.FrameThreshold),
		frameThreshold: cfg.FrameThreshold,
		sink:           cfg.Sink,
		metrics:        cfg.Metrics,
		synth:          cfg.Synthesizer,
		dialUpstream:   cfg.RecognizerFactory,
		log:            log.With("session_id", id),
	}

	limiter := cfg.Limiter
	if limiter == nil {
		limiter = judge.NewThrottle(0)
	}

	s.engine = NewEngine(cfg.Engine, cfg.Judge, limiter, monitor, EngineCallbacks{
		OnChecking:     s.onChecking,
		OnWaitContinue: s.onWaitContinue,
	})
	return s
}

func (s *Session) ID() string          { return s.id }
func (s *Session) TotalQuestions() int { return len(s.questions) }

func (s *Session) QuestionIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.questionIndex
}

func (s *Session) CurrentQuestion() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentQuestion
}

func (s *Session) Engine() *Engine { return s.engine }

// MarkLiveness records a transport-level liveness signal, typically a
// websocket pong.
func (s *Session) MarkLiveness() { s.monitor.MarkLivenessAck() }

// NextQuestion advances the cursor and resets the engine for the returned
// question. The second value is the 1-based question number; the third is
// false once the list is exhausted.
func (s *Session) NextQuestion() (string, int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.questionIndex >= len(s.questions) {
		return "", s.questionIndex, false
	}

	question := s.questions[s.questionIndex]
	s.questionIndex++
	s.currentQuestion = question
	s.frames = NewFrameBuffer(s.frameThreshold)
	s.engine.BeginQuestion(question)

	s.log.Info("question started", "number", s.questionIndex, "total", len(s.questions))
	return question, s.questionIndex, true
}

// SynthesizeCurrent renders the current question. Callers treat an error as
// "no audio" and run the question from text.
func (s *Session) SynthesizeCurrent(ctx context.Context) (*synthesis.Result, error) {
	question := s.CurrentQuestion()
	if question == "" {
		return nil, fmt.Errorf("no current question")
	}
	if s.synth == nil {
		return nil, fmt.Errorf("synthesizer not configured")
	}
	return s.synth.Synthesize(ctx, synthesis.Request{Text: question})
}

type HealthSnapshot struct {
	HealthScore    float64 `json:"health_score"`
	NetworkLatency float64 `json:"network_latency"`
	BufferedFrames int     `json:"audio_buffer_size"`
	IsListening    bool    `json:"is_listening"`
}

func (s *Session) HealthSnapshot() HealthSnapshot {
	s.mu.Lock()
	frames := s.frames
	s.mu.Unlock()

	return HealthSnapshot{
		HealthScore:    s.monitor.HealthScore(),
		NetworkLatency: s.timer.NetworkLatency().Seconds(),
		BufferedFrames: frames.Len(),
		IsListening:    s.engine.IsListening(),
	}
}

// RunExchange binds a client connection, dials the upstream recognizer and
// runs the duplex relay until either side closes. The recognizer handle is
// released on return; the session itself stays queryable.
func (s *Session) RunExchange(ctx context.Context, conn transport.Connection) error {
	exCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	intents := make(chan intent, intentBufferSize)
	upstreamDone := make(chan struct{})
	var closeOnce sync.Once

	recognizer, err := s.dialUpstream(transcription.Callbacks{
		OnTranscript: func(evt transcription.TranscriptEvent) {
			s.monitor.MarkLivenessAck()
			select {
			case intents <- intent{transcript: &evt}:
			case <-exCtx.Done():
			}
		},
		OnClose: func() {
			closeOnce.Do(func() { close(upstreamDone) })
		},
		OnError: func(err error) {
			s.log.Error("recognizer stream error", "error", err)
		},
	})
	if err != nil {
		s.log.Error("recognizer connect failed", "error", err)
		_ = conn.Send(ctx, transport.ServerEvent{
			Type:    string(transport.MessageTypeError),
			Payload: transport.ErrorEvent{Source: "recognizer", Message: err.Error()},
		})
		return err
	}
	defer recognizer.Close()

	s.mu.Lock()
	s.conn = conn
	s.exchangeCtx = exCtx
	s.exchangeCancel = cancel
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.conn = nil
		s.exchangeCtx = nil
		s.exchangeCancel = nil
		s.mu.Unlock()
	}()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		defer cancel()
		s.inboundLoop(exCtx, conn, recognizer, intents)
	}()
	go func() {
		defer wg.Done()
		defer cancel()
		s.runLoop(exCtx, intents, upstreamDone)
	}()
	wg.Wait()

	s.log.Info("exchange ended")
	return nil
}

// inboundLoop relays client audio upstream and hands control messages to the
// run loop. Audio only flows while the engine is listening; every inbound
// frame stamps the health monitor regardless.
func (s *Session) inboundLoop(ctx context.Context, conn transport.Connection, recognizer transcription.Recognizer, intents chan<- intent) {
	for {
		select {
		case <-ctx.Done():
			return

		case frame, ok := <-conn.AudioIn():
			if !ok {
				return
			}
			s.monitor.MarkAudioReceived()
			if !s.engine.IsListening() {
				continue
			}

			s.mu.Lock()
			frames := s.frames
			s.mu.Unlock()

			frames.AddFrame(frame)
			if !frames.ShouldSend() {
				continue
			}
			if err := recognizer.SendAudio(frames.Drain()); err != nil {
				s.log.Error("failed to send audio upstream", "error", err)
				return
			}

		case msg, ok := <-conn.Messages():
			if !ok {
				return
			}
			switch msg.Type {
			case transport.ControlStartListening, transport.ControlTTSFinished:
				select {
				case intents <- intent{control: msg.Type}:
				case <-ctx.Done():
					return
				}
			default:
				s.log.Warn("unknown control message", "type", msg.Type)
			}
		}
	}
}

// runLoop is the single owner of turn state: transcript and control intents,
// engine ticks and health reports all apply here, in order.
func (s *Session) runLoop(ctx context.Context, intents <-chan intent, upstreamDone <-chan struct{}) {
	ticker := time.NewTicker(tickPeriod)
	defer ticker.Stop()
	healthTicker := time.NewTicker(healthReportPeriod)
	defer healthTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-upstreamDone:
			s.log.Info("recognizer stream closed")
			return

		case it := <-intents:
			if it.transcript != nil {
				s.applyTranscript(ctx, *it.transcript)
			} else {
				s.applyControl(ctx, it.control)
			}

		case <-ticker.C:
			if conclusion := s.engine.Tick(ctx); conclusion != nil {
				s.concludeQuestion(ctx, conclusion)
			}

		case <-healthTicker.C:
			s.publishHealth(ctx)
		}
	}
}

func (s *Session) applyTranscript(ctx context.Context, evt transcription.TranscriptEvent) {
	if !s.engine.HandleTranscript(evt.Text, evt.IsFinal) {
		return
	}
	s.send(ctx, transport.ServerEvent{
		Type: string(transport.MessageTypeTranscript),
		Payload: transport.TranscriptEvent{
			Transcript: evt.Text,
			IsFinal:    evt.IsFinal,
			FullAnswer: s.engine.FullAnswer(),
			Live:       s.engine.LiveFragment(),
		},
	})
}

func (s *Session) applyControl(ctx context.Context, control transport.ControlType) {
	s.log.Info("control message", "type", control)
	s.engine.StartListening()
	s.send(ctx, transport.ServerEvent{
		Type: string(transport.MessageTypeRecordingStarted),
		Payload: transport.RecordingStartedEvent{
			Message: "Recording started - please speak your answer",
		},
	})
}

func (s *Session) publishHealth(ctx context.Context) {
	score := s.monitor.HealthScore()
	latency := LatencyForScore(score)
	s.timer.SetNetworkLatency(latency)

	s.send(ctx, transport.ServerEvent{
		Type: string(transport.MessageTypeHealthUpdate),
		Payload: transport.HealthUpdateEvent{
			HealthScore:    score,
			NetworkLatency: latency.Seconds(),
		},
	})
}

// concludeQuestion freezes the answer, records it and tells the client to
// move on. The sink call is synchronous; its failure is logged and the flow
// continues.
func (s *Session) concludeQuestion(ctx context.Context, conclusion *Conclusion) {
	s.mu.Lock()
	question := s.currentQuestion
	number := s.questionIndex
	s.mu.Unlock()

	s.log.Info("question concluded", "reason", conclusion.Reason, "words", conclusion.WordCount)

	if s.sink != nil {
		entry := SinkEntry{
			SessionID:      s.id,
			QuestionNumber: number,
			Question:       question,
			Segments:       conclusion.Segments,
			FullAnswer:     conclusion.FullAnswer,
			WordCount:      conclusion.WordCount,
			Reason:         string(conclusion.Reason),
		}
		if err := s.sink.Record(ctx, entry); err != nil {
			s.log.Error("failed to record transcript", "error", err)
		}
	}

	if s.metrics != nil {
		s.metrics.QuestionConcluded(ctx, string(conclusion.Reason))
	}

	s.send(ctx, transport.ServerEvent{
		Type: string(transport.MessageTypeMoveToNext),
		Payload: transport.MoveToNextEvent{
			Reason:  string(conclusion.Reason),
			Message: "Moving to next question",
		},
	})
}

func (s *Session) onChecking(healthScore float64) {
	ctx := s.currentCtx()
	if s.metrics != nil {
		s.metrics.JudgeChecked(ctx)
	}
	s.send(ctx, transport.ServerEvent{
		Type: string(transport.MessageTypeCheckingCompletion),
		Payload: transport.CheckingCompletionEvent{
			Message:     "Checking whether the answer is complete",
			HealthScore: healthScore,
		},
	})
}

func (s *Session) onWaitContinue(consecutiveWaits int) {
	s.send(s.currentCtx(), transport.ServerEvent{
		Type: string(transport.MessageTypeWaitContinue),
		Payload: transport.WaitContinueEvent{
			Message:          "Continue speaking",
			ConsecutiveWaits: consecutiveWaits,
		},
	})
}

func (s *Session) currentCtx() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.exchangeCtx != nil {
		return s.exchangeCtx
	}
	return context.Background()
}

// Close tears down any active exchange. The session stops relaying but its
// accumulated state stays readable until the manager drops it.
func (s *Session) Close() {
	s.mu.Lock()
	cancel := s.exchangeCancel
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// send delivers an event to the currently bound connection, if any. Between
// exchanges it is a no-op.
func (s *Session) send(ctx context.Context, evt transport.ServerEvent) {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return
	}
	if err := conn.Send(ctx, evt); err != nil {
		s.log.Error("failed to send event", "type", evt.Type, "error", err)
	}
}
