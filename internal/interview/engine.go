package interview

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/eleven-am/interview-backend/internal/judge"
)

type State string

const (
	StateIdle          State = "idle"
	StateListening     State = "listening"
	StateAwaitingCheck State = "awaiting_check"
	StateChecking      State = "checking"
	StateConcluded     State = "concluded"
)

type Reason string

const (
	ReasonComplete       Reason = "complete"
	ReasonNoAnswer       Reason = "no_answer"
	ReasonForcedComplete Reason = "forced_complete"
)

// CheckLimiter throttles external completion checks. A denied call is
// backpressure, not a missed check: the next tick past the pause threshold
// asks again.
type CheckLimiter interface {
	ShouldCheckNow() bool
}

type EngineConfig struct {
	InitialPause         time.Duration
	NoSpeechTimeout      time.Duration
	PauseIncrement       time.Duration
	PauseCeiling         time.Duration
	AbsoluteSilenceLimit time.Duration
	MaxConsecutiveWaits  int
	MinHealthScore       float64

	// Clock overrides time.Now for tests.
	Clock func() time.Time
}

func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		InitialPause:         2 * time.Second,
		NoSpeechTimeout:      8 * time.Second,
		PauseIncrement:       1 * time.Second,
		PauseCeiling:         6 * time.Second,
		AbsoluteSilenceLimit: 15 * time.Second,
		MaxConsecutiveWaits:  2,
		MinHealthScore:       0.5,
	}
}

type EngineCallbacks struct {
	// OnChecking fires just before an external judge call goes out.
	OnChecking func(healthScore float64)
	// OnWaitContinue fires after a WAIT verdict that did not force a
	// conclusion.
	OnWaitContinue func(consecutiveWaits int)
}

// Conclusion freezes the answer at the moment a question resolves.
type Conclusion struct {
	Reason     Reason
	Segments   []string
	FullAnswer string
	WordCount  int
}

// Engine is the turn-taking state machine for one session. All transitions
// happen on Tick or on the transcript/control paths, which the owning
// session serializes through a single run loop; the mutex only covers
// read-side accessors from other goroutines.
type Engine struct {
	cfg     EngineConfig
	cb      EngineCallbacks
	judge   judge.Judge
	limiter CheckLimiter
	monitor *HealthMonitor
	answer  *AnswerBuffer
	now     func() time.Time

	mu               sync.Mutex
	state            State
	question         string
	lastSpeech       time.Time
	answerStart      time.Time
	currentPause     time.Duration
	consecutiveWaits int
	meaningful       bool
}

func NewEngine(cfg EngineConfig, j judge.Judge, limiter CheckLimiter, monitor *HealthMonitor, cb EngineCallbacks) *Engine {
	now := cfg.Clock
	if now == nil {
		now = time.Now
	}
	return &Engine{
		cfg:          cfg,
		cb:           cb,
		judge:        j,
		limiter:      limiter,
		monitor:      monitor,
		answer:       NewAnswerBuffer(),
		now:          now,
		state:        StateIdle,
		currentPause: cfg.InitialPause,
	}
}

// BeginQuestion resets all per-question state. Listening stays off until the
// client reports question playback finished.
func (e *Engine) BeginQuestion(question string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.question = question
	e.state = StateIdle
	e.currentPause = e.cfg.InitialPause
	e.consecutiveWaits = 0
	e.meaningful = false
	e.lastSpeech = e.now()
	e.answerStart = e.now()
	e.answer.Reset()
}

func (e *Engine) StartListening() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = StateListening
	e.answerStart = e.now()
	e.lastSpeech = e.now()
}

func (e *Engine) listeningLocked() bool {
	switch e.state {
	case StateListening, StateAwaitingCheck, StateChecking:
		return true
	}
	return false
}

func (e *Engine) IsListening() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.listeningLocked()
}

func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *Engine) Question() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.question
}

func (e *Engine) CurrentPause() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.currentPause
}

func (e *Engine) ConsecutiveWaits() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.consecutiveWaits
}

func (e *Engine) HasMeaningfulSpeech() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.meaningful
}

func (e *Engine) FullAnswer() string   { return e.answer.FullAnswer() }
func (e *Engine) LiveFragment() string { return e.answer.Live() }

// HandleTranscript applies one recognizer event. Returns false when the
// event was ignored (not listening, or empty after trimming).
func (e *Engine) HandleTranscript(text string, isFinal bool) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.listeningLocked() {
		return false
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}

	hasWord := len(strings.Fields(text)) >= 1

	if isFinal {
		e.answer.AppendFinal(text)
		e.lastSpeech = e.now()
		if hasWord {
			e.meaningful = true
		}
		return true
	}

	e.answer.SetLive(text)
	if hasWord {
		e.lastSpeech = e.now()
		e.meaningful = true
	}
	return true
}

// Tick advances the turn decision by elapsed wall clock. It returns a
// non-nil Conclusion exactly when the current question resolves. The
// external judge call happens inline; the rate limiter plus the checking
// state guarantee it is never concurrent with itself for this session.
func (e *Engine) Tick(ctx context.Context) *Conclusion {
	e.mu.Lock()

	if !e.listeningLocked() || e.state == StateChecking {
		e.mu.Unlock()
		return nil
	}

	// Poor connectivity means wait longer, never conclude sooner.
	if e.monitor.HealthScore() < e.cfg.MinHealthScore {
		e.mu.Unlock()
		return nil
	}

	now := e.now()
	silence := now.Sub(e.lastSpeech)
	elapsed := now.Sub(e.answerStart)

	if !e.meaningful {
		if elapsed >= e.cfg.NoSpeechTimeout {
			return e.concludeAndUnlock(ReasonNoAnswer)
		}
		e.mu.Unlock()
		return nil
	}

	// Hard ceiling: total silence always wins over judge uncertainty.
	if silence >= e.cfg.AbsoluteSilenceLimit {
		return e.concludeAndUnlock(ReasonForcedComplete)
	}

	if silence < e.currentPause {
		e.state = StateListening
		e.mu.Unlock()
		return nil
	}

	if !e.limiter.ShouldCheckNow() {
		e.state = StateAwaitingCheck
		e.mu.Unlock()
		return nil
	}

	e.state = StateChecking
	question := e.question
	fullAnswer := e.answer.FullAnswer()
	live := e.answer.Live()
	score := e.monitor.HealthScore()
	e.mu.Unlock()

	if e.cb.OnChecking != nil {
		e.cb.OnChecking(score)
	}

	verdict := e.judge.Judge(ctx, question, fullAnswer, live)

	e.mu.Lock()
	if e.state != StateChecking {
		// Reset or concluded while the judge was in flight.
		e.mu.Unlock()
		return nil
	}

	if verdict == judge.VerdictComplete {
		return e.concludeAndUnlock(ReasonComplete)
	}

	e.consecutiveWaits++
	if e.consecutiveWaits >= e.cfg.MaxConsecutiveWaits {
		return e.concludeAndUnlock(ReasonForcedComplete)
	}

	e.currentPause = min(e.currentPause+e.cfg.PauseIncrement, e.cfg.PauseCeiling)
	// Restart the silence window so the same pause does not re-trigger
	// the check it just failed.
	e.lastSpeech = e.now()
	e.state = StateListening
	waits := e.consecutiveWaits
	e.mu.Unlock()

	if e.cb.OnWaitContinue != nil {
		e.cb.OnWaitContinue(waits)
	}
	return nil
}

func (e *Engine) concludeAndUnlock(reason Reason) *Conclusion {
	e.state = StateConcluded
	e.mu.Unlock()

	return &Conclusion{
		Reason:     reason,
		Segments:   e.answer.Segments(),
		FullAnswer: e.answer.FullAnswer(),
		WordCount:  e.answer.WordCount(),
	}
}
