package interview

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/eleven-am/interview-backend/internal/judge"
	"github.com/eleven-am/interview-backend/internal/synthesis"
)

// QuestionSource supplies the question list snapshotted into each new
// session. Edits to the source never affect sessions already running.
type QuestionSource interface {
	Questions(ctx context.Context) ([]string, error)
}

type Manager struct {
	source       QuestionSource
	engineConfig EngineConfig
	frameThresh  int
	throttleGap  time.Duration
	judge        judge.Judge
	sink         Sink
	metrics      Metrics
	synth        synthesis.Synthesizer
	dialUpstream RecognizerFactory

	sessions map[string]*Session
	mu       sync.RWMutex
	log      *slog.Logger
}

type ManagerConfig struct {
	Source            QuestionSource
	Engine            EngineConfig
	FrameThreshold    int
	ThrottleInterval  time.Duration
	Judge             judge.Judge
	Sink              Sink
	Metrics           Metrics
	Synthesizer       synthesis.Synthesizer
	RecognizerFactory RecognizerFactory
	Log               *slog.Logger
}

func NewManager(cfg ManagerConfig) *Manager {
	if cfg.Log == nil {
		cfg.Log = slog.Default()
	}

	return &Manager{
		source:       cfg.Source,
		engineConfig: cfg.Engine,
		frameThresh:  cfg.FrameThreshold,
		throttleGap:  cfg.ThrottleInterval,
		judge:        cfg.Judge,
		sink:         cfg.Sink,
		metrics:      cfg.Metrics,
		synth:        cfg.Synthesizer,
		dialUpstream: cfg.RecognizerFactory,
		sessions:     make(map[string]*Session),
		log:          cfg.Log.With("component", "interview_manager"),
	}
}

// CreateSession snapshots the current question list into a new session.
// Each session gets its own throttle so one candidate's checks never starve
// another's.
func (m *Manager) CreateSession(ctx context.Context) (*Session, error) {
	loaded, err := m.source.Questions(ctx)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	if len(loaded) == 0 {
		return nil, fmt.Errorf("no questions configured")
	}
	questions := make([]string, len(loaded))
	copy(questions, loaded)

	session := NewSession(SessionConfig{
		Questions:         questions,
		Engine:            m.engineConfig,
		FrameThreshold:    m.frameThresh,
		Judge:             m.judge,
		Limiter:           judge.NewThrottle(m.throttleGap),
		Sink:              m.sink,
		Metrics:           m.metrics,
		Synthesizer:       m.synth,
		RecognizerFactory: m.dialUpstream,
		Log:               m.log,
	})

	m.mu.Lock()
	m.sessions[session.ID()] = session
	m.mu.Unlock()

	m.log.Info("interview session created", "session_id", session.ID(), "questions", len(questions))
	return session, nil
}

func (m *Manager) GetSession(sessionID string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	session, ok := m.sessions[sessionID]
	return session, ok
}

func (m *Manager) RemoveSession(sessionID string) {
	m.mu.Lock()
	session, ok := m.sessions[sessionID]
	if ok {
		delete(m.sessions, sessionID)
	}
	m.mu.Unlock()

	if session != nil {
		session.Close()
		m.log.Info("interview session removed", "session_id", sessionID)
	}
}

type SessionInfo struct {
	SessionID      string `json:"session_id"`
	QuestionIndex  int    `json:"question_index"`
	TotalQuestions int    `json:"total_questions"`
	State          string `json:"state"`
}

func (m *Manager) SessionCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *Manager) ListSessions() []SessionInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sessions := make([]SessionInfo, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, SessionInfo{
			SessionID:      s.ID(),
			QuestionIndex:  s.QuestionIndex(),
			TotalQuestions: s.TotalQuestions(),
			State:          string(s.Engine().State()),
		})
	}
	return sessions
}

func (m *Manager) Close() error {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
	return nil
}
