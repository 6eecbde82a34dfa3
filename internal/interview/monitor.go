package interview

import (
	"sync"
	"time"
)

const latencyWindowSize = 10

// HealthMonitor tracks recency of inbound audio and liveness acks for one
// session. The score is a deliberate step function: cheap, and it reacts
// within one tick of an activity gap instead of smoothing it away. The
// engine and the adaptive timer both key off its exact breakpoints.
type HealthMonitor struct {
	mu           sync.Mutex
	lastAudio    time.Time
	lastLiveness time.Time
	latencies    []time.Duration
	now          func() time.Time
}

func NewHealthMonitor() *HealthMonitor {
	now := time.Now
	return &HealthMonitor{
		lastAudio:    now(),
		lastLiveness: now(),
		now:          now,
	}
}

func (m *HealthMonitor) MarkAudioReceived() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastAudio = m.now()
}

func (m *HealthMonitor) MarkLivenessAck() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastLiveness = m.now()
}

// RecordLatency keeps a short rolling window of observed round trips. It is
// instrumentation only; the score does not read it.
func (m *HealthMonitor) RecordLatency(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latencies = append(m.latencies, d)
	if len(m.latencies) > latencyWindowSize {
		m.latencies = m.latencies[len(m.latencies)-latencyWindowSize:]
	}
}

func (m *HealthMonitor) Latencies() []time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]time.Duration, len(m.latencies))
	copy(out, m.latencies)
	return out
}

// HealthScore returns 0.0 (dead), 0.3 (audio stalled), 0.5 (liveness
// stalled) or 1.0 (healthy).
func (m *HealthMonitor) HealthScore() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	sinceAudio := now.Sub(m.lastAudio)
	sinceLiveness := now.Sub(m.lastLiveness)

	switch {
	case sinceAudio > 5*time.Second:
		return 0.0
	case sinceAudio > 2*time.Second:
		return 0.3
	case sinceLiveness > 10*time.Second:
		return 0.5
	default:
		return 1.0
	}
}
