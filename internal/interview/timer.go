package interview

import (
	"context"
	"sync"
	"time"
)

type DelayCategory string

const (
	DelayCompletionCheck  DelayCategory = "completion_check"
	DelaySilenceDetection DelayCategory = "silence_detection"
	DelayRecovery         DelayCategory = "recovery"
	DelayBufferFlush      DelayCategory = "buffer_flush"
	DelayPlayback         DelayCategory = "playback_delay"
)

var baseDelays = map[DelayCategory]time.Duration{
	DelayCompletionCheck:  2 * time.Second,
	DelaySilenceDetection: 300 * time.Millisecond,
	DelayRecovery:         500 * time.Millisecond,
	DelayBufferFlush:      50 * time.Millisecond,
	DelayPlayback:         1 * time.Second,
}

const defaultBaseDelay = 300 * time.Millisecond

// AdaptiveTimer widens every timing decision in a session by the currently
// observed network latency, so one degraded link slows the whole cadence
// uniformly instead of individual paths guessing on their own.
type AdaptiveTimer struct {
	mu             sync.Mutex
	networkLatency time.Duration
}

func NewAdaptiveTimer() *AdaptiveTimer {
	return &AdaptiveTimer{networkLatency: 100 * time.Millisecond}
}

func (t *AdaptiveTimer) SleepDuration(category DelayCategory) time.Duration {
	base, ok := baseDelays[category]
	if !ok {
		base = defaultBaseDelay
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return base + t.networkLatency
}

func (t *AdaptiveTimer) Sleep(ctx context.Context, category DelayCategory) {
	select {
	case <-ctx.Done():
	case <-time.After(t.SleepDuration(category)):
	}
}

func (t *AdaptiveTimer) SetNetworkLatency(d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.networkLatency = d
}

func (t *AdaptiveTimer) NetworkLatency() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.networkLatency
}

// LatencyForScore maps the step-function health score onto the latency term.
// The thresholds pair with HealthMonitor's breakpoints; change both or
// neither.
func LatencyForScore(score float64) time.Duration {
	switch {
	case score < 0.3:
		return 500 * time.Millisecond
	case score < 0.7:
		return 200 * time.Millisecond
	default:
		return 100 * time.Millisecond
	}
}
