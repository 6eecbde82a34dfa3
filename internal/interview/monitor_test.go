package interview

import (
	"testing"
	"time"
)

func testMonitor(sinceAudio, sinceLiveness time.Duration) *HealthMonitor {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return &HealthMonitor{
		lastAudio:    base.Add(-sinceAudio),
		lastLiveness: base.Add(-sinceLiveness),
		now:          func() time.Time { return base },
	}
}

func TestHealthMonitor_Score(t *testing.T) {
	tests := []struct {
		name          string
		sinceAudio    time.Duration
		sinceLiveness time.Duration
		want          float64
	}{
		{"healthy", 1 * time.Second, 1 * time.Second, 1.0},
		{"audio stalled", 3 * time.Second, 1 * time.Second, 0.3},
		{"audio dead", 6 * time.Second, 1 * time.Second, 0.0},
		{"liveness stalled", 1 * time.Second, 11 * time.Second, 0.5},
		{"audio gap wins over liveness", 6 * time.Second, 11 * time.Second, 0.0},
		{"audio exactly at 2s boundary", 2 * time.Second, 0, 1.0},
		{"audio exactly at 5s boundary", 5 * time.Second, 0, 0.3},
		{"liveness exactly at 10s boundary", 0, 10 * time.Second, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := testMonitor(tt.sinceAudio, tt.sinceLiveness)
			if got := m.HealthScore(); got != tt.want {
				t.Errorf("HealthScore() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHealthMonitor_MarksRecover(t *testing.T) {
	m := testMonitor(10*time.Second, 20*time.Second)
	if m.HealthScore() != 0.0 {
		t.Fatalf("expected dead score, got %v", m.HealthScore())
	}

	m.MarkAudioReceived()
	if got := m.HealthScore(); got != 0.5 {
		t.Errorf("after audio mark HealthScore() = %v, want 0.5", got)
	}

	m.MarkLivenessAck()
	if got := m.HealthScore(); got != 1.0 {
		t.Errorf("after liveness mark HealthScore() = %v, want 1.0", got)
	}
}

func TestHealthMonitor_LatencyWindow(t *testing.T) {
	m := NewHealthMonitor()

	for i := 0; i < latencyWindowSize+5; i++ {
		m.RecordLatency(time.Duration(i) * time.Millisecond)
	}

	got := m.Latencies()
	if len(got) != latencyWindowSize {
		t.Fatalf("expected %d latencies, got %d", latencyWindowSize, len(got))
	}
	if got[0] != 5*time.Millisecond {
		t.Errorf("expected oldest entries evicted, got first = %v", got[0])
	}
}
