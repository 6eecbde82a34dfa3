package judge

import (
	"sync"
	"time"
)

// Throttle grants at most one check per interval. The window opens on the
// previous granted check, so a denied call does not push the window out.
type Throttle struct {
	mu          sync.Mutex
	minInterval time.Duration
	lastCheck   time.Time
	now         func() time.Time
}

func NewThrottle(minInterval time.Duration) *Throttle {
	if minInterval <= 0 {
		minInterval = 2500 * time.Millisecond
	}
	return &Throttle{
		minInterval: minInterval,
		now:         time.Now,
	}
}

func (t *Throttle) ShouldCheckNow() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	if now.Sub(t.lastCheck) >= t.minInterval {
		t.lastCheck = now
		return true
	}
	return false
}
