package judge

import (
	"testing"
	"time"
)

func TestThrottle_GrantsOncePerInterval(t *testing.T) {
	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	th := NewThrottle(2500 * time.Millisecond)
	th.now = func() time.Time { return current }

	if !th.ShouldCheckNow() {
		t.Fatal("expected first check to be granted")
	}
	if th.ShouldCheckNow() {
		t.Error("expected immediate second check denied")
	}

	current = current.Add(2 * time.Second)
	if th.ShouldCheckNow() {
		t.Error("expected check denied inside the interval")
	}

	current = current.Add(500 * time.Millisecond)
	if !th.ShouldCheckNow() {
		t.Error("expected check granted at interval boundary")
	}
}

func TestThrottle_DenialDoesNotExtendWindow(t *testing.T) {
	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	th := NewThrottle(time.Second)
	th.now = func() time.Time { return current }

	th.ShouldCheckNow()

	// Repeated denials must not push out the next grant.
	for i := 0; i < 5; i++ {
		current = current.Add(100 * time.Millisecond)
		th.ShouldCheckNow()
	}

	current = current.Add(500 * time.Millisecond)
	if !th.ShouldCheckNow() {
		t.Error("expected grant one interval after the previous grant")
	}
}

func TestNewThrottle_DefaultInterval(t *testing.T) {
	th := NewThrottle(0)
	if th.minInterval != 2500*time.Millisecond {
		t.Errorf("minInterval = %v, want 2.5s", th.minInterval)
	}
}
