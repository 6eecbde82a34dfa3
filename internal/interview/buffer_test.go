package interview

import (
	"bytes"
	"testing"
)

func TestFrameBuffer_ShouldSend(t *testing.T) {
	b := NewFrameBuffer(3)

	if b.ShouldSend() {
		t.Error("expected empty buffer not to send")
	}

	b.AddFrame([]byte{1})
	b.AddFrame([]byte{2})
	if b.ShouldSend() {
		t.Error("expected buffer below threshold not to send")
	}

	b.AddFrame([]byte{3})
	if !b.ShouldSend() {
		t.Error("expected buffer at threshold to send")
	}
}

func TestFrameBuffer_DrainPreservesOrder(t *testing.T) {
	b := NewFrameBuffer(3)
	b.AddFrame([]byte{1, 2})
	b.AddFrame([]byte{3})
	b.AddFrame([]byte{4, 5, 6})

	got := b.Drain()
	want := []byte{1, 2, 3, 4, 5, 6}
	if !bytes.Equal(got, want) {
		t.Errorf("Drain() = %v, want %v", got, want)
	}

	if b.HasData() {
		t.Error("expected buffer to be empty after drain")
	}
	if b.Len() != 0 {
		t.Errorf("Len() = %d after drain, want 0", b.Len())
	}
}

func TestFrameBuffer_DrainEmpty(t *testing.T) {
	b := NewFrameBuffer(3)

	got := b.Drain()
	if got == nil {
		t.Error("expected non-nil slice from empty drain")
	}
	if len(got) != 0 {
		t.Errorf("expected empty slice, got %d bytes", len(got))
	}
}

func TestNewFrameBuffer_DefaultThreshold(t *testing.T) {
	b := NewFrameBuffer(0)
	if b.threshold != defaultFrameThreshold {
		t.Errorf("threshold = %d, want %d", b.threshold, defaultFrameThreshold)
	}
}
