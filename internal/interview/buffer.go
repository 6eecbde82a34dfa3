package interview

import "sync"

const defaultFrameThreshold = 6

// FrameBuffer batches small client audio frames into one upstream write to
// cut per-message overhead on the recognizer socket. Frames are concatenated
// strictly in arrival order.
type FrameBuffer struct {
	mu        sync.Mutex
	frames    [][]byte
	threshold int
}

func NewFrameBuffer(threshold int) *FrameBuffer {
	if threshold <= 0 {
		threshold = defaultFrameThreshold
	}
	return &FrameBuffer{threshold: threshold}
}

func (b *FrameBuffer) AddFrame(data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.frames = append(b.frames, data)
}

func (b *FrameBuffer) ShouldSend() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.frames) >= b.threshold
}

func (b *FrameBuffer) HasData() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.frames) > 0
}

func (b *FrameBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.frames)
}

// Drain concatenates everything buffered and clears the buffer. The data is
// gone after this returns; callers must forward it or lose it.
func (b *FrameBuffer) Drain() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.frames) == 0 {
		return []byte{}
	}

	total := 0
	for _, f := range b.frames {
		total += len(f)
	}

	combined := make([]byte, 0, total)
	for _, f := range b.frames {
		combined = append(combined, f...)
	}
	b.frames = nil
	return combined
}
