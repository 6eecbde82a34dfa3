package interview

import (
	"strings"
	"sync"
)

// AnswerBuffer accumulates one question's answer: the ordered final segments
// plus the single live fragment the recognizer is still revising. A fragment
// only ever reaches the segment list through a final event, at which point
// the live slot clears.
type AnswerBuffer struct {
	mu       sync.Mutex
	segments []string
	live     string
}

func NewAnswerBuffer() *AnswerBuffer {
	return &AnswerBuffer{}
}

func (a *AnswerBuffer) AppendFinal(segment string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.segments = append(a.segments, segment)
	a.live = ""
}

func (a *AnswerBuffer) SetLive(fragment string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.live = fragment
}

func (a *AnswerBuffer) Live() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.live
}

func (a *AnswerBuffer) FullAnswer() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return strings.Join(a.segments, " ")
}

func (a *AnswerBuffer) Segments() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, len(a.segments))
	copy(out, a.segments)
	return out
}

func (a *AnswerBuffer) WordCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	count := 0
	for _, seg := range a.segments {
		count += len(strings.Fields(seg))
	}
	return count
}

func (a *AnswerBuffer) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.segments = nil
	a.live = ""
}
