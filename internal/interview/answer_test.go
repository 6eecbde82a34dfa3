package interview

import (
	"reflect"
	"testing"
)

func TestAnswerBuffer_FinalClearsLive(t *testing.T) {
	a := NewAnswerBuffer()

	a.SetLive("decorators are")
	if a.Live() != "decorators are" {
		t.Errorf("Live() = %q", a.Live())
	}

	a.AppendFinal("decorators are functions that wrap other functions")
	if a.Live() != "" {
		t.Errorf("expected live fragment cleared after final, got %q", a.Live())
	}
}

func TestAnswerBuffer_FullAnswer(t *testing.T) {
	a := NewAnswerBuffer()
	a.AppendFinal("lists are mutable")
	a.AppendFinal("tuples are not")
	a.SetLive("and also")

	if got := a.FullAnswer(); got != "lists are mutable tuples are not" {
		t.Errorf("FullAnswer() = %q", got)
	}

	// The live fragment never leaks into the full answer.
	if got := a.WordCount(); got != 6 {
		t.Errorf("WordCount() = %d, want 6", got)
	}
}

func TestAnswerBuffer_SegmentsCopy(t *testing.T) {
	a := NewAnswerBuffer()
	a.AppendFinal("first")
	a.AppendFinal("second")

	got := a.Segments()
	if !reflect.DeepEqual(got, []string{"first", "second"}) {
		t.Errorf("Segments() = %v", got)
	}

	got[0] = "mutated"
	if a.Segments()[0] != "first" {
		t.Error("expected Segments() to return a copy")
	}
}

func TestAnswerBuffer_Reset(t *testing.T) {
	a := NewAnswerBuffer()
	a.AppendFinal("something")
	a.SetLive("more")

	a.Reset()

	if a.FullAnswer() != "" || a.Live() != "" || a.WordCount() != 0 {
		t.Error("expected buffer empty after reset")
	}
}
