package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/tickspan/tickspan/internal/timeline"
)

// createTestStore creates a file-backed store in a temp dir for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// twoSpanSource is a minimal definition used across store tests: one
// runner with spans [0,5] and [3,8].
const twoSpanSource = `
timeline: main: {
	span: {
		a: {start: 0.0, end: 5.0}
		b: {start: 3.0, end: 8.0}
	}
}
`

// createTestSession inserts a session with the two-span source.
func createTestSession(t *testing.T, s *Store, id string) Session {
	t.Helper()
	sess := Session{ID: id, Name: "test-session", Source: twoSpanSource}
	if err := s.CreateSession(context.Background(), sess); err != nil {
		t.Fatalf("CreateSession() failed: %v", err)
	}
	return sess
}

// testEvent builds an already-stamped event for write tests.
func testEvent(seq int64, runner, span string, kind timeline.Kind, pos float64) timeline.Event {
	return timeline.Event{
		Runner:   timeline.RunnerID(runner),
		Span:     timeline.SpanID(span),
		Kind:     kind,
		Position: timeline.Time(pos),
		Seq:      seq,
	}
}
