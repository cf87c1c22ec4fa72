package store

import (
	"context"
	"fmt"

	"github.com/tickspan/tickspan/internal/timeline"
)

// Session is one recorded playback of a timeline definition.
type Session struct {
	ID        string
	Name      string
	Source    string // definition source, kept verbatim for replay
	CreatedAt string
}

// TickRecord is one engine tick in a session's delta log.
type TickRecord struct {
	Idx   int64   `json:"idx"`
	Delta float64 `json:"delta"`
}

// EventRecord is one crossing event as stored.
type EventRecord struct {
	Seq      int64   `json:"seq"`
	TickIdx  int64   `json:"tick_idx"`
	Runner   string  `json:"runner"`
	Span     string  `json:"span"`
	Kind     string  `json:"kind"`
	Position float64 `json:"position"`
}

// NewEventRecord converts an emitted event to its stored form.
func NewEventRecord(tickIdx int64, ev timeline.Event) EventRecord {
	return EventRecord{
		Seq:      ev.Seq,
		TickIdx:  tickIdx,
		Runner:   string(ev.Runner),
		Span:     string(ev.Span),
		Kind:     ev.Kind.String(),
		Position: ev.Position.Seconds(),
	}
}

// CreateSession inserts a session record.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - duplicate IDs are
// silently ignored. Other constraint violations still return errors.
func (s *Store) CreateSession(ctx context.Context, sess Session) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, name, source)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		sess.ID,
		sess.Name,
		sess.Source,
	)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// RecordTick appends one tick and the events it emitted, atomically.
// Uses ON CONFLICT DO NOTHING on both tables so re-recording an already
// stored tick is a silent no-op.
//
// Note: The session referenced by sessionID must exist (foreign key
// constraint).
func (s *Store) RecordTick(ctx context.Context, sessionID string, idx int64, delta float64, events []timeline.Event) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("record tick: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	_, err = tx.ExecContext(ctx, `
		INSERT INTO ticks (session_id, idx, delta)
		VALUES (?, ?, ?)
		ON CONFLICT(session_id, idx) DO NOTHING
	`, sessionID, idx, delta)
	if err != nil {
		return fmt.Errorf("record tick: %w", err)
	}

	for _, ev := range events {
		rec := NewEventRecord(idx, ev)
		_, err = tx.ExecContext(ctx, `
			INSERT INTO events (session_id, seq, tick_idx, runner, span, kind, position)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(session_id, seq) DO NOTHING
		`,
			sessionID,
			rec.Seq,
			rec.TickIdx,
			rec.Runner,
			rec.Span,
			rec.Kind,
			rec.Position,
		)
		if err != nil {
			return fmt.Errorf("record tick: event seq %d: %w", rec.Seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("record tick: commit: %w", err)
	}
	return nil
}
