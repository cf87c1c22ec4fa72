package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrNotFound is returned when a session does not exist.
var ErrNotFound = errors.New("session not found")

// GetSession reads a single session record.
// Returns ErrNotFound if no session has the given id.
func (s *Store) GetSession(ctx context.Context, id string) (Session, error) {
	var sess Session
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, source, created_at
		FROM sessions
		WHERE id = ?
	`, id).Scan(&sess.ID, &sess.Name, &sess.Source, &sess.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, fmt.Errorf("get session %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Session{}, fmt.Errorf("get session %s: %w", id, err)
	}
	return sess, nil
}

// ListSessions reads all sessions ordered by id. UUIDv7 ids make this
// creation order.
func (s *Store) ListSessions(ctx context.Context) ([]Session, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, source, created_at
		FROM sessions
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var sess Session
		if err := rows.Scan(&sess.ID, &sess.Name, &sess.Source, &sess.CreatedAt); err != nil {
			return nil, fmt.Errorf("list sessions: scan: %w", err)
		}
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

// ReadTicks reads a session's delta log in tick order.
func (s *Store) ReadTicks(ctx context.Context, sessionID string) ([]TickRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT idx, delta
		FROM ticks
		WHERE session_id = ?
		ORDER BY idx ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("read ticks: %w", err)
	}
	defer rows.Close()

	var ticks []TickRecord
	for rows.Next() {
		var t TickRecord
		if err := rows.Scan(&t.Idx, &t.Delta); err != nil {
			return nil, fmt.Errorf("read ticks: scan: %w", err)
		}
		ticks = append(ticks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read ticks: %w", err)
	}
	return ticks, nil
}

// ReadEvents reads all of a session's events in logical order.
func (s *Store) ReadEvents(ctx context.Context, sessionID string) ([]EventRecord, error) {
	return s.readEvents(ctx, `
		SELECT seq, tick_idx, runner, span, kind, position
		FROM events
		WHERE session_id = ?
		ORDER BY seq ASC
	`, sessionID)
}

// ReadEventsForTick reads the events a single tick emitted, in logical order.
func (s *Store) ReadEventsForTick(ctx context.Context, sessionID string, tickIdx int64) ([]EventRecord, error) {
	return s.readEvents(ctx, `
		SELECT seq, tick_idx, runner, span, kind, position
		FROM events
		WHERE session_id = ? AND tick_idx = ?
		ORDER BY seq ASC
	`, sessionID, tickIdx)
}

func (s *Store) readEvents(ctx context.Context, query string, args ...any) ([]EventRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("read events: %w", err)
	}
	defer rows.Close()

	var events []EventRecord
	for rows.Next() {
		var ev EventRecord
		if err := rows.Scan(&ev.Seq, &ev.TickIdx, &ev.Runner, &ev.Span, &ev.Kind, &ev.Position); err != nil {
			return nil, fmt.Errorf("read events: scan: %w", err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read events: %w", err)
	}
	return events, nil
}
