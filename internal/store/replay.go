package store

import (
	"context"
	"fmt"

	"cuelang.org/go/cue/cuecontext"

	"github.com/tickspan/tickspan/internal/compiler"
	"github.com/tickspan/tickspan/internal/timeline"
)

// Divergence is one position in the event log where replay disagreed
// with the recording. Either side is nil when one log is longer than
// the other.
type Divergence struct {
	Index    int
	Recorded *EventRecord
	Replayed *EventRecord
}

func (d Divergence) String() string {
	switch {
	case d.Recorded == nil:
		return fmt.Sprintf("event %d: replay emitted %+v, recording has nothing", d.Index, *d.Replayed)
	case d.Replayed == nil:
		return fmt.Sprintf("event %d: recording has %+v, replay emitted nothing", d.Index, *d.Recorded)
	default:
		return fmt.Sprintf("event %d: recorded %+v, replayed %+v", d.Index, *d.Recorded, *d.Replayed)
	}
}

// ReplayResult summarizes a determinism check of one session.
type ReplayResult struct {
	SessionID      string
	Ticks          int
	RecordedEvents int
	ReplayedEvents int
	Divergences    []Divergence
}

// Matches reports that the replayed event stream is identical to the
// recorded one.
func (r ReplayResult) Matches() bool {
	return len(r.Divergences) == 0
}

// Replay re-runs a recorded session from its stored definition source and
// delta log, then diffs every emitted event against the recording. A
// deterministic core produces zero divergences for any session; a
// non-empty divergence list means either the definition semantics changed
// since recording or determinism is broken.
func (s *Store) Replay(ctx context.Context, sessionID string) (ReplayResult, error) {
	result := ReplayResult{SessionID: sessionID}

	sess, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return result, fmt.Errorf("replay: %w", err)
	}

	ticks, err := s.ReadTicks(ctx, sessionID)
	if err != nil {
		return result, fmt.Errorf("replay: %w", err)
	}
	result.Ticks = len(ticks)

	recorded, err := s.ReadEvents(ctx, sessionID)
	if err != nil {
		return result, fmt.Errorf("replay: %w", err)
	}
	result.RecordedEvents = len(recorded)

	engine, err := buildEngine(sess.Source)
	if err != nil {
		return result, fmt.Errorf("replay: %w", err)
	}

	var replayed []EventRecord
	for _, tick := range ticks {
		if err := engine.Tick(timeline.Delta(tick.Delta)); err != nil {
			return result, fmt.Errorf("replay: tick %d: %w", tick.Idx, err)
		}
		for _, ev := range engine.Drain() {
			replayed = append(replayed, NewEventRecord(tick.Idx, ev))
		}
	}
	result.ReplayedEvents = len(replayed)

	result.Divergences = diffEvents(recorded, replayed)
	return result, nil
}

func buildEngine(source string) (*timeline.Engine, error) {
	defs, err := compiler.Compile(cuecontext.New().CompileString(source))
	if err != nil {
		return nil, err
	}
	engine := timeline.New()
	for _, def := range defs {
		r, err := def.Runner()
		if err != nil {
			return nil, err
		}
		if err := engine.Add(r); err != nil {
			return nil, err
		}
	}
	return engine, nil
}

func diffEvents(recorded, replayed []EventRecord) []Divergence {
	var divs []Divergence
	n := len(recorded)
	if len(replayed) > n {
		n = len(replayed)
	}
	for i := 0; i < n; i++ {
		var rec, rep *EventRecord
		if i < len(recorded) {
			rec = &recorded[i]
		}
		if i < len(replayed) {
			rep = &replayed[i]
		}
		if rec != nil && rep != nil && *rec == *rep {
			continue
		}
		divs = append(divs, Divergence{Index: i, Recorded: rec, Replayed: rep})
	}
	return divs
}
