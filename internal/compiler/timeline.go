// Package compiler turns CUE timeline definitions into runners.
//
// A definition file declares runners and their spans:
//
//	timeline: {
//	    intro: {
//	        repeat: "loop"
//	        times:  2
//	        speed:  1.5
//	        span: {
//	            fade_in: {start: 0.0, end: 2.5}
//	            theme:   {start: 1.0, end: 9.0}
//	        }
//	    }
//	}
//
// Spans are scheduled in declaration order, which fixes their evaluation
// order for every tick. Validation happens at compile time with source
// positions; the core's own range checks run again when runners are
// built, so a definition that compiles always builds.
package compiler

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/tickspan/tickspan/internal/timeline"
)

// SpanDef is one compiled span declaration.
type SpanDef struct {
	Name  string
	Start float64
	End   float64
}

// Definition is one compiled runner declaration.
type Definition struct {
	Name     string
	Repeat   timeline.RepeatPolicy
	Times    int // boundary repeat budget; timeline.Unbounded when absent
	Speed    float64
	Backward bool
	Paused   bool
	Spans    []SpanDef
}

// Runner builds a timeline runner from the definition.
func (d Definition) Runner() (*timeline.Runner, error) {
	opts := []timeline.RunnerOption{
		timeline.WithSpeed(d.Speed),
	}
	if d.Times == timeline.Unbounded {
		opts = append(opts, timeline.WithRepeat(d.Repeat))
	} else {
		opts = append(opts, timeline.WithRepeatTimes(d.Repeat, d.Times))
	}
	if d.Backward {
		opts = append(opts, timeline.WithDirection(timeline.Backward))
	}
	if d.Paused {
		opts = append(opts, timeline.WithPaused(true))
	}
	r := timeline.NewRunner(timeline.RunnerID(d.Name), opts...)
	for _, sd := range d.Spans {
		span, err := timeline.NewSpan(timeline.SpanID(sd.Name), timeline.Time(sd.Start), timeline.Time(sd.End))
		if err != nil {
			return nil, fmt.Errorf("runner %s: %w", d.Name, err)
		}
		if err := r.AddSpan(span); err != nil {
			return nil, fmt.Errorf("runner %s: %w", d.Name, err)
		}
	}
	return r, nil
}

// Compile parses a CUE value holding a `timeline` struct into runner
// definitions, in declaration order.
func Compile(v cue.Value) ([]Definition, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	root := v.LookupPath(cue.ParsePath("timeline"))
	if !root.Exists() {
		return nil, &CompileError{
			Field:   "timeline",
			Message: "no timeline struct declared",
			Pos:     v.Pos(),
		}
	}

	iter, err := root.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var defs []Definition
	for iter.Next() {
		def, err := compileRunner(iter.Label(), iter.Value())
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	if len(defs) == 0 {
		return nil, &CompileError{
			Field:   "timeline",
			Message: "at least one runner is required",
			Pos:     root.Pos(),
		}
	}
	return defs, nil
}

func compileRunner(name string, v cue.Value) (Definition, error) {
	def := Definition{
		Name:  name,
		Speed: 1,
		Times: timeline.Unbounded,
	}

	if repeatVal := v.LookupPath(cue.ParsePath("repeat")); repeatVal.Exists() {
		repeat, err := repeatVal.String()
		if err != nil {
			return def, formatCUEError(err)
		}
		switch repeat {
		case "none":
			def.Repeat = timeline.RepeatNone
		case "loop":
			def.Repeat = timeline.RepeatLoop
		case "pingpong":
			def.Repeat = timeline.RepeatPingPong
		default:
			return def, &CompileError{
				Field:   "repeat",
				Message: fmt.Sprintf("unknown repeat policy %q: must be none, loop, or pingpong", repeat),
				Pos:     repeatVal.Pos(),
			}
		}
	}

	if timesVal := v.LookupPath(cue.ParsePath("times")); timesVal.Exists() {
		times, err := timesVal.Int64()
		if err != nil {
			return def, formatCUEError(err)
		}
		if times < 0 {
			return def, &CompileError{
				Field:   "times",
				Message: "repeat budget must not be negative",
				Pos:     timesVal.Pos(),
			}
		}
		if def.Repeat == timeline.RepeatNone {
			return def, &CompileError{
				Field:   "times",
				Message: "times requires a repeat policy of loop or pingpong",
				Pos:     timesVal.Pos(),
			}
		}
		def.Times = int(times)
	}

	if speedVal := v.LookupPath(cue.ParsePath("speed")); speedVal.Exists() {
		speed, err := speedVal.Float64()
		if err != nil {
			return def, formatCUEError(err)
		}
		if speed < 0 {
			return def, &CompileError{
				Field:   "speed",
				Message: "speed must not be negative",
				Pos:     speedVal.Pos(),
			}
		}
		def.Speed = speed
	}

	if backwardVal := v.LookupPath(cue.ParsePath("backward")); backwardVal.Exists() {
		backward, err := backwardVal.Bool()
		if err != nil {
			return def, formatCUEError(err)
		}
		def.Backward = backward
	}

	if pausedVal := v.LookupPath(cue.ParsePath("paused")); pausedVal.Exists() {
		paused, err := pausedVal.Bool()
		if err != nil {
			return def, formatCUEError(err)
		}
		def.Paused = paused
	}

	spans, err := compileSpans(v)
	if err != nil {
		return def, err
	}
	def.Spans = spans
	return def, nil
}

func compileSpans(v cue.Value) ([]SpanDef, error) {
	spanRoot := v.LookupPath(cue.ParsePath("span"))
	if !spanRoot.Exists() {
		// A runner with no spans is inert but legal.
		return nil, nil
	}

	iter, err := spanRoot.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var spans []SpanDef
	for iter.Next() {
		sd, err := compileSpan(iter.Label(), iter.Value())
		if err != nil {
			return nil, err
		}
		spans = append(spans, sd)
	}
	return spans, nil
}

func compileSpan(name string, v cue.Value) (SpanDef, error) {
	sd := SpanDef{Name: name}

	startVal := v.LookupPath(cue.ParsePath("start"))
	if !startVal.Exists() {
		return sd, &CompileError{Field: "start", Message: "start is required", Pos: v.Pos()}
	}
	start, err := startVal.Float64()
	if err != nil {
		return sd, formatCUEError(err)
	}

	endVal := v.LookupPath(cue.ParsePath("end"))
	if !endVal.Exists() {
		return sd, &CompileError{Field: "end", Message: "end is required", Pos: v.Pos()}
	}
	end, err := endVal.Float64()
	if err != nil {
		return sd, formatCUEError(err)
	}

	if start < 0 || end < 0 {
		return sd, &CompileError{
			Field:   name,
			Message: "span bounds must not be negative",
			Pos:     v.Pos(),
		}
	}
	if start > end {
		return sd, &CompileError{
			Field:   name,
			Message: fmt.Sprintf("span start %v is after end %v", start, end),
			Pos:     v.Pos(),
		}
	}

	sd.Start = start
	sd.End = end
	return sd, nil
}

// CompileError is a definition error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}
	return err
}
