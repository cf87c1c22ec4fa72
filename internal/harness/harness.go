// Package harness provides a scenario testing framework for the tick
// engine.
//
// A scenario is a YAML file naming a timeline definition, a scripted
// sequence of steps (ticks and runner mutations), and assertions over
// the resulting event trace. The harness compiles the definition, runs
// the script against a fresh engine, and evaluates the assertions.
//
// Every scenario runs against its own engine with its own logical
// clock, so traces are reproducible and suitable for golden file
// comparison.
package harness

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"cuelang.org/go/cue/cuecontext"

	"github.com/tickspan/tickspan/internal/compiler"
	"github.com/tickspan/tickspan/internal/timeline"
)

// Harness executes one scenario against a fresh engine.
type Harness struct {
	engine *timeline.Engine
	logger *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Execution flow:
// 1. Compile the timeline definition (inline source or file)
// 2. Build a fresh engine with all declared runners
// 3. Execute steps in order, collecting emitted events per step
// 4. Evaluate assertions against the trace and final positions
func Run(scenario *Scenario) (*Result, error) {
	source := scenario.Source
	if scenario.Definition != "" {
		data, err := os.ReadFile(scenario.Definition)
		if err != nil {
			return nil, fmt.Errorf("failed to read definition: %w", err)
		}
		source = string(data)
	}

	defs, err := compiler.Compile(cuecontext.New().CompileString(source))
	if err != nil {
		return nil, fmt.Errorf("failed to compile definition: %w", err)
	}

	engine := timeline.New()
	for _, def := range defs {
		r, err := def.Runner()
		if err != nil {
			return nil, fmt.Errorf("failed to build runner: %w", err)
		}
		if err := engine.Add(r); err != nil {
			return nil, fmt.Errorf("failed to register runner: %w", err)
		}
	}

	h := &Harness{
		engine: engine,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in tests
	}

	result := NewResult()
	for i, step := range scenario.Steps {
		if err := h.executeStep(i, step, result); err != nil {
			return nil, fmt.Errorf("steps[%d]: %w", i, err)
		}
	}

	for _, r := range engine.Runners() {
		result.Positions[string(r.ID())] = r.Position().Seconds()
	}

	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(errMsg)
	}

	return result, nil
}

// executeStep applies one scripted action and appends any emitted
// events to the trace.
func (h *Harness) executeStep(index int, step Step, result *Result) error {
	switch {
	case step.Tick != nil:
		if err := h.engine.Tick(timeline.Delta(*step.Tick)); err != nil {
			return err
		}
		h.collectEvents(index, result)
		h.logger.Debug("tick executed", "step", index, "delta", *step.Tick)

	case step.Seek != nil:
		r, err := h.runner(step.Seek.Runner)
		if err != nil {
			return err
		}
		r.Seek(timeline.Time(step.Seek.To))
		h.collectEvents(index, result)

	case step.Pause != nil:
		r, err := h.runner(step.Pause.Runner)
		if err != nil {
			return err
		}
		r.SetPaused(step.Pause.Paused)

	case step.Speed != nil:
		r, err := h.runner(step.Speed.Runner)
		if err != nil {
			return err
		}
		r.SetSpeed(step.Speed.Value)

	case step.Direction != nil:
		r, err := h.runner(step.Direction.Runner)
		if err != nil {
			return err
		}
		if step.Direction.Backward {
			r.SetDirection(timeline.Backward)
		} else {
			r.SetDirection(timeline.Forward)
		}

	case step.Skip != nil:
		r, err := h.runner(step.Skip.Runner)
		if err != nil {
			return err
		}
		r.SetSkipped(step.Skip.Skipped)

	case step.AddSpan != nil:
		r, err := h.runner(step.AddSpan.Runner)
		if err != nil {
			return err
		}
		span, err := timeline.NewSpan(
			timeline.SpanID(step.AddSpan.Span),
			timeline.Time(step.AddSpan.Start),
			timeline.Time(step.AddSpan.End),
		)
		if err != nil {
			return err
		}
		if err := r.AddSpan(span); err != nil {
			return err
		}

	case step.RemoveSpan != nil:
		r, err := h.runner(step.RemoveSpan.Runner)
		if err != nil {
			return err
		}
		r.RemoveSpan(timeline.SpanID(step.RemoveSpan.Span))
	}
	return nil
}

func (h *Harness) runner(id string) (*timeline.Runner, error) {
	r, ok := h.engine.Runner(timeline.RunnerID(id))
	if !ok {
		return nil, fmt.Errorf("unknown runner %q", id)
	}
	return r, nil
}

func (h *Harness) collectEvents(step int, result *Result) {
	for _, ev := range h.engine.Drain() {
		result.Trace = append(result.Trace, TraceEvent{
			Step:     step,
			Seq:      ev.Seq,
			Runner:   string(ev.Runner),
			Span:     string(ev.Span),
			Kind:     ev.Kind.String(),
			Position: ev.Position.Seconds(),
		})
	}
}
