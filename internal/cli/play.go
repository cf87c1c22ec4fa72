package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tickspan/tickspan/internal/store"
	"github.com/tickspan/tickspan/internal/timeline"
)

// PlayOptions holds flags for the play command.
type PlayOptions struct {
	*RootOptions
	Frames   int
	Delta    float64
	Database string
	Name     string
}

// PlayEvent is one emitted event in the play report.
type PlayEvent struct {
	Tick     int64   `json:"tick"`
	Seq      int64   `json:"seq"`
	Runner   string  `json:"runner"`
	Span     string  `json:"span"`
	Kind     string  `json:"kind"`
	Position float64 `json:"position"`
}

// PlayResult is the play command's report.
type PlayResult struct {
	Definition string             `json:"definition"`
	Frames     int                `json:"frames"`
	Delta      float64            `json:"delta"`
	SessionID  string             `json:"session_id,omitempty"`
	Events     []PlayEvent        `json:"events"`
	Positions  map[string]float64 `json:"positions"`
}

// NewPlayCommand creates the play command.
func NewPlayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PlayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "play <definition.cue>",
		Short: "Play a timeline definition tick by tick",
		Long: `Compile a timeline definition and tick it at a fixed frame delta,
printing every crossing event.

With --db the full session (definition source, delta log, events) is
recorded for later replay and trace inspection.

Examples:
  tickspan play timeline.cue --frames 120 --delta 0.016
  tickspan play timeline.cue --frames 60 --db ./traces.db --name intro
  tickspan play timeline.cue --frames 10 --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(opts, args[0], cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Frames, "frames", 60, "number of frames to tick")
	cmd.Flags().Float64Var(&opts.Delta, "delta", 1.0/60, "seconds per frame")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record the session to this SQLite database")
	cmd.Flags().StringVar(&opts.Name, "name", "", "session name when recording (defaults to the definition path)")

	return cmd
}

func runPlay(opts *PlayOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	if opts.Frames <= 0 {
		return NewExitError(ExitCommandError, "frames must be positive")
	}
	if opts.Delta < 0 {
		return NewExitError(ExitCommandError, "delta must be non-negative")
	}

	loaded, err := LoadDefinition(path)
	if err != nil {
		return err
	}

	engine := timeline.New()
	for _, def := range loaded.Definitions {
		r, err := def.Runner()
		if err != nil {
			return WrapExitError(ExitFailure, "failed to build runner", err)
		}
		if err := engine.Add(r); err != nil {
			return WrapExitError(ExitFailure, "failed to register runner", err)
		}
	}
	formatter.VerboseLog("Built %d runner(s) from %s", len(loaded.Definitions), path)

	ctx := context.Background()
	var st *store.Store
	var sessionID string
	if opts.Database != "" {
		st, err = store.Open(opts.Database)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer st.Close()

		name := opts.Name
		if name == "" {
			name = path
		}
		sessionID = store.UUIDv7Generator{}.Generate()
		sess := store.Session{ID: sessionID, Name: name, Source: loaded.Source}
		if err := st.CreateSession(ctx, sess); err != nil {
			return WrapExitError(ExitCommandError, "failed to create session", err)
		}
		formatter.VerboseLog("Recording session %s", sessionID)
	}

	result := PlayResult{
		Definition: path,
		Frames:     opts.Frames,
		Delta:      opts.Delta,
		SessionID:  sessionID,
		Events:     []PlayEvent{},
		Positions:  make(map[string]float64),
	}

	for frame := 0; frame < opts.Frames; frame++ {
		if err := engine.Tick(timeline.Delta(opts.Delta)); err != nil {
			return WrapExitError(ExitFailure, fmt.Sprintf("tick %d failed", frame), err)
		}
		events := engine.Drain()
		for _, ev := range events {
			result.Events = append(result.Events, PlayEvent{
				Tick:     int64(frame),
				Seq:      ev.Seq,
				Runner:   string(ev.Runner),
				Span:     string(ev.Span),
				Kind:     ev.Kind.String(),
				Position: ev.Position.Seconds(),
			})
		}
		if st != nil {
			if err := st.RecordTick(ctx, sessionID, int64(frame), opts.Delta, events); err != nil {
				return WrapExitError(ExitCommandError, "failed to record tick", err)
			}
		}
	}

	for _, r := range engine.Runners() {
		result.Positions[string(r.ID())] = r.Position().Seconds()
	}

	if opts.Format == "json" {
		return formatter.Success(result)
	}

	for _, ev := range result.Events {
		fmt.Fprintf(formatter.Writer, "tick %4d  seq %4d  %s/%s  %s @%g\n",
			ev.Tick, ev.Seq, ev.Runner, ev.Span, ev.Kind, ev.Position)
	}
	fmt.Fprintf(formatter.Writer, "\n%d event(s) over %d frame(s)\n", len(result.Events), result.Frames)
	for _, r := range engine.Runners() {
		fmt.Fprintf(formatter.Writer, "  %s: position %g", r.ID(), r.Position().Seconds())
		if r.Completed() {
			fmt.Fprint(formatter.Writer, " (completed)")
		}
		fmt.Fprintln(formatter.Writer)
	}
	if sessionID != "" {
		fmt.Fprintf(formatter.Writer, "recorded session %s\n", sessionID)
	}
	return nil
}
