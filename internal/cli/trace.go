package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tickspan/tickspan/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	Session  string
	Tick     int64
}

// TraceSessionSummary is one session row in the listing.
type TraceSessionSummary struct {
	SessionID string `json:"session_id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
}

// TraceDump is the full event log of one session.
type TraceDump struct {
	SessionID string              `json:"session_id"`
	Name      string              `json:"name"`
	Ticks     []store.TickRecord  `json:"ticks"`
	Events    []store.EventRecord `json:"events"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts, Tick: -1}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Inspect recorded sessions",
		Long: `List recorded sessions, or dump one session's tick and event log in
logical order.

Examples:
  tickspan trace --db ./traces.db
  tickspan trace --db ./traces.db --session 0190b5e1-...
  tickspan trace --db ./traces.db --session 0190b5e1-... --tick 3`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Session, "session", "", "dump this session's event log")
	cmd.Flags().Int64Var(&opts.Tick, "tick", -1, "restrict the dump to one tick")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	ctx := context.Background()
	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	if opts.Session == "" {
		return listSessions(ctx, st, formatter)
	}
	return dumpSession(ctx, st, opts, formatter)
}

func listSessions(ctx context.Context, st *store.Store, formatter *OutputFormatter) error {
	sessions, err := st.ListSessions(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list sessions", err)
	}

	if formatter.Format == "json" {
		summaries := make([]TraceSessionSummary, 0, len(sessions))
		for _, sess := range sessions {
			summaries = append(summaries, TraceSessionSummary{
				SessionID: sess.ID,
				Name:      sess.Name,
				CreatedAt: sess.CreatedAt,
			})
		}
		return formatter.Success(summaries)
	}

	if len(sessions) == 0 {
		fmt.Fprintln(formatter.Writer, "no recorded sessions")
		return nil
	}
	for _, sess := range sessions {
		fmt.Fprintf(formatter.Writer, "%s  %s  %s\n", sess.ID, sess.CreatedAt, sess.Name)
	}
	return nil
}

func dumpSession(ctx context.Context, st *store.Store, opts *TraceOptions, formatter *OutputFormatter) error {
	sess, err := st.GetSession(ctx, opts.Session)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load session", err)
	}

	ticks, err := st.ReadTicks(ctx, sess.ID)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read ticks", err)
	}

	var events []store.EventRecord
	if opts.Tick >= 0 {
		events, err = st.ReadEventsForTick(ctx, sess.ID, opts.Tick)
	} else {
		events, err = st.ReadEvents(ctx, sess.ID)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read events", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(TraceDump{
			SessionID: sess.ID,
			Name:      sess.Name,
			Ticks:     ticks,
			Events:    events,
		})
	}

	fmt.Fprintf(formatter.Writer, "session %s (%s)\n", sess.ID, sess.Name)
	fmt.Fprintf(formatter.Writer, "%d tick(s), %d event(s)\n\n", len(ticks), len(events))
	for _, ev := range events {
		fmt.Fprintf(formatter.Writer, "tick %4d  seq %4d  %s/%s  %s @%g\n",
			ev.TickIdx, ev.Seq, ev.Runner, ev.Span, ev.Kind, ev.Position)
	}
	return nil
}
