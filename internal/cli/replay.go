package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tickspan/tickspan/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
	Session  string // optional - specific session only
}

// ReplaySessionResult holds the replay result for a single session.
type ReplaySessionResult struct {
	SessionID     string   `json:"session_id"`
	Name          string   `json:"name"`
	Ticks         int      `json:"ticks"`
	Events        int      `json:"events"`
	Deterministic bool     `json:"deterministic"`
	Divergences   []string `json:"divergences,omitempty"`
}

// ReplayReport holds the overall replay outcome.
type ReplayReport struct {
	Sessions         []ReplaySessionResult `json:"sessions"`
	TotalSessions    int                   `json:"total_sessions"`
	AllDeterministic bool                  `json:"all_deterministic"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay recorded sessions and verify determinism",
		Long: `Re-run recorded sessions from their stored definition and delta log,
and diff every emitted event against the recording.

Exit codes:
  0 - All sessions replayed identically
  1 - Divergences detected
  2 - Command error (database not found, etc.)

Examples:
  tickspan replay --db ./traces.db
  tickspan replay --db ./traces.db --session 0190b5e1-...
  tickspan replay --db ./traces.db --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Session, "session", "", "replay a specific session only")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
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

	var sessions []store.Session
	if opts.Session != "" {
		sess, err := st.GetSession(ctx, opts.Session)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to load session", err)
		}
		sessions = []store.Session{sess}
	} else {
		sessions, err = st.ListSessions(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list sessions", err)
		}
	}

	report := ReplayReport{AllDeterministic: true}
	for _, sess := range sessions {
		formatter.VerboseLog("Replaying session %s (%s)", sess.ID, sess.Name)
		result, err := st.Replay(ctx, sess.ID)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to replay session %s", sess.ID), err)
		}

		sr := ReplaySessionResult{
			SessionID:     sess.ID,
			Name:          sess.Name,
			Ticks:         result.Ticks,
			Events:        result.RecordedEvents,
			Deterministic: result.Matches(),
		}
		for _, div := range result.Divergences {
			sr.Divergences = append(sr.Divergences, div.String())
		}
		if !sr.Deterministic {
			report.AllDeterministic = false
		}
		report.Sessions = append(report.Sessions, sr)
		report.TotalSessions++
	}

	if opts.Format == "json" {
		_ = formatter.Success(report)
	} else {
		for _, sr := range report.Sessions {
			if sr.Deterministic {
				fmt.Fprintf(formatter.Writer, "✓ %s %s (%d ticks, %d events)\n",
					sr.SessionID, sr.Name, sr.Ticks, sr.Events)
				continue
			}
			fmt.Fprintf(formatter.Writer, "✗ %s %s\n", sr.SessionID, sr.Name)
			for _, div := range sr.Divergences {
				fmt.Fprintf(formatter.Writer, "    %s\n", div)
			}
		}
		fmt.Fprintf(formatter.Writer, "\n%d session(s) replayed\n", report.TotalSessions)
	}

	if !report.AllDeterministic {
		return NewExitError(ExitFailure, "replay diverged from recording")
	}
	return nil
}
