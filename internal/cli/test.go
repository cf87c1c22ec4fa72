package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tickspan/tickspan/internal/harness"
)

// TestScenarioResult holds the outcome of one scenario.
type TestScenarioResult struct {
	Scenario string   `json:"scenario"`
	Name     string   `json:"name"`
	Pass     bool     `json:"pass"`
	Events   int      `json:"events"`
	Errors   []string `json:"errors,omitempty"`
}

// TestResult holds the overall test command outcome.
type TestResult struct {
	Scenarios []TestScenarioResult `json:"scenarios"`
	Total     int                  `json:"total"`
	Passed    int                  `json:"passed"`
	Failed    int                  `json:"failed"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "test <scenario.yaml>...",
		Short: "Run playback scenarios",
		Long: `Run one or more YAML playback scenarios against fresh engines and
report assertion results.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (scenario file unreadable or malformed)

Examples:
  tickspan test scenarios/loop.yaml
  tickspan test scenarios/*.yaml --format json`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTest(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runTest(opts *RootOptions, paths []string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	result := TestResult{}
	for _, path := range paths {
		scenario, err := harness.LoadScenario(path)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to load scenario %s", path), err)
		}

		formatter.VerboseLog("Running scenario %s (%s)", scenario.Name, path)
		run, err := harness.Run(scenario)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to run scenario %s", scenario.Name), err)
		}

		sr := TestScenarioResult{
			Scenario: path,
			Name:     scenario.Name,
			Pass:     run.Pass,
			Events:   len(run.Trace),
			Errors:   run.Errors,
		}
		result.Scenarios = append(result.Scenarios, sr)
		result.Total++
		if run.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
	}

	if opts.Format == "json" {
		_ = formatter.Success(result)
	} else {
		for _, sr := range result.Scenarios {
			if sr.Pass {
				fmt.Fprintf(formatter.Writer, "✓ %s (%d events)\n", sr.Name, sr.Events)
				continue
			}
			fmt.Fprintf(formatter.Writer, "✗ %s\n", sr.Name)
			for _, msg := range sr.Errors {
				fmt.Fprintf(formatter.Writer, "    %s\n", msg)
			}
		}
		fmt.Fprintf(formatter.Writer, "\n%d passed, %d failed (%d total)\n",
			result.Passed, result.Failed, result.Total)
	}

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}
	return nil
}
