package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tickspan/tickspan/internal/compiler"
)

// ValidationIssue is one definition error found during validation.
type ValidationIssue struct {
	File    string `json:"file"`
	Field   string `json:"field"`
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Files  int               `json:"files"`
	Issues []ValidationIssue `json:"issues,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <definition.cue | dir>",
		Short: "Validate timeline definitions without playing them",
		Long: `Validate CUE timeline definitions without building an engine.

Checks syntax, span ranges, repeat policies, and speed values, and
reports every issue with its source position. Accepts a single file
or a directory tree of .cue files.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	files, err := collectDefinitionFiles(path)
	if err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			_ = formatter.Error(ErrCodeNotFound, exitErr.Message, nil)
			return exitErr
		}
		_ = formatter.Error(ErrCodeScanError, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to scan definitions", err)
	}

	var issues []ValidationIssue
	for _, file := range files {
		formatter.VerboseLog("Validating %s", file)
		if _, err := LoadDefinition(file); err != nil {
			issues = append(issues, toValidationIssue(file, err))
		}
	}

	result := ValidationResult{
		Valid:  len(issues) == 0,
		Files:  len(files),
		Issues: issues,
	}

	if result.Valid {
		if opts.Format == "json" {
			return formatter.Success(result)
		}
		fmt.Fprintf(formatter.Writer, "✓ %d definition file(s) valid\n", result.Files)
		return nil
	}

	if opts.Format == "json" {
		_ = formatter.Success(result)
	} else {
		fmt.Fprintln(formatter.Writer, "✗ Validation failed")
		fmt.Fprintln(formatter.Writer)
		for _, issue := range issues {
			if issue.Line > 0 {
				fmt.Fprintf(formatter.Writer, "%s:%d\n", issue.File, issue.Line)
			} else {
				fmt.Fprintln(formatter.Writer, issue.File)
			}
			fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", issue.Field, issue.Message)
		}
	}

	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d issue(s)", len(issues)))
}

// collectDefinitionFiles resolves a validate target to a list of .cue
// files.
func collectDefinitionFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, NewExitError(ExitCommandError, fmt.Sprintf("path not found: %s", path))
	}
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		return []string{path}, nil
	}

	files, err := FindCUEFiles(path)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, NewExitError(ExitCommandError, fmt.Sprintf("no CUE files found in %s", path))
	}
	return files, nil
}

// toValidationIssue converts a load failure to a reportable issue with
// position info when the underlying error carries one.
func toValidationIssue(file string, err error) ValidationIssue {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		issue := ValidationIssue{
			File:    file,
			Field:   compileErr.Field,
			Message: compileErr.Message,
		}
		if compileErr.Pos.IsValid() {
			issue.Line = compileErr.Pos.Line()
		}
		return issue
	}
	return ValidationIssue{File: file, Field: "definition", Message: err.Error()}
}
