package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/tickspan/tickspan/internal/compiler"
)

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric       = "E001" // Generic/unknown error
	ErrCodeScanError     = "E002" // Directory scan error
	ErrCodeNoFiles       = "E003" // No CUE files found
	ErrCodeCompileFailed = "E004" // Definition compile failed
	ErrCodeNotFound      = "E005" // Path not found
	ErrCodeStoreFailed   = "E006" // Trace store error
	ErrCodeNotDetermined = "E007" // Replay divergence
)

// LoadedDefinition is one compiled definition file.
type LoadedDefinition struct {
	Path        string
	Source      string
	Definitions []compiler.Definition
}

// LoadDefinition reads and compiles a single CUE definition file.
func LoadDefinition(path string) (*LoadedDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &ExitError{Code: ExitCommandError, Message: fmt.Sprintf("definition file not found: %s", path)}
		}
		return nil, WrapExitError(ExitCommandError, "failed to read definition", err)
	}

	source := string(data)
	defs, err := compiler.Compile(cuecontext.New().CompileString(source, cue.Filename(path)))
	if err != nil {
		return nil, WrapExitError(ExitFailure, "failed to compile definition", err)
	}

	return &LoadedDefinition{Path: path, Source: source, Definitions: defs}, nil
}

// FindCUEFiles walks the directory and returns all .cue file paths.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}
