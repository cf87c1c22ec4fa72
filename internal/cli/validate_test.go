package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// twoSpanDefinition is a valid definition shared by the command tests.
// Length is 8; played forward from zero it emits entered a at 0,
// entered b at 3 and exited a at 5, then completes at the boundary.
const twoSpanDefinition = `timeline: main: {
	span: a: {start: 0.0, end: 5.0}
	span: b: {start: 3.0, end: 8.0}
}
`

// writeDefinitionFile drops a definition into dir and returns its path.
func writeDefinitionFile(t *testing.T, dir, name, source string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(source), 0o644))
	return path
}

func TestValidateValidFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := writeDefinitionFile(t, tmpDir, "timeline.cue", twoSpanDefinition)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewValidateCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{path})

	err := cmd.Execute()
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "✓ 1 definition file(s) valid")
}

func TestValidateDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	writeDefinitionFile(t, tmpDir, "one.cue", twoSpanDefinition)
	writeDefinitionFile(t, tmpDir, "two.cue", `timeline: solo: {
	span: only: {start: 1.0, end: 2.0}
}
`)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewValidateCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{tmpDir})

	err := cmd.Execute()
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "✓ 2 definition file(s) valid")
}

func TestValidateValidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	path := writeDefinitionFile(t, tmpDir, "timeline.cue", twoSpanDefinition)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "json"}
	cmd := NewValidateCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{path})

	err := cmd.Execute()
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)
}

func TestValidateNonExistentPath(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewValidateCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"/nonexistent/directory/path"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, buf.String(), "not found")
}

func TestValidateEmptyDirectory(t *testing.T) {
	tmpDir := t.TempDir()

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewValidateCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{tmpDir})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, buf.String(), "no CUE files found")
}

func TestValidateInvalidDefinition(t *testing.T) {
	tmpDir := t.TempDir()
	path := writeDefinitionFile(t, tmpDir, "broken.cue", `timeline: main: {
	repeat: "bogus"
	span: a: {start: 0.0, end: 1.0}
}
`)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewValidateCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{path})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	output := buf.String()
	assert.Contains(t, output, "✗ Validation failed")
	assert.Contains(t, output, "repeat")
}

func TestValidateInvalidDefinitionJSON(t *testing.T) {
	tmpDir := t.TempDir()
	path := writeDefinitionFile(t, tmpDir, "broken.cue", `timeline: main: {
	span: a: {start: 5.0, end: 1.0}
}
`)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "json"}
	cmd := NewValidateCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{path})

	err := cmd.Execute()
	require.Error(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)

	data, err := json.Marshal(resp.Data)
	require.NoError(t, err)

	var result ValidationResult
	require.NoError(t, json.Unmarshal(data, &result))
	assert.False(t, result.Valid)
	assert.Len(t, result.Issues, 1)
}

func TestCollectDefinitionFilesSingleFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := writeDefinitionFile(t, tmpDir, "timeline.cue", twoSpanDefinition)

	files, err := collectDefinitionFiles(path)
	require.NoError(t, err)
	assert.Equal(t, []string{path}, files)
}
