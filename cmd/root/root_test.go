package root

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the CLI with a shell-wrapped tool so tests control exactly
// what the "external tool" does.
func execute(t *testing.T, toolArgs string, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	t.Setenv("RUNBRIDGE_TOOL_BIN", "sh")
	t.Setenv("RUNBRIDGE_TOOL_ARGS", toolArgs)
	t.Setenv("RUNBRIDGE_SCRATCH_ROOT", t.TempDir())

	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)

	err = cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestRun_PrintsToolOutput(t *testing.T) {
	// The tool is "sh -c cat": it echoes its stdin, i.e. the instruction.
	stdout, _, err := execute(t, "-c cat", "run", "ping")
	require.NoError(t, err)
	assert.Equal(t, "ping", stdout)
}

func TestRun_AttachmentsReachTheTool(t *testing.T) {
	note := filepath.Join(t.TempDir(), "note.txt")
	require.NoError(t, os.WriteFile(note, []byte("remember me"), 0o644))

	// "cat<note.txt" reads the materialized attachment from the working
	// directory, ignoring stdin.
	stdout, _, err := execute(t, "-c cat<note.txt", "run", "summarize", "--attach", note)
	require.NoError(t, err)
	assert.Equal(t, "remember me", stdout)
}

func TestRun_EmptyInstruction(t *testing.T) {
	_, _, err := execute(t, "-c cat", "run", "   ")
	assert.Error(t, err)
}

func TestRun_ToolFailureBecomesAnError(t *testing.T) {
	_, _, err := execute(t, "-c false", "run", "fail")
	assert.Error(t, err)
}

func TestRun_MissingAttachment(t *testing.T) {
	_, _, err := execute(t, "-c cat", "run", "summarize", "--attach", filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}
