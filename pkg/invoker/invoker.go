// Package invoker runs the external tool once per invocation, bounded by a
// deadline, and normalizes the outcome.
package invoker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/runbridge/runbridge/pkg/api"
)

// DefaultTimeout bounds a tool run when no timeout is configured.
const DefaultTimeout = 30 * time.Second

// Invoker executes a fixed command with fixed arguments. The caller's
// instruction travels on stdin only; it is never interpolated into the
// argument list, so there is no argument-injection surface.
type Invoker struct {
	bin       string
	fixedArgs []string
	timeout   time.Duration
}

// New creates an invoker for the given binary and fixed arguments. A
// non-positive timeout falls back to DefaultTimeout.
func New(bin string, fixedArgs []string, timeout time.Duration) *Invoker {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Invoker{bin: bin, fixedArgs: fixedArgs, timeout: timeout}
}

// Run executes the tool with dir as its working directory and stdin as its
// input. The process inherits the host environment so ambient credentials
// keep working, with PATH guaranteed present.
//
// A non-zero exit or a kill on timeout is a tool-level failure returned as
// data inside the result. Only a failure to start the process at all is
// returned as an error.
func (i *Invoker) Run(ctx context.Context, stdin, dir string) (*api.InvocationResult, error) {
	runCtx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, i.bin, i.fixedArgs...)
	cmd.Dir = dir
	cmd.Env = processEnv()
	cmd.Stdin = strings.NewReader(stdin)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	result := &api.InvocationResult{
		Output: stdout.String(),
		Stderr: stderr.String(),
	}

	switch {
	case err == nil:
		slog.Debug("Tool run completed", "bin", i.bin, "duration", elapsed)
		return result, nil

	case runCtx.Err() != nil && ctx.Err() == nil:
		// The per-run deadline fired and the process was killed. Whatever
		// output was captured before the kill stays in the result.
		result.ExitCode = -1
		if cmd.ProcessState != nil {
			result.ExitCode = cmd.ProcessState.ExitCode()
		}
		result.Error = fmt.Sprintf("command timed out after %v", i.timeout)
		slog.Warn("Tool run timed out", "bin", i.bin, "timeout", i.timeout)
		return result, nil

	default:
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			result.Error = fmt.Sprintf("command failed: %v", err)
			slog.Debug("Tool run failed", "bin", i.bin, "exitCode", result.ExitCode, "duration", elapsed)
			return result, nil
		}
		// The process never started (binary missing, permission denied,
		// caller cancelled before exec). No result to report.
		return nil, fmt.Errorf("starting %s: %w", i.bin, err)
	}
}

// processEnv returns the host environment with PATH explicitly propagated.
func processEnv() []string {
	env := os.Environ()
	for _, kv := range env {
		if strings.HasPrefix(kv, "PATH=") {
			return env
		}
	}
	return append(env, "PATH="+os.Getenv("PATH"))
}
