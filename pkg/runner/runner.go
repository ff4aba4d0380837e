// Package runner wires the admission queue, workspace lifecycle, and process
// invoker into the end-to-end invocation pipeline.
package runner

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/runbridge/runbridge/pkg/api"
	"github.com/runbridge/runbridge/pkg/config"
	"github.com/runbridge/runbridge/pkg/invoker"
	"github.com/runbridge/runbridge/pkg/queue"
	"github.com/runbridge/runbridge/pkg/workspace"
)

// Runner executes invocation requests against the configured external tool,
// at most MaxConcurrency at a time.
type Runner struct {
	queue       *queue.Queue
	invoker     *invoker.Invoker
	scratchRoot string
}

// New validates the configuration, sweeps stale working directories left by
// previous runs, and returns a ready runner. The sweep happens here, before
// any invocation can be admitted.
func New(cfg config.Config) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	q, err := queue.New(cfg.MaxConcurrency)
	if err != nil {
		return nil, err
	}

	if removed := workspace.Reap(cfg.ScratchRoot); removed > 0 {
		slog.Info("Removed stale working directories", "count", removed, "root", cfg.ScratchRoot)
	}

	return &Runner{
		queue:       q,
		invoker:     invoker.New(cfg.ToolBin, cfg.ToolArgs, cfg.Timeout()),
		scratchRoot: cfg.ScratchRoot,
	}, nil
}

// Invoke queues the request and blocks until it has run. The concurrency
// slot is held from working-directory creation through removal, not just for
// the subprocess itself.
func (r *Runner) Invoke(ctx context.Context, req api.InvocationRequest) (*api.InvocationResult, error) {
	f := queue.Submit(r.queue, func() (*api.InvocationResult, error) {
		return r.run(ctx, req)
	})
	return f.Wait(ctx)
}

func (r *Runner) run(ctx context.Context, req api.InvocationRequest) (*api.InvocationResult, error) {
	log := slog.With("invocation", uuid.NewString())

	ws, err := workspace.Acquire(r.scratchRoot)
	if err != nil {
		return nil, err
	}
	// Release runs on every exit path, including materialization failures
	// and tool start failures.
	defer ws.Release()

	if err := ws.Materialize(ctx, req.Attachments); err != nil {
		return nil, err
	}

	prompt := workspace.BuildPrompt(req.Instruction, req.Attachments)

	log.Debug("Running tool", "dir", ws.Dir(), "attachments", len(req.Attachments))
	start := time.Now()
	result, err := r.invoker.Run(ctx, prompt, ws.Dir())
	if err != nil {
		log.Error("Tool could not be started", "error", err)
		return nil, err
	}

	log.Info("Invocation finished", "exitCode", result.ExitCode, "duration", time.Since(start))
	return result, nil
}
