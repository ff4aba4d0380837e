// Package workspace manages the isolated working directory that one
// invocation runs in: creation under the scratch root, attachment
// materialization, and guaranteed removal.
package workspace

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"
	"golang.org/x/sync/errgroup"

	"github.com/runbridge/runbridge/pkg/api"
)

// DirPrefix identifies working directories created by runbridge. The orphan
// reaper uses it to recognize directories left behind by crashed runs.
const DirPrefix = "runbridge-job-"

// promptPreamble prefixes the instruction when attachments are present. The
// "@name" markers follow the convention agent CLIs use for "read this local
// file".
const promptPreamble = "Here are the user provided files for context:"

// Workspace is a fresh directory owned by exactly one in-flight invocation.
// It is never shared or reused.
type Workspace struct {
	dir string
}

// Acquire creates a new working directory under scratchRoot with an
// unpredictable suffix. The invocation fails fast here if the scratch root
// is not writable; the external tool never runs without a directory.
func Acquire(scratchRoot string) (*Workspace, error) {
	dir, err := os.MkdirTemp(scratchRoot, DirPrefix+"*")
	if err != nil {
		return nil, fmt.Errorf("creating working directory under %s: %w", scratchRoot, err)
	}
	return &Workspace{dir: dir}, nil
}

// Dir returns the working directory path.
func (w *Workspace) Dir() string {
	return w.dir
}

// Materialize decodes every attachment and writes it into the workspace.
// Writes run concurrently but all complete before Materialize returns, so
// the tool always sees the full set. Any single failure aborts the whole
// invocation; files already written are left for Release to sweep up.
func (w *Workspace) Materialize(ctx context.Context, attachments []api.Attachment) error {
	var g errgroup.Group
	for _, att := range attachments {
		att := att
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return w.writeAttachment(att)
		})
	}
	return g.Wait()
}

func (w *Workspace) writeAttachment(att api.Attachment) error {
	if att.Name == "" || !filepath.IsLocal(att.Name) {
		return fmt.Errorf("attachment name %q escapes the working directory", att.Name)
	}

	data, err := base64.StdEncoding.DecodeString(att.Content)
	if err != nil {
		return fmt.Errorf("decoding attachment %s: %w", att.Name, err)
	}

	path := filepath.Join(w.dir, att.Name)
	if parent := filepath.Dir(path); parent != w.dir {
		if err := os.MkdirAll(parent, 0o755); err != nil {
			return fmt.Errorf("creating directory for attachment %s: %w", att.Name, err)
		}
	}

	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("writing attachment %s: %w", att.Name, err)
	}
	return nil
}

// BuildPrompt returns the text handed to the tool on stdin. With no
// attachments the instruction passes through unmodified; otherwise a
// reference line naming every attachment is prepended so the tool knows to
// read them from its working directory.
func BuildPrompt(instruction string, attachments []api.Attachment) string {
	if len(attachments) == 0 {
		return instruction
	}

	var sb strings.Builder
	sb.WriteString(promptPreamble)
	for _, att := range attachments {
		sb.WriteString(" @")
		sb.WriteString(att.Name)
	}
	sb.WriteString("\n\n")
	sb.WriteString(instruction)
	return sb.String()
}

// Release removes the working directory and everything in it. It runs on
// every exit path; a removal failure is logged and never replaces the
// invocation's outcome.
func (w *Workspace) Release() {
	if err := os.RemoveAll(w.dir); err != nil {
		slog.Warn("Failed to remove working directory", "dir", w.dir, "error", err)
	}
}
