package workspace

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Reap scans scratchRoot once and removes every directory matching DirPrefix.
// Anything still present belongs to an invocation that never reached cleanup,
// typically because a previous run crashed. Each removal is attempted
// independently; a failure is logged and does not stop the rest. Returns the
// number of directories removed.
//
// Directories created by a concurrently running process sharing the same
// scratch root would also match. That is accepted for the single-host
// deployment this targets.
func Reap(scratchRoot string) int {
	entries, err := os.ReadDir(scratchRoot)
	if err != nil {
		slog.Warn("Failed to scan scratch root for stale working directories", "root", scratchRoot, "error", err)
		return 0
	}

	removed := 0
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), DirPrefix) {
			continue
		}
		dir := filepath.Join(scratchRoot, entry.Name())
		if err := os.RemoveAll(dir); err != nil {
			slog.Warn("Failed to remove stale working directory", "dir", dir, "error", err)
			continue
		}
		slog.Debug("Removed stale working directory", "dir", dir)
		removed++
	}
	return removed
}
