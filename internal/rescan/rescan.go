// Package rescan implements C11: a periodic full sweep of the watched
// folders that enqueues any HEIC/HEIF file missing its corresponding JPEG.
// It is the recovery mechanism for events missed at startup, a user
// deleting only the generated JPEG, and changes made while paused; it never
// deletes or modifies a file itself.
package rescan

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"heic-readyd/internal/classify"
	"heic-readyd/internal/jobqueue"
	"heic-readyd/internal/outputname"
)

// Ticker runs sweep once immediately and then every interval until its
// context is canceled.
type Ticker struct {
	Queue    *jobqueue.Queue
	Roots    func() (folders []string, recursive bool)
	Interval func() time.Duration
	Logger   *slog.Logger
}

// Run blocks until ctx is canceled, sweeping once at startup and again on
// every tick thereafter. A reconfiguration that changes rescan_interval_secs
// is handled by the controller tearing down and rebuilding the Ticker, not
// by this loop re-reading the interval mid-wait.
func (t *Ticker) Run(ctx context.Context) {
	t.sweep()

	interval := t.Interval()
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.sweep()
		}
	}
}

func (t *Ticker) sweep() {
	folders, recursive := t.Roots()
	roots := classify.Roots{WatchFolders: folders, RecursiveWatch: recursive}

	for _, root := range folders {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil // best-effort: skip unreadable entries, keep sweeping
			}
			if d.IsDir() {
				if !recursive && path != root {
					return filepath.SkipDir
				}
				return nil
			}
			t.maybeEnqueue(path, roots)
			return nil
		})
		if err != nil && t.Logger != nil {
			t.Logger.Warn("rescan: walk failed", "root", root, "error", err)
		}
	}
}

func (t *Ticker) maybeEnqueue(path string, roots classify.Roots) {
	if !classify.IsEligible(path, roots) {
		return
	}

	target := outputname.Preferred(path)
	if _, err := os.Stat(target); err == nil {
		return // corresponding JPEG already exists
	}

	canonical, err := filepath.Abs(path)
	if err != nil {
		canonical = path
	}
	t.Queue.Enqueue(jobqueue.JobKey(canonical))
}
