// Package watch implements C10: a filesystem-event dispatcher that filters
// through classify and enqueues eligible paths onto a jobqueue.Queue. It is
// shaped after a conventional fsnotify-backed file watcher: a running flag
// guarded by a mutex, a done channel for shutdown, and a single goroutine
// owning the fsnotify.Watcher for its entire lifetime.
package watch

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"heic-readyd/internal/classify"
	"heic-readyd/internal/jobqueue"
)

// Dispatcher watches a set of roots (optionally recursively) and enqueues
// JobKeys for every Create/Write event whose path satisfies
// classify.IsEligible. Delete and rename-from events are ignored for job
// purposes: fsnotify reports a rename as a Rename on the old name and a
// Create on the new one, and only the latter matters here.
type Dispatcher struct {
	watcher *fsnotify.Watcher
	queue   *jobqueue.Queue
	logger  *slog.Logger

	mu        sync.Mutex
	running   bool
	roots     []string
	recursive bool
	done      chan struct{}
	wg        sync.WaitGroup
}

// New creates a Dispatcher that enqueues onto queue. It does not begin
// watching until Start is called.
func New(queue *jobqueue.Queue, logger *slog.Logger) (*Dispatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}
	return &Dispatcher{watcher: w, queue: queue, logger: logger}, nil
}

// Start registers roots with the OS change notifier and begins the event
// loop. If recursive is true, every subdirectory discovered at start time,
// and every subdirectory created afterward, is added too. Start fails
// atomically: if any root cannot be watched, none are left registered.
func (d *Dispatcher) Start(roots []string, recursive bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.running {
		return fmt.Errorf("watch: dispatcher already running")
	}

	added := make([]string, 0, len(roots))
	for _, root := range roots {
		dirs := []string{root}
		if recursive {
			subdirs, err := listSubdirs(root)
			if err != nil {
				d.unwatchAll(added)
				return fmt.Errorf("watch: walk %s: %w", root, err)
			}
			dirs = append(dirs, subdirs...)
		}
		for _, dir := range dirs {
			if err := d.watcher.Add(dir); err != nil {
				d.unwatchAll(added)
				return fmt.Errorf("watch: watch %s: %w", dir, err)
			}
			added = append(added, dir)
		}
	}

	d.roots = roots
	d.recursive = recursive
	d.done = make(chan struct{})
	d.running = true
	d.wg.Add(1)
	go d.processEvents()
	return nil
}

func (d *Dispatcher) unwatchAll(dirs []string) {
	for _, dir := range dirs {
		d.watcher.Remove(dir)
	}
}

// Stop tears down the current watch set and blocks until the event loop has
// exited. Calling Stop on a Dispatcher that was never started is a no-op.
func (d *Dispatcher) Stop() error {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return nil
	}
	d.running = false
	close(d.done)
	d.mu.Unlock()

	for _, root := range d.currentRoots() {
		d.watcher.Remove(root)
	}
	d.wg.Wait()
	return nil
}

func (d *Dispatcher) currentRoots() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.roots...)
}

// Close releases the underlying fsnotify watcher. Call it once the
// Dispatcher is permanently retired (not merely torn down for a
// reconfiguration, in which case a fresh Dispatcher should be built).
func (d *Dispatcher) Close() error {
	return d.watcher.Close()
}

func (d *Dispatcher) processEvents() {
	defer d.wg.Done()

	for {
		select {
		case <-d.done:
			return

		case event, ok := <-d.watcher.Events:
			if !ok {
				return
			}
			d.handle(event)

		case err, ok := <-d.watcher.Errors:
			if !ok {
				return
			}
			if d.logger != nil {
				d.logger.Warn("watch: notifier error", "error", err)
			}
		}
	}
}

func (d *Dispatcher) handle(event fsnotify.Event) {
	if !interesting(event.Op) {
		return
	}

	if d.recursive && event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			d.watchNewSubtree(event.Name)
			return
		}
	}

	roots := classify.Roots{WatchFolders: d.currentRoots(), RecursiveWatch: d.recursiveFlag()}
	if !classify.IsEligible(event.Name, roots) {
		return
	}

	canonical, err := filepath.Abs(event.Name)
	if err != nil {
		canonical = event.Name
	}
	d.queue.Enqueue(jobqueue.JobKey(canonical))
}

func (d *Dispatcher) recursiveFlag() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.recursive
}

// watchNewSubtree adds dir (and, recursively, everything under it) to the
// live watcher. This is how a non-recursive-by-default fsnotify.Watcher
// gains recursive behavior: the dispatcher re-walks on every directory
// creation event instead of relying on the OS to do it.
func (d *Dispatcher) watchNewSubtree(dir string) {
	subdirs, err := listSubdirs(dir)
	if err != nil {
		if d.logger != nil {
			d.logger.Warn("watch: walk new subtree", "dir", dir, "error", err)
		}
		return
	}
	for _, sub := range append([]string{dir}, subdirs...) {
		if err := d.watcher.Add(sub); err != nil && d.logger != nil {
			d.logger.Warn("watch: add new subtree dir", "dir", sub, "error", err)
		}
	}
}

func interesting(op fsnotify.Op) bool {
	return op&(fsnotify.Create|fsnotify.Write) != 0
}

func listSubdirs(root string) ([]string, error) {
	var subdirs []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() && path != root {
			subdirs = append(subdirs, path)
		}
		return nil
	})
	return subdirs, err
}
