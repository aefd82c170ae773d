package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"heic-readyd/internal/jobqueue"
)

func TestDispatcherEnqueuesEligibleFile(t *testing.T) {
	dir := t.TempDir()
	queue := jobqueue.New()

	d, err := New(queue, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer d.Close()

	if err := d.Start([]string{dir}, false); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer d.Stop()

	target := filepath.Join(dir, "photo.heic")
	if err := os.WriteFile(target, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for queue.Len() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if queue.Len() != 1 {
		t.Fatalf("queue.Len() = %d, want 1", queue.Len())
	}
}

func TestDispatcherIgnoresNonImageFiles(t *testing.T) {
	dir := t.TempDir()
	queue := jobqueue.New()

	d, err := New(queue, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer d.Close()

	if err := d.Start([]string{dir}, false); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer d.Stop()

	target := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(target, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	time.Sleep(200 * time.Millisecond)
	if got := queue.Len(); got != 0 {
		t.Fatalf("queue.Len() = %d, want 0 for a non-image file", got)
	}
}

func TestDispatcherRecursiveWatchesNewSubdirectory(t *testing.T) {
	dir := t.TempDir()
	queue := jobqueue.New()

	d, err := New(queue, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer d.Close()

	if err := d.Start([]string{dir}, true); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer d.Stop()

	sub := filepath.Join(dir, "subdir")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	// Give the dispatcher time to notice the new directory and watch it.
	time.Sleep(200 * time.Millisecond)

	target := filepath.Join(sub, "photo.heif")
	if err := os.WriteFile(target, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for queue.Len() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if queue.Len() != 1 {
		t.Fatalf("queue.Len() = %d, want 1 for file in newly created subdirectory", queue.Len())
	}
}

func TestStartTwiceErrors(t *testing.T) {
	dir := t.TempDir()
	queue := jobqueue.New()

	d, err := New(queue, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer d.Close()

	if err := d.Start([]string{dir}, false); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer d.Stop()

	if err := d.Start([]string{dir}, false); err == nil {
		t.Fatal("expected error starting an already-running dispatcher")
	}
}
