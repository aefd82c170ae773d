package rescan

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"heic-readyd/internal/jobqueue"
)

func TestSweepEnqueuesMissingJPEG(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.heic"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	queue := jobqueue.New()
	tk := &Ticker{
		Queue:    queue,
		Roots:    func() ([]string, bool) { return []string{dir}, false },
		Interval: func() time.Duration { return time.Hour },
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() { tk.Run(ctx); close(done) }()

	deadline := time.Now().Add(time.Second)
	for queue.Len() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if got := queue.Len(); got != 1 {
		t.Fatalf("queue.Len() = %d, want 1", got)
	}

	cancel()
	<-done
}

func TestSweepSkipsFileWithExistingJPEG(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.heic"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write heic: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "a.jpg"), []byte("y"), 0o644); err != nil {
		t.Fatalf("write jpg: %v", err)
	}

	queue := jobqueue.New()
	tk := &Ticker{
		Queue:    queue,
		Roots:    func() ([]string, bool) { return []string{dir}, false },
		Interval: func() time.Duration { return time.Hour },
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() { tk.Run(ctx); close(done) }()

	time.Sleep(100 * time.Millisecond)
	if got := queue.Len(); got != 0 {
		t.Fatalf("queue.Len() = %d, want 0 (JPEG already exists)", got)
	}

	cancel()
	<-done
}

func TestSweepRespectsNonRecursive(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "nested")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(sub, "a.heic"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	queue := jobqueue.New()
	tk := &Ticker{
		Queue:    queue,
		Roots:    func() ([]string, bool) { return []string{dir}, false },
		Interval: func() time.Duration { return time.Hour },
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() { tk.Run(ctx); close(done) }()

	time.Sleep(100 * time.Millisecond)
	if got := queue.Len(); got != 0 {
		t.Fatalf("queue.Len() = %d, want 0 for non-recursive sweep of nested file", got)
	}

	cancel()
	<-done
}
