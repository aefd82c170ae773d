package workerpool

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"heic-readyd/internal/activitylog"
	"heic-readyd/internal/config"
	"heic-readyd/internal/jobqueue"
	"heic-readyd/internal/trash"
	"heic-readyd/internal/transcode"
)

func waitForEntries(t *testing.T, ring *activitylog.Ring, min int) []activitylog.Entry {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if got := ring.Recent(); len(got) >= min {
			return got
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d ring entries", min)
	return nil
}

func newTestConfig(dir string) config.Config {
	cfg := config.Default()
	cfg.WatchFolders = []string{dir}
	cfg.RecursiveWatch = false
	cfg.JPEGQuality = 80
	cfg.OutputPolicy = config.PolicyCoexist
	return cfg
}

func TestPoolConvertsEligibleFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "photo.heic")
	if err := os.WriteFile(src, []byte("heic-bytes"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}

	cfg := newTestConfig(dir)
	queue := jobqueue.New()
	ring := activitylog.New(nil)
	pool := &Pool{
		Queue:      queue,
		Snapshot:   func() config.Config { return cfg },
		Transcoder: transcode.NewFake(),
		Mover:      trash.NewFake(),
		Log:        ring,
		Workers:    1,
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		pool.Run(ctx)
		close(done)
	}()

	queue.Enqueue(jobqueue.JobKey(src))

	entries := waitForEntries(t, ring, 1)
	if entries[0].Result != activitylog.ResultSuccess {
		t.Fatalf("result = %v, want success: %+v", entries[0].Result, entries[0])
	}
	if _, err := os.Stat(entries[0].OutputPath); err != nil {
		t.Fatalf("expected output file to exist: %v", err)
	}

	cancel()
	<-done
}

func TestPoolSkipsWhenPaused(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "photo.heic")
	if err := os.WriteFile(src, []byte("heic-bytes"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}

	cfg := newTestConfig(dir)
	cfg.Paused = true
	queue := jobqueue.New()
	ring := activitylog.New(nil)
	pool := &Pool{
		Queue:      queue,
		Snapshot:   func() config.Config { return cfg },
		Transcoder: transcode.NewFake(),
		Mover:      trash.NewFake(),
		Log:        ring,
		Workers:    1,
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		pool.Run(ctx)
		close(done)
	}()

	queue.Enqueue(jobqueue.JobKey(src))

	entries := waitForEntries(t, ring, 1)
	if entries[0].Result != activitylog.ResultSkip || entries[0].Reason != "paused" {
		t.Fatalf("entry = %+v, want skip/paused", entries[0])
	}

	cancel()
	<-done
}

func TestPoolSkipsIneligibleAfterRename(t *testing.T) {
	dir := t.TempDir()
	outsideDir := t.TempDir()
	src := filepath.Join(outsideDir, "photo.heic")
	if err := os.WriteFile(src, []byte("heic-bytes"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}

	cfg := newTestConfig(dir) // src is not under any watch folder
	queue := jobqueue.New()
	ring := activitylog.New(nil)
	pool := &Pool{
		Queue:      queue,
		Snapshot:   func() config.Config { return cfg },
		Transcoder: transcode.NewFake(),
		Mover:      trash.NewFake(),
		Log:        ring,
		Workers:    1,
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		pool.Run(ctx)
		close(done)
	}()

	queue.Enqueue(jobqueue.JobKey(src))

	entries := waitForEntries(t, ring, 1)
	if entries[0].Result != activitylog.ResultSkip || entries[0].Reason != "ineligible" {
		t.Fatalf("entry = %+v, want skip/ineligible", entries[0])
	}

	cancel()
	<-done
}
