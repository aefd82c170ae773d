// Package workerpool implements C9: a fixed-size pool of workers draining
// C8's job queue, each running the C4→C5→C7→C6 pipeline for a single
// source path per claim.
package workerpool

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"heic-readyd/internal/activitylog"
	"heic-readyd/internal/atomicwrite"
	"heic-readyd/internal/classify"
	"heic-readyd/internal/config"
	"heic-readyd/internal/jobqueue"
	"heic-readyd/internal/outputname"
	"heic-readyd/internal/stabilize"
	"heic-readyd/internal/trash"
	"heic-readyd/internal/transcode"
)

// DefaultWorkers is the concurrency the spec pins as the default: the
// reference Transcoder is I/O- and codec-bound with heavy per-call memory,
// and more workers did not improve throughput in the source system.
const DefaultWorkers = 2

// Pool runs Workers goroutines consuming Queue until Run's context is
// canceled. Snapshot is called once per claimed job to read the current
// config (watch roots, pause state, quality, output policy) without
// blocking concurrent Replace calls on the config store.
type Pool struct {
	Queue      *jobqueue.Queue
	Snapshot   func() config.Config
	Transcoder transcode.Transcoder
	Mover      trash.Mover
	Log        *activitylog.Ring
	Logger     *slog.Logger
	Workers    int
}

// Run starts the pool's workers and blocks until ctx is canceled and every
// worker has returned from its current iteration.
func (p *Pool) Run(ctx context.Context) {
	workers := p.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			p.loop(ctx, id)
		}(i)
	}
	wg.Wait()
}

func (p *Pool) loop(ctx context.Context, id int) {
	if p.Logger != nil {
		p.Logger.Debug("worker started", "worker_id", id)
	}
	for {
		job, err := p.Queue.Claim(ctx)
		if err != nil {
			if p.Logger != nil {
				p.Logger.Debug("worker stopped", "worker_id", id)
			}
			return
		}
		p.process(job)
	}
}

func (p *Pool) process(job jobqueue.Job) {
	start := time.Now()
	path := string(job.Key)
	cfg := p.Snapshot()

	if p.Logger != nil {
		p.Logger.Debug("job claimed", "correlation_id", job.CorrelationID, "source", path, "attempts", job.Attempts)
	}

	// Step 2: pause is advisory before claim, enforced after.
	if cfg.Paused {
		p.Queue.Release(job.Key)
		p.append(activitylog.Entry{
			Result:     activitylog.ResultSkip,
			SourcePath: path,
			Reason:     "paused",
		})
		return
	}

	// Step 3: re-validate eligibility; the file may have been
	// renamed/removed between enqueue and claim.
	roots := classify.Roots{WatchFolders: cfg.WatchFolders, RecursiveWatch: cfg.RecursiveWatch}
	if !classify.IsEligible(path, roots) {
		p.Queue.Release(job.Key)
		p.append(activitylog.Entry{
			Result:     activitylog.ResultSkip,
			SourcePath: path,
			Reason:     "ineligible",
		})
		return
	}

	// Step 4: stabilization.
	switch stabilize.Check(path) {
	case stabilize.NotFound:
		p.Queue.Release(job.Key)
		p.append(activitylog.Entry{
			Result:     activitylog.ResultSkip,
			SourcePath: path,
			Reason:     "not-found",
		})
		return
	case stabilize.Unstable:
		if job.Attempts+1 >= stabilize.MaxAttempts {
			p.Queue.Release(job.Key)
			p.append(activitylog.Entry{
				Result:     activitylog.ResultSkip,
				SourcePath: path,
				Reason:     "unstable-retries-exhausted",
			})
			return
		}
		p.Queue.Requeue(job)
		return
	}

	// Step 5: resolve output name.
	target, err := outputname.Resolve(path)
	if err != nil {
		p.Queue.Release(job.Key)
		p.append(activitylog.Entry{
			Result:     activitylog.ResultFailure,
			SourcePath: path,
			Reason:     "collision-overflow",
		})
		return
	}
	tmpTarget := target + ".tmp"

	// Step 6: transcode.
	bytesWritten, err := p.Transcoder.Transcode(path, tmpTarget, cfg.JPEGQuality)
	if err != nil {
		os.Remove(tmpTarget)
		p.Queue.Release(job.Key)
		p.append(activitylog.Entry{
			Result:     activitylog.ResultFailure,
			SourcePath: path,
			OutputPath: target,
			Reason:     err.Error(),
		})
		return
	}

	// Step 7: atomic commit, then output policy.
	if err := atomicwrite.Commit(tmpTarget, target); err != nil {
		p.Queue.Release(job.Key)
		p.append(activitylog.Entry{
			Result:     activitylog.ResultFailure,
			SourcePath: path,
			OutputPath: target,
			Reason:     err.Error(),
		})
		return
	}

	outcome, ppErr := atomicwrite.ApplyPolicy(p.Mover, path, cfg.OutputPolicy)
	if ppErr != nil {
		p.append(activitylog.Entry{
			Result:     activitylog.ResultInfo,
			SourcePath: path,
			OutputPath: target,
			Reason:     "replace-skipped: " + ppErr.Error(),
		})
	}

	elapsed := time.Since(start)
	reason := fmt.Sprintf("elapsed_ms=%d bytes=%d", elapsed.Milliseconds(), bytesWritten)
	if outcome == atomicwrite.Trashed {
		reason += " trashed=true"
	}
	p.Queue.Release(job.Key)
	p.append(activitylog.Entry{
		Result:     activitylog.ResultSuccess,
		SourcePath: path,
		OutputPath: target,
		Reason:     reason,
	})
}

func (p *Pool) append(e activitylog.Entry) {
	if p.Log != nil {
		p.Log.Append(e)
	}
}
