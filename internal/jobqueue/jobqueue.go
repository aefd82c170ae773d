// Package jobqueue implements C8: a de-duplicating, ordered queue of
// pending source paths. A key appears at most once across "pending" and
// "in-flight" combined, so a burst of filesystem events for the same file
// costs at most one queue slot, and the rescan ticker can enqueue freely
// without racing a worker already processing the same path.
package jobqueue

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// JobKey is the canonicalized absolute path of a source file. Equality
// defines queue identity.
type JobKey string

// Job is one unit of work: a key, when it first entered the queue, how many
// stabilization attempts have been spent on it, and a CorrelationID that
// stays stable across requeues so a structured log trace can follow one
// source file through every retry.
type Job struct {
	Key           JobKey
	EnqueuedAt    time.Time
	Attempts      int
	CorrelationID string
}

// Queue is safe for concurrent use by multiple producers (the watch
// dispatcher, the rescan ticker) and multiple consumers (worker pool
// goroutines).
type Queue struct {
	mu       chan struct{}
	pending  []Job
	inSet    map[JobKey]struct{}
	inFlight map[JobKey]struct{}
	ready    chan struct{}
	now      func() time.Time
}

// New returns an empty Queue.
func New() *Queue {
	return &Queue{
		mu:       make(chan struct{}, 1),
		inSet:    make(map[JobKey]struct{}),
		inFlight: make(map[JobKey]struct{}),
		ready:    make(chan struct{}, 1),
		now:      time.Now,
	}
}

func (q *Queue) lock()   { q.mu <- struct{}{} }
func (q *Queue) unlock() { <-q.mu }

// Enqueue appends key to the tail of the queue unless it is already pending
// or in flight, in which case it is a no-op.
func (q *Queue) Enqueue(key JobKey) {
	q.lock()
	defer q.unlock()
	q.enqueueLocked(key, 0, uuid.NewString())
}

func (q *Queue) enqueueLocked(key JobKey, attempts int, correlationID string) {
	if _, pending := q.inSet[key]; pending {
		return
	}
	if _, flight := q.inFlight[key]; flight {
		return
	}
	q.inSet[key] = struct{}{}
	q.pending = append(q.pending, Job{Key: key, EnqueuedAt: q.now(), Attempts: attempts, CorrelationID: correlationID})
	q.signalReady()
}

func (q *Queue) signalReady() {
	select {
	case q.ready <- struct{}{}:
	default:
	}
}

// Claim blocks until a key is available, then atomically moves it from
// pending to InFlight and returns it. It returns ctx.Err() if ctx is
// canceled first.
func (q *Queue) Claim(ctx context.Context) (Job, error) {
	for {
		q.lock()
		if len(q.pending) > 0 {
			job := q.pending[0]
			q.pending = q.pending[1:]
			delete(q.inSet, job.Key)
			q.inFlight[job.Key] = struct{}{}
			q.unlock()
			return job, nil
		}
		q.unlock()

		select {
		case <-q.ready:
		case <-ctx.Done():
			return Job{}, ctx.Err()
		}
	}
}

// Release removes key from InFlight. Between Claim and Release, a re-enqueue
// of the same key is suppressed.
func (q *Queue) Release(key JobKey) {
	q.lock()
	delete(q.inFlight, key)
	q.unlock()
}

// Requeue releases job from InFlight and re-appends it to the tail of the
// queue with Attempts incremented, for a job whose stabilization check
// failed but has not yet exhausted its retry budget. The original
// CorrelationID is preserved so log traces follow the retry.
func (q *Queue) Requeue(job Job) {
	q.Release(job.Key)
	q.lock()
	defer q.unlock()
	q.enqueueLocked(job.Key, job.Attempts+1, job.CorrelationID)
}

// DrainPending removes and returns every pending (not in-flight) job,
// leaving InFlight untouched. Shutdown calls this to drop queued-but-not-
// started work without interrupting jobs already claimed by a worker.
func (q *Queue) DrainPending() []Job {
	q.lock()
	defer q.unlock()
	drained := q.pending
	q.pending = nil
	for _, job := range drained {
		delete(q.inSet, job.Key)
	}
	return drained
}

// Len reports the number of pending (not in-flight) jobs.
func (q *Queue) Len() int {
	q.lock()
	defer q.unlock()
	return len(q.pending)
}
