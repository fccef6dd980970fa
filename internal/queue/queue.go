package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/semsort/pkg/types"
)

// Defaults applied when Config fields are zero.
const (
	DefaultWorkers      = 2
	DefaultMaxAttempts  = 3
	DefaultBaseDelay    = 500 * time.Millisecond
	DefaultMaxDelay     = 30 * time.Second
	DefaultPollInterval = 50 * time.Millisecond
)

// ErrQueueClosed is returned by Enqueue after Shutdown.
var ErrQueueClosed = errors.New("queue is closed")

// Handler processes one job. A nil return completes the job; an error
// schedules a retry unless the error is permanent or the retry budget is
// exhausted, in which case the job is dead-lettered.
type Handler func(ctx context.Context, job *types.QueueJob) error

// Config configures a stage queue.
type Config struct {
	// Workers bounds the number of jobs in flight at once.
	Workers int

	// MaxAttempts is the retry budget per job.
	MaxAttempts int

	// BaseDelay and MaxDelay bound the exponential backoff between
	// attempts.
	BaseDelay time.Duration
	MaxDelay  time.Duration

	// PollInterval is the dispatcher tick used to pick up jobs whose
	// backoff delay has elapsed.
	PollInterval time.Duration
}

func (c Config) withDefaults() Config {
	if c.Workers <= 0 {
		c.Workers = DefaultWorkers
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = DefaultBaseDelay
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = DefaultMaxDelay
	}
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	return c
}

// Stats is an observability snapshot of one stage queue.
type Stats struct {
	Stage     string
	Size      int
	Active    int
	Failed    int
	Processed int64
	Retried   int64
}

// StageQueue is a durable, retryable job queue for one pipeline stage.
// Pending jobs and dead-lettered jobs persist to separate files so both
// survive process restart. One job's exhaustion never blocks other jobs
// in this or any other stage.
type StageQueue struct {
	stage string
	cfg   Config
	store *jobStore

	mu         sync.Mutex
	pending    []*types.QueueJob
	active     map[string]*types.QueueJob
	deadLetter []*types.QueueJob
	closed     bool

	processed atomic.Int64
	retried   atomic.Int64

	wake chan struct{}
	done chan struct{}
	wg   sync.WaitGroup

	startOnce sync.Once
	stopOnce  sync.Once
}

// New creates the stage queue and rehydrates persisted state from dir.
// Jobs that were active at crash time come back as pending.
func New(stage, dir string, cfg Config) (*StageQueue, error) {
	if stage == "" {
		return nil, errors.New("stage name is required")
	}

	store, err := newJobStore(dir, stage)
	if err != nil {
		return nil, err
	}

	q := &StageQueue{
		stage:  stage,
		cfg:    cfg.withDefaults(),
		store:  store,
		active: make(map[string]*types.QueueJob),
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
	}

	pending, err := store.loadPending()
	if err != nil {
		// Degraded durability: continue with an empty in-memory queue
		log.Printf("queue %s: %v", stage, err)
	}
	for _, job := range pending {
		job.Status = types.JobPending
		q.pending = append(q.pending, job)
	}

	failed, err := store.loadFailed()
	if err != nil {
		log.Printf("queue %s: %v", stage, err)
	}
	q.deadLetter = failed

	return q, nil
}

// Stage returns the queue's stage name.
func (q *StageQueue) Stage() string {
	return q.stage
}

// Enqueue appends a pending job carrying the JSON-encoded payload and
// returns its id. The pending set is checkpointed before returning.
func (q *StageQueue) Enqueue(payload any) (string, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}

	job := &types.QueueJob{
		ID:         uuid.NewString(),
		Stage:      q.stage,
		Payload:    raw,
		Status:     types.JobPending,
		EnqueuedAt: time.Now(),
	}

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return "", ErrQueueClosed
	}
	q.pending = append(q.pending, job)
	q.persistPendingLocked()
	q.mu.Unlock()

	q.notify()
	return job.ID, nil
}

// Start launches the dispatcher. Jobs are handled with bounded
// concurrency until ctx is cancelled or Shutdown is called. Start is a
// no-op after the first call.
func (q *StageQueue) Start(ctx context.Context, handler Handler) {
	q.startOnce.Do(func() {
		q.wg.Add(1)
		go q.dispatch(ctx, handler)
	})
}

// Shutdown stops dispatching, waits for in-flight jobs, and checkpoints
// both persistence files. Safe to call multiple times.
func (q *StageQueue) Shutdown() {
	q.stopOnce.Do(func() {
		q.mu.Lock()
		q.closed = true
		q.mu.Unlock()

		close(q.done)
		q.wg.Wait()

		q.mu.Lock()
		q.persistPendingLocked()
		q.persistFailedLocked()
		q.mu.Unlock()
	})
}

// Stats returns a snapshot of queue counters.
func (q *StageQueue) Stats() Stats {
	q.mu.Lock()
	defer q.mu.Unlock()
	return Stats{
		Stage:     q.stage,
		Size:      len(q.pending),
		Active:    len(q.active),
		Failed:    len(q.deadLetter),
		Processed: q.processed.Load(),
		Retried:   q.retried.Load(),
	}
}

// DeadLetters returns copies of the dead-lettered jobs for inspection.
// They are never re-attempted automatically.
func (q *StageQueue) DeadLetters() []types.QueueJob {
	q.mu.Lock()
	defer q.mu.Unlock()

	jobs := make([]types.QueueJob, len(q.deadLetter))
	for i, job := range q.deadLetter {
		jobs[i] = *job
	}
	return jobs
}

func (q *StageQueue) notify() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// dispatch pulls ready jobs and hands them to workers, respecting the
// concurrency limit.
func (q *StageQueue) dispatch(ctx context.Context, handler Handler) {
	defer q.wg.Done()

	ticker := time.NewTicker(q.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-q.done:
			return
		case <-q.wake:
		case <-ticker.C:
		}

		for {
			job := q.takeReady()
			if job == nil {
				break
			}

			q.wg.Add(1)
			go func(job *types.QueueJob) {
				defer q.wg.Done()
				err := handler(ctx, job)
				q.complete(job, err)
			}(job)
		}
	}
}

// takeReady pops the first runnable pending job, or nil when the
// concurrency limit is reached or nothing is ready.
func (q *StageQueue) takeReady() *types.QueueJob {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.active) >= q.cfg.Workers {
		return nil
	}

	now := time.Now()
	for i, job := range q.pending {
		if !job.Ready(now) {
			continue
		}

		q.pending = append(q.pending[:i], q.pending[i+1:]...)
		job.Status = types.JobActive
		q.active[job.ID] = job
		return job
	}

	return nil
}

// complete records a handler outcome: success removes the job, failure
// either re-queues it with backoff or dead-letters it.
func (q *StageQueue) complete(job *types.QueueJob, err error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	delete(q.active, job.ID)

	if err == nil {
		q.processed.Add(1)
		q.persistPendingLocked()
		return
	}

	job.Attempts++
	job.LastError = err.Error()

	if IsPermanent(err) || job.Attempts >= q.cfg.MaxAttempts {
		if !IsPermanent(err) {
			job.LastError = fmt.Sprintf("%v: %v", types.ErrRetriesExhausted, err)
		}
		job.Status = types.JobFailed
		q.deadLetter = append(q.deadLetter, job)
		q.persistPendingLocked()
		q.persistFailedLocked()
		log.Printf("queue %s: job %s dead-lettered after %d attempts: %v",
			q.stage, job.ID, job.Attempts, err)
		return
	}

	job.Status = types.JobPending
	job.NextAttemptAt = time.Now().Add(backoffDelay(q.cfg, job.Attempts))
	q.pending = append(q.pending, job)
	q.retried.Add(1)
	q.persistPendingLocked()
}

// persistPendingLocked checkpoints pending plus in-flight jobs so a crash
// re-runs rather than loses active work. Caller holds q.mu.
func (q *StageQueue) persistPendingLocked() {
	jobs := make([]*types.QueueJob, 0, len(q.pending)+len(q.active))
	jobs = append(jobs, q.pending...)
	for _, job := range q.active {
		jobs = append(jobs, job)
	}

	if err := q.store.savePending(jobs); err != nil {
		log.Printf("queue %s: %v", q.stage, err)
	}
}

func (q *StageQueue) persistFailedLocked() {
	if err := q.store.saveFailed(q.deadLetter); err != nil {
		log.Printf("queue %s: %v", q.stage, err)
	}
}
