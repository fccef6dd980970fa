package types

import (
	"encoding/json"
	"errors"
	"time"
)

// JobStatus represents the lifecycle state of a queued job
type JobStatus string

const (
	JobPending JobStatus = "pending"
	JobActive  JobStatus = "active"
	JobFailed  JobStatus = "failed"
)

// QueueJob is one unit of work owned by a stage queue for its whole
// lifecycle. Jobs are persisted so they survive process restart; a job
// that exhausts its retry budget moves to the stage's dead-letter set.
type QueueJob struct {
	ID         string          `json:"id"`
	Stage      string          `json:"stage"`
	Payload    json.RawMessage `json:"payload"`
	Attempts   int             `json:"attempts"`
	Status     JobStatus       `json:"status"`
	EnqueuedAt time.Time       `json:"enqueued_at"`

	// LastError records the most recent handler failure, set on retry
	// and on dead-letter.
	LastError string `json:"last_error,omitempty"`

	// NextAttemptAt delays re-dispatch after a failed attempt. Zero
	// means the job is immediately runnable.
	NextAttemptAt time.Time `json:"next_attempt_at,omitzero"`
}

// Validate checks structural integrity of the job
func (j *QueueJob) Validate() error {
	if j.ID == "" {
		return errors.New("job ID is required")
	}

	if j.Stage == "" {
		return errors.New("job stage is required")
	}

	switch j.Status {
	case JobPending, JobActive, JobFailed:
	default:
		return errors.New("invalid job status")
	}

	return nil
}

// Ready reports whether the job may be dispatched at the given time
func (j *QueueJob) Ready(now time.Time) bool {
	return j.Status == JobPending && !now.Before(j.NextAttemptAt)
}
