package types

import "errors"

// Domain errors shared across pipeline components
var (
	// ErrInvalidInput signals malformed or empty input text. Preparer
	// operations handle it by returning an empty result instead of
	// propagating.
	ErrInvalidInput = errors.New("invalid input")

	// ErrValidation signals a vector that failed dimension or finiteness
	// checks. Permanent: jobs failing validation are dead-lettered
	// without retry and never written to cache or store.
	ErrValidation = errors.New("vector validation failed")

	// ErrBackend signals a transient embedding/generation call failure,
	// retried with bounded attempts.
	ErrBackend = errors.New("backend call failed")

	// ErrRetriesExhausted marks a job moved to the dead-letter set.
	ErrRetriesExhausted = errors.New("retry budget exhausted")

	// ErrLockTimeout means a batch operation could not acquire the
	// batch lock within its deadline.
	ErrLockTimeout = errors.New("batch lock acquisition timed out")

	// ErrPersistence signals a failed read/write of queue or tracker
	// state. Logged; the pipeline continues with in-memory state.
	ErrPersistence = errors.New("persistence failure")
)
