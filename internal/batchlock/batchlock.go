// Package batchlock serializes whole-batch file operations behind a
// single process-wide advisory mutex.
//
// The lock moves through free -> held -> (released | reclaimed-stale).
// Acquisition polls at a fixed interval rather than parking, which keeps
// waiters starvation-free and lets the manager reclaim locks abandoned by
// crashed or hung holders: any lock held past the stale ceiling is
// force-released on the next acquisition attempt.
//
// Two acquire variants are exposed so callers always know what a timeout
// means: Acquire gives up and returns ErrLockTimeout once its deadline
// passes, AcquireWait keeps retrying until its context is cancelled.
package batchlock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dshills/semsort/pkg/types"
)

const (
	// DefaultPollInterval is the retry cadence while the lock is held
	// by someone else.
	DefaultPollInterval = 100 * time.Millisecond

	// DefaultStaleAfter is the ceiling on how long a holder may keep
	// the lock before it is considered abandoned.
	DefaultStaleAfter = 5 * time.Minute
)

// ErrLockTimeout is returned by Acquire when the deadline elapses before
// the lock becomes free.
var ErrLockTimeout = types.ErrLockTimeout

// Manager arbitrates the single batch lock. At most one holder exists at
// any instant; ownership transfers only via explicit acquire/release.
type Manager struct {
	mu         sync.Mutex
	holder     string
	acquiredAt time.Time

	pollInterval time.Duration
	staleAfter   time.Duration
}

// Option configures a Manager.
type Option func(*Manager)

// WithPollInterval overrides the acquisition retry cadence.
func WithPollInterval(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.pollInterval = d
		}
	}
}

// WithStaleAfter overrides the stale-lock ceiling.
func WithStaleAfter(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.staleAfter = d
		}
	}
}

// NewManager creates a batch lock manager.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		pollInterval: DefaultPollInterval,
		staleAfter:   DefaultStaleAfter,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Acquire takes the lock for holderID, retrying at the poll interval
// until it succeeds, timeout elapses (ErrLockTimeout), or ctx is
// cancelled. Timeout means gave up: the attempt does not linger.
func (m *Manager) Acquire(ctx context.Context, holderID string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)

	for {
		if m.TryAcquire(holderID) {
			return nil
		}

		if !time.Now().Before(deadline) {
			return fmt.Errorf("%w: holder %q waited %v", ErrLockTimeout, holderID, timeout)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(m.pollInterval):
		}
	}
}

// AcquireWait takes the lock for holderID, retrying indefinitely until it
// succeeds or ctx is cancelled.
func (m *Manager) AcquireWait(ctx context.Context, holderID string) error {
	for {
		if m.TryAcquire(holderID) {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(m.pollInterval):
		}
	}
}

// TryAcquire attempts to take the lock without waiting. A lock held past
// the stale ceiling is reclaimed on the spot.
func (m *Manager) TryAcquire(holderID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.holder != "" && time.Since(m.acquiredAt) > m.staleAfter {
		// Abandoned holder; reclaim so the pipeline cannot wedge
		m.holder = ""
	}

	if m.holder != "" && m.holder != holderID {
		return false
	}

	m.holder = holderID
	m.acquiredAt = time.Now()
	return true
}

// Release frees the lock only when holderID matches the current holder.
// A release from a stale or wrong holder is a silent no-op.
func (m *Manager) Release(holderID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.holder != holderID {
		return
	}
	m.holder = ""
}

// Holder returns the current holder id, or "" when the lock is free.
func (m *Manager) Holder() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.holder
}
