// Package optracker records file operations the pipeline performs so the
// filesystem watcher can tell the pipeline's own side effects apart from
// genuinely external changes.
//
// Each record lives for one cooldown window. Records survive restarts:
// Shutdown persists everything still inside the window and Initialize
// rehydrates it, discarding records that expired while the process was
// down. Without this a restart would reopen the feedback loop where the
// watcher reprocesses files the organizer just moved.
package optracker

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/dshills/semsort/pkg/types"
)

// DefaultCooldown is the window during which a path's recent operation is
// treated as "self".
const DefaultCooldown = 5 * time.Second

// Well-known operation sources.
const (
	SourcePipeline = "pipeline"
	SourceWatcher  = "watcher"
)

// Record is one tracked operation on a normalized path.
type Record struct {
	Path          string    `json:"path"`
	OperationType string    `json:"operationType"`
	Source        string    `json:"source"`
	Timestamp     time.Time `json:"timestamp"`
}

// Tracker is a cooldown-bounded set of operation records keyed by path.
// All methods are safe for concurrent use.
type Tracker struct {
	mu       sync.Mutex
	records  map[string]Record
	cooldown time.Duration
	path     string
}

// New creates a tracker persisting to statePath. A non-positive cooldown
// falls back to DefaultCooldown.
func New(statePath string, cooldown time.Duration) *Tracker {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &Tracker{
		records:  make(map[string]Record),
		cooldown: cooldown,
		path:     statePath,
	}
}

// Initialize loads persisted records, discarding any already past the
// cooldown window. A missing state file is not an error.
func (t *Tracker) Initialize() error {
	data, err := os.ReadFile(t.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: read tracker state: %v", types.ErrPersistence, err)
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("%w: decode tracker state: %v", types.ErrPersistence, err)
	}

	cutoff := time.Now().Add(-t.cooldown)

	t.mu.Lock()
	defer t.mu.Unlock()
	for _, rec := range records {
		if rec.Timestamp.After(cutoff) {
			t.records[rec.Path] = rec
		}
	}
	return nil
}

// RecordOperation timestamps an operation performed by source on the
// normalized path, replacing any earlier record for the same path.
func (t *Tracker) RecordOperation(path, operationType, source string) {
	key := NormalizePath(path)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.records[key] = Record{
		Path:          key,
		OperationType: operationType,
		Source:        source,
		Timestamp:     time.Now(),
	}
}

// WasRecentlyOperated reports whether an un-expired record exists for the
// path whose source differs from excludeSource. Passing the caller's own
// source lets it ignore its own operations while still reacting to
// someone else touching the same path.
func (t *Tracker) WasRecentlyOperated(path, excludeSource string) bool {
	key := NormalizePath(path)

	t.mu.Lock()
	defer t.mu.Unlock()

	rec, ok := t.records[key]
	if !ok {
		return false
	}

	if time.Since(rec.Timestamp) >= t.cooldown {
		delete(t.records, key)
		return false
	}

	return excludeSource == "" || rec.Source != excludeSource
}

// Len returns the number of un-expired records, pruning expired ones.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pruneLocked()
	return len(t.records)
}

// Shutdown persists all currently un-expired records so a restart does
// not reopen a feedback-loop window. Safe to call multiple times.
func (t *Tracker) Shutdown() error {
	t.mu.Lock()
	t.pruneLocked()
	records := make([]Record, 0, len(t.records))
	for _, rec := range t.records {
		records = append(records, rec)
	}
	t.mu.Unlock()

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode tracker state: %v", types.ErrPersistence, err)
	}

	if err := os.MkdirAll(filepath.Dir(t.path), 0o755); err != nil {
		return fmt.Errorf("%w: create tracker state dir: %v", types.ErrPersistence, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(t.path), filepath.Base(t.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: create tracker temp: %v", types.ErrPersistence, err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("%w: write tracker state: %v", types.ErrPersistence, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("%w: close tracker state: %v", types.ErrPersistence, err)
	}
	if err := os.Rename(tmp.Name(), t.path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("%w: rename tracker state: %v", types.ErrPersistence, err)
	}
	return nil
}

func (t *Tracker) pruneLocked() {
	cutoff := time.Now().Add(-t.cooldown)
	for key, rec := range t.records {
		if !rec.Timestamp.After(cutoff) {
			delete(t.records, key)
		}
	}
}

// NormalizePath canonicalizes a path for tracking: cleaned, forward
// slashes, lower-cased so case-insensitive filesystems cannot dodge the
// cooldown by changing case.
func NormalizePath(path string) string {
	cleaned := filepath.Clean(path)
	cleaned = filepath.ToSlash(cleaned)
	return strings.ToLower(cleaned)
}
