// Package watcher turns filesystem events in the organize roots into
// re-index requests, while suppressing the pipeline's own side effects.
//
// Every move the organizer performs raises Create/Rename events; without
// the operation tracker those would feed straight back into indexing and
// the system would chase its own tail. Events on paths the tracker marks
// as recently touched by another source are dropped.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dshills/semsort/internal/optracker"
)

// ChangeType classifies a filesystem change.
type ChangeType string

const (
	ChangeCreated ChangeType = "created"
	ChangeUpdated ChangeType = "updated"
	ChangeDeleted ChangeType = "deleted"
)

// DefaultDebounce is how long a path must stay quiet before its change
// is delivered. Editors often emit bursts of writes for a single save.
const DefaultDebounce = 500 * time.Millisecond

// Change is one debounced, tracker-filtered filesystem change.
type Change struct {
	Path string
	Type ChangeType
}

// Handler receives changes. Returned errors are logged, not fatal.
type Handler func(ctx context.Context, change Change) error

// Watcher observes a set of root directories.
type Watcher struct {
	fsw      *fsnotify.Watcher
	tracker  *optracker.Tracker
	handler  Handler
	debounce time.Duration

	mu      sync.Mutex
	pending map[string]*pendingChange
}

type pendingChange struct {
	change Change
	timer  *time.Timer
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce overrides the quiet window before delivery.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// New creates a watcher that filters self-inflicted events through
// tracker and delivers the rest to handler.
func New(tracker *optracker.Tracker, handler Handler, opts ...Option) (*Watcher, error) {
	if tracker == nil {
		return nil, errors.New("tracker is required")
	}
	if handler == nil {
		return nil, errors.New("handler is required")
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	w := &Watcher{
		fsw:      fsw,
		tracker:  tracker,
		handler:  handler,
		debounce: DefaultDebounce,
		pending:  make(map[string]*pendingChange),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// AddRoot watches root and all its current subdirectories.
func (w *Watcher) AddRoot(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if name := d.Name(); name != "." && strings.HasPrefix(name, ".") {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

// Run processes events until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ctx, event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			log.Printf("watcher: %v", err)
		}
	}
}

// Close stops the underlying fsnotify watcher and drops pending timers.
func (w *Watcher) Close() error {
	w.mu.Lock()
	for path, pc := range w.pending {
		pc.timer.Stop()
		delete(w.pending, path)
	}
	w.mu.Unlock()
	return w.fsw.Close()
}

func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	change, ok := classify(event)
	if !ok {
		return
	}

	// A newly created directory must itself be watched
	if change.Type == ChangeCreated {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if !strings.HasPrefix(filepath.Base(event.Name), ".") {
				if err := w.fsw.Add(event.Name); err != nil {
					log.Printf("watcher: watch new dir %s: %v", event.Name, err)
				}
			}
			return
		}
	}

	// Drop the pipeline's own side effects; only genuinely external
	// changes get through
	if w.tracker.WasRecentlyOperated(event.Name, optracker.SourceWatcher) {
		return
	}

	w.schedule(ctx, change)
}

// classify maps an fsnotify op to a change, skipping chmods and hidden
// files.
func classify(event fsnotify.Event) (Change, bool) {
	if strings.HasPrefix(filepath.Base(event.Name), ".") {
		return Change{}, false
	}

	switch {
	case event.Op.Has(fsnotify.Create):
		return Change{Path: event.Name, Type: ChangeCreated}, true
	case event.Op.Has(fsnotify.Write):
		return Change{Path: event.Name, Type: ChangeUpdated}, true
	case event.Op.Has(fsnotify.Remove), event.Op.Has(fsnotify.Rename):
		return Change{Path: event.Name, Type: ChangeDeleted}, true
	default:
		return Change{}, false
	}
}

// schedule (re)arms the debounce timer for a path. Later events within
// the window supersede earlier ones.
func (w *Watcher) schedule(ctx context.Context, change Change) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if pc, ok := w.pending[change.Path]; ok {
		pc.change = change
		pc.timer.Reset(w.debounce)
		return
	}

	pc := &pendingChange{change: change}
	pc.timer = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.pending, change.Path)
		latest := pc.change
		w.mu.Unlock()

		if ctx.Err() != nil {
			return
		}
		if err := w.handler(ctx, latest); err != nil {
			log.Printf("watcher: handle %s: %v", latest.Path, err)
		}
	})
	w.pending[change.Path] = pc
}
