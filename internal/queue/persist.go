package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dshills/semsort/pkg/types"
)

// jobStore persists one stage's pending and dead-letter job lists. Every
// write goes to a temp file first and is renamed into place, so a reader
// never observes a truncated file.
type jobStore struct {
	pendingPath string
	failedPath  string
}

func newJobStore(dir, stage string) (*jobStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create state dir: %v", types.ErrPersistence, err)
	}

	return &jobStore{
		pendingPath: filepath.Join(dir, stage+".pending.json"),
		failedPath:  filepath.Join(dir, stage+".failed.json"),
	}, nil
}

func (s *jobStore) loadPending() ([]*types.QueueJob, error) {
	return loadJobs(s.pendingPath)
}

func (s *jobStore) loadFailed() ([]*types.QueueJob, error) {
	return loadJobs(s.failedPath)
}

func (s *jobStore) savePending(jobs []*types.QueueJob) error {
	return saveJobs(s.pendingPath, jobs)
}

func (s *jobStore) saveFailed(jobs []*types.QueueJob) error {
	return saveJobs(s.failedPath, jobs)
}

func loadJobs(path string) ([]*types.QueueJob, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", types.ErrPersistence, path, err)
	}

	var jobs []*types.QueueJob
	if err := json.Unmarshal(data, &jobs); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", types.ErrPersistence, path, err)
	}
	return jobs, nil
}

// saveJobs writes the job list atomically via write-new-then-rename.
func saveJobs(path string, jobs []*types.QueueJob) error {
	if jobs == nil {
		jobs = []*types.QueueJob{}
	}

	data, err := json.MarshalIndent(jobs, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", types.ErrPersistence, path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: create temp for %s: %v", types.ErrPersistence, path, err)
	}

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("%w: write %s: %v", types.ErrPersistence, path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("%w: close %s: %v", types.ErrPersistence, path, err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("%w: rename %s: %v", types.ErrPersistence, path, err)
	}
	return nil
}
