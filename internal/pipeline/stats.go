package pipeline

import (
	"context"

	"github.com/dshills/semsort/internal/embedcache"
	"github.com/dshills/semsort/internal/queue"
)

// Snapshot is a read-only projection of the pipeline's moving parts.
type Snapshot struct {
	Provider string
	Model    string

	Cache          embedcache.Stats
	Queues         []queue.Stats
	StoreDocuments int
	TrackedOps     int
	LockHolder     string
}

// Stats aggregates cache, queue, store, tracker, and lock state into one
// snapshot.
func (p *Pipeline) Stats(ctx context.Context) (Snapshot, error) {
	snap := Snapshot{
		Provider:   p.embedder.Provider(),
		Model:      p.embedder.Model(),
		Cache:      p.cache.Stats(),
		TrackedOps: p.tracker.Len(),
		LockHolder: p.lock.Holder(),
	}

	snap.Queues = append(snap.Queues, p.embedQueue.Stats())
	if p.organizeQueue != nil {
		snap.Queues = append(snap.Queues, p.organizeQueue.Stats())
	}

	count, err := p.store.Count(ctx)
	if err != nil {
		return snap, err
	}
	snap.StoreDocuments = count

	return snap, nil
}
