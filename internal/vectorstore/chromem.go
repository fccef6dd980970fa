package vectorstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	chromem "github.com/philippgille/chromem-go"
)

const chromemCollection = "semsort"

// ChromemStore implements VectorStore on an embedded chromem-go database.
// All embeddings are precomputed upstream, so the collection's embedding
// function is never invoked.
type ChromemStore struct {
	db         *chromem.DB
	collection *chromem.Collection
}

// NewChromemStore opens (creating if needed) a persistent chromem store
// rooted at dir
func NewChromemStore(dir string) (*ChromemStore, error) {
	db, err := chromem.NewPersistentDB(dir, false)
	if err != nil {
		return nil, fmt.Errorf("failed to open chromem db: %w", err)
	}

	collection, err := db.GetOrCreateCollection(chromemCollection, nil, rejectEmbeddingFunc)
	if err != nil {
		return nil, fmt.Errorf("failed to open collection: %w", err)
	}

	return &ChromemStore{db: db, collection: collection}, nil
}

// rejectEmbeddingFunc guards against accidental on-the-fly embedding
func rejectEmbeddingFunc(context.Context, string) ([]float32, error) {
	return nil, errors.New("embeddings must be precomputed")
}

func (s *ChromemStore) Put(ctx context.Context, rec *Record) error {
	now := time.Now()
	doc := chromem.Document{
		ID:        rec.ID,
		Content:   rec.Content,
		Embedding: rec.Vector,
		Metadata: map[string]string{
			"path":        rec.Path,
			"chunk_index": strconv.Itoa(rec.ChunkIndex),
			"provider":    rec.Provider,
			"model":       rec.Model,
			"updated_at":  now.UTC().Format(time.RFC3339),
		},
	}
	if err := s.collection.AddDocument(ctx, doc); err != nil {
		return fmt.Errorf("failed to add document: %w", err)
	}
	rec.UpdatedAt = now
	return nil
}

func (s *ChromemStore) Get(ctx context.Context, id string) (*Record, error) {
	doc, err := s.collection.GetByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	return docToRecord(doc), nil
}

func (s *ChromemStore) DeleteByPath(ctx context.Context, path string) (int, error) {
	before := s.collection.Count()
	if err := s.collection.Delete(ctx, map[string]string{"path": path}, nil); err != nil {
		return 0, fmt.Errorf("failed to delete documents: %w", err)
	}
	return before - s.collection.Count(), nil
}

func (s *ChromemStore) Search(ctx context.Context, query []float32, limit int, minScore float64) ([]Result, error) {
	count := s.collection.Count()
	if count == 0 || limit <= 0 {
		return []Result{}, nil
	}
	if limit > count {
		limit = count
	}

	matches, err := s.collection.QueryEmbedding(ctx, query, limit, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query collection: %w", err)
	}

	results := make([]Result, 0, len(matches))
	for _, m := range matches {
		score := float64(m.Similarity)
		if minScore > 0 && score < minScore {
			continue
		}
		chunkIndex, _ := strconv.Atoi(m.Metadata["chunk_index"])
		results = append(results, Result{
			ID:              m.ID,
			Path:            m.Metadata["path"],
			ChunkIndex:      chunkIndex,
			Content:         m.Content,
			SimilarityScore: score,
		})
	}
	return results, nil
}

func (s *ChromemStore) Count(context.Context) (int, error) {
	return s.collection.Count(), nil
}

// Close is a no-op: chromem persists each write immediately
func (s *ChromemStore) Close() error {
	return nil
}

func docToRecord(doc chromem.Document) *Record {
	chunkIndex, _ := strconv.Atoi(doc.Metadata["chunk_index"])
	updatedAt, _ := time.Parse(time.RFC3339, doc.Metadata["updated_at"])
	return &Record{
		ID:         doc.ID,
		Path:       doc.Metadata["path"],
		ChunkIndex: chunkIndex,
		Content:    doc.Content,
		Vector:     doc.Embedding,
		Provider:   doc.Metadata["provider"],
		Model:      doc.Metadata["model"],
		UpdatedAt:  updatedAt,
	}
}
