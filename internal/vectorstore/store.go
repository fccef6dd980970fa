package vectorstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when a requested record doesn't exist
	ErrNotFound = errors.New("not found")
	// ErrUnsupportedBackend is returned for unknown backend names
	ErrUnsupportedBackend = errors.New("unsupported vector store backend")
)

// Record is one embedded chunk persisted in the store
type Record struct {
	ID         string
	Path       string // Source file the chunk came from
	ChunkIndex int
	Content    string
	Vector     []float32
	Provider   string
	Model      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Result is one ranked match from a similarity search
type Result struct {
	ID              string
	Path            string
	ChunkIndex      int
	Content         string
	SimilarityScore float64
}

// VectorStore persists embedded chunks and answers similarity queries
type VectorStore interface {
	// Put inserts or replaces a record keyed by ID
	Put(ctx context.Context, rec *Record) error

	// Get retrieves a record by ID, or ErrNotFound
	Get(ctx context.Context, id string) (*Record, error)

	// DeleteByPath removes all records for a source file, returning the
	// number removed
	DeleteByPath(ctx context.Context, path string) (int, error)

	// Search returns up to limit records ranked by cosine similarity to
	// the query vector, dropping matches below minScore
	Search(ctx context.Context, query []float32, limit int, minScore float64) ([]Result, error)

	// Count returns the number of stored records
	Count(ctx context.Context) (int, error)

	// Close releases backend resources
	Close() error
}

// Backend names
const (
	BackendSQLite  = "sqlite"
	BackendChromem = "chromem"
)

// Config selects and configures a store backend
type Config struct {
	Backend string
	Path    string // Database file (sqlite) or directory (chromem)
}

// New creates a vector store for the configured backend. An empty
// backend defaults to sqlite.
func New(cfg Config) (VectorStore, error) {
	switch strings.ToLower(cfg.Backend) {
	case BackendSQLite, "":
		return NewSQLiteStore(cfg.Path)
	case BackendChromem:
		return NewChromemStore(cfg.Path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedBackend, cfg.Backend)
	}
}
