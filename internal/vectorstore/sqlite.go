package vectorstore

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/dshills/semsort/internal/vectormath"
)

// SQLiteStore implements VectorStore on a single SQLite file
type SQLiteStore struct {
	db *sql.DB
}

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// SQLite benefits from single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// NewSQLiteStore opens (creating if needed) a SQLite-backed vector store
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Put(ctx context.Context, rec *Record) error {
	query := `
		INSERT INTO documents (id, path, chunk_index, content, vector, dimension, provider, model, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path, chunk_index) DO UPDATE SET
			id = excluded.id,
			content = excluded.content,
			vector = excluded.vector,
			dimension = excluded.dimension,
			provider = excluded.provider,
			model = excluded.model,
			updated_at = excluded.updated_at
	`
	now := time.Now()
	_, err := s.db.ExecContext(ctx, query,
		rec.ID, rec.Path, rec.ChunkIndex, rec.Content,
		serializeVector(rec.Vector), len(rec.Vector),
		rec.Provider, rec.Model, now, now)
	if err != nil {
		return fmt.Errorf("failed to upsert document: %w", err)
	}
	rec.UpdatedAt = now
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*Record, error) {
	query := `
		SELECT id, path, chunk_index, content, vector, provider, model, created_at, updated_at
		FROM documents
		WHERE id = ?
	`
	var rec Record
	var blob []byte
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&rec.ID, &rec.Path, &rec.ChunkIndex, &rec.Content,
		&blob, &rec.Provider, &rec.Model, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	rec.Vector = deserializeVector(blob)
	return &rec, nil
}

func (s *SQLiteStore) DeleteByPath(ctx context.Context, path string) (int, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE path = ?", path)
	if err != nil {
		return 0, fmt.Errorf("failed to delete documents: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents").Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (s *SQLiteStore) Search(ctx context.Context, query []float32, limit int, minScore float64) ([]Result, error) {
	if VectorExtensionAvailable {
		return s.searchOptimized(ctx, query, limit, minScore)
	}
	return s.searchFallback(ctx, query, limit, minScore)
}

// searchOptimized uses sqlite-vec for SQL-level distance computation.
// vec_distance_cosine returns distance (lower is better); we convert to
// similarity to keep one ranking convention across backends.
func (s *SQLiteStore) searchOptimized(ctx context.Context, query []float32, limit int, minScore float64) ([]Result, error) {
	if limit <= 0 {
		return []Result{}, nil
	}

	queryBlob := serializeVector(query)
	sqlQuery := `
		SELECT id, path, chunk_index, content,
		       1.0 - vec_distance_cosine(vector, ?) as similarity
		FROM documents
	`
	args := []interface{}{queryBlob}

	if minScore > 0 {
		sqlQuery += " WHERE (1.0 - vec_distance_cosine(vector, ?)) >= ?"
		args = append(args, queryBlob, minScore)
	}

	sqlQuery += " ORDER BY similarity DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute vector search: %w", err)
	}
	defer func() { _ = rows.Close() }()

	results := make([]Result, 0, limit)
	for rows.Next() {
		var r Result
		if err := rows.Scan(&r.ID, &r.Path, &r.ChunkIndex, &r.Content, &r.SimilarityScore); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// searchFallback ranks candidates with Go-based cosine similarity.
// Used by purego builds where the sqlite-vec extension is unavailable.
func (s *SQLiteStore) searchFallback(ctx context.Context, query []float32, limit int, minScore float64) ([]Result, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, path, chunk_index, content, vector FROM documents")
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer func() { _ = rows.Close() }()

	candidates := make([]Result, 0, 256)
	for rows.Next() {
		var r Result
		var blob []byte
		if err := rows.Scan(&r.ID, &r.Path, &r.ChunkIndex, &r.Content, &blob); err != nil {
			return nil, err
		}

		vector := deserializeVector(blob)
		if len(vector) != len(query) {
			continue // Dimension mismatch, skip
		}

		r.SimilarityScore = vectormath.CosineSimilarity(query, vector)
		if minScore > 0 && r.SimilarityScore < minScore {
			continue
		}
		candidates = append(candidates, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].SimilarityScore > candidates[j].SimilarityScore
	})

	if limit <= 0 || limit > len(candidates) {
		limit = len(candidates)
	}
	return candidates[:limit], nil
}
