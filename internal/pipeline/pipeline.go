package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/semsort/internal/batchlock"
	"github.com/dshills/semsort/internal/embedcache"
	"github.com/dshills/semsort/internal/embedder"
	"github.com/dshills/semsort/internal/llm"
	"github.com/dshills/semsort/internal/optracker"
	"github.com/dshills/semsort/internal/queue"
	"github.com/dshills/semsort/internal/textprep"
	"github.com/dshills/semsort/internal/vectormath"
	"github.com/dshills/semsort/internal/vectorstore"
	"github.com/dshills/semsort/pkg/types"
)

// Stage names
const (
	StageEmbed    = "embed"
	StageOrganize = "organize"
)

// DefaultLockTimeout bounds how long an organize job waits for the batch
// lock before failing the attempt.
const DefaultLockTimeout = 30 * time.Second

// ErrIncompatibleIndex is returned when an existing index was built with
// a different embedding configuration.
var ErrIncompatibleIndex = errors.New("existing index was built with a different embedding model")

// Config configures the pipeline.
type Config struct {
	// Chunking applied to every indexed text.
	Chunk textprep.ChunkOptions

	// ModelMaxTokens is the embedding model's nominal context window.
	// Zero falls back to the textprep default.
	ModelMaxTokens int

	// LockTimeout bounds batch lock acquisition in organize jobs.
	LockTimeout time.Duration

	// MaxFileBytes caps how much of a file IndexFile reads. Zero means
	// no cap.
	MaxFileBytes int64
}

func (c Config) withDefaults() Config {
	if c.LockTimeout <= 0 {
		c.LockTimeout = DefaultLockTimeout
	}
	return c
}

// Pipeline wires chunking, caching, embedding, storage, and organizing
// into one orchestrator. Expensive or failure-prone work (embedding
// calls, file moves) runs on durable stage queues; everything else is
// synchronous.
type Pipeline struct {
	cfg Config

	embedder embedder.Embedder
	cache    *embedcache.Cache
	store    vectorstore.VectorStore
	llm      llm.Generator
	lock     *batchlock.Manager
	tracker  *optracker.Tracker

	embedQueue    *queue.StageQueue
	organizeQueue *queue.StageQueue
}

// Deps are the pipeline's collaborators, constructed by the caller.
type Deps struct {
	Embedder      embedder.Embedder
	Cache         *embedcache.Cache
	Store         vectorstore.VectorStore
	LLM           llm.Generator
	Lock          *batchlock.Manager
	Tracker       *optracker.Tracker
	EmbedQueue    *queue.StageQueue
	OrganizeQueue *queue.StageQueue
}

// New creates a pipeline from its collaborators.
func New(cfg Config, deps Deps) (*Pipeline, error) {
	switch {
	case deps.Embedder == nil:
		return nil, errors.New("embedder is required")
	case deps.Cache == nil:
		return nil, errors.New("cache is required")
	case deps.Store == nil:
		return nil, errors.New("store is required")
	case deps.Lock == nil:
		return nil, errors.New("lock manager is required")
	case deps.Tracker == nil:
		return nil, errors.New("tracker is required")
	case deps.EmbedQueue == nil:
		return nil, errors.New("embed queue is required")
	}

	return &Pipeline{
		cfg:           cfg.withDefaults(),
		embedder:      deps.Embedder,
		cache:         deps.Cache,
		store:         deps.Store,
		llm:           deps.LLM,
		lock:          deps.Lock,
		tracker:       deps.Tracker,
		embedQueue:    deps.EmbedQueue,
		organizeQueue: deps.OrganizeQueue,
	}, nil
}

// Start launches the stage queue dispatchers.
func (p *Pipeline) Start(ctx context.Context) {
	p.embedQueue.Start(ctx, p.handleEmbedJob)
	if p.organizeQueue != nil {
		p.organizeQueue.Start(ctx, p.handleOrganizeJob)
	}
}

// Shutdown stops the queues and flushes tracker state. Collaborators
// owned by the caller (store, embedder, generator) are not closed here.
func (p *Pipeline) Shutdown() {
	p.embedQueue.Shutdown()
	if p.organizeQueue != nil {
		p.organizeQueue.Shutdown()
	}
	p.cache.Shutdown()
	if err := p.tracker.Shutdown(); err != nil {
		log.Printf("pipeline: tracker shutdown: %v", err)
	}
}

// embedJob is the payload carried by "embed" stage jobs.
type embedJob struct {
	Path       string `json:"path"`
	ChunkIndex int    `json:"chunkIndex"`
	Content    string `json:"content"`
}

// IndexReport summarizes one IndexText call.
type IndexReport struct {
	Path      string
	Chunks    int
	CacheHits int
	Enqueued  int
	Truncated int
}

// IndexText chunks a text, caps each chunk to the model's token budget,
// and routes each chunk by cache state: a hit goes straight to the
// store, a miss is enqueued for embedding.
func (p *Pipeline) IndexText(ctx context.Context, path, text string) (*IndexReport, error) {
	if text == "" {
		return nil, fmt.Errorf("%w: empty text for %s", types.ErrInvalidInput, path)
	}

	chunks := textprep.ChunkText(text, p.cfg.Chunk)
	report := &IndexReport{Path: path, Chunks: len(chunks)}
	model := p.embedder.Model()

	for _, chunk := range chunks {
		capped := textprep.CapEmbeddingInput(chunk.Text, textprep.CapOptions{
			MaxTokens: p.cfg.ModelMaxTokens,
		})
		if capped.WasTruncated {
			report.Truncated++
		}

		if vector, ok := p.cache.Get(capped.Text, model); ok {
			report.CacheHits++
			if err := p.putRecord(ctx, path, chunk.Index, capped.Text, vector); err != nil {
				return report, err
			}
			continue
		}

		if _, err := p.embedQueue.Enqueue(embedJob{
			Path:       path,
			ChunkIndex: chunk.Index,
			Content:    capped.Text,
		}); err != nil {
			return report, fmt.Errorf("enqueue chunk %d of %s: %w", chunk.Index, path, err)
		}
		report.Enqueued++
	}

	return report, nil
}

// IndexFile reads a file and indexes its content under its path.
func (p *Pipeline) IndexFile(ctx context.Context, path string) (*IndexReport, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if p.cfg.MaxFileBytes > 0 && info.Size() > p.cfg.MaxFileBytes {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", types.ErrInvalidInput, path, p.cfg.MaxFileBytes)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	return p.IndexText(ctx, path, string(data))
}

// handleEmbedJob embeds one chunk, validates the vector, and persists it.
// A vector failing validation is a deterministic provider defect, so the
// job fails permanently rather than burning retries.
func (p *Pipeline) handleEmbedJob(ctx context.Context, job *types.QueueJob) error {
	var payload embedJob
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return queue.Permanent(fmt.Errorf("decode embed payload: %w", err))
	}

	emb, err := p.embedder.GenerateEmbedding(ctx, embedder.EmbeddingRequest{Text: payload.Content})
	if err != nil {
		return fmt.Errorf("embed chunk %d of %s: %w", payload.ChunkIndex, payload.Path, err)
	}

	if !vectormath.ValidateDimensions(emb.Vector, p.embedder.Dimension()) {
		return queue.Permanent(fmt.Errorf("%w: got %d dimensions, want %d",
			types.ErrValidation, len(emb.Vector), p.embedder.Dimension()))
	}
	if err := vectormath.ValidateVector(emb.Vector); err != nil {
		return queue.Permanent(fmt.Errorf("%w: %v", types.ErrValidation, err))
	}

	p.cache.Set(payload.Content, emb.Model, emb.Vector)

	return p.putRecord(ctx, payload.Path, payload.ChunkIndex, payload.Content, emb.Vector)
}

func (p *Pipeline) putRecord(ctx context.Context, path string, chunkIndex int, content string, vector []float32) error {
	return p.store.Put(ctx, &vectorstore.Record{
		ID:         fmt.Sprintf("%s#%d", optracker.NormalizePath(path), chunkIndex),
		Path:       path,
		ChunkIndex: chunkIndex,
		Content:    content,
		Vector:     vector,
		Provider:   p.embedder.Provider(),
		Model:      p.embedder.Model(),
	})
}

// Search embeds the query synchronously and returns the top matches.
func (p *Pipeline) Search(ctx context.Context, query string, limit int, minScore float64) ([]vectorstore.Result, error) {
	if query == "" {
		return nil, fmt.Errorf("%w: empty query", types.ErrInvalidInput)
	}

	model := p.embedder.Model()
	capped := textprep.CapEmbeddingInput(query, textprep.CapOptions{MaxTokens: p.cfg.ModelMaxTokens})

	vector, ok := p.cache.Get(capped.Text, model)
	if !ok {
		emb, err := p.embedder.GenerateEmbedding(ctx, embedder.EmbeddingRequest{Text: capped.Text})
		if err != nil {
			return nil, fmt.Errorf("embed query: %w", err)
		}
		vector = emb.Vector
		p.cache.Set(capped.Text, model, vector)
	}

	return p.store.Search(ctx, vector, limit, minScore)
}

// CheckIndexCompat verifies that an existing index at dir was built by
// the current embedding configuration, then stamps the metadata sidecar.
func (p *Pipeline) CheckIndexCompat(dir string) error {
	meta, ok, err := vectorstore.LoadMetadata(dir)
	if err != nil {
		return err
	}
	if ok && !meta.Compatible(p.embedder.Provider(), p.embedder.Model(), p.embedder.Dimension()) {
		return fmt.Errorf("%w: index has %s/%s (%dd), configured %s/%s (%dd)",
			ErrIncompatibleIndex,
			meta.Provider, meta.Model, meta.Dimensions,
			p.embedder.Provider(), p.embedder.Model(), p.embedder.Dimension())
	}

	return vectorstore.SaveMetadata(dir, vectorstore.Metadata{
		Provider:   p.embedder.Provider(),
		Model:      p.embedder.Model(),
		Dimensions: p.embedder.Dimension(),
	})
}

// organizeJob is the payload carried by "organize" stage jobs.
type organizeJob struct {
	Path     string `json:"path"`
	DestRoot string `json:"destRoot"`
	Category string `json:"category,omitempty"` // Pre-decided; skips the LLM
}

// OrganizeBatch enqueues an organize job per file. Each job suggests a
// category and executes the move under the batch lock.
func (p *Pipeline) OrganizeBatch(paths []string, destRoot string) ([]string, error) {
	if p.organizeQueue == nil {
		return nil, errors.New("organize queue is not configured")
	}

	ids := make([]string, 0, len(paths))
	for _, path := range paths {
		id, err := p.organizeQueue.Enqueue(organizeJob{Path: path, DestRoot: destRoot})
		if err != nil {
			return ids, fmt.Errorf("enqueue organize %s: %w", path, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// handleOrganizeJob decides a category for the file and moves it into
// destRoot/category under the batch lock, recording the operation so the
// watcher ignores the resulting filesystem events.
func (p *Pipeline) handleOrganizeJob(ctx context.Context, job *types.QueueJob) error {
	var payload organizeJob
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return queue.Permanent(fmt.Errorf("decode organize payload: %w", err))
	}

	category := payload.Category
	if category == "" {
		var err error
		category, err = p.suggestCategory(ctx, payload.Path)
		if err != nil {
			return err
		}
	}

	holder := uuid.NewString()
	if err := p.lock.Acquire(ctx, holder, p.cfg.LockTimeout); err != nil {
		return fmt.Errorf("organize %s: %w", payload.Path, err)
	}
	defer p.lock.Release(holder)

	destDir := filepath.Join(payload.DestRoot, sanitizeCategory(category))
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("create category dir: %w", err)
	}

	destPath := filepath.Join(destDir, filepath.Base(payload.Path))
	if err := os.Rename(payload.Path, destPath); err != nil {
		return fmt.Errorf("move %s: %w", payload.Path, err)
	}

	// Both ends of the move are pipeline side effects the watcher must
	// not react to.
	p.tracker.RecordOperation(payload.Path, "move", optracker.SourcePipeline)
	p.tracker.RecordOperation(destPath, "move", optracker.SourcePipeline)

	log.Printf("pipeline: organized %s -> %s", payload.Path, destPath)
	return nil
}

// categoryPromptTemplate asks for a single short label.
const categoryPromptTemplate = `Suggest a single short folder category name (one or two words, lowercase) for a file named %q with this content:

%s

Reply with the category name only.`

// suggestCategory reads a sample of the file and asks the generator for
// a folder name. Without a generator the file name itself is sampled.
func (p *Pipeline) suggestCategory(ctx context.Context, path string) (string, error) {
	sample := filepath.Base(path)
	if data, err := os.ReadFile(path); err == nil {
		capped := textprep.CapEmbeddingInput(string(data), textprep.CapOptions{MaxTokens: 512})
		if capped.Text != "" {
			sample = capped.Text
		}
	}

	if p.llm == nil {
		return "misc", nil
	}

	category, err := p.llm.Generate(ctx, llm.GenerateRequest{
		Prompt:      fmt.Sprintf(categoryPromptTemplate, filepath.Base(path), sample),
		MaxTokens:   16,
		Temperature: 0.2,
	})
	if err != nil {
		return "", fmt.Errorf("suggest category for %s: %w", path, err)
	}
	if category == "" {
		category = "misc"
	}
	return category, nil
}
