package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"github.com/dshills/semsort/internal/batchlock"
	"github.com/dshills/semsort/internal/config"
	"github.com/dshills/semsort/internal/embedcache"
	"github.com/dshills/semsort/internal/embedder"
	"github.com/dshills/semsort/internal/llm"
	"github.com/dshills/semsort/internal/optracker"
	"github.com/dshills/semsort/internal/pipeline"
	"github.com/dshills/semsort/internal/queue"
	"github.com/dshills/semsort/internal/textprep"
	"github.com/dshills/semsort/internal/vectorstore"
)

// app bundles the fully wired pipeline with the resources it borrows.
type app struct {
	cfg      *config.Config
	pipeline *pipeline.Pipeline
	store    vectorstore.VectorStore
	embedder embedder.Embedder
	llm      llm.Generator
	tracker  *optracker.Tracker
}

// buildApp loads configuration and constructs every collaborator. The
// returned app must be closed with app.close().
func buildApp(ctx context.Context) (*app, error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	emb, err := embedder.New(embedder.Config{
		Provider: cfg.EmbedProvider,
		APIKey:   cfg.OpenAIAPIKey,
		BaseURL:  cfg.OllamaURL,
		Model:    cfg.EmbedModel,
	})
	if err != nil {
		return nil, fmt.Errorf("create embedder: %w", err)
	}

	gen, err := llm.New(llm.Config{
		Backend: cfg.LLMBackend,
		APIKey:  cfg.OpenAIAPIKey,
		BaseURL: cfg.OllamaURL,
		Model:   cfg.LLMModel,
	})
	if err != nil {
		_ = emb.Close()
		return nil, fmt.Errorf("create generator: %w", err)
	}

	storePath := filepath.Join(cfg.DataDir, "index.db")
	if cfg.StoreBackend == vectorstore.BackendChromem {
		storePath = filepath.Join(cfg.DataDir, "chromem")
	}
	store, err := vectorstore.New(vectorstore.Config{
		Backend: cfg.StoreBackend,
		Path:    storePath,
	})
	if err != nil {
		_ = emb.Close()
		_ = gen.Close()
		return nil, fmt.Errorf("open vector store: %w", err)
	}

	queueCfg := queue.Config{
		Workers:     cfg.QueueWorkers,
		MaxAttempts: cfg.QueueMaxAttempts,
	}
	embedQ, err := queue.New(pipeline.StageEmbed, cfg.DataDir, queueCfg)
	if err != nil {
		return nil, err
	}
	organizeQ, err := queue.New(pipeline.StageOrganize, cfg.DataDir, queueCfg)
	if err != nil {
		return nil, err
	}

	tracker := optracker.New(filepath.Join(cfg.DataDir, "operations.json"), cfg.OpCooldown)
	if err := tracker.Initialize(); err != nil {
		return nil, err
	}

	p, err := pipeline.New(pipeline.Config{
		Chunk: textprep.ChunkOptions{
			ChunkSize: cfg.ChunkSize,
			Overlap:   cfg.ChunkOverlap,
			MaxChunks: cfg.MaxChunks,
		},
		ModelMaxTokens: cfg.ModelMaxTokens,
		LockTimeout:    cfg.LockTimeout,
	}, pipeline.Deps{
		Embedder:      emb,
		Cache:         embedcache.New(cfg.CacheMaxSize, cfg.CacheTTL),
		Store:         store,
		LLM:           gen,
		Lock:          batchlock.NewManager(),
		Tracker:       tracker,
		EmbedQueue:    embedQ,
		OrganizeQueue: organizeQ,
	})
	if err != nil {
		return nil, err
	}

	if err := p.CheckIndexCompat(cfg.DataDir); err != nil {
		return nil, err
	}

	p.Start(ctx)

	return &app{
		cfg:      cfg,
		pipeline: p,
		store:    store,
		embedder: emb,
		llm:      gen,
		tracker:  tracker,
	}, nil
}

// close drains the queues and releases borrowed resources.
func (a *app) close() {
	a.pipeline.Shutdown()
	_ = a.store.Close()
	_ = a.embedder.Close()
	_ = a.llm.Close()
}

// waitForQueues blocks until every stage queue is drained or ctx ends.
func (a *app) waitForQueues(ctx context.Context) error {
	for {
		snap, err := a.pipeline.Stats(ctx)
		if err != nil {
			return err
		}

		busy := false
		for _, q := range snap.Queues {
			if q.Size > 0 || q.Active > 0 {
				busy = true
				break
			}
		}
		if !busy {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}
	}
}
