// Package config loads runtime configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config is the full runtime configuration, populated from SEMSORT_*
// environment variables with sensible offline defaults.
type Config struct {
	DataDir string `env:"SEMSORT_DATA_DIR" envDefault:"./.semsort"`

	// Embedding provider
	EmbedProvider  string `env:"SEMSORT_EMBED_PROVIDER" envDefault:"local"`
	EmbedModel     string `env:"SEMSORT_EMBED_MODEL"`
	OpenAIAPIKey   string `env:"OPENAI_API_KEY"`
	OllamaURL      string `env:"SEMSORT_OLLAMA_URL" envDefault:"http://localhost:11434"`
	ModelMaxTokens int    `env:"SEMSORT_MODEL_MAX_TOKENS" envDefault:"8192"`

	// Category suggestion
	LLMBackend string `env:"SEMSORT_LLM_BACKEND" envDefault:"static"`
	LLMModel   string `env:"SEMSORT_LLM_MODEL"`

	// Vector store
	StoreBackend string `env:"SEMSORT_STORE_BACKEND" envDefault:"sqlite"`

	// Chunking
	ChunkSize    int `env:"SEMSORT_CHUNK_SIZE" envDefault:"1000"`
	ChunkOverlap int `env:"SEMSORT_CHUNK_OVERLAP" envDefault:"200"`
	MaxChunks    int `env:"SEMSORT_MAX_CHUNKS" envDefault:"10"`

	// Embedding cache
	CacheMaxSize int           `env:"SEMSORT_CACHE_MAX_SIZE" envDefault:"10000"`
	CacheTTL     time.Duration `env:"SEMSORT_CACHE_TTL" envDefault:"30m"`

	// Stage queues
	QueueWorkers     int `env:"SEMSORT_QUEUE_WORKERS" envDefault:"2"`
	QueueMaxAttempts int `env:"SEMSORT_QUEUE_MAX_ATTEMPTS" envDefault:"3"`

	// Operation tracker
	OpCooldown time.Duration `env:"SEMSORT_OP_COOLDOWN" envDefault:"5s"`

	// Batch lock
	LockTimeout time.Duration `env:"SEMSORT_LOCK_TIMEOUT" envDefault:"30s"`
}

// Load parses the environment into a Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}
