// Package llm adapts external text-generation backends: prompt in,
// completion out. The organize stage uses it to suggest a category for a
// file from its extracted text.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dshills/semsort/pkg/types"
)

// Common errors
var (
	ErrEmptyPrompt        = errors.New("prompt cannot be empty")
	ErrGenerationFailed   = fmt.Errorf("text generation failed: %w", types.ErrBackend)
	ErrUnsupportedBackend = errors.New("unsupported generation backend")
)

// GenerateRequest represents one text-generation call
type GenerateRequest struct {
	Prompt string
	Model  string // Optional: override default model

	MaxTokens   int
	Temperature float64
}

// Generator is the external text-generation collaborator
type Generator interface {
	// Generate produces a completion for the prompt
	Generate(ctx context.Context, req GenerateRequest) (string, error)

	// Model returns the default model name
	Model() string

	// Close releases any resources held by the generator
	Close() error
}

// Config holds generator configuration
type Config struct {
	Backend string
	APIKey  string
	BaseURL string // Ollama only
	Model   string
}

// Backend names
const (
	BackendOpenAI = "openai"
	BackendOllama = "ollama"
	BackendStatic = "static"
)

// New creates a generator with explicit configuration. An empty backend
// falls back to the static offline generator.
func New(cfg Config) (Generator, error) {
	switch strings.ToLower(cfg.Backend) {
	case BackendOpenAI:
		return NewOpenAIGenerator(cfg.APIKey, cfg.Model)
	case BackendOllama:
		return NewOllamaGenerator(cfg.BaseURL, cfg.Model), nil
	case BackendStatic, "":
		return NewStaticGenerator(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedBackend, cfg.Backend)
	}
}

func validatePrompt(req GenerateRequest) error {
	if strings.TrimSpace(req.Prompt) == "" {
		return ErrEmptyPrompt
	}
	return nil
}
