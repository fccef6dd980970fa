package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBackendSelection(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "default is static", cfg: Config{}},
		{name: "explicit static", cfg: Config{Backend: "static"}},
		{name: "ollama", cfg: Config{Backend: "ollama"}},
		{name: "openai without key", cfg: Config{Backend: "openai"}, wantErr: true},
		{name: "openai with key", cfg: Config{Backend: "openai", APIKey: "sk-test"}},
		{name: "unknown backend", cfg: Config{Backend: "bard"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen, err := New(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, gen)
			assert.NoError(t, gen.Close())
		})
	}
}

func TestStaticGeneratorPicksFrequentWord(t *testing.T) {
	gen := NewStaticGenerator()

	got, err := gen.Generate(context.Background(), GenerateRequest{
		Prompt: "invoice for march, invoice total due, invoice number 42",
	})
	require.NoError(t, err)
	assert.Equal(t, "invoice", got)
}

func TestStaticGeneratorEmptyPrompt(t *testing.T) {
	gen := NewStaticGenerator()

	_, err := gen.Generate(context.Background(), GenerateRequest{Prompt: "   "})
	assert.ErrorIs(t, err, ErrEmptyPrompt)
}

func TestStaticGeneratorNoMeaningfulWords(t *testing.T) {
	gen := NewStaticGenerator()

	got, err := gen.Generate(context.Background(), GenerateRequest{Prompt: "a b c 1 2"})
	require.NoError(t, err)
	assert.Equal(t, "misc", got)
}

func TestOllamaGeneratorGenerate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)

		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "llama3.2", req.Model)
		assert.False(t, req.Stream)
		require.NotNil(t, req.Options)
		assert.Equal(t, 16, req.Options.NumPredict)

		_ = json.NewEncoder(w).Encode(generateResponse{Response: "  finance\n", Done: true})
	}))
	defer server.Close()

	gen := NewOllamaGenerator(server.URL, "")
	got, err := gen.Generate(context.Background(), GenerateRequest{
		Prompt:    "categorize this document",
		MaxTokens: 16,
	})
	require.NoError(t, err)
	assert.Equal(t, "finance", got)
}

func TestOllamaGeneratorServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer server.Close()

	gen := NewOllamaGenerator(server.URL, "missing-model")
	_, err := gen.Generate(context.Background(), GenerateRequest{Prompt: "hello"})
	assert.ErrorIs(t, err, ErrGenerationFailed)
}

func TestOllamaGeneratorModelOverride(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "mistral", req.Model)
		_ = json.NewEncoder(w).Encode(generateResponse{Response: "ok", Done: true})
	}))
	defer server.Close()

	gen := NewOllamaGenerator(server.URL, "llama3.2")
	_, err := gen.Generate(context.Background(), GenerateRequest{Prompt: "hi", Model: "mistral"})
	require.NoError(t, err)
}
