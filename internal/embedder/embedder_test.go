package embedder

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRequest(t *testing.T) {
	tests := []struct {
		name    string
		req     EmbeddingRequest
		wantErr error
	}{
		{
			name:    "valid request",
			req:     EmbeddingRequest{Text: "test text"},
			wantErr: nil,
		},
		{
			name:    "empty text",
			req:     EmbeddingRequest{Text: ""},
			wantErr: ErrEmptyText,
		},
		{
			name:    "with model override",
			req:     EmbeddingRequest{Text: "test", Model: "custom-model"},
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRequest(tt.req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLocalProviderDeterministic(t *testing.T) {
	p := NewLocalProvider()
	ctx := context.Background()

	first, err := p.GenerateEmbedding(ctx, EmbeddingRequest{Text: "same input"})
	require.NoError(t, err)
	second, err := p.GenerateEmbedding(ctx, EmbeddingRequest{Text: "same input"})
	require.NoError(t, err)

	assert.Equal(t, first.Vector, second.Vector)
	assert.Len(t, first.Vector, LocalDimension)
	assert.Equal(t, LocalDimension, first.Dimension)
	assert.Equal(t, ProviderLocal, first.Provider)
	assert.NotEmpty(t, first.Hash)
}

func TestLocalProviderDistinctTexts(t *testing.T) {
	p := NewLocalProvider()
	ctx := context.Background()

	a, err := p.GenerateEmbedding(ctx, EmbeddingRequest{Text: "alpha"})
	require.NoError(t, err)
	b, err := p.GenerateEmbedding(ctx, EmbeddingRequest{Text: "beta"})
	require.NoError(t, err)

	assert.NotEqual(t, a.Vector, b.Vector)
}

func TestLocalProviderComponentRange(t *testing.T) {
	p := NewLocalProvider()

	emb, err := p.GenerateEmbedding(context.Background(), EmbeddingRequest{Text: "range check"})
	require.NoError(t, err)

	for i, v := range emb.Vector {
		assert.GreaterOrEqual(t, v, float32(-1), "component %d", i)
		assert.LessOrEqual(t, v, float32(1), "component %d", i)
	}
}

func TestLocalProviderEmptyText(t *testing.T) {
	p := NewLocalProvider()

	_, err := p.GenerateEmbedding(context.Background(), EmbeddingRequest{Text: ""})
	assert.ErrorIs(t, err, ErrEmptyText)
}

func TestFactory(t *testing.T) {
	tests := []struct {
		name     string
		cfg      Config
		wantName string
		wantErr  bool
	}{
		{"local provider", Config{Provider: "local"}, ProviderLocal, false},
		{"empty defaults to local", Config{}, ProviderLocal, false},
		{"ollama provider", Config{Provider: "ollama"}, ProviderOllama, false},
		{"openai requires key", Config{Provider: "openai"}, "", true},
		{"openai with key", Config{Provider: "openai", APIKey: "sk-test"}, ProviderOpenAI, false},
		{"unknown provider", Config{Provider: "quantum"}, "", true},
		{"case insensitive", Config{Provider: "OLLAMA"}, ProviderOllama, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			emb, err := New(tt.cfg)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, emb.Provider())
			assert.NoError(t, emb.Close())
		})
	}
}

func TestOllamaDefaults(t *testing.T) {
	p := NewOllamaProvider("", "", 0)
	assert.Equal(t, DefaultOllamaModel, p.Model())
	assert.Equal(t, OllamaDimension, p.Dimension())
}
