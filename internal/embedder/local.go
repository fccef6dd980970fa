package embedder

import (
	"context"
	"crypto/sha256"

	"github.com/dshills/semsort/pkg/types"
)

const (
	ProviderLocal  = "local"
	LocalDimension = 384
	localModelName = "local-embeddings"
)

// LocalProvider is a deterministic offline embedder. The same text always
// produces the same vector, which makes it usable both as a no-network
// fallback and as a test double for the whole pipeline.
type LocalProvider struct {
	model string
}

// NewLocalProvider creates a local embedder
func NewLocalProvider() *LocalProvider {
	return &LocalProvider{model: localModelName}
}

func (l *LocalProvider) GenerateEmbedding(_ context.Context, req EmbeddingRequest) (*Embedding, error) {
	if err := ValidateRequest(req); err != nil {
		return nil, err
	}

	// Deterministic pseudo-embedding: tile the content hash across the
	// vector, re-hashing per block so components differ.
	vector := make([]float32, LocalDimension)
	block := sha256.Sum256([]byte(req.Text))
	for i := 0; i < LocalDimension; i++ {
		if i > 0 && i%len(block) == 0 {
			block = sha256.Sum256(block[:])
		}
		vector[i] = float32(block[i%len(block)])/127.5 - 1.0
	}

	return &Embedding{
		Vector:    vector,
		Dimension: LocalDimension,
		Provider:  ProviderLocal,
		Model:     l.model,
		Hash:      types.ContentKey(req.Text),
	}, nil
}

func (l *LocalProvider) Dimension() int {
	return LocalDimension
}

func (l *LocalProvider) Provider() string {
	return ProviderLocal
}

func (l *LocalProvider) Model() string {
	return l.model
}

func (l *LocalProvider) Close() error {
	return nil
}
