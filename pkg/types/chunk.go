package types

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

// Chunk represents a bounded slice of a source text prepared for embedding.
//
// CharStart and CharEnd are rune offsets into the original untrimmed text.
// Text is whitespace-trimmed, and the offsets point at the trimmed content's
// actual position, not the padded window. A chunk is immutable once created
// and consumed by exactly one embedding request.
type Chunk struct {
	// Index is the chunk's position in the sequence produced from one text
	Index int

	// Location within the original text, in runes. CharEnd is exclusive.
	CharStart int
	CharEnd   int

	// Text is the trimmed surface text of the chunk
	Text string
}

// Validate checks structural integrity of the chunk
func (c *Chunk) Validate() error {
	if c.Text == "" {
		return errors.New("chunk text cannot be empty")
	}

	if c.Index < 0 {
		return errors.New("chunk index must be non-negative")
	}

	if c.CharStart < 0 || c.CharEnd < 0 {
		return errors.New("chunk offsets must be non-negative")
	}

	if c.CharStart >= c.CharEnd {
		return errors.New("chunk start must be before end")
	}

	return nil
}

// ContentKey returns the SHA-256 hash of the chunk text, used as the
// content half of the embedding cache key.
func (c *Chunk) ContentKey() string {
	return ContentKey(c.Text)
}

// ContentKey computes the SHA-256 hash of a text for cache keying and
// deduplication.
func ContentKey(text string) string {
	h := sha256.Sum256([]byte(text))
	return hex.EncodeToString(h[:])
}
