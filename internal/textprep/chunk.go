package textprep

import (
	"unicode"

	"github.com/dshills/semsort/pkg/types"
)

// Default chunking parameters, tuned for embedding models with a few
// thousand tokens of context.
const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
	DefaultMaxChunks    = 10
)

// ChunkOptions configures ChunkText. Zero values fall back to the
// package defaults.
type ChunkOptions struct {
	// ChunkSize is the sliding window width in runes.
	ChunkSize int

	// Overlap is the number of runes shared between adjacent windows.
	Overlap int

	// MaxChunks caps the number of emitted chunks.
	MaxChunks int
}

func (o ChunkOptions) withDefaults() ChunkOptions {
	if o.ChunkSize <= 0 {
		o.ChunkSize = DefaultChunkSize
	}
	if o.Overlap < 0 {
		o.Overlap = 0
	}
	if o.MaxChunks <= 0 {
		o.MaxChunks = DefaultMaxChunks
	}
	return o
}

// ChunkText splits a text into overlapping chunks with a sliding window of
// step = chunkSize - overlap. Window boundaries are computed on the raw
// text; each chunk's surface text is whitespace-trimmed and its
// CharStart/CharEnd adjusted to the trimmed content's rune offsets within
// the original text. Empty input yields an empty slice.
func ChunkText(text string, opts ChunkOptions) []types.Chunk {
	if text == "" {
		return []types.Chunk{}
	}

	opts = opts.withDefaults()

	step := opts.ChunkSize - opts.Overlap
	if step <= 0 {
		// Degenerate overlap would stall the window; fall back to
		// non-overlapping chunks.
		step = opts.ChunkSize
	}

	runes := []rune(text)
	chunks := make([]types.Chunk, 0, opts.MaxChunks)

	for start := 0; start < len(runes) && len(chunks) < opts.MaxChunks; start += step {
		end := start + opts.ChunkSize
		if end > len(runes) {
			end = len(runes)
		}

		trimStart, trimEnd := trimBounds(runes, start, end)
		if trimStart >= trimEnd {
			// Window is all whitespace
			if end == len(runes) {
				break
			}
			continue
		}

		chunks = append(chunks, types.Chunk{
			Index:     len(chunks),
			CharStart: trimStart,
			CharEnd:   trimEnd,
			Text:      string(runes[trimStart:trimEnd]),
		})

		if end == len(runes) {
			break
		}
	}

	return chunks
}

// trimBounds narrows [start, end) to exclude leading and trailing
// whitespace runes.
func trimBounds(runes []rune, start, end int) (int, int) {
	for start < end && unicode.IsSpace(runes[start]) {
		start++
	}
	for end > start && unicode.IsSpace(runes[end-1]) {
		end--
	}
	return start, end
}
