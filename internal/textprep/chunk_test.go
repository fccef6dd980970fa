package textprep

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkTextSlidingWindow(t *testing.T) {
	text := strings.Repeat("a", 2500)

	chunks := ChunkText(text, ChunkOptions{ChunkSize: 1000, Overlap: 200, MaxChunks: 10})
	require.Len(t, chunks, 3)

	assert.Equal(t, 0, chunks[0].Index)
	assert.Equal(t, 0, chunks[0].CharStart)
	assert.Equal(t, 1000, chunks[0].CharEnd)

	// step = chunkSize - overlap = 800
	assert.Equal(t, 1, chunks[1].Index)
	assert.Equal(t, 800, chunks[1].CharStart)
	assert.Equal(t, 1800, chunks[1].CharEnd)

	assert.Equal(t, 2, chunks[2].Index)
	assert.Equal(t, 1600, chunks[2].CharStart)
	assert.Equal(t, 2500, chunks[2].CharEnd)
}

func TestChunkTextMaxChunks(t *testing.T) {
	text := strings.Repeat("b", 50000)

	chunks := ChunkText(text, ChunkOptions{ChunkSize: 1000, Overlap: 200, MaxChunks: 3})
	require.Len(t, chunks, 3)

	for i, c := range chunks {
		assert.Equal(t, i, c.Index)
	}
}

func TestChunkTextEmptyInput(t *testing.T) {
	assert.Empty(t, ChunkText("", ChunkOptions{}))
	assert.Empty(t, ChunkText("   \n\t  ", ChunkOptions{}))
}

func TestChunkTextTrimming(t *testing.T) {
	//            0123456789
	text := "   hello    "

	chunks := ChunkText(text, ChunkOptions{ChunkSize: 100, Overlap: 0, MaxChunks: 5})
	require.Len(t, chunks, 1)

	c := chunks[0]
	assert.Equal(t, "hello", c.Text)
	// Offsets point at the trimmed content within the original text
	assert.Equal(t, 3, c.CharStart)
	assert.Equal(t, 8, c.CharEnd)
}

func TestChunkTextTrimAcrossWindows(t *testing.T) {
	// Window 1 covers runes [0,10): "abcde     " -> trims to [0,5)
	// Window 2 covers runes [10,16): "fghijk"
	text := "abcde     fghijk"

	chunks := ChunkText(text, ChunkOptions{ChunkSize: 10, Overlap: 0, MaxChunks: 5})
	require.Len(t, chunks, 2)

	assert.Equal(t, "abcde", chunks[0].Text)
	assert.Equal(t, 0, chunks[0].CharStart)
	assert.Equal(t, 5, chunks[0].CharEnd)

	assert.Equal(t, "fghijk", chunks[1].Text)
	assert.Equal(t, 10, chunks[1].CharStart)
	assert.Equal(t, 16, chunks[1].CharEnd)
}

func TestChunkTextShorterThanWindow(t *testing.T) {
	chunks := ChunkText("short text", ChunkOptions{ChunkSize: 1000, Overlap: 200, MaxChunks: 10})
	require.Len(t, chunks, 1)
	assert.Equal(t, "short text", chunks[0].Text)
	assert.Equal(t, 0, chunks[0].CharStart)
	assert.Equal(t, 10, chunks[0].CharEnd)
}

func TestChunkTextDegenerateOverlap(t *testing.T) {
	// overlap >= chunkSize must not stall the window
	text := strings.Repeat("c", 50)

	chunks := ChunkText(text, ChunkOptions{ChunkSize: 10, Overlap: 10, MaxChunks: 100})
	require.NotEmpty(t, chunks)
	assert.Len(t, chunks, 5)
	assert.Equal(t, 0, chunks[0].CharStart)
	assert.Equal(t, 10, chunks[1].CharStart)
}

func TestChunkTextMultibyteOffsets(t *testing.T) {
	text := strings.Repeat("日", 30)

	chunks := ChunkText(text, ChunkOptions{ChunkSize: 10, Overlap: 0, MaxChunks: 10})
	require.Len(t, chunks, 3)

	// Offsets are rune offsets, not byte offsets
	assert.Equal(t, 10, chunks[1].CharStart)
	assert.Equal(t, 20, chunks[1].CharEnd)
	assert.Equal(t, strings.Repeat("日", 10), chunks[1].Text)
}

func TestChunkValidate(t *testing.T) {
	chunks := ChunkText("some reasonable text to chunk", ChunkOptions{})
	for _, c := range chunks {
		assert.NoError(t, c.Validate())
	}
}
