// Package textprep prepares raw extracted text for embedding.
//
// It provides deterministic sliding-window chunking, character-based token
// estimation, and context-budget capping. All character arithmetic is
// rune-based so that truncation and chunk boundaries never split a
// multi-byte sequence mid-codepoint.
//
// # Basic Usage
//
//	chunks := textprep.ChunkText(text, textprep.ChunkOptions{
//	    ChunkSize: 1000,
//	    Overlap:   200,
//	    MaxChunks: 10,
//	})
//
//	for _, chunk := range chunks {
//	    capped := textprep.CapEmbeddingInput(chunk.Text, textprep.CapOptions{
//	        MaxTokens: modelContextSize,
//	    })
//	    // feed capped.Text to the embedder
//	}
//
// # Token Budgets
//
// Token counts are estimated from rune counts (default 3.5 chars/token).
// TokenLimit reserves a headroom fraction of the model's nominal context
// window (default 15%) and never drops below MinTokens, so a nonsensically
// small model limit still produces a usable budget.
package textprep
