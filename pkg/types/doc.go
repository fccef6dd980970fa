// Package types provides shared type definitions for the semsort pipeline.
//
// This package defines the domain types that cross component boundaries:
// text chunks produced by the input preparer, durable queue jobs, and the
// sentinel errors that make up the pipeline's failure taxonomy.
//
// # Core Types
//
// Chunk represents a bounded slice of source text prepared for embedding.
// Offsets reference the original untrimmed text even though the surface
// text is whitespace-trimmed:
//
//	chunk := types.Chunk{
//	    Index:     0,
//	    CharStart: 0,
//	    CharEnd:   1000,
//	    Text:      trimmed,
//	}
//
// QueueJob is one unit of work owned by a stage queue. Jobs are persisted
// to survive restarts and move to a dead-letter set once their retry
// budget is exhausted.
//
// # Error Taxonomy
//
// Sentinel errors distinguish permanent failures (ErrValidation) from
// transient ones (ErrBackend). Components wrap them with fmt.Errorf and
// %w so callers can branch with errors.Is:
//
//	if errors.Is(err, types.ErrValidation) {
//	    // dead-letter immediately, do not retry
//	}
package types
