// Package pipeline orchestrates the indexing and organizing flow:
// chunking, token capping, cache-aware embedding via a durable stage
// queue, vector persistence, and LLM-guided file moves executed under
// the batch lock.
//
// The pipeline owns no external resources. Callers construct the
// embedder, store, generator, and queues, hand them over in Deps, and
// keep responsibility for closing the ones with real connections.
package pipeline
