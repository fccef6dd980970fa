// Package embedder adapts external embedding backends behind a single
// interface: text in, vector out.
//
// Three providers are available: OpenAI (remote API), Ollama (local
// server), and a deterministic offline provider useful for tests and
// air-gapped operation. API-backed providers retry transient failures
// with exponential backoff; failures after the retry budget surface as
// ErrProviderFailed, which the stage queue treats as transient.
//
// Providers do not cache. The embedding cache is owned by the pipeline
// so hit/miss accounting stays in one place.
package embedder
