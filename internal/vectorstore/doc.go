// Package vectorstore persists embedded chunks and answers cosine
// similarity queries over them.
//
// Two backends are provided behind the VectorStore interface: a SQLite
// store (the default, one file, survives restarts, optional sqlite-vec
// acceleration under the sqlite_vec build tag) and an embedded
// chromem-go store. Both rank with cosine similarity so results are
// interchangeable.
//
// A small metadata sidecar records which embedding provider, model, and
// dimensionality produced the index; mixing vectors from different
// models silently degrades search quality, so the pipeline checks it on
// startup.
package vectorstore
