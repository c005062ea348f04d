// Package vectorstore persists chunk embeddings and serves similarity
// search over them. Two drivers are provided: a chromem-go directory
// store (the default, needs no server) and a pgvector-backed Postgres
// store selected by configuration.
package vectorstore

import (
	"context"

	"hyperchat/internal/models"
)

// Entry is one indexed chunk with its embedding vector.
type Entry struct {
	ID        string
	Chunk     models.Chunk
	Embedding []float32
}

// Store is the persistence contract for a built vector index. Search
// results come back ranked by similarity, highest first, with ties
// broken deterministically for a fixed index state and query.
type Store interface {
	Add(ctx context.Context, entries []Entry) error
	Search(ctx context.Context, queryEmbedding []float32, k int) ([]models.SearchResult, error)
	Count(ctx context.Context) (int, error)
}
