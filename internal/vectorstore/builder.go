package vectorstore

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"hyperchat/internal/embedding"
	"hyperchat/internal/models"
)

const embedBatchSize = 64

// BuildIndex embeds every chunk and writes the resulting entries to
// the store. All vectors from one build must share dimensionality;
// a mismatch aborts the build. Entry IDs are derived from the chunk's
// source and position, so rebuilding the same chunk set yields the
// same retrievable set.
func BuildIndex(ctx context.Context, embedder embedding.Embedder, chunks []models.Chunk, store Store) error {
	if len(chunks) == 0 {
		log.Info().Msg("No chunks to index")
		return nil
	}

	dim := 0
	for batchStart := 0; batchStart < len(chunks); batchStart += embedBatchSize {
		batchEnd := batchStart + embedBatchSize
		if batchEnd > len(chunks) {
			batchEnd = len(chunks)
		}
		batch := chunks[batchStart:batchEnd]

		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.Content
		}

		vectors, err := embedder.EmbedDocuments(ctx, texts)
		if err != nil {
			return fmt.Errorf("embedding chunk batch at %d: %w", batchStart, err)
		}
		if len(vectors) != len(batch) {
			return fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(batch))
		}

		entries := make([]Entry, len(batch))
		for i, c := range batch {
			if dim == 0 {
				dim = len(vectors[i])
			}
			if len(vectors[i]) != dim {
				return fmt.Errorf("embedding dimensionality mismatch: got %d, want %d", len(vectors[i]), dim)
			}
			entries[i] = Entry{
				ID:        fmt.Sprintf("%s-%d-%d", c.SourceName, c.Seq, c.Offset),
				Chunk:     c,
				Embedding: vectors[i],
			}
		}

		if err := store.Add(ctx, entries); err != nil {
			return fmt.Errorf("storing chunk batch at %d: %w", batchStart, err)
		}
	}

	log.Info().Int("chunks", len(chunks)).Int("dimensions", dim).Msg("Built vector index")
	return nil
}
