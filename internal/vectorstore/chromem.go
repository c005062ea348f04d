package vectorstore

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sort"
	"strconv"

	"github.com/philippgille/chromem-go"

	"hyperchat/internal/models"
)

const compress = false

// DefaultCollection is the collection name used for knowledge-base
// indexes built by the indexer.
const DefaultCollection = "knowledge"

// ChromemStore keeps the index in a chromem-go persistent database
// under a named directory. Reads are safe to share across concurrent
// requests; writes happen only during offline index builds.
type ChromemStore struct {
	db         *chromem.DB
	collection *chromem.Collection
}

// NewChromemStore creates (or reopens) a store for building an index.
func NewChromemStore(path, collectionName string) (*ChromemStore, error) {
	db, err := chromem.NewPersistentDB(path, compress)
	if err != nil {
		return nil, fmt.Errorf("failed to create database: %w", err)
	}
	c, err := db.GetOrCreateCollection(collectionName, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create/get collection: %w", err)
	}
	return &ChromemStore{db: db, collection: c}, nil
}

// OpenChromem loads an existing index for serving. A missing location
// is an error here, unlike at build time: chromem would silently
// create an empty database and serving would see no chunks.
func OpenChromem(path, collectionName string) (*ChromemStore, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("vector store location %s: %w", path, err)
	}
	return NewChromemStore(path, collectionName)
}

func (s *ChromemStore) Add(ctx context.Context, entries []Entry) error {
	docs := make([]chromem.Document, len(entries))
	for i, e := range entries {
		docs[i] = chromem.Document{
			ID:        e.ID,
			Content:   e.Chunk.Content,
			Embedding: e.Embedding,
			Metadata: map[string]string{
				"source": e.Chunk.SourceName,
				"seq":    strconv.Itoa(e.Chunk.Seq),
				"offset": strconv.Itoa(e.Chunk.Offset),
			},
		}
	}
	if err := s.collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("failed to add documents: %w", err)
	}
	return nil
}

func (s *ChromemStore) Search(ctx context.Context, queryEmbedding []float32, k int) ([]models.SearchResult, error) {
	count := s.collection.Count()
	if count == 0 {
		return nil, nil
	}
	if k > count {
		k = count
	}
	if k <= 0 {
		return nil, nil
	}

	results, err := s.collection.QueryWithOptions(ctx, chromem.QueryOptions{
		QueryEmbedding: queryEmbedding,
		NResults:       k,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query by similarity: %w", err)
	}

	out := make([]models.SearchResult, len(results))
	for i, r := range results {
		seq, _ := strconv.Atoi(r.Metadata["seq"])
		offset, _ := strconv.Atoi(r.Metadata["offset"])
		out[i] = models.SearchResult{
			Chunk: models.Chunk{
				Content:    r.Content,
				SourceName: r.Metadata["source"],
				Seq:        seq,
				Offset:     offset,
			},
			Score: r.Similarity,
		}
	}
	// chromem already ranks by similarity; pin tie order so identical
	// index state and query always yield the same result sequence.
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		if out[i].Chunk.SourceName != out[j].Chunk.SourceName {
			return out[i].Chunk.SourceName < out[j].Chunk.SourceName
		}
		return out[i].Chunk.Seq < out[j].Chunk.Seq
	})
	return out, nil
}

func (s *ChromemStore) Count(ctx context.Context) (int, error) {
	return s.collection.Count(), nil
}
