package vectorstore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hyperchat/internal/models"
)

type fakeEmbedder struct {
	dim      int
	fail     bool
	raggedAt string
}

func (f *fakeEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if f.fail {
		return nil, errors.New("embedding backend unavailable")
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		dim := f.dim
		if text == f.raggedAt {
			dim = f.dim + 1
		}
		out[i] = fakeVector(text, dim)
	}
	return out, nil
}

func (f *fakeEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if f.fail {
		return nil, errors.New("embedding backend unavailable")
	}
	return fakeVector(text, f.dim), nil
}

func buildChunks() []models.Chunk {
	return []models.Chunk{
		{Content: "Paris is the capital of France.", SourceName: "geo.txt", Seq: 0},
		{Content: "Berlin is the capital of Germany.", SourceName: "geo.txt", Seq: 1, Offset: 700},
		{Content: "Go is a statically typed language.", SourceName: "lang.txt", Seq: 0},
	}
}

func TestBuildIndexRoundTrip(t *testing.T) {
	ctx := context.Background()
	embedder := &fakeEmbedder{dim: 8}
	store, err := NewChromemStore(filepath.Join(t.TempDir(), "idx"), DefaultCollection)
	require.NoError(t, err)

	require.NoError(t, BuildIndex(ctx, embedder, buildChunks(), store))

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	// Every indexed chunk is retrievable by its own text.
	for _, chunk := range buildChunks() {
		vec, err := embedder.EmbedQuery(ctx, chunk.Content)
		require.NoError(t, err)
		results, err := store.Search(ctx, vec, 1)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, chunk.Content, results[0].Chunk.Content)
	}
}

func TestBuildIndexIdempotent(t *testing.T) {
	ctx := context.Background()
	embedder := &fakeEmbedder{dim: 8}

	query, err := embedder.EmbedQuery(ctx, "capital of France")
	require.NoError(t, err)

	var runs [][]string
	for i := 0; i < 2; i++ {
		store, err := NewChromemStore(filepath.Join(t.TempDir(), "idx"), DefaultCollection)
		require.NoError(t, err)
		require.NoError(t, BuildIndex(ctx, embedder, buildChunks(), store))

		results, err := store.Search(ctx, query, 3)
		require.NoError(t, err)
		var contents []string
		for _, r := range results {
			contents = append(contents, r.Chunk.Content)
		}
		runs = append(runs, contents)
	}
	assert.Equal(t, runs[0], runs[1])
}

func TestBuildIndexEmbedderFailure(t *testing.T) {
	store, err := NewChromemStore(filepath.Join(t.TempDir(), "idx"), DefaultCollection)
	require.NoError(t, err)

	err = BuildIndex(context.Background(), &fakeEmbedder{dim: 8, fail: true}, buildChunks(), store)
	assert.ErrorContains(t, err, "embedding chunk batch")
}

func TestBuildIndexDimensionalityMismatch(t *testing.T) {
	store, err := NewChromemStore(filepath.Join(t.TempDir(), "idx"), DefaultCollection)
	require.NoError(t, err)

	embedder := &fakeEmbedder{dim: 8, raggedAt: "Go is a statically typed language."}
	err = BuildIndex(context.Background(), embedder, buildChunks(), store)
	assert.ErrorContains(t, err, "dimensionality mismatch")
}

func TestBuildIndexEmptyChunkSet(t *testing.T) {
	store, err := NewChromemStore(filepath.Join(t.TempDir(), "idx"), DefaultCollection)
	require.NoError(t, err)
	assert.NoError(t, BuildIndex(context.Background(), &fakeEmbedder{dim: 8}, nil, store))
}
