package retrieval

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hyperchat/internal/models"
	"hyperchat/internal/vectorstore"
)

type fakeEmbedder struct {
	err error
}

func (f *fakeEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0}
	}
	return out, f.err
}

func (f *fakeEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []float32{1, 0}, nil
}

type fakeStore struct {
	results []models.SearchResult
	err     error
	lastK   int
}

func (f *fakeStore) Add(ctx context.Context, entries []vectorstore.Entry) error { return nil }

func (f *fakeStore) Search(ctx context.Context, queryEmbedding []float32, k int) ([]models.SearchResult, error) {
	f.lastK = k
	if f.err != nil {
		return nil, f.err
	}
	if k > len(f.results) {
		k = len(f.results)
	}
	return f.results[:k], nil
}

func (f *fakeStore) Count(ctx context.Context) (int, error) { return len(f.results), nil }

func newTestEngine(store *fakeStore, openErr error) (*Engine, *int) {
	opens := 0
	opener := func(location string) (vectorstore.Store, error) {
		opens++
		if openErr != nil {
			return nil, openErr
		}
		return store, nil
	}
	return NewEngine(&fakeEmbedder{}, opener, time.Second, time.Second), &opens
}

func TestRetrieveRanked(t *testing.T) {
	store := &fakeStore{results: []models.SearchResult{
		{Chunk: models.Chunk{Content: "first"}, Score: 0.9},
		{Chunk: models.Chunk{Content: "second"}, Score: 0.5},
	}}
	engine, _ := newTestEngine(store, nil)

	results, err := engine.Retrieve(context.Background(), "loc", "query", 2)

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "first", results[0].Chunk.Content)
	assert.Equal(t, 2, store.lastK)
}

func TestRetrieveStoreOpenedOnce(t *testing.T) {
	store := &fakeStore{}
	engine, opens := newTestEngine(store, nil)

	_, err := engine.Retrieve(context.Background(), "loc", "a", 1)
	require.NoError(t, err)
	_, err = engine.Retrieve(context.Background(), "loc", "b", 1)
	require.NoError(t, err)

	assert.Equal(t, 1, *opens)
}

func TestRetrieveLoadFailure(t *testing.T) {
	engine, _ := newTestEngine(nil, errors.New("missing index files"))

	_, err := engine.Retrieve(context.Background(), "loc", "query", 1)

	assert.ErrorIs(t, err, ErrStoreLoad)
	assert.ErrorContains(t, err, "missing index files")
}

func TestRetrieveSearchFailureIsNotStoreLoad(t *testing.T) {
	store := &fakeStore{err: errors.New("corrupt index")}
	engine, _ := newTestEngine(store, nil)

	_, err := engine.Retrieve(context.Background(), "loc", "query", 1)

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrStoreLoad)
}

func TestRetrieveEmbedFailure(t *testing.T) {
	opener := func(string) (vectorstore.Store, error) { return &fakeStore{}, nil }
	engine := NewEngine(&fakeEmbedder{err: errors.New("quota exceeded")}, opener, time.Second, time.Second)

	_, err := engine.Retrieve(context.Background(), "loc", "query", 1)

	assert.ErrorContains(t, err, "embedding query")
}

func TestRetrieveSearchFailure(t *testing.T) {
	store := &fakeStore{err: errors.New("corrupt index")}
	engine, _ := newTestEngine(store, nil)

	_, err := engine.Retrieve(context.Background(), "loc", "query", 1)

	assert.ErrorContains(t, err, "searching vector store")
}

func TestBuildContext(t *testing.T) {
	results := []models.SearchResult{
		{Chunk: models.Chunk{Content: "alpha"}},
		{Chunk: models.Chunk{Content: "beta"}},
	}
	assert.Equal(t, "alpha\n\nbeta", BuildContext(results))
	assert.Equal(t, "", BuildContext(nil))
}
