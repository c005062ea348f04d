// Package retrieval embeds a query and runs similarity search against
// a persisted vector index, producing the context block for the prompt.
package retrieval

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"hyperchat/internal/embedding"
	"hyperchat/internal/models"
	"hyperchat/internal/vectorstore"
)

// ErrStoreLoad marks a failure to open the configured vector store,
// as opposed to a failure while querying one that loaded fine.
var ErrStoreLoad = errors.New("loading vector store")

// Opener loads the vector store at a configured location.
type Opener func(location string) (vectorstore.Store, error)

// Engine serves retrieval for all configured vector store locations.
// Stores are opened lazily on first use and then shared read-only
// across concurrent requests.
type Engine struct {
	embedder      embedding.Embedder
	open          Opener
	embedTimeout  time.Duration
	searchTimeout time.Duration

	mu     sync.Mutex
	stores map[string]vectorstore.Store
}

func NewEngine(embedder embedding.Embedder, open Opener, embedTimeout, searchTimeout time.Duration) *Engine {
	return &Engine{
		embedder:      embedder,
		open:          open,
		embedTimeout:  embedTimeout,
		searchTimeout: searchTimeout,
		stores:        make(map[string]vectorstore.Store),
	}
}

// Retrieve returns the top-k chunks for the query, ranked by
// similarity. A k larger than the index yields every indexed chunk.
// Index load failures and embedding failures are returned to the
// caller, never swallowed.
func (e *Engine) Retrieve(ctx context.Context, location, query string, k int) ([]models.SearchResult, error) {
	store, err := e.store(location)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrStoreLoad, location, err)
	}

	embedCtx, cancel := context.WithTimeout(ctx, e.embedTimeout)
	defer cancel()
	queryEmbedding, err := e.embedder.EmbedQuery(embedCtx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	searchCtx, cancel := context.WithTimeout(ctx, e.searchTimeout)
	defer cancel()
	results, err := store.Search(searchCtx, queryEmbedding, k)
	if err != nil {
		return nil, fmt.Errorf("searching vector store: %w", err)
	}
	return results, nil
}

func (e *Engine) store(location string) (vectorstore.Store, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if s, ok := e.stores[location]; ok {
		return s, nil
	}
	s, err := e.open(location)
	if err != nil {
		return nil, err
	}
	e.stores[location] = s
	return s, nil
}

// BuildContext joins the retrieved chunk texts in ranked order,
// separated by a blank line.
func BuildContext(results []models.SearchResult) string {
	parts := make([]string, len(results))
	for i, r := range results {
		parts[i] = r.Chunk.Content
	}
	return strings.Join(parts, "\n\n")
}
