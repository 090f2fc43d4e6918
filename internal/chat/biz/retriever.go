package biz

import (
	"context"
	"fmt"

	"github.com/kart-io/logger"

	"github.com/kouzina-io/kouzina/internal/chat/store"
	"github.com/kouzina-io/kouzina/pkg/llm"
)

// RetrieverConfig configures retrieval.
type RetrieverConfig struct {
	// TopK is how many chunks a query retrieves.
	TopK int
	// Collection is the vector collection name.
	Collection string
}

// Retriever answers queries against the built index.
type Retriever struct {
	store         store.VectorStore
	embedProvider llm.EmbeddingProvider
	config        *RetrieverConfig
}

// NewRetriever creates a retriever.
func NewRetriever(vectorStore store.VectorStore, embedProvider llm.EmbeddingProvider, config *RetrieverConfig) *Retriever {
	if config.TopK <= 0 {
		config.TopK = 3
	}
	return &Retriever{
		store:         vectorStore,
		embedProvider: embedProvider,
		config:        config,
	}
}

// Retrieve embeds the query with the same model used at indexing time
// and returns the TopK most similar chunks, best first.
func (r *Retriever) Retrieve(ctx context.Context, query string) ([]*store.SearchResult, error) {
	embedding, err := r.embedProvider.EmbedSingle(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	results, err := r.store.Search(ctx, r.config.Collection, embedding, r.config.TopK)
	if err != nil {
		return nil, fmt.Errorf("failed to search index: %w", err)
	}

	logger.Debugw("Retrieved chunks", "query_length", len(query), "results", len(results))
	return results, nil
}
