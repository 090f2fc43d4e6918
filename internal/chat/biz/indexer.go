package biz

import (
	"context"
	"fmt"

	"github.com/kart-io/logger"

	"github.com/kouzina-io/kouzina/internal/chat/metrics"
	"github.com/kouzina-io/kouzina/internal/chat/store"
	"github.com/kouzina-io/kouzina/pkg/llm"
)

// IndexerConfig configures index construction.
type IndexerConfig struct {
	// Collection is the vector collection name.
	Collection string
	// Description is the collection description.
	Description string
	// EmbedBatchSize bounds how many chunks are embedded per call.
	EmbedBatchSize int
}

// Indexer builds the vector index over the chunked corpus. The index is
// built once at startup and is read-only afterwards.
type Indexer struct {
	store         store.VectorStore
	embedProvider llm.EmbeddingProvider
	config        *IndexerConfig
	metrics       *metrics.ChatMetrics
}

// NewIndexer creates an indexer.
func NewIndexer(vectorStore store.VectorStore, embedProvider llm.EmbeddingProvider, config *IndexerConfig) *Indexer {
	if config.EmbedBatchSize <= 0 {
		config.EmbedBatchSize = 32
	}
	return &Indexer{
		store:         vectorStore,
		embedProvider: embedProvider,
		config:        config,
		metrics:       metrics.Get(),
	}
}

// BuildIndex embeds all chunks and inserts them into the vector store.
// Any failure wraps ErrChunking so startup can fail fast.
func (ix *Indexer) BuildIndex(ctx context.Context, chunks []*store.Chunk) error {
	if len(chunks) == 0 {
		return fmt.Errorf("%w: no chunks to index", ErrChunking)
	}

	docs := make(map[string]struct{})
	for start := 0; start < len(chunks); start += ix.config.EmbedBatchSize {
		end := start + ix.config.EmbedBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.Content
		}

		embeddings, err := ix.embedProvider.Embed(ctx, texts)
		if err != nil {
			return fmt.Errorf("%w: embedding chunks %d-%d: %w", ErrChunking, start, end-1, err)
		}
		if len(embeddings) != len(batch) {
			return fmt.Errorf("%w: expected %d embeddings, got %d", ErrChunking, len(batch), len(embeddings))
		}

		for i, c := range batch {
			c.Embedding = embeddings[i]
			docs[c.DocumentID] = struct{}{}
		}

		// The collection dimension comes from the first embedding.
		if start == 0 {
			if err := ix.store.CreateCollection(ctx, &store.CollectionConfig{
				Name:        ix.config.Collection,
				Description: ix.config.Description,
				Dimension:   len(embeddings[0]),
			}); err != nil {
				return fmt.Errorf("%w: creating collection: %w", ErrChunking, err)
			}
		}

		if _, err := ix.store.Insert(ctx, ix.config.Collection, batch); err != nil {
			return fmt.Errorf("%w: inserting chunks: %w", ErrChunking, err)
		}
	}

	ix.metrics.RecordIndexing(len(docs), len(chunks))
	logger.Infow("Index built",
		"collection", ix.config.Collection,
		"documents", len(docs),
		"chunks", len(chunks),
	)
	return nil
}
