package biz

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/kart-io/logger"
	"github.com/oklog/ulid/v2"

	"github.com/kouzina-io/kouzina/internal/chat/store"
	"github.com/kouzina-io/kouzina/internal/pkg/textutil"
	"github.com/kouzina-io/kouzina/pkg/llm"
	"github.com/kouzina-io/kouzina/pkg/pool"
)

// ChunkerConfig configures the semantic chunker.
type ChunkerConfig struct {
	// BufferSize is the number of neighboring sentences blended into
	// each sentence's similarity window.
	BufferSize int
	// BreakpointPercentile is the cosine-distance percentile above
	// which a sentence boundary becomes a chunk boundary.
	BreakpointPercentile float64
	// BatchSize bounds how many documents are split and embedded at a
	// time. It caps peak memory, not chunking quality.
	BatchSize int
	// Workers is the embedding concurrency within a batch.
	Workers int
}

// DefaultChunkerConfig returns the chunker defaults.
func DefaultChunkerConfig() *ChunkerConfig {
	return &ChunkerConfig{
		BufferSize:           3,
		BreakpointPercentile: 90,
		BatchSize:            32,
		Workers:              8,
	}
}

// SemanticChunker splits documents into chunks at points of maximal
// semantic discontinuity between sentence windows.
type SemanticChunker struct {
	embedProvider llm.EmbeddingProvider
	workers       *pool.Pool
	config        *ChunkerConfig

	entropyMu sync.Mutex
	entropy   *rand.Rand
}

// NewSemanticChunker creates a chunker. The worker pool is owned by the
// chunker and released when chunking completes.
func NewSemanticChunker(embedProvider llm.EmbeddingProvider, config *ChunkerConfig) (*SemanticChunker, error) {
	if config == nil {
		config = DefaultChunkerConfig()
	}

	workers, err := pool.New("chunker-embed", pool.EmbedConfig(config.Workers))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrChunking, err)
	}

	return &SemanticChunker{
		embedProvider: embedProvider,
		workers:       workers,
		config:        config,
		entropy:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

// ChunkDocuments splits all documents into a flat ordered chunk
// sequence, processing at most BatchSize documents at a time. Embedding
// failures wrap ErrChunking.
func (c *SemanticChunker) ChunkDocuments(ctx context.Context, docs []*Document) ([]*store.Chunk, error) {
	defer c.workers.Release()

	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: no documents to chunk", ErrChunking)
	}

	batchSize := c.config.BatchSize
	if batchSize <= 0 {
		batchSize = len(docs)
	}

	var chunks []*store.Chunk
	for start := 0; start < len(docs); start += batchSize {
		end := start + batchSize
		if end > len(docs) {
			end = len(docs)
		}

		batchChunks, err := c.chunkBatch(ctx, docs[start:end])
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, batchChunks...)
	}

	logger.Infow("Corpus chunked",
		"documents", len(docs),
		"chunks", len(chunks),
		"batch_size", batchSize,
	)
	return chunks, nil
}

// chunkBatch splits one document batch. Documents are processed
// concurrently but the output preserves document order.
func (c *SemanticChunker) chunkBatch(ctx context.Context, docs []*Document) ([]*store.Chunk, error) {
	perDoc := make([][]*store.Chunk, len(docs))
	errs := make([]error, len(docs))

	var wg sync.WaitGroup
	for i, doc := range docs {
		wg.Add(1)
		i, doc := i, doc
		err := c.workers.Submit(func() {
			defer wg.Done()
			perDoc[i], errs[i] = c.chunkDocument(ctx, doc)
		})
		if err != nil {
			wg.Done()
			errs[i] = err
		}
	}
	wg.Wait()

	var chunks []*store.Chunk
	for i := range docs {
		if errs[i] != nil {
			return nil, fmt.Errorf("%w: document %q: %w", ErrChunking, docs[i].Name, errs[i])
		}
		chunks = append(chunks, perDoc[i]...)
	}
	return chunks, nil
}

// chunkDocument splits one document. Sentence windows are embedded,
// consecutive windows are compared by cosine distance, and boundaries
// above the breakpoint percentile split the document.
func (c *SemanticChunker) chunkDocument(ctx context.Context, doc *Document) ([]*store.Chunk, error) {
	sentences := textutil.SplitSentences(doc.Text)
	if len(sentences) == 0 {
		return nil, nil
	}
	if len(sentences) == 1 {
		return []*store.Chunk{c.newChunk(doc, sentences[0])}, nil
	}

	windows := c.sentenceWindows(sentences)
	embeddings, err := c.embedProvider.Embed(ctx, windows)
	if err != nil {
		return nil, err
	}
	if len(embeddings) != len(windows) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(windows), len(embeddings))
	}

	distances := make([]float64, len(embeddings)-1)
	for i := 0; i < len(embeddings)-1; i++ {
		distances[i] = textutil.CosineDistance(embeddings[i], embeddings[i+1])
	}
	threshold := textutil.Percentile(distances, c.config.BreakpointPercentile)

	var chunks []*store.Chunk
	var current []string
	for i, sentence := range sentences {
		current = append(current, sentence)
		if i < len(distances) && distances[i] > threshold {
			chunks = append(chunks, c.newChunk(doc, strings.Join(current, " ")))
			current = nil
		}
	}
	if len(current) > 0 {
		chunks = append(chunks, c.newChunk(doc, strings.Join(current, " ")))
	}

	return chunks, nil
}

// sentenceWindows blends each sentence with up to BufferSize neighbors
// on each side so boundary decisions see local context.
func (c *SemanticChunker) sentenceWindows(sentences []string) []string {
	buffer := c.config.BufferSize
	if buffer < 0 {
		buffer = 0
	}

	windows := make([]string, len(sentences))
	for i := range sentences {
		lo := i - buffer
		if lo < 0 {
			lo = 0
		}
		hi := i + buffer + 1
		if hi > len(sentences) {
			hi = len(sentences)
		}
		windows[i] = strings.Join(sentences[lo:hi], " ")
	}
	return windows
}

func (c *SemanticChunker) newChunk(doc *Document, content string) *store.Chunk {
	c.entropyMu.Lock()
	id := ulid.MustNew(ulid.Timestamp(time.Now()), c.entropy).String()
	c.entropyMu.Unlock()

	return &store.Chunk{
		ID:           id,
		DocumentID:   doc.ID,
		DocumentName: doc.Name,
		Category:     doc.Category,
		Content:      content,
	}
}
