package store

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/kouzina-io/kouzina/internal/pkg/textutil"
)

// MemoryStore is an in-process vector store. It holds all embeddings in
// memory and answers searches with exact brute-force cosine similarity,
// which is plenty for a corpus of a few thousand chunks built once at
// startup.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]*memoryCollection
	entropy     *rand.Rand
}

type memoryCollection struct {
	config *CollectionConfig
	chunks []*Chunk
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string]*memoryCollection),
		entropy:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// CreateCollection creates a collection. Creating an existing collection
// is a no-op, matching the Milvus store behavior.
func (s *MemoryStore) CreateCollection(_ context.Context, config *CollectionConfig) error {
	if config.Name == "" {
		return fmt.Errorf("collection name is empty")
	}
	if config.Dimension <= 0 {
		return fmt.Errorf("collection dimension must be positive, got %d", config.Dimension)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.collections[config.Name]; ok {
		return nil
	}

	s.collections[config.Name] = &memoryCollection{config: config}
	return nil
}

// Insert appends chunks to a collection, assigning a ULID to each chunk
// that arrives without an id.
func (s *MemoryStore) Insert(_ context.Context, collection string, chunks []*Chunk) ([]string, error) {
	if len(chunks) == 0 {
		return nil, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	coll, ok := s.collections[collection]
	if !ok {
		return nil, fmt.Errorf("collection %q does not exist", collection)
	}

	ids := make([]string, len(chunks))
	for i, chunk := range chunks {
		if len(chunk.Embedding) != coll.config.Dimension {
			return nil, fmt.Errorf("chunk %d has dimension %d, collection expects %d",
				i, len(chunk.Embedding), coll.config.Dimension)
		}
		if chunk.ID == "" {
			chunk.ID = ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
		}
		ids[i] = chunk.ID
		coll.chunks = append(coll.chunks, chunk)
	}

	return ids, nil
}

// Search scores every chunk against the query embedding and returns the
// topK most similar, best first.
func (s *MemoryStore) Search(_ context.Context, collection string, embedding []float32, topK int) ([]*SearchResult, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("topK must be positive, got %d", topK)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	coll, ok := s.collections[collection]
	if !ok {
		return nil, fmt.Errorf("collection %q does not exist", collection)
	}

	results := make([]*SearchResult, 0, len(coll.chunks))
	for _, chunk := range coll.chunks {
		score := textutil.CosineSimilarity(embedding, chunk.Embedding)
		results = append(results, &SearchResult{
			ID:           chunk.ID,
			DocumentID:   chunk.DocumentID,
			DocumentName: chunk.DocumentName,
			Category:     chunk.Category,
			Content:      chunk.Content,
			Score:        float32(score),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// GetStats returns the chunk count of a collection.
func (s *MemoryStore) GetStats(_ context.Context, collection string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	coll, ok := s.collections[collection]
	if !ok {
		return 0, fmt.Errorf("collection %q does not exist", collection)
	}
	return int64(len(coll.chunks)), nil
}

// Close releases the store.
func (s *MemoryStore) Close(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections = make(map[string]*memoryCollection)
	return nil
}

var _ VectorStore = (*MemoryStore)(nil)
