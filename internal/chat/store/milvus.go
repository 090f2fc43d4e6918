package store

import (
	"context"
	"fmt"

	"github.com/milvus-io/milvus/client/v2/entity"

	"github.com/kouzina-io/kouzina/pkg/component/milvus"
)

// MilvusStore backs the vector store with a Milvus deployment. It is
// selected for corpora too large to score in process.
type MilvusStore struct {
	client *milvus.Client
}

// NewMilvusStore wraps a connected Milvus client.
func NewMilvusStore(client *milvus.Client) *MilvusStore {
	return &MilvusStore{client: client}
}

// CreateCollection creates the chunk collection in Milvus.
func (s *MilvusStore) CreateCollection(ctx context.Context, config *CollectionConfig) error {
	schema := &milvus.CollectionSchema{
		Name:        config.Name,
		Description: config.Description,
		Dimension:   config.Dimension,
		MetaFields: []milvus.MetaField{
			{Name: "chunk_id", DataType: entity.FieldTypeVarChar, MaxLen: 64},
			{Name: "document_id", DataType: entity.FieldTypeVarChar, MaxLen: 64},
			{Name: "document_name", DataType: entity.FieldTypeVarChar, MaxLen: 255},
			{Name: "category", DataType: entity.FieldTypeVarChar, MaxLen: 255},
			{Name: "content", DataType: entity.FieldTypeVarChar, MaxLen: 65535},
		},
	}
	return s.client.CreateCollection(ctx, schema)
}

// Insert writes chunks to Milvus.
func (s *MilvusStore) Insert(ctx context.Context, collection string, chunks []*Chunk) ([]string, error) {
	if len(chunks) == 0 {
		return nil, nil
	}

	embeddings := make([][]float32, len(chunks))
	metadata := map[string][]any{
		"chunk_id":      make([]any, len(chunks)),
		"document_id":   make([]any, len(chunks)),
		"document_name": make([]any, len(chunks)),
		"category":      make([]any, len(chunks)),
		"content":       make([]any, len(chunks)),
	}

	for i, chunk := range chunks {
		embeddings[i] = chunk.Embedding
		metadata["chunk_id"][i] = chunk.ID
		metadata["document_id"][i] = chunk.DocumentID
		metadata["document_name"][i] = chunk.DocumentName
		metadata["category"][i] = chunk.Category
		metadata["content"][i] = chunk.Content
	}

	if _, err := s.client.Insert(ctx, collection, &milvus.InsertData{
		Embeddings: embeddings,
		Metadata:   metadata,
	}); err != nil {
		return nil, fmt.Errorf("failed to insert into milvus: %w", err)
	}

	ids := make([]string, len(chunks))
	for i, chunk := range chunks {
		ids[i] = chunk.ID
	}
	return ids, nil
}

// Search runs a vector similarity search against Milvus.
func (s *MilvusStore) Search(ctx context.Context, collection string, embedding []float32, topK int) ([]*SearchResult, error) {
	outputFields := []string{"chunk_id", "document_id", "document_name", "category", "content"}
	results, err := s.client.Search(ctx, collection, embedding, topK, outputFields)
	if err != nil {
		return nil, fmt.Errorf("failed to search milvus: %w", err)
	}

	searchResults := make([]*SearchResult, len(results))
	for i, r := range results {
		searchResults[i] = &SearchResult{
			ID:           stringField(r.Metadata, "chunk_id"),
			DocumentID:   stringField(r.Metadata, "document_id"),
			DocumentName: stringField(r.Metadata, "document_name"),
			Category:     stringField(r.Metadata, "category"),
			Content:      stringField(r.Metadata, "content"),
			Score:        r.Score,
		}
	}

	return searchResults, nil
}

func stringField(metadata map[string]any, name string) string {
	if v, ok := metadata[name].(string); ok {
		return v
	}
	return ""
}

// GetStats returns the chunk count of a collection.
func (s *MilvusStore) GetStats(ctx context.Context, collection string) (int64, error) {
	return s.client.GetCollectionStats(ctx, collection)
}

// Close closes the Milvus connection.
func (s *MilvusStore) Close(ctx context.Context) error {
	return s.client.Close(ctx)
}

var _ VectorStore = (*MilvusStore)(nil)
