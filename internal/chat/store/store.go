package store

import (
	"context"
)

// Chunk is an embedded fragment of a recipe document.
type Chunk struct {
	// ID is the chunk identifier.
	ID string
	// DocumentID identifies the source recipe document.
	DocumentID string
	// DocumentName is the recipe name.
	DocumentName string
	// Category is the recipe category.
	Category string
	// Content is the chunk text.
	Content string
	// Embedding is the embedding vector.
	Embedding []float32
}

// SearchResult is a retrieval hit.
type SearchResult struct {
	// ID is the chunk identifier.
	ID string
	// DocumentID identifies the source recipe document.
	DocumentID string
	// DocumentName is the recipe name.
	DocumentName string
	// Category is the recipe category.
	Category string
	// Content is the chunk text.
	Content string
	// Score is the similarity score.
	Score float32
}

// CollectionConfig describes a vector collection.
type CollectionConfig struct {
	// Name is the collection name.
	Name string
	// Description is the collection description.
	Description string
	// Dimension is the vector dimension.
	Dimension int
}

// VectorStore is the vector storage interface.
type VectorStore interface {
	// CreateCollection creates a collection.
	CreateCollection(ctx context.Context, config *CollectionConfig) error

	// Insert adds chunks in bulk and returns their assigned ids.
	Insert(ctx context.Context, collection string, chunks []*Chunk) ([]string, error)

	// Search runs a vector similarity search.
	Search(ctx context.Context, collection string, embedding []float32, topK int) ([]*SearchResult, error)

	// GetStats returns the number of chunks in a collection.
	GetStats(ctx context.Context, collection string) (int64, error)

	// Close releases the store.
	Close(ctx context.Context) error
}
