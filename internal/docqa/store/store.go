// Package store defines the vector store abstraction used by the docqa
// pipeline and its Milvus implementation.
package store

import (
	"context"
)

// Chunk is a document fragment with its embedding and provenance metadata.
type Chunk struct {
	// DocumentID identifies the page the chunk came from.
	DocumentID string
	// Source is the page's provenance (URL or local path).
	Source string
	// Heading1 is the innermost level-1 heading above the chunk, blank
	// when the page has none.
	Heading1 string
	// Heading2 is the innermost level-2 or level-3 heading above the
	// chunk, blank when missing.
	Heading2 string
	// Content is the chunk text.
	Content string
	// Embedding is the chunk's unit-length vector.
	Embedding []float32
}

// SearchResult is a retrieved chunk with its similarity score.
type SearchResult struct {
	ID       int64
	Source   string
	Heading1 string
	Heading2 string
	Content  string
	Score    float32
}

// CollectionConfig describes the vector collection.
type CollectionConfig struct {
	// Name is the collection name.
	Name string
	// Description is a human-readable collection description.
	Description string
	// Dimension is the embedding vector dimension.
	Dimension int
}

// VectorStore is the storage contract the pipeline depends on.
type VectorStore interface {
	// CreateCollection provisions a fresh collection, dropping any
	// existing collection with the same name.
	CreateCollection(ctx context.Context, config *CollectionConfig) error

	// Insert inserts chunks in one batch and flushes so they are
	// searchable immediately. It returns the assigned row IDs.
	Insert(ctx context.Context, collection string, chunks []*Chunk) ([]int64, error)

	// Search returns up to topK chunks by cosine similarity, ordered by
	// descending score.
	Search(ctx context.Context, collection string, embedding []float32, topK int) ([]*SearchResult, error)

	// GetStats returns the collection row count.
	GetStats(ctx context.Context, collection string) (int64, error)

	// HasCollection reports whether the collection exists.
	HasCollection(ctx context.Context, collection string) (bool, error)

	// DropCollection removes the collection and all its rows.
	DropCollection(ctx context.Context, collection string) error

	// Close closes the underlying connection.
	Close(ctx context.Context) error
}
