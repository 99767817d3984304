package store

import (
	"context"
	"fmt"

	"github.com/milvus-io/milvus/client/v2/entity"

	"github.com/kart-io/docqa/pkg/component/milvus"
)

// MilvusStore implements VectorStore on top of the Milvus client wrapper.
type MilvusStore struct {
	client *milvus.Client
}

var _ VectorStore = (*MilvusStore)(nil)

// NewMilvusStore creates a Milvus-backed vector store.
func NewMilvusStore(client *milvus.Client) *MilvusStore {
	return &MilvusStore{client: client}
}

// CreateCollection provisions a fresh collection. Any existing collection
// with the same name is dropped first.
func (s *MilvusStore) CreateCollection(ctx context.Context, config *CollectionConfig) error {
	schema := &milvus.CollectionSchema{
		Name:        config.Name,
		Description: config.Description,
		Dimension:   config.Dimension,
		MetaFields: []milvus.MetaField{
			{Name: "document_id", DataType: entity.FieldTypeVarChar, MaxLen: 64},
			{Name: "source", DataType: entity.FieldTypeVarChar, MaxLen: 512},
			{Name: "heading1", DataType: entity.FieldTypeVarChar, MaxLen: 255},
			{Name: "heading2", DataType: entity.FieldTypeVarChar, MaxLen: 255},
			{Name: "content", DataType: entity.FieldTypeVarChar, MaxLen: 65535},
		},
	}
	return s.client.RecreateCollection(ctx, schema)
}

// Insert inserts chunks into Milvus in one batch and flushes.
func (s *MilvusStore) Insert(ctx context.Context, collection string, chunks []*Chunk) ([]int64, error) {
	if len(chunks) == 0 {
		return nil, nil
	}

	embeddings := make([][]float32, len(chunks))
	metadata := map[string][]any{
		"document_id": make([]any, len(chunks)),
		"source":      make([]any, len(chunks)),
		"heading1":    make([]any, len(chunks)),
		"heading2":    make([]any, len(chunks)),
		"content":     make([]any, len(chunks)),
	}

	for i, chunk := range chunks {
		embeddings[i] = chunk.Embedding
		metadata["document_id"][i] = chunk.DocumentID
		metadata["source"][i] = chunk.Source
		metadata["heading1"][i] = chunk.Heading1
		metadata["heading2"][i] = chunk.Heading2
		metadata["content"][i] = chunk.Content
	}

	data := &milvus.InsertData{
		Embeddings: embeddings,
		Metadata:   metadata,
	}

	ids, err := s.client.Insert(ctx, collection, data)
	if err != nil {
		return nil, fmt.Errorf("failed to insert into milvus: %w", err)
	}

	return ids, nil
}

// Search performs a cosine similarity search.
func (s *MilvusStore) Search(ctx context.Context, collection string, embedding []float32, topK int) ([]*SearchResult, error) {
	outputFields := []string{"source", "heading1", "heading2", "content"}
	results, err := s.client.Search(ctx, collection, embedding, topK, outputFields)
	if err != nil {
		return nil, fmt.Errorf("failed to search milvus: %w", err)
	}

	searchResults := make([]*SearchResult, len(results))
	for i, r := range results {
		sr := &SearchResult{
			ID:    r.ID,
			Score: r.Score,
		}
		if v, ok := r.Metadata["source"].(string); ok {
			sr.Source = v
		}
		if v, ok := r.Metadata["heading1"].(string); ok {
			sr.Heading1 = v
		}
		if v, ok := r.Metadata["heading2"].(string); ok {
			sr.Heading2 = v
		}
		if v, ok := r.Metadata["content"].(string); ok {
			sr.Content = v
		}
		searchResults[i] = sr
	}

	return searchResults, nil
}

// GetStats returns the collection row count.
func (s *MilvusStore) GetStats(ctx context.Context, collection string) (int64, error) {
	return s.client.GetCollectionStats(ctx, collection)
}

// HasCollection reports whether the collection exists.
func (s *MilvusStore) HasCollection(ctx context.Context, collection string) (bool, error) {
	return s.client.HasCollection(ctx, collection)
}

// DropCollection removes the collection.
func (s *MilvusStore) DropCollection(ctx context.Context, collection string) error {
	return s.client.DropCollection(ctx, collection)
}

// Close closes the Milvus connection.
func (s *MilvusStore) Close(ctx context.Context) error {
	return s.client.Close(ctx)
}
