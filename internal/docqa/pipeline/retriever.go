package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/kart-io/logger"

	"github.com/kart-io/docqa/internal/docqa/store"
	"github.com/kart-io/docqa/pkg/llm"
)

// RetrieverConfig configures the retriever.
type RetrieverConfig struct {
	// TopK is the number of chunks returned per question.
	TopK int
	// Collection is the collection searched.
	Collection string
}

// RetrievalResult holds the ranked hits for a question.
type RetrievalResult struct {
	// Results are the retrieved chunks in descending score order.
	Results []*store.SearchResult
}

// Retriever embeds questions and performs similarity search. It must share
// its embedding provider with the ingestor so question and chunk vectors
// come from the same model.
type Retriever struct {
	store         store.VectorStore
	embedProvider llm.EmbeddingProvider
	config        *RetrieverConfig
}

// NewRetriever creates a retriever.
func NewRetriever(vectorStore store.VectorStore, embedProvider llm.EmbeddingProvider, config *RetrieverConfig) *Retriever {
	return &Retriever{
		store:         vectorStore,
		embedProvider: embedProvider,
		config:        config,
	}
}

// Retrieve embeds the question and returns the top-K most similar chunks.
// No re-ranking, filtering, or deduplication is applied.
func (r *Retriever) Retrieve(ctx context.Context, question string) (*RetrievalResult, error) {
	logger.Infof("Processing question: %s", question)

	embedding, err := r.embedProvider.EmbedSingle(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("failed to embed question: %w", err)
	}

	results, err := r.store.Search(ctx, r.config.Collection, embedding, r.config.TopK)
	if err != nil {
		return nil, fmt.Errorf("failed to search collection: %w", err)
	}

	return &RetrievalResult{Results: results}, nil
}

// BuildContext concatenates hit contents in descending score order. The
// assembled context is unbounded; the reader model handles long inputs.
func BuildContext(results []*store.SearchResult) string {
	if len(results) == 0 {
		return ""
	}

	parts := make([]string, 0, len(results))
	for _, res := range results {
		parts = append(parts, res.Content)
	}
	return strings.Join(parts, "\n\n")
}
