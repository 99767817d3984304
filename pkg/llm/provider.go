// Package llm provides a unified abstraction over model providers. The
// embedding and reader roles can be served by different providers.
package llm

import (
	"context"
	"fmt"
	"sync"
)

// EmbeddingProvider generates vector embeddings for text.
type EmbeddingProvider interface {
	// Embed generates embeddings for multiple texts. The returned vectors
	// are unit length so cosine similarity reduces to a dot product.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedSingle generates an embedding for a single text.
	EmbedSingle(ctx context.Context, text string) ([]float32, error)

	// MaxSequenceLength returns the model's maximum input length in
	// characters. Inputs longer than this are truncated by the model.
	MaxSequenceLength() int

	// Name returns the provider name.
	Name() string
}

// Answer is a span extracted from a context passage.
type Answer struct {
	// Text is the extracted span. It is always a substring of the context
	// it was extracted from.
	Text string `json:"text"`

	// Score is the model's confidence in the span.
	Score float64 `json:"score"`

	// Start and End delimit the span within the context, in bytes.
	Start int `json:"start"`
	End   int `json:"end"`
}

// ReaderProvider extracts answer spans from context passages.
type ReaderProvider interface {
	// Extract finds the span of contextText that best answers question.
	Extract(ctx context.Context, question, contextText string) (*Answer, error)

	// Name returns the provider name.
	Name() string
}

// EmbeddingProviderFactory constructs an embedding provider from config.
type EmbeddingProviderFactory func(config map[string]any) (EmbeddingProvider, error)

// ReaderProviderFactory constructs a reader provider from config.
type ReaderProviderFactory func(config map[string]any) (ReaderProvider, error)

var registry = &providerRegistry{
	embeddingProviders: make(map[string]EmbeddingProviderFactory),
	readerProviders:    make(map[string]ReaderProviderFactory),
}

type providerRegistry struct {
	mu                 sync.RWMutex
	embeddingProviders map[string]EmbeddingProviderFactory
	readerProviders    map[string]ReaderProviderFactory
}

// RegisterEmbeddingProvider registers an embedding provider factory.
func RegisterEmbeddingProvider(name string, factory EmbeddingProviderFactory) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.embeddingProviders[name] = factory
}

// RegisterReaderProvider registers a reader provider factory.
func RegisterReaderProvider(name string, factory ReaderProviderFactory) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.readerProviders[name] = factory
}

// NewEmbeddingProvider creates an embedding provider instance by name.
func NewEmbeddingProvider(name string, config map[string]any) (EmbeddingProvider, error) {
	registry.mu.RLock()
	factory, ok := registry.embeddingProviders[name]
	registry.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown embedding provider: %s", name)
	}
	return factory(config)
}

// NewReaderProvider creates a reader provider instance by name.
func NewReaderProvider(name string, config map[string]any) (ReaderProvider, error) {
	registry.mu.RLock()
	factory, ok := registry.readerProviders[name]
	registry.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown reader provider: %s", name)
	}
	return factory(config)
}

// ListProviders lists all registered provider names.
func ListProviders() []string {
	registry.mu.RLock()
	defer registry.mu.RUnlock()

	seen := make(map[string]bool)
	var names []string

	for name := range registry.embeddingProviders {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	for name := range registry.readerProviders {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}

	return names
}
