package pipeline

import (
	"context"
	"fmt"

	"github.com/kart-io/docqa/pkg/llm"
)

// NoContextPlaceholder stands in for the context when retrieval finds
// nothing, so the reader always has a passage to extract from.
const NoContextPlaceholder = "No relevant documentation was found."

// Reader extracts answer spans from retrieved context.
type Reader struct {
	provider llm.ReaderProvider
}

// NewReader creates a reader backed by the given provider.
func NewReader(provider llm.ReaderProvider) *Reader {
	return &Reader{provider: provider}
}

// Answer extracts the span of contextText that answers the question. The
// returned text is always a substring of the context the reader saw; an
// empty context is replaced by NoContextPlaceholder first.
func (r *Reader) Answer(ctx context.Context, question, contextText string) (*llm.Answer, error) {
	if contextText == "" {
		contextText = NoContextPlaceholder
	}

	answer, err := r.provider.Extract(ctx, question, contextText)
	if err != nil {
		return nil, fmt.Errorf("failed to extract answer: %w", err)
	}

	return answer, nil
}
