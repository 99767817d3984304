// Package model provides data models shared across the docqa pipeline.
package model

import "time"

// Document represents a single documentation page discovered in the corpus.
type Document struct {
	// ID is a ULID assigned when the page is discovered.
	ID string `json:"id"`

	// Name is the page's base file name.
	Name string `json:"name"`

	// Path is the local path the page was read from.
	Path string `json:"path"`

	// Source is the provenance recorded with every chunk of this page.
	// When a source base URL is configured it points at the original
	// remote page, otherwise it equals Path.
	Source string `json:"source"`

	// Size is the page size in bytes.
	Size int64 `json:"size"`

	// DiscoveredAt is when the page was found during corpus scanning.
	DiscoveredAt time.Time `json:"discovered_at"`
}

// QueryResult represents the answer produced for a question.
type QueryResult struct {
	// Answer is the extracted span, or a fixed placeholder when retrieval
	// produced no context.
	Answer string `json:"answer"`

	// Score is the reader's confidence in the answer.
	Score float64 `json:"score"`

	// Context is the concatenated retrieved passages the answer was
	// extracted from.
	Context string `json:"context,omitempty"`

	// Sources lists the retrieved chunks in descending score order.
	Sources []ChunkSource `json:"sources"`
}

// ChunkSource represents provenance for a retrieved chunk.
type ChunkSource struct {
	Source   string  `json:"source"`
	Heading1 string  `json:"heading1,omitempty"`
	Heading2 string  `json:"heading2,omitempty"`
	Content  string  `json:"content"`
	Score    float32 `json:"score"`
}
