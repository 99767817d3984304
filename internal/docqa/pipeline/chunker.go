package pipeline

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/kart-io/docqa/internal/docqa/store"
	"github.com/kart-io/docqa/internal/model"
	"github.com/kart-io/docqa/internal/pkg/docqa/textutil"
)

// Policy holds the tunable chunking bounds.
type Policy struct {
	// MaxChunkLength is the upper bound on chunk size in Unicode
	// characters. It is derived from the embedding model's maximum
	// sequence length so chunks are never silently truncated whole.
	MaxChunkLength int

	// Overlap is the number of characters shared between consecutive
	// windows of the same section.
	Overlap int

	// MinChunkLength drops fragments shorter than this.
	MinChunkLength int

	// HeadingMaxLength truncates stored heading metadata.
	HeadingMaxLength int
}

// NewPolicy derives a chunking policy from the embedding model's maximum
// sequence length. The chunk bound is one below the model limit; overlap is
// the given percentage of that bound.
func NewPolicy(maxSequenceLength, overlapPercent, minChunkLength, headingMaxLength int) Policy {
	maxChunk := maxSequenceLength - 1
	if maxChunk < 1 {
		maxChunk = 1
	}
	overlap := maxChunk * overlapPercent / 100
	return Policy{
		MaxChunkLength:   maxChunk,
		Overlap:          overlap,
		MinChunkLength:   minChunkLength,
		HeadingMaxLength: headingMaxLength,
	}
}

// Chunker splits documentation pages into embedding-sized chunks carrying
// heading metadata.
type Chunker struct {
	policy Policy
}

// NewChunker creates a chunker with the given policy.
func NewChunker(policy Policy) *Chunker {
	return &Chunker{policy: policy}
}

// Policy returns the chunker's policy.
func (c *Chunker) Policy() Policy {
	return c.policy
}

// Heading levels 1-3 structure the corpus; deeper levels stay inside their
// section's text.
var headingRegex = regexp.MustCompile(`(?m)^(#{1,3})\s+(.+)$`)

// Chunk splits a page into chunks. HTML pages are reduced to plain text
// first. Each chunk records the level-1 heading and the innermost level-2
// or level-3 heading above it; a missing level stays blank.
func (c *Chunker) Chunk(doc model.Document, content string) []*store.Chunk {
	if strings.EqualFold(filepath.Ext(doc.Name), ".html") {
		content = textutil.HTMLToText(content)
	}

	var chunks []*store.Chunk

	matches := headingRegex.FindAllStringSubmatchIndex(content, -1)
	sections := headingRegex.Split(content, -1)

	var heading1, heading2 string
	for idx, section := range sections {
		if idx > 0 && idx-1 < len(matches) {
			m := matches[idx-1]
			level := m[3] - m[2]
			text := strings.TrimSpace(content[m[4]:m[5]])
			switch level {
			case 1:
				heading1 = text
				heading2 = ""
			default:
				heading2 = text
			}
		}

		section = strings.TrimSpace(section)
		if len(section) == 0 {
			continue
		}

		for _, chunkContent := range textutil.SplitIntoChunks(section, c.policy.MaxChunkLength, c.policy.Overlap) {
			if utf8.RuneCountInString(strings.TrimSpace(chunkContent)) < c.policy.MinChunkLength {
				continue
			}
			chunks = append(chunks, &store.Chunk{
				DocumentID: doc.ID,
				Source:     doc.Source,
				Heading1:   textutil.TruncateString(heading1, c.policy.HeadingMaxLength),
				Heading2:   textutil.TruncateString(heading2, c.policy.HeadingMaxLength),
				Content:    chunkContent,
			})
		}
	}

	return chunks
}
