package pipeline_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/docqa/internal/docqa/pipeline"
	"github.com/kart-io/docqa/internal/model"
)

func testPolicy() pipeline.Policy {
	return pipeline.NewPolicy(128, 10, 20, 200)
}

func mdDoc() model.Document {
	return model.Document{
		ID:     "01J0000000000000000000TEST",
		Name:   "guide.md",
		Source: "https://docs.example.com/guide.md",
	}
}

func TestNewPolicy(t *testing.T) {
	p := pipeline.NewPolicy(256, 10, 20, 200)
	assert.Equal(t, 255, p.MaxChunkLength)
	assert.Equal(t, 25, p.Overlap)
	assert.Equal(t, 20, p.MinChunkLength)
	assert.Equal(t, 200, p.HeadingMaxLength)

	// The bound never collapses below one character.
	p = pipeline.NewPolicy(1, 10, 20, 200)
	assert.Equal(t, 1, p.MaxChunkLength)
}

func TestChunkerBounds(t *testing.T) {
	c := pipeline.NewChunker(testPolicy())
	content := "# Title\n\n" + strings.Repeat("All work and no play makes for dull documentation. ", 30)

	chunks := c.Chunk(mdDoc(), content)
	require.NotEmpty(t, chunks)

	for _, chunk := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(chunk.Content), 127)
	}
}

func TestChunkerHeadingMetadata(t *testing.T) {
	c := pipeline.NewChunker(testPolicy())
	content := `# Getting Started

Install the binary and place it somewhere on your PATH.

## Configuration

The configuration file lives next to the binary by default.

### Environment

Environment variables override every file-based setting when present.

# Reference

The full flag reference follows below in alphabetical order.
`

	chunks := c.Chunk(mdDoc(), content)
	require.Len(t, chunks, 4)

	assert.Equal(t, "Getting Started", chunks[0].Heading1)
	assert.Empty(t, chunks[0].Heading2)

	assert.Equal(t, "Getting Started", chunks[1].Heading1)
	assert.Equal(t, "Configuration", chunks[1].Heading2)

	assert.Equal(t, "Getting Started", chunks[2].Heading1)
	assert.Equal(t, "Environment", chunks[2].Heading2)

	// A new level-1 heading resets the inner heading.
	assert.Equal(t, "Reference", chunks[3].Heading1)
	assert.Empty(t, chunks[3].Heading2)
}

func TestChunkerMissingLevelsStayBlank(t *testing.T) {
	c := pipeline.NewChunker(testPolicy())

	t.Run("no headings at all", func(t *testing.T) {
		chunks := c.Chunk(mdDoc(), "A page without any headings, just a paragraph of plain text.")
		require.Len(t, chunks, 1)
		assert.Empty(t, chunks[0].Heading1)
		assert.Empty(t, chunks[0].Heading2)
	})

	t.Run("level two without level one", func(t *testing.T) {
		chunks := c.Chunk(mdDoc(), "## Orphan Section\n\nContent that sits under a level-two heading only.")
		require.Len(t, chunks, 1)
		assert.Empty(t, chunks[0].Heading1)
		assert.Equal(t, "Orphan Section", chunks[0].Heading2)
	})
}

func TestChunkerSkipsShortFragments(t *testing.T) {
	c := pipeline.NewChunker(testPolicy())
	content := "# A\n\nok\n\n# B\n\nThis section is comfortably longer than the minimum chunk length."

	chunks := c.Chunk(mdDoc(), content)
	require.Len(t, chunks, 1)
	assert.Equal(t, "B", chunks[0].Heading1)
}

func TestChunkerMinLengthCountsRunes(t *testing.T) {
	c := pipeline.NewChunker(testPolicy())

	// Ten characters but thirty bytes; still below the 20-character bound.
	chunks := c.Chunk(mdDoc(), "# 設定\n\n"+strings.Repeat("設", 10))
	assert.Empty(t, chunks)

	chunks = c.Chunk(mdDoc(), "# 設定\n\n"+strings.Repeat("設", 20))
	require.Len(t, chunks, 1)
	assert.Equal(t, "設定", chunks[0].Heading1)
}

func TestChunkerProvenance(t *testing.T) {
	c := pipeline.NewChunker(testPolicy())
	doc := mdDoc()

	chunks := c.Chunk(doc, "# Title\n\nEnough content here to clear the minimum length bound easily.")
	require.Len(t, chunks, 1)
	assert.Equal(t, doc.ID, chunks[0].DocumentID)
	assert.Equal(t, doc.Source, chunks[0].Source)
}

func TestChunkerHTMLInput(t *testing.T) {
	c := pipeline.NewChunker(testPolicy())
	doc := model.Document{
		ID:     "01J0000000000000000000HTML",
		Name:   "api.html",
		Source: "https://docs.example.com/api.html",
	}

	content := "<html><body><p>The API accepts JSON requests over HTTP and returns JSON responses.</p></body></html>"
	chunks := c.Chunk(doc, content)
	require.Len(t, chunks, 1)
	assert.NotContains(t, chunks[0].Content, "<p>")
	assert.Contains(t, chunks[0].Content, "JSON requests")
}

func TestChunkerHTMLHeadingMetadata(t *testing.T) {
	c := pipeline.NewChunker(testPolicy())
	doc := model.Document{
		ID:     "01J0000000000000000000HTML",
		Name:   "ops.html",
		Source: "https://docs.example.com/ops.html",
	}

	content := `<html><body>
<h1>Operations</h1>
<p>Drop the collection after batch runs to reclaim storage on the server.</p>
<h2 class="anchor">Backups</h2>
<p>Snapshots are written to object storage once per day at midnight.</p>
<h3>Retention</h3>
<p>Snapshots older than thirty days are deleted by the cleanup job.</p>
</body></html>`

	chunks := c.Chunk(doc, content)
	require.Len(t, chunks, 3)

	assert.Equal(t, "Operations", chunks[0].Heading1)
	assert.Empty(t, chunks[0].Heading2)
	assert.Contains(t, chunks[0].Content, "reclaim storage")

	assert.Equal(t, "Operations", chunks[1].Heading1)
	assert.Equal(t, "Backups", chunks[1].Heading2)

	assert.Equal(t, "Operations", chunks[2].Heading1)
	assert.Equal(t, "Retention", chunks[2].Heading2)
}

func TestChunkerOverlap(t *testing.T) {
	policy := testPolicy()
	c := pipeline.NewChunker(policy)
	content := strings.Repeat("y", 400)

	chunks := c.Chunk(mdDoc(), content)
	require.Greater(t, len(chunks), 1)

	for i := 1; i < len(chunks); i++ {
		prev := []rune(chunks[i-1].Content)
		tail := string(prev[len(prev)-policy.Overlap:])
		assert.True(t, strings.HasPrefix(chunks[i].Content, tail))
	}
}

func TestChunkerTruncatesLongHeadings(t *testing.T) {
	c := pipeline.NewChunker(testPolicy())
	longHeading := strings.Repeat("H", 300)
	content := "# " + longHeading + "\n\nSection content that is long enough to survive the minimum length filter."

	chunks := c.Chunk(mdDoc(), content)
	require.Len(t, chunks, 1)
	assert.Equal(t, 200, utf8.RuneCountInString(chunks[0].Heading1))
}
