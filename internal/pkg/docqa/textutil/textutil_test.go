package textutil_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/kart-io/docqa/internal/pkg/docqa/textutil"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name     string
		a        []float32
		b        []float32
		expected float64
	}{
		{
			name:     "identical vectors",
			a:        []float32{1.0, 0.0, 0.0},
			b:        []float32{1.0, 0.0, 0.0},
			expected: 1.0,
		},
		{
			name:     "orthogonal vectors",
			a:        []float32{1.0, 0.0, 0.0},
			b:        []float32{0.0, 1.0, 0.0},
			expected: 0.0,
		},
		{
			name:     "opposite vectors",
			a:        []float32{1.0, 0.0, 0.0},
			b:        []float32{-1.0, 0.0, 0.0},
			expected: -1.0,
		},
		{
			name:     "empty vectors",
			a:        []float32{},
			b:        []float32{},
			expected: 0.0,
		},
		{
			name:     "length mismatch",
			a:        []float32{1.0, 2.0},
			b:        []float32{1.0},
			expected: 0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := textutil.CosineSimilarity(tt.a, tt.b)
			assert.InDelta(t, tt.expected, result, 0.0001)
		})
	}
}

func TestTruncateString(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxLen   int
		expected string
	}{
		{
			name:     "shorter than limit",
			input:    "hello",
			maxLen:   10,
			expected: "hello",
		},
		{
			name:     "equal to limit",
			input:    "hello",
			maxLen:   5,
			expected: "hello",
		},
		{
			name:     "longer than limit",
			input:    "hello world",
			maxLen:   5,
			expected: "hello",
		},
		{
			name:     "multibyte characters",
			input:    "héllo wörld",
			maxLen:   5,
			expected: "héllo",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, textutil.TruncateString(tt.input, tt.maxLen))
		})
	}
}

func TestSplitIntoChunks(t *testing.T) {
	t.Run("short text stays whole", func(t *testing.T) {
		chunks := textutil.SplitIntoChunks("short text", 100, 10)
		assert.Equal(t, []string{"short text"}, chunks)
	})

	t.Run("chunks never exceed the bound", func(t *testing.T) {
		text := strings.Repeat("abcde ", 100)
		chunks := textutil.SplitIntoChunks(text, 50, 5)
		assert.Greater(t, len(chunks), 1)
		for _, chunk := range chunks {
			assert.LessOrEqual(t, utf8.RuneCountInString(chunk), 50)
		}
	})

	t.Run("consecutive chunks overlap", func(t *testing.T) {
		text := strings.Repeat("x", 120)
		chunks := textutil.SplitIntoChunks(text, 50, 10)
		for i := 1; i < len(chunks); i++ {
			prev := []rune(chunks[i-1])
			tail := string(prev[len(prev)-10:])
			assert.True(t, strings.HasPrefix(chunks[i], tail))
		}
	})

	t.Run("full text is covered", func(t *testing.T) {
		text := "the quick brown fox jumps over the lazy dog and keeps running"
		chunks := textutil.SplitIntoChunks(text, 20, 4)
		joined := strings.Join(chunks, "")
		for _, word := range strings.Fields(text) {
			assert.Contains(t, joined, word)
		}
	})

	t.Run("invalid chunk size", func(t *testing.T) {
		assert.Nil(t, textutil.SplitIntoChunks("text", 0, 0))
	})
}

func TestHTMLToText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		contains []string
		excludes []string
	}{
		{
			name:     "strips tags",
			input:    "<html><body><h1>Title</h1><p>Some text.</p></body></html>",
			contains: []string{"Title", "Some text."},
			excludes: []string{"<h1>", "<p>"},
		},
		{
			name:     "removes script and style",
			input:    "<script>var x = 1;</script><style>body{}</style><p>Kept</p>",
			contains: []string{"Kept"},
			excludes: []string{"var x", "body{}"},
		},
		{
			name:     "unescapes entities",
			input:    "<p>a &amp; b &lt;c&gt;</p>",
			contains: []string{"a & b <c>"},
		},
		{
			name:     "headings become markdown markers",
			input:    "<h1>Operations</h1><p>Body text.</p><h2 class=\"anchor\">Backups</h2><h3>Retention</h3>",
			contains: []string{"# Operations", "## Backups", "### Retention"},
			excludes: []string{"<h1>", "anchor"},
		},
		{
			name:     "nested heading markup flattened",
			input:    "<h2>Getting <em>Started</em></h2>",
			contains: []string{"## Getting Started"},
			excludes: []string{"<em>"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := textutil.HTMLToText(tt.input)
			for _, s := range tt.contains {
				assert.Contains(t, result, s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, result, s)
			}
		})
	}
}
