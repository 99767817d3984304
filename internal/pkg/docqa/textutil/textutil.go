// Package textutil provides text processing helpers for the docqa pipeline.
package textutil

import (
	"html"
	"math"
	"regexp"
	"strings"
	"unicode/utf8"
)

// CosineSimilarity computes the cosine similarity of two vectors. The
// result is in [-1, 1]; mismatched or empty inputs yield 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}

// TruncateString truncates s to at most maxLen Unicode characters.
func TruncateString(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxLen])
}

// SplitIntoChunks splits text into overlapping windows of at most chunkSize
// Unicode characters. overlap is the number of characters shared between
// consecutive windows.
func SplitIntoChunks(text string, chunkSize, overlap int) []string {
	if chunkSize <= 0 {
		return nil
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= chunkSize {
		overlap = chunkSize - 1
	}

	runes := []rune(text)
	if len(runes) <= chunkSize {
		return []string{text}
	}

	var chunks []string
	step := chunkSize - overlap

	for i := 0; i < len(runes); i += step {
		end := i + chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunk := string(runes[i:end])
		chunks = append(chunks, chunk)
		if end == len(runes) {
			break
		}
	}

	return chunks
}

var (
	scriptRegex     = regexp.MustCompile(`(?is)<script.*?</script>`)
	styleRegex      = regexp.MustCompile(`(?is)<style.*?</style>`)
	headingTagRegex = regexp.MustCompile(`(?is)<h([1-3])[^>]*>(.*?)</h[1-3]\s*>`)
	tagRegex        = regexp.MustCompile(`(?s)<[^>]*>`)
	whitespaceRegex = regexp.MustCompile(`[ \t]+`)
	blankLineRegex  = regexp.MustCompile(`\n{3,}`)
)

// HTMLToText reduces an HTML document to plain text: script and style
// blocks are removed, h1-h3 elements become markdown-style heading lines so
// the document keeps its structure, remaining tags are stripped, entities
// are unescaped, and whitespace is collapsed.
func HTMLToText(content string) string {
	text := scriptRegex.ReplaceAllString(content, " ")
	text = styleRegex.ReplaceAllString(text, " ")
	text = headingTagRegex.ReplaceAllStringFunc(text, func(m string) string {
		sub := headingTagRegex.FindStringSubmatch(m)
		level := int(sub[1][0] - '0')
		title := strings.Join(strings.Fields(tagRegex.ReplaceAllString(sub[2], " ")), " ")
		if title == "" {
			return "\n"
		}
		return "\n" + strings.Repeat("#", level) + " " + title + "\n"
	})
	text = tagRegex.ReplaceAllString(text, "\n")
	text = html.UnescapeString(text)
	text = whitespaceRegex.ReplaceAllString(text, " ")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	text = strings.Join(lines, "\n")
	text = blankLineRegex.ReplaceAllString(text, "\n\n")

	return strings.TrimSpace(text)
}
