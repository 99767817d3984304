package pipeline_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/docqa/internal/docqa/pipeline"
	"github.com/kart-io/docqa/internal/docqa/store"
)

const testCollection = "docqa_test"

func seedStore(t *testing.T, s *fakeStore, embedder *fakeEmbedder, contents []string) {
	t.Helper()

	ctx := context.Background()
	require.NoError(t, s.CreateCollection(ctx, &store.CollectionConfig{Name: testCollection, Dimension: 26}))

	embeddings, err := embedder.Embed(ctx, contents)
	require.NoError(t, err)

	chunks := make([]*store.Chunk, len(contents))
	for i, content := range contents {
		chunks[i] = &store.Chunk{
			DocumentID: fmt.Sprintf("doc-%d", i),
			Source:     fmt.Sprintf("https://docs.example.com/page-%d.md", i),
			Heading1:   "Guide",
			Content:    content,
			Embedding:  embeddings[i],
		}
	}

	_, err = s.Insert(ctx, testCollection, chunks)
	require.NoError(t, err)
}

func TestRetrieverTopKCap(t *testing.T) {
	s := newFakeStore()
	embedder := newFakeEmbedder()

	contents := make([]string, 8)
	for i := range contents {
		contents[i] = fmt.Sprintf("Configuration notes for component number %d in the cluster.", i)
	}
	seedStore(t, s, embedder, contents)

	r := pipeline.NewRetriever(s, embedder, &pipeline.RetrieverConfig{TopK: 5, Collection: testCollection})
	result, err := r.Retrieve(context.Background(), "how do I configure the cluster")
	require.NoError(t, err)

	assert.Len(t, result.Results, 5)
}

func TestRetrieverDescendingScores(t *testing.T) {
	s := newFakeStore()
	embedder := newFakeEmbedder()
	seedStore(t, s, embedder, []string{
		"The scheduler assigns work to idle nodes.",
		"Storage volumes are encrypted at rest.",
		"TLS certificates rotate every ninety days.",
		"The scheduler retries failed assignments twice.",
	})

	r := pipeline.NewRetriever(s, embedder, &pipeline.RetrieverConfig{TopK: 5, Collection: testCollection})
	result, err := r.Retrieve(context.Background(), "how does the scheduler assign work")
	require.NoError(t, err)
	require.NotEmpty(t, result.Results)

	for i := 1; i < len(result.Results); i++ {
		assert.GreaterOrEqual(t, result.Results[i-1].Score, result.Results[i].Score)
	}
}

func TestBuildContext(t *testing.T) {
	t.Run("joins contents in result order", func(t *testing.T) {
		results := []*store.SearchResult{
			{Content: "first passage", Score: 0.9},
			{Content: "second passage", Score: 0.5},
		}
		assert.Equal(t, "first passage\n\nsecond passage", pipeline.BuildContext(results))
	})

	t.Run("empty results give empty context", func(t *testing.T) {
		assert.Empty(t, pipeline.BuildContext(nil))
	})
}
