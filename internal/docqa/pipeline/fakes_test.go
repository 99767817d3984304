package pipeline_test

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/kart-io/docqa/internal/docqa/store"
	"github.com/kart-io/docqa/internal/pkg/docqa/textutil"
	"github.com/kart-io/docqa/pkg/llm"
)

// fakeEmbedder produces deterministic unit-length vectors from letter
// frequencies, so similar texts get similar vectors.
type fakeEmbedder struct {
	maxSeqLen int
}

var _ llm.EmbeddingProvider = (*fakeEmbedder)(nil)

func newFakeEmbedder() *fakeEmbedder {
	return &fakeEmbedder{maxSeqLen: 128}
}

func (f *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		v := make([]float32, 26)
		for _, r := range strings.ToLower(text) {
			if r >= 'a' && r <= 'z' {
				v[r-'a']++
			}
		}
		out[i] = llm.NormalizeL2(v)
	}
	return out, nil
}

func (f *fakeEmbedder) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := f.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return embeddings[0], nil
}

func (f *fakeEmbedder) MaxSequenceLength() int { return f.maxSeqLen }

func (f *fakeEmbedder) Name() string { return "fake-embedder" }

// fakeStore is an in-memory VectorStore ranking by cosine similarity.
type fakeStore struct {
	mu          sync.Mutex
	collections map[string][]*store.Chunk
	nextID      int64
	dropped     []string
}

var _ store.VectorStore = (*fakeStore)(nil)

func newFakeStore() *fakeStore {
	return &fakeStore{collections: make(map[string][]*store.Chunk)}
}

func (f *fakeStore) CreateCollection(_ context.Context, config *store.CollectionConfig) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	// Drop-then-create semantics.
	f.collections[config.Name] = nil
	return nil
}

func (f *fakeStore) Insert(_ context.Context, collection string, chunks []*store.Chunk) ([]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.collections[collection]; !ok {
		return nil, fmt.Errorf("collection %s does not exist", collection)
	}

	ids := make([]int64, len(chunks))
	for i, chunk := range chunks {
		f.nextID++
		ids[i] = f.nextID
		f.collections[collection] = append(f.collections[collection], chunk)
	}
	return ids, nil
}

func (f *fakeStore) Search(_ context.Context, collection string, embedding []float32, topK int) ([]*store.SearchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	chunks, ok := f.collections[collection]
	if !ok {
		return nil, fmt.Errorf("collection %s does not exist", collection)
	}

	results := make([]*store.SearchResult, 0, len(chunks))
	for i, chunk := range chunks {
		results = append(results, &store.SearchResult{
			ID:       int64(i + 1),
			Source:   chunk.Source,
			Heading1: chunk.Heading1,
			Heading2: chunk.Heading2,
			Content:  chunk.Content,
			Score:    float32(textutil.CosineSimilarity(embedding, chunk.Embedding)),
		})
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

func (f *fakeStore) GetStats(_ context.Context, collection string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.collections[collection])), nil
}

func (f *fakeStore) HasCollection(_ context.Context, collection string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.collections[collection]
	return ok, nil
}

func (f *fakeStore) DropCollection(_ context.Context, collection string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.collections, collection)
	f.dropped = append(f.dropped, collection)
	return nil
}

func (f *fakeStore) Close(_ context.Context) error { return nil }

func (f *fakeStore) chunkCount(collection string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.collections[collection])
}

// fakeReader extracts the first sentence of the context as the answer.
type fakeReader struct{}

var _ llm.ReaderProvider = (*fakeReader)(nil)

func (f *fakeReader) Extract(_ context.Context, _ string, contextText string) (*llm.Answer, error) {
	end := strings.IndexByte(contextText, '.')
	if end < 0 {
		end = len(contextText) - 1
	}
	span := contextText[:end+1]
	return &llm.Answer{
		Text:  span,
		Score: 0.9,
		Start: 0,
		End:   len(span),
	}, nil
}

func (f *fakeReader) Name() string { return "fake-reader" }
