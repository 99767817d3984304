package ollama_test

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/docqa/pkg/llm/ollama"
)

func testConfig(baseURL string) *ollama.Config {
	cfg := ollama.DefaultConfig()
	cfg.BaseURL = baseURL
	cfg.Timeout = 5 * time.Second
	cfg.MaxRetries = 1
	return cfg
}

func TestEmbed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/embed", r.URL.Path)
		_, _ = w.Write([]byte(`{"model": "nomic-embed-text", "embeddings": [[0.0, 2.0]]}`))
	}))
	defer srv.Close()

	p := ollama.NewProviderWithConfig(testConfig(srv.URL))
	embeddings, err := p.Embed(context.Background(), []string{"text"})
	require.NoError(t, err)
	require.Len(t, embeddings, 1)

	var sum float64
	for _, x := range embeddings[0] {
		sum += float64(x) * float64(x)
	}
	assert.InDelta(t, 1.0, math.Sqrt(sum), 1e-6)
}

func TestPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		_, _ = w.Write([]byte(`{"models": []}`))
	}))
	defer srv.Close()

	p := ollama.NewProviderWithConfig(testConfig(srv.URL))
	assert.NoError(t, p.Ping(context.Background()))
}

func TestListModels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"models": [{"name": "nomic-embed-text"}, {"name": "llama3"}]}`))
	}))
	defer srv.Close()

	p := ollama.NewProviderWithConfig(testConfig(srv.URL))
	models, err := p.ListModels(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"nomic-embed-text", "llama3"}, models)
}
