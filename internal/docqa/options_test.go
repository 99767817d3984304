package docqa_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/docqa/internal/docqa"
)

func TestOptionsDefaultsValidate(t *testing.T) {
	opts := docqa.NewOptions()
	require.NoError(t, opts.Complete())
	assert.NoError(t, opts.Validate())
}

func TestOptionsValidateMode(t *testing.T) {
	opts := docqa.NewOptions()
	opts.Mode = "batch"
	assert.Error(t, opts.Validate())

	opts.Mode = docqa.ModeServe
	assert.NoError(t, opts.Validate())
}

func TestOptionsValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(o *docqa.Options)
	}{
		{"empty collection", func(o *docqa.Options) { o.Pipeline.Collection = "" }},
		{"zero embedding dim", func(o *docqa.Options) { o.Pipeline.EmbeddingDim = 0 }},
		{"zero top-k", func(o *docqa.Options) { o.Pipeline.TopK = 0 }},
		{"overlap out of range", func(o *docqa.Options) { o.Pipeline.OverlapPercent = 100 }},
		{"zero batch size", func(o *docqa.Options) { o.Pipeline.BatchSize = 0 }},
		{"empty embedding provider", func(o *docqa.Options) { o.Embedding.Provider = "" }},
		{"empty reader model", func(o *docqa.Options) { o.Reader.Model = "" }},
		{"sequence length too small", func(o *docqa.Options) { o.Embedding.MaxSequenceLength = 1 }},
		{"empty milvus address", func(o *docqa.Options) { o.Milvus.Address = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := docqa.NewOptions()
			tt.mutate(opts)
			assert.Error(t, opts.Validate())
		})
	}
}

func TestCompleteInheritsReaderAPIKey(t *testing.T) {
	opts := docqa.NewOptions()
	opts.Embedding.APIKey = "hf_secret"

	require.NoError(t, opts.Complete())
	assert.Equal(t, "hf_secret", opts.Reader.APIKey)

	// An explicit reader key is never overwritten.
	opts.Reader.APIKey = "hf_other"
	require.NoError(t, opts.Complete())
	assert.Equal(t, "hf_other", opts.Reader.APIKey)
}
