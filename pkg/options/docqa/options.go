// Package docqaopts provides pipeline configuration options.
package docqaopts

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/kart-io/docqa/pkg/options"
)

var _ options.IOptions = (*Options)(nil)

// Options contains pipeline-specific configuration.
type Options struct {
	// Collection is the name of the Milvus collection.
	Collection string `json:"collection" mapstructure:"collection"`

	// EmbeddingDim is the dimension of embedding vectors. It must match the
	// output size of the configured embedding model.
	EmbeddingDim int `json:"embedding-dim" mapstructure:"embedding-dim"`

	// TopK is the number of results returned from similarity search.
	TopK int `json:"top-k" mapstructure:"top-k"`

	// DataDir is the directory for downloaded documentation.
	DataDir string `json:"data-dir" mapstructure:"data-dir"`

	// CorpusURL is the archive of documentation pages to ingest. When empty,
	// DataDir is assumed to already hold the corpus.
	CorpusURL string `json:"corpus-url" mapstructure:"corpus-url"`

	// SourceBaseURL replaces the local DataDir prefix in chunk provenance so
	// that stored sources point at the original remote pages.
	SourceBaseURL string `json:"source-base-url" mapstructure:"source-base-url"`

	// OverlapPercent is the chunk overlap as a percentage of the maximum
	// chunk length.
	OverlapPercent int `json:"overlap-percent" mapstructure:"overlap-percent"`

	// MinChunkLength drops fragments shorter than this many characters.
	MinChunkLength int `json:"min-chunk-length" mapstructure:"min-chunk-length"`

	// HeadingMaxLength truncates stored heading metadata to this length.
	HeadingMaxLength int `json:"heading-max-length" mapstructure:"heading-max-length"`

	// BatchSize is the number of files embedded and inserted per batch.
	BatchSize int `json:"batch-size" mapstructure:"batch-size"`

	// KeepCollection skips dropping the collection at the end of a pipeline
	// run.
	KeepCollection bool `json:"keep-collection" mapstructure:"keep-collection"`
}

// NewOptions creates new Options with defaults.
func NewOptions() *Options {
	return &Options{
		Collection:       "docqa_pages",
		EmbeddingDim:     384, // all-MiniLM-L6-v2 output size
		TopK:             5,
		DataDir:          "_output/docqa-data",
		OverlapPercent:   10,
		MinChunkLength:   20,
		HeadingMaxLength: 200,
		BatchSize:        10,
	}
}

// AddFlags adds flags for pipeline options to the specified FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	p := options.Join(prefixes...)
	fs.StringVar(&o.Collection, p+"pipeline.collection", o.Collection, "Milvus collection name.")
	fs.IntVar(&o.EmbeddingDim, p+"pipeline.embedding-dim", o.EmbeddingDim, "Embedding vector dimension.")
	fs.IntVar(&o.TopK, p+"pipeline.top-k", o.TopK, "Number of results from similarity search.")
	fs.StringVar(&o.DataDir, p+"pipeline.data-dir", o.DataDir, "Directory for downloaded documentation.")
	fs.StringVar(&o.CorpusURL, p+"pipeline.corpus-url", o.CorpusURL, "Documentation archive URL to download and ingest.")
	fs.StringVar(&o.SourceBaseURL, p+"pipeline.source-base-url", o.SourceBaseURL, "Base URL substituted for the local data directory in chunk provenance.")
	fs.IntVar(&o.OverlapPercent, p+"pipeline.overlap-percent", o.OverlapPercent, "Chunk overlap as a percentage of the maximum chunk length.")
	fs.IntVar(&o.MinChunkLength, p+"pipeline.min-chunk-length", o.MinChunkLength, "Minimum chunk length in characters.")
	fs.IntVar(&o.HeadingMaxLength, p+"pipeline.heading-max-length", o.HeadingMaxLength, "Maximum stored heading length.")
	fs.IntVar(&o.BatchSize, p+"pipeline.batch-size", o.BatchSize, "Files embedded and inserted per batch.")
	fs.BoolVar(&o.KeepCollection, p+"pipeline.keep-collection", o.KeepCollection, "Keep the collection after a pipeline run instead of dropping it.")
}

// Validate validates the pipeline options.
func (o *Options) Validate() []error {
	if o == nil {
		return nil
	}

	var errs []error
	if o.Collection == "" {
		errs = append(errs, fmt.Errorf("pipeline collection is required"))
	}
	if o.EmbeddingDim <= 0 {
		errs = append(errs, fmt.Errorf("embedding-dim must be positive"))
	}
	if o.TopK <= 0 {
		errs = append(errs, fmt.Errorf("top-k must be positive"))
	}
	if o.OverlapPercent < 0 || o.OverlapPercent >= 100 {
		errs = append(errs, fmt.Errorf("overlap-percent must be in [0, 100)"))
	}
	if o.BatchSize <= 0 {
		errs = append(errs, fmt.Errorf("batch-size must be positive"))
	}
	return errs
}
