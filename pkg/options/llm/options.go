// Package llmopts provides configuration for model providers (embedding
// and extractive reading).
package llmopts

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/kart-io/docqa/pkg/options"
)

var _ options.IOptions = (*ProviderOptions)(nil)

// ProviderOptions configures a single model provider.
type ProviderOptions struct {
	// Provider is the provider name (huggingface, ollama).
	Provider string `json:"provider" mapstructure:"provider"`

	// BaseURL is the API base address.
	BaseURL string `json:"base-url" mapstructure:"base-url"`

	// APIKey authenticates against the provider, if it requires one.
	APIKey string `json:"api-key" mapstructure:"api-key"`

	// Model is the model identifier on the provider.
	Model string `json:"model" mapstructure:"model"`

	// Timeout bounds a single request.
	Timeout time.Duration `json:"timeout" mapstructure:"timeout"`

	// MaxRetries is the retry budget for transient failures.
	MaxRetries int `json:"max-retries" mapstructure:"max-retries"`

	// MaxSequenceLength is the model's maximum input length. Longer inputs
	// are truncated silently by the model; the chunker uses this value to
	// keep inputs short enough.
	MaxSequenceLength int `json:"max-sequence-length" mapstructure:"max-sequence-length"`
}

// NewEmbeddingOptions returns defaults for the embedding provider.
func NewEmbeddingOptions() *ProviderOptions {
	return &ProviderOptions{
		Provider:          "huggingface",
		BaseURL:           "https://api-inference.huggingface.co",
		Model:             "sentence-transformers/all-MiniLM-L6-v2",
		Timeout:           120 * time.Second,
		MaxRetries:        3,
		MaxSequenceLength: 256,
	}
}

// NewReaderOptions returns defaults for the extractive reader provider.
func NewReaderOptions() *ProviderOptions {
	return &ProviderOptions{
		Provider:   "huggingface",
		BaseURL:    "https://api-inference.huggingface.co",
		Model:      "deepset/roberta-base-squad2",
		Timeout:    120 * time.Second,
		MaxRetries: 3,
	}
}

// ToConfigMap converts the options into the map consumed by provider
// factories.
func (o *ProviderOptions) ToConfigMap() map[string]any {
	return map[string]any{
		"base_url":            o.BaseURL,
		"api_key":             o.APIKey,
		"embed_model":         o.Model,
		"reader_model":        o.Model,
		"timeout":             o.Timeout,
		"max_retries":         o.MaxRetries,
		"max_sequence_length": o.MaxSequenceLength,
	}
}

// AddFlags adds flags to the flagset.
func (o *ProviderOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	p := options.Join(prefixes...)
	fs.StringVar(&o.Provider, p+"provider", o.Provider, "Model provider name (huggingface, ollama).")
	fs.StringVar(&o.BaseURL, p+"base-url", o.BaseURL, "Provider API base URL.")
	fs.StringVar(&o.APIKey, p+"api-key", o.APIKey, "Provider API key.")
	fs.StringVar(&o.Model, p+"model", o.Model, "Model identifier.")
	fs.DurationVar(&o.Timeout, p+"timeout", o.Timeout, "Request timeout.")
	fs.IntVar(&o.MaxRetries, p+"max-retries", o.MaxRetries, "Max retries for transient failures.")
	fs.IntVar(&o.MaxSequenceLength, p+"max-sequence-length", o.MaxSequenceLength, "Model maximum input sequence length.")
}

// Validate validates the options.
func (o *ProviderOptions) Validate() []error {
	if o == nil {
		return nil
	}

	var errs []error
	if o.Provider == "" {
		errs = append(errs, fmt.Errorf("provider is required"))
	}
	if o.BaseURL == "" {
		errs = append(errs, fmt.Errorf("base-url is required"))
	}
	if o.Model == "" {
		errs = append(errs, fmt.Errorf("model is required"))
	}
	if o.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("timeout must be positive"))
	}
	return errs
}
