// Package huggingface implements embedding and extractive reading against
// the HuggingFace Inference API.
package huggingface

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kart-io/docqa/pkg/llm"
	"github.com/kart-io/docqa/pkg/utils/httpclient"
	"github.com/kart-io/docqa/pkg/utils/json"
)

// ProviderName is the registry identifier for HuggingFace.
const ProviderName = "huggingface"

func init() {
	llm.RegisterEmbeddingProvider(ProviderName, NewEmbeddingProvider)
	llm.RegisterReaderProvider(ProviderName, NewReaderProvider)
}

// Config holds HuggingFace provider configuration.
type Config struct {
	// BaseURL is the API base address.
	BaseURL string `json:"base_url" mapstructure:"base_url"`

	// APIKey is the HuggingFace API token.
	APIKey string `json:"api_key" mapstructure:"api_key"`

	// EmbedModel is the model ID used for feature extraction.
	EmbedModel string `json:"embed_model" mapstructure:"embed_model"`

	// ReaderModel is the model ID used for question answering.
	ReaderModel string `json:"reader_model" mapstructure:"reader_model"`

	// Timeout bounds a single request.
	Timeout time.Duration `json:"timeout" mapstructure:"timeout"`

	// MaxRetries is the retry budget for transient failures.
	MaxRetries int `json:"max_retries" mapstructure:"max_retries"`

	// MaxSequenceLength is the embedding model's maximum input length.
	MaxSequenceLength int `json:"max_sequence_length" mapstructure:"max_sequence_length"`

	// WaitForModel blocks while a cold model loads instead of failing.
	WaitForModel bool `json:"wait_for_model" mapstructure:"wait_for_model"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:           "https://api-inference.huggingface.co",
		EmbedModel:        "sentence-transformers/all-MiniLM-L6-v2",
		ReaderModel:       "deepset/roberta-base-squad2",
		Timeout:           120 * time.Second,
		MaxRetries:        3,
		MaxSequenceLength: 256,
		WaitForModel:      true,
	}
}

func configFromMap(configMap map[string]any) (*Config, error) {
	cfg := DefaultConfig()

	if v, ok := configMap["base_url"].(string); ok && v != "" {
		cfg.BaseURL = v
	}
	if v, ok := configMap["api_key"].(string); ok && v != "" {
		cfg.APIKey = v
	}
	if v, ok := configMap["embed_model"].(string); ok && v != "" {
		cfg.EmbedModel = v
	}
	if v, ok := configMap["reader_model"].(string); ok && v != "" {
		cfg.ReaderModel = v
	}
	if v, ok := configMap["timeout"].(time.Duration); ok && v > 0 {
		cfg.Timeout = v
	}
	if v, ok := configMap["max_retries"].(int); ok && v > 0 {
		cfg.MaxRetries = v
	}
	if v, ok := configMap["max_sequence_length"].(int); ok && v > 0 {
		cfg.MaxSequenceLength = v
	}
	if v, ok := configMap["wait_for_model"].(bool); ok {
		cfg.WaitForModel = v
	}

	if cfg.APIKey == "" {
		return nil, fmt.Errorf("huggingface: api_key is required")
	}
	return cfg, nil
}

// Provider implements llm.EmbeddingProvider and llm.ReaderProvider.
type Provider struct {
	config *Config
	client *httpclient.Client
}

var (
	_ llm.EmbeddingProvider = (*Provider)(nil)
	_ llm.ReaderProvider    = (*Provider)(nil)
)

// NewEmbeddingProvider creates a HuggingFace embedding provider from a
// config map.
func NewEmbeddingProvider(configMap map[string]any) (llm.EmbeddingProvider, error) {
	cfg, err := configFromMap(configMap)
	if err != nil {
		return nil, err
	}
	return NewProviderWithConfig(cfg), nil
}

// NewReaderProvider creates a HuggingFace reader provider from a config map.
func NewReaderProvider(configMap map[string]any) (llm.ReaderProvider, error) {
	cfg, err := configFromMap(configMap)
	if err != nil {
		return nil, err
	}
	return NewProviderWithConfig(cfg), nil
}

// NewProviderWithConfig creates a provider from structured configuration.
func NewProviderWithConfig(cfg *Config) *Provider {
	return &Provider{
		config: cfg,
		client: httpclient.NewClient(cfg.Timeout, cfg.MaxRetries),
	}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return ProviderName
}

// MaxSequenceLength returns the embedding model's maximum input length.
func (p *Provider) MaxSequenceLength() int {
	return p.config.MaxSequenceLength
}

type embeddingRequest struct {
	Inputs  []string       `json:"inputs"`
	Options *sharedOptions `json:"options,omitempty"`
}

type sharedOptions struct {
	WaitForModel bool `json:"wait_for_model,omitempty"`
}

// Embed generates unit-length embeddings via the feature-extraction
// pipeline endpoint.
func (p *Provider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	reqBody := embeddingRequest{
		Inputs: texts,
	}
	if p.config.WaitForModel {
		reqBody.Options = &sharedOptions{WaitForModel: true}
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/pipeline/feature-extraction/%s", p.config.BaseURL, p.config.EmbedModel)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	p.setHeaders(req)

	resp, err := p.client.DoRequest(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("request failed with status code %d: %s", resp.StatusCode, string(bodyBytes))
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	// Sentence-level models return [][]float32; some models return
	// token-level [][][]float32 which needs mean pooling.
	var embeddings [][]float32
	if err := json.Unmarshal(bodyBytes, &embeddings); err != nil {
		var tokenEmbeddings [][][]float32
		if err2 := json.Unmarshal(bodyBytes, &tokenEmbeddings); err2 != nil {
			return nil, fmt.Errorf("failed to parse embedding response: %w", err)
		}
		embeddings = make([][]float32, len(tokenEmbeddings))
		for i, tokens := range tokenEmbeddings {
			if len(tokens) == 0 {
				continue
			}
			dim := len(tokens[0])
			embeddings[i] = make([]float32, dim)
			for _, token := range tokens {
				for j, v := range token {
					embeddings[i][j] += v
				}
			}
			for j := range embeddings[i] {
				embeddings[i][j] /= float32(len(tokens))
			}
		}
	}

	for i := range embeddings {
		llm.NormalizeL2(embeddings[i])
	}

	return embeddings, nil
}

// EmbedSingle generates an embedding for a single text.
func (p *Provider) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := p.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("no embedding returned")
	}
	return embeddings[0], nil
}

type qaRequest struct {
	Inputs  qaInputs       `json:"inputs"`
	Options *sharedOptions `json:"options,omitempty"`
}

type qaInputs struct {
	Question string `json:"question"`
	Context  string `json:"context"`
}

type qaResponse struct {
	Score  float64 `json:"score"`
	Start  int     `json:"start"`
	End    int     `json:"end"`
	Answer string  `json:"answer"`
}

// Extract runs the question-answering pipeline and returns the best answer
// span from contextText.
func (p *Provider) Extract(ctx context.Context, question, contextText string) (*llm.Answer, error) {
	reqBody := qaRequest{
		Inputs: qaInputs{
			Question: question,
			Context:  contextText,
		},
	}
	if p.config.WaitForModel {
		reqBody.Options = &sharedOptions{WaitForModel: true}
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s", p.config.BaseURL, p.config.ReaderModel)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	p.setHeaders(req)

	resp, err := p.client.DoRequest(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("request failed with status code %d: %s", resp.StatusCode, string(bodyBytes))
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	// The endpoint returns a single object; some deployments wrap it in a
	// one-element array.
	var result qaResponse
	if err := json.Unmarshal(bodyBytes, &result); err != nil {
		var results []qaResponse
		if err2 := json.Unmarshal(bodyBytes, &results); err2 != nil || len(results) == 0 {
			return nil, fmt.Errorf("failed to parse answer response: %w", err)
		}
		result = results[0]
	}

	return &llm.Answer{
		Text:  result.Answer,
		Score: result.Score,
		Start: result.Start,
		End:   result.End,
	}, nil
}

func (p *Provider) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.config.APIKey)
}
