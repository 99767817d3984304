package pipeline

import (
	"context"
	"time"

	"github.com/kart-io/docqa/internal/docqa/metrics"
	"github.com/kart-io/docqa/internal/docqa/store"
	"github.com/kart-io/docqa/internal/model"
	"github.com/kart-io/docqa/pkg/llm"
)

// Service is the documentation QA contract exposed to the CLI and the HTTP
// handlers.
type Service interface {
	// IngestFromURL downloads an archive and ingests its pages.
	IngestFromURL(ctx context.Context, url string) error
	// IngestDirectory ingests pages from a local directory.
	IngestDirectory(ctx context.Context, dir string) error
	// Query answers a question from the ingested corpus.
	Query(ctx context.Context, question string) (*model.QueryResult, error)
	// GetStats reports knowledge base statistics.
	GetStats(ctx context.Context) (map[string]any, error)
	// Drop removes the collection and all ingested chunks.
	Drop(ctx context.Context) error
}

// DocQAService combines the ingestor, retriever, and reader into the full
// question answering flow.
type DocQAService struct {
	ingestor       *Ingestor
	retriever      *Retriever
	reader         *Reader
	cache          *QueryCache
	store          store.VectorStore
	embedProvider  llm.EmbeddingProvider
	readerProvider llm.ReaderProvider
	collection     string
	metrics        *metrics.Metrics
}

// ServiceConfig bundles the component configurations.
type ServiceConfig struct {
	IngestorConfig   *IngestorConfig
	RetrieverConfig  *RetrieverConfig
	ChunkPolicy      Policy
	QueryCacheConfig *QueryCacheConfig
}

// NewDocQAService creates a service instance. One embedding provider flows
// to both the ingestor and the retriever so question and chunk vectors
// always come from the same model.
func NewDocQAService(
	vectorStore store.VectorStore,
	embedProvider llm.EmbeddingProvider,
	readerProvider llm.ReaderProvider,
	cache *QueryCache,
	config *ServiceConfig,
) *DocQAService {
	chunker := NewChunker(config.ChunkPolicy)
	ingestor := NewIngestor(vectorStore, embedProvider, chunker, config.IngestorConfig)
	retriever := NewRetriever(vectorStore, embedProvider, config.RetrieverConfig)
	reader := NewReader(readerProvider)

	return &DocQAService{
		ingestor:       ingestor,
		retriever:      retriever,
		reader:         reader,
		cache:          cache,
		store:          vectorStore,
		embedProvider:  embedProvider,
		readerProvider: readerProvider,
		collection:     config.IngestorConfig.Collection,
		metrics:        metrics.Get(),
	}
}

var _ Service = (*DocQAService)(nil)

// IngestFromURL downloads an archive and ingests its pages.
func (s *DocQAService) IngestFromURL(ctx context.Context, url string) error {
	return s.ingestor.IngestFromURL(ctx, url)
}

// IngestDirectory ingests pages from a local directory.
func (s *DocQAService) IngestDirectory(ctx context.Context, dir string) error {
	return s.ingestor.IngestDirectory(ctx, dir)
}

// Query answers a question: retrieve top-K chunks, assemble their texts in
// descending score order, and extract the answer span from that context.
func (s *DocQAService) Query(ctx context.Context, question string) (*model.QueryResult, error) {
	var queryErr error
	defer func() {
		if queryErr != nil {
			s.metrics.RecordQuery(false, queryErr)
		}
	}()

	if s.cache != nil {
		cachedResult, err := s.cache.Get(ctx, question)
		if err == nil && cachedResult != nil {
			s.metrics.RecordQuery(true, nil)
			return cachedResult, nil
		}
	}

	retrievalStart := time.Now()
	retrievalResult, err := s.retriever.Retrieve(ctx, question)
	s.metrics.RecordRetrieval(time.Since(retrievalStart), err)
	if err != nil {
		queryErr = err
		return nil, err
	}

	contextText := BuildContext(retrievalResult.Results)

	readerStart := time.Now()
	answer, err := s.reader.Answer(ctx, question, contextText)
	s.metrics.RecordReaderCall(time.Since(readerStart), err)
	if err != nil {
		queryErr = err
		return nil, err
	}

	sources := make([]model.ChunkSource, len(retrievalResult.Results))
	for i, result := range retrievalResult.Results {
		sources[i] = model.ChunkSource{
			Source:   result.Source,
			Heading1: result.Heading1,
			Heading2: result.Heading2,
			Content:  result.Content,
			Score:    result.Score,
		}
	}

	queryResult := &model.QueryResult{
		Answer:  answer.Text,
		Score:   answer.Score,
		Context: contextText,
		Sources: sources,
	}

	if s.cache != nil {
		// Cache write failures never fail the query.
		_ = s.cache.Set(ctx, question, queryResult)
	}

	s.metrics.RecordQuery(false, nil)

	return queryResult, nil
}

// GetStats reports collection, provider, cache, and counter statistics.
func (s *DocQAService) GetStats(ctx context.Context) (map[string]any, error) {
	stats := map[string]any{
		"collection":      s.collection,
		"embed_provider":  s.embedProvider.Name(),
		"reader_provider": s.readerProvider.Name(),
	}

	exists, err := s.store.HasCollection(ctx, s.collection)
	if err != nil {
		return nil, err
	}
	stats["collection_exists"] = exists

	if exists {
		count, err := s.store.GetStats(ctx, s.collection)
		if err != nil {
			return nil, err
		}
		stats["chunk_count"] = count
	}

	if s.cache != nil {
		cacheStats, err := s.cache.GetStats(ctx)
		if err == nil {
			stats["cache"] = cacheStats
		}
	}

	stats["metrics"] = s.metrics.Stats()

	return stats, nil
}

// Drop removes the collection and all ingested chunks.
func (s *DocQAService) Drop(ctx context.Context) error {
	return s.store.DropCollection(ctx, s.collection)
}
