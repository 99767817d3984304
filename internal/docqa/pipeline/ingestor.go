package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kart-io/logger"

	"github.com/kart-io/docqa/internal/docqa/metrics"
	"github.com/kart-io/docqa/internal/docqa/store"
	"github.com/kart-io/docqa/internal/model"
	"github.com/kart-io/docqa/internal/pkg/docqa/corpus"
	"github.com/kart-io/docqa/pkg/llm"
)

// CorpusExtensions are the page formats ingested from the corpus.
var CorpusExtensions = []string{".md", ".html"}

// IngestorConfig configures the ingestor.
type IngestorConfig struct {
	// Collection is the target collection name.
	Collection string
	// EmbeddingDim is the embedding vector dimension.
	EmbeddingDim int
	// DataDir is the local directory for downloaded corpora.
	DataDir string
	// SourceBaseURL maps local paths back to remote page URLs.
	SourceBaseURL string
	// BatchSize is the number of files processed per embed+insert batch.
	BatchSize int
}

// Ingestor downloads, chunks, embeds, and stores documentation pages.
type Ingestor struct {
	store         store.VectorStore
	embedProvider llm.EmbeddingProvider
	chunker       *Chunker
	config        *IngestorConfig
	metrics       *metrics.Metrics
}

// NewIngestor creates an ingestor. The chunker must be built from the same
// embedding provider's sequence limit.
func NewIngestor(vectorStore store.VectorStore, embedProvider llm.EmbeddingProvider, chunker *Chunker, config *IngestorConfig) *Ingestor {
	return &Ingestor{
		store:         vectorStore,
		embedProvider: embedProvider,
		chunker:       chunker,
		config:        config,
		metrics:       metrics.Get(),
	}
}

// IngestFromURL downloads a documentation archive, extracts it, and ingests
// the extracted pages.
func (i *Ingestor) IngestFromURL(ctx context.Context, url string) error {
	logger.Infof("Downloading corpus from: %s", url)

	if err := corpus.EnsureDir(i.config.DataDir); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	zipPath := filepath.Join(i.config.DataDir, "docs.zip")
	if err := corpus.DownloadFile(ctx, url, zipPath); err != nil {
		return fmt.Errorf("failed to download corpus: %w", err)
	}
	logger.Info("Download completed")

	extractDir := filepath.Join(i.config.DataDir, "docs")
	if err := corpus.ExtractZip(zipPath, extractDir); err != nil {
		return fmt.Errorf("failed to extract corpus: %w", err)
	}
	logger.Info("Extraction completed")

	return i.IngestDirectory(ctx, extractDir)
}

// IngestDirectory provisions the collection and ingests every corpus page
// under dir in batches.
func (i *Ingestor) IngestDirectory(ctx context.Context, dir string) error {
	logger.Infof("Ingesting documentation from: %s", dir)

	collectionConfig := &store.CollectionConfig{
		Name:        i.config.Collection,
		Description: "Documentation QA knowledge base",
		Dimension:   i.config.EmbeddingDim,
	}
	if err := i.store.CreateCollection(ctx, collectionConfig); err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}
	logger.Info("Collection ready")

	docs, err := corpus.Scan(dir, CorpusExtensions, i.config.DataDir, i.config.SourceBaseURL)
	if err != nil {
		return fmt.Errorf("failed to scan corpus: %w", err)
	}

	logger.Infof("Found %d documentation pages", len(docs))

	batchSize := i.config.BatchSize
	for idx := 0; idx < len(docs); idx += batchSize {
		end := idx + batchSize
		if end > len(docs) {
			end = len(docs)
		}
		batch := docs[idx:end]

		if err := i.ingestPages(ctx, batch); err != nil {
			return fmt.Errorf("failed to ingest batch %d-%d: %w", idx, end, err)
		}
		logger.Infof("Ingested batch %d-%d", idx, end)
	}

	logger.Info("Ingestion completed")
	return nil
}

// ingestPages chunks a batch of pages, embeds all chunk texts in one call,
// and inserts them as a single batch.
func (i *Ingestor) ingestPages(ctx context.Context, docs []model.Document) error {
	var allChunks []*store.Chunk

	for _, doc := range docs {
		content, err := os.ReadFile(doc.Path)
		if err != nil {
			logger.Warnw("Failed to read page", "path", doc.Path, "error", err.Error())
			continue
		}

		chunks := i.chunker.Chunk(doc, string(content))
		allChunks = append(allChunks, chunks...)
	}

	if len(allChunks) == 0 {
		return nil
	}

	texts := make([]string, len(allChunks))
	for idx, chunk := range allChunks {
		texts[idx] = chunk.Content
	}

	embeddings, err := i.embedProvider.Embed(ctx, texts)
	if err != nil {
		i.metrics.RecordIngest(0, 0, err)
		return fmt.Errorf("failed to generate embeddings: %w", err)
	}
	if len(embeddings) != len(allChunks) {
		err := fmt.Errorf("embedding count mismatch: got %d for %d chunks", len(embeddings), len(allChunks))
		i.metrics.RecordIngest(0, 0, err)
		return err
	}

	for idx, chunk := range allChunks {
		chunk.Embedding = embeddings[idx]
	}

	if _, err := i.store.Insert(ctx, i.config.Collection, allChunks); err != nil {
		i.metrics.RecordIngest(0, 0, err)
		return err
	}

	i.metrics.RecordIngest(len(docs), len(allChunks), nil)
	return nil
}
