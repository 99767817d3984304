package docqa

import (
	"context"
	"fmt"
	"os"

	"github.com/kart-io/logger"
	goredis "github.com/redis/go-redis/v9"

	"github.com/kart-io/docqa/internal/docqa/pipeline"
	"github.com/kart-io/docqa/internal/docqa/store"
	"github.com/kart-io/docqa/internal/model"
	"github.com/kart-io/docqa/pkg/app"
	"github.com/kart-io/docqa/pkg/component/milvus"
	"github.com/kart-io/docqa/pkg/llm"
	"github.com/kart-io/docqa/pkg/utils/json"

	// Register model providers.
	_ "github.com/kart-io/docqa/pkg/llm/huggingface"
	_ "github.com/kart-io/docqa/pkg/llm/ollama"
)

const (
	appName        = "docqa"
	appDescription = `Documentation question answering

docqa builds a searchable knowledge base from a documentation corpus and
answers questions against it:
  - Corpus download, extraction, and chunking
  - Vector embeddings stored in Milvus
  - Top-K similarity retrieval
  - Extractive answers quoted from the retrieved passages`
)

// NewApp creates the docqa application.
func NewApp() *app.App {
	opts := NewOptions()

	return app.NewApp(
		app.WithName(appName),
		app.WithShortDescription("Documentation question answering"),
		app.WithDescription(appDescription),
		app.WithOptions(opts),
		app.WithRunFunc(func() error {
			return Run(opts)
		}),
	)
}

// Run runs docqa with the given options.
func Run(opts *Options) error {
	if err := opts.Log.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.Infof("Starting %s in %s mode", appName, opts.Mode)

	milvusClient, err := milvus.New(opts.Milvus)
	if err != nil {
		return fmt.Errorf("failed to initialize milvus: %w", err)
	}
	defer func() { _ = milvusClient.Close(context.Background()) }()

	if err := milvusClient.Ping(context.Background()); err != nil {
		return err
	}
	logger.Info("Milvus client initialized")

	vectorStore := store.NewMilvusStore(milvusClient)

	embedProvider, err := llm.NewEmbeddingProvider(opts.Embedding.Provider, opts.Embedding.ToConfigMap())
	if err != nil {
		return fmt.Errorf("failed to create embedding provider: %w", err)
	}
	readerProvider, err := llm.NewReaderProvider(opts.Reader.Provider, opts.Reader.ToConfigMap())
	if err != nil {
		return fmt.Errorf("failed to create reader provider: %w", err)
	}
	logger.Infow("Model providers initialized",
		"embedding", embedProvider.Name(),
		"reader", readerProvider.Name(),
	)

	// The chunk bound follows the provider's sequence limit so no chunk is
	// silently truncated whole by the model.
	policy := pipeline.NewPolicy(
		embedProvider.MaxSequenceLength(),
		opts.Pipeline.OverlapPercent,
		opts.Pipeline.MinChunkLength,
		opts.Pipeline.HeadingMaxLength,
	)

	cache := newQueryCache(opts)

	svc := pipeline.NewDocQAService(vectorStore, embedProvider, readerProvider, cache, &pipeline.ServiceConfig{
		IngestorConfig: &pipeline.IngestorConfig{
			Collection:    opts.Pipeline.Collection,
			EmbeddingDim:  opts.Pipeline.EmbeddingDim,
			DataDir:       opts.Pipeline.DataDir,
			SourceBaseURL: opts.Pipeline.SourceBaseURL,
			BatchSize:     opts.Pipeline.BatchSize,
		},
		RetrieverConfig: &pipeline.RetrieverConfig{
			TopK:       opts.Pipeline.TopK,
			Collection: opts.Pipeline.Collection,
		},
		ChunkPolicy: policy,
	})

	if opts.Mode == ModeServe {
		return runServe(svc, opts)
	}
	return runPipeline(svc, opts)
}

// newQueryCache builds the Redis cache for serve mode. Pipeline mode keeps
// the cache off so every question goes through retrieval.
func newQueryCache(opts *Options) *pipeline.QueryCache {
	if opts.Mode != ModeServe || !opts.Cache.Enabled {
		return nil
	}

	redisClient := goredis.NewClient(&goredis.Options{
		Addr:         fmt.Sprintf("%s:%d", opts.Cache.Redis.Host, opts.Cache.Redis.Port),
		Password:     opts.Cache.Redis.Password,
		DB:           opts.Cache.Redis.Database,
		MaxRetries:   opts.Cache.Redis.MaxRetries,
		PoolSize:     opts.Cache.Redis.PoolSize,
		MinIdleConns: opts.Cache.Redis.MinIdleConns,
	})

	return pipeline.NewQueryCache(redisClient, &pipeline.QueryCacheConfig{
		Enabled:   true,
		TTL:       opts.Cache.TTL,
		KeyPrefix: opts.Cache.KeyPrefix,
	})
}

// runPipeline executes the one-shot flow: ingest the corpus, answer the
// configured questions, and drop the collection.
func runPipeline(svc pipeline.Service, opts *Options) error {
	ctx := context.Background()

	if opts.Pipeline.CorpusURL != "" {
		if err := svc.IngestFromURL(ctx, opts.Pipeline.CorpusURL); err != nil {
			return err
		}
	} else {
		if err := svc.IngestDirectory(ctx, opts.Pipeline.DataDir); err != nil {
			return err
		}
	}

	for _, question := range opts.Questions {
		result, err := svc.Query(ctx, question)
		if err != nil {
			return err
		}
		printResult(question, result)
	}

	if opts.Pipeline.KeepCollection {
		logger.Infof("Keeping collection %s", opts.Pipeline.Collection)
		return nil
	}

	logger.Infof("Dropping collection %s", opts.Pipeline.Collection)
	return svc.Drop(ctx)
}

func printResult(question string, result *model.QueryResult) {
	out := map[string]any{
		"question": question,
		"answer":   result.Answer,
		"score":    result.Score,
		"sources":  result.Sources,
	}
	data, err := json.Marshal(out)
	if err != nil {
		logger.Errorw("failed to marshal result", "error", err.Error())
		return
	}
	fmt.Fprintln(os.Stdout, string(data))
}
