// Package docqa provides the documentation QA application.
package docqa

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"

	docqaopts "github.com/kart-io/docqa/pkg/options/docqa"
	llmopts "github.com/kart-io/docqa/pkg/options/llm"
	logopts "github.com/kart-io/docqa/pkg/options/logger"
	milvusopts "github.com/kart-io/docqa/pkg/options/milvus"
)

// Run modes.
const (
	// ModePipeline runs the one-shot flow: ingest the corpus, answer the
	// configured questions, drop the collection.
	ModePipeline = "pipeline"
	// ModeServe runs the HTTP API.
	ModeServe = "serve"
)

// Options contains all docqa options.
type Options struct {
	// Mode selects pipeline or serve.
	Mode string `json:"mode" mapstructure:"mode"`

	// HTTPAddr is the serve-mode listen address.
	HTTPAddr string `json:"http-addr" mapstructure:"http-addr"`

	// Questions are answered after ingestion in pipeline mode.
	Questions []string `json:"questions" mapstructure:"questions"`

	// Log contains logger configuration.
	Log *logopts.Options `json:"log" mapstructure:"log"`

	// Milvus contains Milvus connection configuration.
	Milvus *milvusopts.Options `json:"milvus" mapstructure:"milvus"`

	// Embedding configures the embedding provider.
	Embedding *llmopts.ProviderOptions `json:"embedding" mapstructure:"embedding"`

	// Reader configures the extractive reader provider.
	Reader *llmopts.ProviderOptions `json:"reader" mapstructure:"reader"`

	// Pipeline contains corpus and chunking configuration.
	Pipeline *docqaopts.Options `json:"pipeline" mapstructure:"pipeline"`

	// Cache contains the serve-mode query cache configuration.
	Cache *CacheOptions `json:"cache" mapstructure:"cache"`
}

// CacheOptions configures the Redis query cache.
type CacheOptions struct {
	// Enabled turns the cache on. Only honored in serve mode.
	Enabled bool `json:"enabled" mapstructure:"enabled"`

	// TTL is the cache entry lifetime.
	TTL time.Duration `json:"ttl" mapstructure:"ttl"`

	// KeyPrefix namespaces cache keys.
	KeyPrefix string `json:"key-prefix" mapstructure:"key-prefix"`

	// Redis holds connection settings.
	Redis *RedisOptions `json:"redis" mapstructure:"redis"`
}

// RedisOptions holds Redis connection settings.
type RedisOptions struct {
	Host         string `json:"host" mapstructure:"host"`
	Port         int    `json:"port" mapstructure:"port"`
	Password     string `json:"password" mapstructure:"password"`
	Database     int    `json:"database" mapstructure:"database"`
	MaxRetries   int    `json:"max-retries" mapstructure:"max-retries"`
	PoolSize     int    `json:"pool-size" mapstructure:"pool-size"`
	MinIdleConns int    `json:"min-idle-conns" mapstructure:"min-idle-conns"`
}

// NewCacheOptions creates default cache options.
func NewCacheOptions() *CacheOptions {
	return &CacheOptions{
		Enabled:   false,
		TTL:       1 * time.Hour,
		KeyPrefix: "docqa:query:",
		Redis: &RedisOptions{
			Host:         "localhost",
			Port:         6379,
			Database:     0,
			MaxRetries:   3,
			PoolSize:     10,
			MinIdleConns: 5,
		},
	}
}

// NewOptions creates new Options with defaults.
func NewOptions() *Options {
	return &Options{
		Mode:      ModePipeline,
		HTTPAddr:  ":8083",
		Log:       logopts.NewOptions(),
		Milvus:    milvusopts.NewOptions(),
		Embedding: llmopts.NewEmbeddingOptions(),
		Reader:    llmopts.NewReaderOptions(),
		Pipeline:  docqaopts.NewOptions(),
		Cache:     NewCacheOptions(),
	}
}

// AddFlags adds flags to the flagset.
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.Mode, "mode", o.Mode, "Run mode (pipeline, serve)")
	fs.StringVar(&o.HTTPAddr, "http-addr", o.HTTPAddr, "HTTP listen address for serve mode")
	fs.StringSliceVar(&o.Questions, "questions", o.Questions, "Questions answered after ingestion in pipeline mode")

	o.Log.AddFlags(fs)
	o.Milvus.AddFlags(fs)
	o.Embedding.AddFlags(fs, "embedding")
	o.Reader.AddFlags(fs, "reader")
	o.Pipeline.AddFlags(fs)
	o.addCacheFlags(fs)
}

func (o *Options) addCacheFlags(fs *pflag.FlagSet) {
	fs.BoolVar(&o.Cache.Enabled, "cache.enabled", o.Cache.Enabled, "Enable the query result cache (serve mode)")
	fs.DurationVar(&o.Cache.TTL, "cache.ttl", o.Cache.TTL, "Cache TTL duration")
	fs.StringVar(&o.Cache.KeyPrefix, "cache.key-prefix", o.Cache.KeyPrefix, "Cache key prefix")
	fs.StringVar(&o.Cache.Redis.Host, "cache.redis.host", o.Cache.Redis.Host, "Redis host")
	fs.IntVar(&o.Cache.Redis.Port, "cache.redis.port", o.Cache.Redis.Port, "Redis port")
	fs.StringVar(&o.Cache.Redis.Password, "cache.redis.password", o.Cache.Redis.Password, "Redis password")
	fs.IntVar(&o.Cache.Redis.Database, "cache.redis.database", o.Cache.Redis.Database, "Redis database number")
	fs.IntVar(&o.Cache.Redis.MaxRetries, "cache.redis.max-retries", o.Cache.Redis.MaxRetries, "Redis max retries")
	fs.IntVar(&o.Cache.Redis.PoolSize, "cache.redis.pool-size", o.Cache.Redis.PoolSize, "Redis connection pool size")
	fs.IntVar(&o.Cache.Redis.MinIdleConns, "cache.redis.min-idle-conns", o.Cache.Redis.MinIdleConns, "Redis minimum idle connections")
}

// Validate validates the options.
func (o *Options) Validate() error {
	if o.Mode != ModePipeline && o.Mode != ModeServe {
		return fmt.Errorf("mode must be %q or %q", ModePipeline, ModeServe)
	}

	if err := o.Log.Validate(); err != nil {
		return err
	}
	if errs := o.Milvus.Validate(); len(errs) > 0 {
		return errs[0]
	}
	if errs := o.Embedding.Validate(); len(errs) > 0 {
		return errs[0]
	}
	if errs := o.Reader.Validate(); len(errs) > 0 {
		return errs[0]
	}
	if errs := o.Pipeline.Validate(); len(errs) > 0 {
		return errs[0]
	}

	if o.Embedding.MaxSequenceLength <= 1 {
		return fmt.Errorf("embedding.max-sequence-length must be greater than 1")
	}

	return nil
}

// Complete completes the options with derived defaults.
func (o *Options) Complete() error {
	// The reader inherits the embedding provider's endpoint credentials
	// when it has none of its own.
	if o.Reader.APIKey == "" {
		o.Reader.APIKey = o.Embedding.APIKey
	}
	return nil
}
