// Package app provides the Kouzina chat service application.
package app

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"

	httpopts "github.com/kouzina-io/kouzina/pkg/options/http"
	llmopts "github.com/kouzina-io/kouzina/pkg/options/llm"
	logopts "github.com/kouzina-io/kouzina/pkg/options/logger"
	milvusopts "github.com/kouzina-io/kouzina/pkg/options/milvus"
	redisopts "github.com/kouzina-io/kouzina/pkg/options/redis"
)

// Store driver names.
const (
	StoreDriverMemory = "memory"
	StoreDriverMilvus = "milvus"
)

// Options contains all chat service options.
type Options struct {
	// HTTP contains HTTP server configuration.
	HTTP *httpopts.Options `json:"http" mapstructure:"http"`

	// Log contains logger configuration.
	Log *logopts.Options `json:"log" mapstructure:"log"`

	// Milvus contains Milvus configuration, used when store.driver is milvus.
	Milvus *milvusopts.Options `json:"milvus" mapstructure:"milvus"`

	// Embedding contains embedding provider configuration.
	Embedding *llmopts.ProviderOptions `json:"embedding" mapstructure:"embedding"`

	// Chat contains chat provider configuration.
	Chat *llmopts.ProviderOptions `json:"chat" mapstructure:"chat"`

	// Corpus contains recipe corpus configuration.
	Corpus *CorpusOptions `json:"corpus" mapstructure:"corpus"`

	// Chunker contains semantic chunker configuration.
	Chunker *ChunkerOptions `json:"chunker" mapstructure:"chunker"`

	// RAG contains retrieval and generation configuration.
	RAG *RAGOptions `json:"rag" mapstructure:"rag"`

	// Store contains vector store configuration.
	Store *StoreOptions `json:"store" mapstructure:"store"`

	// Cache contains answer cache configuration.
	Cache *CacheOptions `json:"cache" mapstructure:"cache"`
}

// CorpusOptions configures the recipe corpus ingestion.
type CorpusOptions struct {
	// Path is the CSV recipe dataset to load at startup.
	Path string `json:"path" mapstructure:"path"`

	// BatchSize bounds how many documents are chunked at a time.
	BatchSize int `json:"batch-size" mapstructure:"batch-size"`
}

// ChunkerOptions configures semantic chunking.
type ChunkerOptions struct {
	// BufferSize is the sentence window half-width.
	BufferSize int `json:"buffer-size" mapstructure:"buffer-size"`

	// BreakpointPercentile is the cosine-distance percentile that marks
	// chunk boundaries.
	BreakpointPercentile float64 `json:"breakpoint-percentile" mapstructure:"breakpoint-percentile"`

	// Workers is the embedding concurrency within a batch.
	Workers int `json:"workers" mapstructure:"workers"`
}

// RAGOptions configures retrieval and answer generation.
type RAGOptions struct {
	// TopK is the number of chunks retrieved per question.
	TopK int `json:"top-k" mapstructure:"top-k"`

	// Collection is the vector collection name.
	Collection string `json:"collection" mapstructure:"collection"`

	// EmbedBatchSize bounds how many chunks are embedded per call
	// during index construction.
	EmbedBatchSize int `json:"embed-batch-size" mapstructure:"embed-batch-size"`

	// QATemplate drafts the answer from the best chunk. Empty means the
	// built-in Greek template.
	QATemplate string `json:"qa-template" mapstructure:"qa-template"`

	// RefineTemplate folds further chunks into the answer. Empty means
	// the built-in Greek template.
	RefineTemplate string `json:"refine-template" mapstructure:"refine-template"`
}

// StoreOptions selects the vector store backend.
type StoreOptions struct {
	// Driver is the vector store driver (memory, milvus).
	Driver string `json:"driver" mapstructure:"driver"`
}

// CacheOptions configures the Redis answer cache.
type CacheOptions struct {
	// Enabled toggles the answer cache.
	Enabled bool `json:"enabled" mapstructure:"enabled"`

	// TTL is how long a cached answer lives.
	TTL time.Duration `json:"ttl" mapstructure:"ttl"`

	// KeyPrefix namespaces the cache keys.
	KeyPrefix string `json:"key-prefix" mapstructure:"key-prefix"`

	// Redis contains Redis connection configuration.
	Redis *redisopts.Options `json:"redis" mapstructure:"redis"`
}

// NewCorpusOptions creates default corpus options.
func NewCorpusOptions() *CorpusOptions {
	return &CorpusOptions{
		Path:      "data/recipes.csv",
		BatchSize: 32,
	}
}

// NewChunkerOptions creates default chunker options.
func NewChunkerOptions() *ChunkerOptions {
	return &ChunkerOptions{
		BufferSize:           3,
		BreakpointPercentile: 90,
		Workers:              8,
	}
}

// NewRAGOptions creates default RAG options.
func NewRAGOptions() *RAGOptions {
	return &RAGOptions{
		TopK:           3,
		Collection:     "recipes",
		EmbedBatchSize: 32,
	}
}

// NewStoreOptions creates default store options.
func NewStoreOptions() *StoreOptions {
	return &StoreOptions{
		Driver: StoreDriverMemory,
	}
}

// NewCacheOptions creates default cache options. The cache is off by
// default so the service needs no Redis to run.
func NewCacheOptions() *CacheOptions {
	return &CacheOptions{
		Enabled:   false,
		TTL:       1 * time.Hour,
		KeyPrefix: "kouzina:answer:",
		Redis:     redisopts.NewOptions(),
	}
}

// NewOptions creates new Options with defaults.
func NewOptions() *Options {
	return &Options{
		HTTP:      httpopts.NewOptions(),
		Log:       logopts.NewOptions(),
		Milvus:    milvusopts.NewOptions(),
		Embedding: llmopts.NewEmbeddingOptions(),
		Chat:      llmopts.NewChatOptions(),
		Corpus:    NewCorpusOptions(),
		Chunker:   NewChunkerOptions(),
		RAG:       NewRAGOptions(),
		Store:     NewStoreOptions(),
		Cache:     NewCacheOptions(),
	}
}

// AddFlags adds flags to the flagset.
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	o.HTTP.AddFlags(fs)
	o.Log.AddFlags(fs)
	o.Milvus.AddFlags(fs)
	o.Embedding.AddFlags(fs, "embedding")
	o.Chat.AddFlags(fs, "chat")
	o.addCorpusFlags(fs)
	o.addChunkerFlags(fs)
	o.addRAGFlags(fs)
	o.addStoreFlags(fs)
	o.addCacheFlags(fs)
}

func (o *Options) addCorpusFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.Corpus.Path, "corpus.path", o.Corpus.Path, "Path to the CSV recipe dataset.")
	fs.IntVar(&o.Corpus.BatchSize, "corpus.batch-size", o.Corpus.BatchSize, "Documents chunked per batch.")
}

func (o *Options) addChunkerFlags(fs *pflag.FlagSet) {
	fs.IntVar(&o.Chunker.BufferSize, "chunker.buffer-size", o.Chunker.BufferSize, "Sentence window half-width for semantic chunking.")
	fs.Float64Var(&o.Chunker.BreakpointPercentile, "chunker.breakpoint-percentile", o.Chunker.BreakpointPercentile, "Cosine-distance percentile marking chunk boundaries.")
	fs.IntVar(&o.Chunker.Workers, "chunker.workers", o.Chunker.Workers, "Embedding concurrency within a batch.")
}

func (o *Options) addRAGFlags(fs *pflag.FlagSet) {
	fs.IntVar(&o.RAG.TopK, "rag.top-k", o.RAG.TopK, "Number of chunks retrieved per question.")
	fs.StringVar(&o.RAG.Collection, "rag.collection", o.RAG.Collection, "Vector collection name.")
	fs.IntVar(&o.RAG.EmbedBatchSize, "rag.embed-batch-size", o.RAG.EmbedBatchSize, "Chunks embedded per call while indexing.")
	fs.StringVar(&o.RAG.QATemplate, "rag.qa-template", o.RAG.QATemplate, "Question-answering prompt template.")
	fs.StringVar(&o.RAG.RefineTemplate, "rag.refine-template", o.RAG.RefineTemplate, "Answer refinement prompt template.")
}

func (o *Options) addStoreFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.Store.Driver, "store.driver", o.Store.Driver, "Vector store driver (memory, milvus).")
}

func (o *Options) addCacheFlags(fs *pflag.FlagSet) {
	fs.BoolVar(&o.Cache.Enabled, "cache.enabled", o.Cache.Enabled, "Enable the Redis answer cache.")
	fs.DurationVar(&o.Cache.TTL, "cache.ttl", o.Cache.TTL, "Answer cache TTL.")
	fs.StringVar(&o.Cache.KeyPrefix, "cache.key-prefix", o.Cache.KeyPrefix, "Answer cache key prefix.")
	o.Cache.Redis.AddFlags(fs, "cache")
}

// Validate validates the options.
func (o *Options) Validate() error {
	if err := o.Log.Validate(); err != nil {
		return err
	}
	if errs := o.HTTP.Validate(); len(errs) > 0 {
		return errs[0]
	}
	if errs := o.Embedding.Validate(); len(errs) > 0 {
		return fmt.Errorf("embedding: %w", errs[0])
	}
	if errs := o.Chat.Validate(); len(errs) > 0 {
		return fmt.Errorf("chat: %w", errs[0])
	}
	if o.Corpus.Path == "" {
		return fmt.Errorf("corpus.path is required")
	}
	if o.Corpus.BatchSize <= 0 {
		return fmt.Errorf("corpus.batch-size must be positive")
	}
	if o.Chunker.BufferSize < 0 {
		return fmt.Errorf("chunker.buffer-size must not be negative")
	}
	if o.Chunker.BreakpointPercentile <= 0 || o.Chunker.BreakpointPercentile > 100 {
		return fmt.Errorf("chunker.breakpoint-percentile must be in (0, 100]")
	}
	if o.RAG.TopK <= 0 {
		return fmt.Errorf("rag.top-k must be positive")
	}
	if o.RAG.Collection == "" {
		return fmt.Errorf("rag.collection is required")
	}
	switch o.Store.Driver {
	case StoreDriverMemory:
	case StoreDriverMilvus:
		if errs := o.Milvus.Validate(); len(errs) > 0 {
			return errs[0]
		}
	default:
		return fmt.Errorf("store.driver must be one of: memory, milvus")
	}
	if o.Cache.Enabled {
		if errs := o.Cache.Redis.Validate(); len(errs) > 0 {
			return errs[0]
		}
	}
	return nil
}

// Complete completes the options with defaults.
func (o *Options) Complete() error {
	if err := o.Embedding.Complete(); err != nil {
		return err
	}
	if err := o.Chat.Complete(); err != nil {
		return err
	}
	return o.Log.Complete()
}
