package app

import (
	"context"
	"fmt"
	"time"

	"github.com/kart-io/logger"
	goredis "github.com/redis/go-redis/v9"

	"github.com/kouzina-io/kouzina/internal/chat/biz"
	"github.com/kouzina-io/kouzina/internal/chat/conversation"
	"github.com/kouzina-io/kouzina/internal/chat/handler"
	"github.com/kouzina-io/kouzina/internal/chat/router"
	"github.com/kouzina-io/kouzina/internal/chat/store"
	"github.com/kouzina-io/kouzina/pkg/app"
	"github.com/kouzina-io/kouzina/pkg/component/milvus"
	"github.com/kouzina-io/kouzina/pkg/llm"
	"github.com/kouzina-io/kouzina/pkg/server"

	// Register LLM providers.
	_ "github.com/kouzina-io/kouzina/pkg/llm/ollama"
	_ "github.com/kouzina-io/kouzina/pkg/llm/openai"
)

const (
	appName        = "kouzina-chat"
	appDescription = `Kouzina recipe chat service

A conversational question-answering service over a Greek recipe corpus.

On startup the server:
  - loads the recipe dataset and renders each record into a passage
  - splits the passages into semantically coherent chunks
  - embeds the chunks and builds the vector index

It then serves multi-turn conversations answered with
retrieval-augmented generation.`
)

// NewApp creates a new application instance.
func NewApp() *app.App {
	opts := NewOptions()

	return app.NewApp(
		app.WithName(appName),
		app.WithDescription(appDescription),
		app.WithOptions(opts),
		app.WithRunFunc(func() error {
			return Run(opts)
		}),
	)
}

// Run starts the chat service with the given options. The knowledge
// base is built before the server listens; any ingestion, chunking, or
// indexing failure aborts startup.
func Run(opts *Options) error {
	opts.Log.AddInitialField("service.name", appName)
	opts.Log.AddInitialField("service.version", app.GetVersion())
	if err := opts.Log.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.Infow("Starting chat service", "store", opts.Store.Driver)

	ctx := context.Background()

	vectorStore, err := newVectorStore(opts)
	if err != nil {
		return err
	}
	defer vectorStore.Close(context.Background())

	embedProvider, err := llm.NewEmbeddingProvider(opts.Embedding.Provider, opts.Embedding.ToConfigMap())
	if err != nil {
		return fmt.Errorf("failed to create embedding provider: %w", err)
	}
	chatProvider, err := llm.NewChatProvider(opts.Chat.Provider, opts.Chat.ToConfigMap())
	if err != nil {
		return fmt.Errorf("failed to create chat provider: %w", err)
	}
	logger.Infow("LLM providers initialized",
		"embedding_provider", opts.Embedding.Provider, "embedding_model", opts.Embedding.Model,
		"chat_provider", opts.Chat.Provider, "chat_model", opts.Chat.Model)

	if err := buildKnowledgeBase(ctx, opts, vectorStore, embedProvider); err != nil {
		return err
	}

	svc := biz.NewChatService(
		conversation.NewRegistry(),
		vectorStore,
		embedProvider,
		chatProvider,
		newAnswerCache(ctx, opts),
		&biz.ServiceConfig{
			IndexerConfig: &biz.IndexerConfig{
				Collection: opts.RAG.Collection,
			},
			RetrieverConfig: &biz.RetrieverConfig{
				TopK:       opts.RAG.TopK,
				Collection: opts.RAG.Collection,
			},
			GeneratorConfig: &biz.GeneratorConfig{
				QATemplate:     opts.RAG.QATemplate,
				RefineTemplate: opts.RAG.RefineTemplate,
			},
		},
	)

	srv := server.New(opts.HTTP)
	router.Register(srv.Engine(), handler.NewChatHandler(svc))

	logger.Infow("Chat service is ready", "addr", opts.HTTP.Addr)
	return srv.Run(ctx)
}

// newVectorStore selects the vector store backend.
func newVectorStore(opts *Options) (store.VectorStore, error) {
	switch opts.Store.Driver {
	case StoreDriverMilvus:
		client, err := milvus.New(opts.Milvus)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize milvus: %w", err)
		}
		logger.Infow("Milvus store initialized", "address", opts.Milvus.Address)
		return store.NewMilvusStore(client), nil
	default:
		return store.NewMemoryStore(), nil
	}
}

// buildKnowledgeBase runs the startup pipeline: load the corpus, chunk
// it, and build the vector index.
func buildKnowledgeBase(ctx context.Context, opts *Options, vectorStore store.VectorStore, embedProvider llm.EmbeddingProvider) error {
	started := time.Now()

	loader := biz.NewLoader(&biz.LoaderConfig{Path: opts.Corpus.Path})
	docs, err := loader.Load()
	if err != nil {
		return err
	}

	chunker, err := biz.NewSemanticChunker(embedProvider, &biz.ChunkerConfig{
		BufferSize:           opts.Chunker.BufferSize,
		BreakpointPercentile: opts.Chunker.BreakpointPercentile,
		BatchSize:            opts.Corpus.BatchSize,
		Workers:              opts.Chunker.Workers,
	})
	if err != nil {
		return err
	}
	chunks, err := chunker.ChunkDocuments(ctx, docs)
	if err != nil {
		return err
	}

	indexer := biz.NewIndexer(vectorStore, embedProvider, &biz.IndexerConfig{
		Collection:     opts.RAG.Collection,
		Description:    "Greek recipe passages",
		EmbedBatchSize: opts.RAG.EmbedBatchSize,
	})
	if err := indexer.BuildIndex(ctx, chunks); err != nil {
		return err
	}

	logger.Infow("Knowledge base built",
		"documents", len(docs), "chunks", len(chunks), "elapsed", time.Since(started))
	return nil
}

// newAnswerCache wires the Redis answer cache when enabled. An
// unreachable Redis disables the cache instead of failing startup.
func newAnswerCache(ctx context.Context, opts *Options) *biz.AnswerCache {
	if !opts.Cache.Enabled {
		return nil
	}

	client := goredis.NewClient(&goredis.Options{
		Addr:         opts.Cache.Redis.Addr(),
		Password:     opts.Cache.Redis.Password,
		DB:           opts.Cache.Redis.Database,
		MaxRetries:   opts.Cache.Redis.MaxRetries,
		PoolSize:     opts.Cache.Redis.PoolSize,
		MinIdleConns: opts.Cache.Redis.MinIdleConns,
		DialTimeout:  opts.Cache.Redis.DialTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, opts.Cache.Redis.DialTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warnw("Redis unreachable, answer cache disabled", "addr", opts.Cache.Redis.Addr(), "error", err)
		_ = client.Close()
		return nil
	}

	logger.Infow("Answer cache enabled", "addr", opts.Cache.Redis.Addr(), "ttl", opts.Cache.TTL)
	return biz.NewAnswerCache(client, &biz.AnswerCacheConfig{
		Enabled:   true,
		TTL:       opts.Cache.TTL,
		KeyPrefix: opts.Cache.KeyPrefix,
	})
}
