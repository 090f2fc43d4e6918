package biz

import (
	"context"
	"fmt"
	"time"

	"github.com/kart-io/logger"

	"github.com/kouzina-io/kouzina/internal/chat/conversation"
	"github.com/kouzina-io/kouzina/internal/chat/metrics"
	"github.com/kouzina-io/kouzina/internal/chat/store"
	"github.com/kouzina-io/kouzina/pkg/llm"
)

// Service is the conversational answering interface.
type Service interface {
	// StartConversation opens a conversation and returns its id.
	StartConversation() string
	// Answer runs one turn: records the user message, retrieves
	// grounding chunks, generates an answer, and records it.
	Answer(ctx context.Context, conversationID, userMessage string) (string, error)
	// History returns a conversation's ordered message log.
	History(conversationID string) ([]llm.Message, error)
	// ListConversations returns all conversations, newest first.
	ListConversations() []conversation.Summary
	// Status reports index and pipeline statistics.
	Status(ctx context.Context) (map[string]any, error)
}

// ServiceConfig wires the pipeline components.
type ServiceConfig struct {
	IndexerConfig   *IndexerConfig
	RetrieverConfig *RetrieverConfig
	GeneratorConfig *GeneratorConfig
}

// ChatService composes the registry, retriever, and generator into the
// answering pipeline.
type ChatService struct {
	registry      *conversation.Registry
	retriever     *Retriever
	generator     *Generator
	cache         *AnswerCache
	store         store.VectorStore
	embedProvider llm.EmbeddingProvider
	chatProvider  llm.ChatProvider
	collection    string
	metrics       *metrics.ChatMetrics
}

// NewChatService creates the answering service. cache may be nil.
func NewChatService(
	registry *conversation.Registry,
	vectorStore store.VectorStore,
	embedProvider llm.EmbeddingProvider,
	chatProvider llm.ChatProvider,
	cache *AnswerCache,
	config *ServiceConfig,
) *ChatService {
	return &ChatService{
		registry:      registry,
		retriever:     NewRetriever(vectorStore, embedProvider, config.RetrieverConfig),
		generator:     NewGenerator(chatProvider, config.GeneratorConfig),
		cache:         cache,
		store:         vectorStore,
		embedProvider: embedProvider,
		chatProvider:  chatProvider,
		collection:    config.IndexerConfig.Collection,
		metrics:       metrics.Get(),
	}
}

// StartConversation opens a conversation and returns its id.
func (s *ChatService) StartConversation() string {
	c := s.registry.Start()
	s.metrics.RecordConversationStarted()
	logger.Infow("Conversation started", "conversation_id", c.ID())
	return c.ID()
}

// History returns a conversation's message log.
func (s *ChatService) History(conversationID string) ([]llm.Message, error) {
	return s.registry.History(conversationID)
}

// ListConversations returns all conversations, newest first.
func (s *ChatService) ListConversations() []conversation.Summary {
	return s.registry.List()
}

// Answer runs one conversational turn. An unknown conversation id fails
// with conversation.ErrNotFound before any message is recorded. A
// retrieval or generation failure wraps ErrAnswering and leaves the
// already-recorded user turn in the log.
func (s *ChatService) Answer(ctx context.Context, conversationID, userMessage string) (string, error) {
	conv, err := s.registry.Get(conversationID)
	if err != nil {
		return "", err
	}

	// Record the user turn first so it survives answer failures. The
	// lock is held only for the append, never across retrieval or
	// generation.
	conv.Lock()
	conv.Append(llm.Message{Role: llm.RoleUser, Content: userMessage})
	conv.Unlock()

	answer, cacheHit, err := s.generateAnswer(ctx, userMessage)
	s.metrics.RecordAnswer(cacheHit, err)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrAnswering, err)
	}

	conv.Lock()
	conv.Append(llm.Message{Role: llm.RoleAssistant, Content: answer})
	conv.Unlock()

	return answer, nil
}

// generateAnswer resolves the answer text for one user message,
// consulting the cache before the retrieval/generation path.
func (s *ChatService) generateAnswer(ctx context.Context, userMessage string) (string, bool, error) {
	if s.cache != nil {
		if answer, ok := s.cache.Get(ctx, userMessage); ok {
			return answer, true, nil
		}
	}

	retrievalStart := time.Now()
	results, err := s.retriever.Retrieve(ctx, userMessage)
	s.metrics.RecordRetrieval(time.Since(retrievalStart), err)
	if err != nil {
		return "", false, err
	}

	llmStart := time.Now()
	answer, err := s.generator.GenerateAnswer(ctx, userMessage, results)
	s.metrics.RecordLLMCall(time.Since(llmStart), err)
	if err != nil {
		return "", false, err
	}

	if s.cache != nil {
		s.cache.Set(ctx, userMessage, answer)
	}
	return answer, false, nil
}

// Status reports index, provider, and pipeline statistics.
func (s *ChatService) Status(ctx context.Context) (map[string]any, error) {
	count, err := s.store.GetStats(ctx, s.collection)
	if err != nil {
		return nil, err
	}

	status := map[string]any{
		"collection":     s.collection,
		"chunk_count":    count,
		"conversations":  s.registry.Len(),
		"embed_provider": s.embedProvider.Name(),
		"chat_provider":  s.chatProvider.Name(),
		"metrics":        s.metrics.Stats(),
	}

	if s.cache != nil {
		status["cache"] = s.cache.Stats(ctx)
	}

	return status, nil
}

var _ Service = (*ChatService)(nil)
