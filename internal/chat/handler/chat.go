// Package handler provides the HTTP handlers for the chat service.
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kouzina-io/kouzina/internal/chat/biz"
	"github.com/kouzina-io/kouzina/internal/chat/conversation"
	"github.com/kouzina-io/kouzina/pkg/llm"
)

// ChatHandler handles the chat HTTP endpoints.
type ChatHandler struct {
	service biz.Service
}

// NewChatHandler creates a ChatHandler.
func NewChatHandler(service biz.Service) *ChatHandler {
	return &ChatHandler{service: service}
}

// ErrorResponse is the error payload.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// StartConversationResponse carries a new conversation id.
type StartConversationResponse struct {
	ConversationID string `json:"conversation_id"`
}

// StartConversation opens a new conversation.
func (h *ChatHandler) StartConversation(c *gin.Context) {
	id := h.service.StartConversation()
	c.JSON(http.StatusOK, StartConversationResponse{ConversationID: id})
}

// ChatRequest is a chat turn submission. Messages is an optional
// client-side copy of the history and is ignored by the server, which
// owns the authoritative log.
type ChatRequest struct {
	ConversationID string        `json:"conversation_id" binding:"required"`
	UserMessage    string        `json:"user_message" binding:"required"`
	Messages       []llm.Message `json:"messages"`
}

// ChatResponse carries the generated answer.
type ChatResponse struct {
	Response string `json:"response"`
}

// Chat answers one user message within a conversation.
func (h *ChatHandler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Detail: err.Error()})
		return
	}

	answer, err := h.service.Answer(c.Request.Context(), req.ConversationID, req.UserMessage)
	if err != nil {
		if errors.Is(err, conversation.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Detail: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Detail: err.Error()})
		return
	}

	c.JSON(http.StatusOK, ChatResponse{Response: answer})
}

// HistoryResponse carries a conversation's message log.
type HistoryResponse struct {
	History []llm.Message `json:"history"`
}

// History returns the ordered message log of a conversation.
func (h *ChatHandler) History(c *gin.Context) {
	id := c.Param("conversation_id")

	history, err := h.service.History(id)
	if err != nil {
		if errors.Is(err, conversation.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Detail: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Detail: err.Error()})
		return
	}

	if history == nil {
		history = []llm.Message{}
	}
	c.JSON(http.StatusOK, HistoryResponse{History: history})
}

// ConversationSummary is one listing entry. StartTime is unix seconds.
type ConversationSummary struct {
	ID        string `json:"id"`
	StartTime int64  `json:"start_time"`
}

// AllConversationsResponse carries the conversation listing.
type AllConversationsResponse struct {
	Conversations []ConversationSummary `json:"conversations"`
}

// AllConversations lists all conversations, newest first.
func (h *ChatHandler) AllConversations(c *gin.Context) {
	summaries := h.service.ListConversations()

	out := make([]ConversationSummary, len(summaries))
	for i, s := range summaries {
		out[i] = ConversationSummary{
			ID:        s.ID,
			StartTime: s.StartTime.Unix(),
		}
	}

	c.JSON(http.StatusOK, AllConversationsResponse{Conversations: out})
}

// Status reports index and pipeline statistics.
func (h *ChatHandler) Status(c *gin.Context) {
	status, err := h.service.Status(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Detail: err.Error()})
		return
	}
	c.JSON(http.StatusOK, status)
}
