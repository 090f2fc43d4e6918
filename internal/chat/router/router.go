// Package router wires the chat endpoints onto the gin engine.
package router

import (
	"github.com/gin-gonic/gin"

	"github.com/kouzina-io/kouzina/internal/chat/handler"
)

// Register mounts the chat API routes.
func Register(engine *gin.Engine, h *handler.ChatHandler) {
	engine.POST("/start_conversation", h.StartConversation)
	engine.POST("/chat", h.Chat)
	engine.GET("/history/:conversation_id", h.History)
	engine.GET("/all_conversations", h.AllConversations)
	engine.GET("/status", h.Status)
}
