package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kouzina-io/kouzina/internal/chat/biz"
	"github.com/kouzina-io/kouzina/internal/chat/conversation"
	"github.com/kouzina-io/kouzina/internal/chat/handler"
	"github.com/kouzina-io/kouzina/internal/chat/router"
	"github.com/kouzina-io/kouzina/pkg/llm"
)

// fakeService scripts the biz layer for handler tests.
type fakeService struct {
	startID    string
	answer     string
	answerErr  error
	history    []llm.Message
	historyErr error
	summaries  []conversation.Summary

	gotConversationID string
	gotUserMessage    string
}

func (f *fakeService) StartConversation() string { return f.startID }

func (f *fakeService) Answer(_ context.Context, conversationID, userMessage string) (string, error) {
	f.gotConversationID = conversationID
	f.gotUserMessage = userMessage
	return f.answer, f.answerErr
}

func (f *fakeService) History(string) ([]llm.Message, error) {
	return f.history, f.historyErr
}

func (f *fakeService) ListConversations() []conversation.Summary {
	return f.summaries
}

func (f *fakeService) Status(context.Context) (map[string]any, error) {
	return map[string]any{"chunk_count": int64(42)}, nil
}

var _ biz.Service = (*fakeService)(nil)

func newTestRouter(svc biz.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	router.Register(engine, handler.NewChatHandler(svc))
	return engine
}

func doRequest(engine *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestStartConversation(t *testing.T) {
	engine := newTestRouter(&fakeService{startID: "conv-123"})

	w := doRequest(engine, http.MethodPost, "/start_conversation", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp handler.StartConversationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "conv-123", resp.ConversationID)
}

func TestChat(t *testing.T) {
	svc := &fakeService{answer: "η απάντηση"}
	engine := newTestRouter(svc)

	w := doRequest(engine, http.MethodPost, "/chat", handler.ChatRequest{
		ConversationID: "conv-123",
		UserMessage:    "τι υλικά;",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp handler.ChatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "η απάντηση", resp.Response)
	assert.Equal(t, "conv-123", svc.gotConversationID)
	assert.Equal(t, "τι υλικά;", svc.gotUserMessage)
}

func TestChatValidation(t *testing.T) {
	engine := newTestRouter(&fakeService{})

	tests := []struct {
		name string
		body any
	}{
		{"missing conversation id", map[string]string{"user_message": "hi"}},
		{"missing user message", map[string]string{"conversation_id": "x"}},
		{"empty body", map[string]string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(engine, http.MethodPost, "/chat", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestChatErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"unknown conversation", conversation.ErrNotFound, http.StatusNotFound},
		{"answering failure", biz.ErrAnswering, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := newTestRouter(&fakeService{answerErr: tt.err})
			w := doRequest(engine, http.MethodPost, "/chat", handler.ChatRequest{
				ConversationID: "conv-123",
				UserMessage:    "hi",
			})
			assert.Equal(t, tt.wantCode, w.Code)

			var resp handler.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp.Detail)
		})
	}
}

func TestHistory(t *testing.T) {
	svc := &fakeService{history: []llm.Message{
		{Role: llm.RoleUser, Content: "hi"},
		{Role: llm.RoleAssistant, Content: "hello"},
	}}
	engine := newTestRouter(svc)

	w := doRequest(engine, http.MethodGet, "/history/conv-123", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp handler.HistoryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.History, 2)
	assert.Equal(t, llm.RoleUser, resp.History[0].Role)
	assert.Equal(t, "hello", resp.History[1].Content)
}

func TestHistoryNotFound(t *testing.T) {
	engine := newTestRouter(&fakeService{historyErr: conversation.ErrNotFound})

	w := doRequest(engine, http.MethodGet, "/history/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHistoryEmptyConversation(t *testing.T) {
	engine := newTestRouter(&fakeService{history: nil})

	w := doRequest(engine, http.MethodGet, "/history/conv-123", nil)
	require.Equal(t, http.StatusOK, w.Code)

	// An empty log serializes as [] rather than null.
	assert.JSONEq(t, `{"history":[]}`, w.Body.String())
}

func TestAllConversations(t *testing.T) {
	now := time.Unix(1724668200, 0)
	engine := newTestRouter(&fakeService{summaries: []conversation.Summary{
		{ID: "newer", StartTime: now.Add(time.Minute)},
		{ID: "older", StartTime: now},
	}})

	w := doRequest(engine, http.MethodGet, "/all_conversations", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp handler.AllConversationsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Conversations, 2)
	assert.Equal(t, "newer", resp.Conversations[0].ID)
	assert.Equal(t, now.Unix()+60, resp.Conversations[0].StartTime)
	assert.Equal(t, now.Unix(), resp.Conversations[1].StartTime)
}

func TestStatus(t *testing.T) {
	engine := newTestRouter(&fakeService{})

	w := doRequest(engine, http.MethodGet, "/status", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.EqualValues(t, 42, resp["chunk_count"])
}
