// Package conversation keeps the in-memory conversation registry.
package conversation

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kouzina-io/kouzina/pkg/llm"
)

// ErrNotFound is returned when a conversation id is unknown.
var ErrNotFound = errors.New("conversation not found")

// Summary is the listing view of a conversation.
type Summary struct {
	ID        string    `json:"id"`
	StartTime time.Time `json:"-"`
}

// Conversation is a single dialogue with its message log.
type Conversation struct {
	id        string
	startTime time.Time

	// mu serializes turns within this conversation. Requests for
	// different conversations never contend on it.
	mu       sync.Mutex
	messages []llm.Message
}

// ID returns the conversation id.
func (c *Conversation) ID() string {
	return c.id
}

// StartTime returns when the conversation was created.
func (c *Conversation) StartTime() time.Time {
	return c.startTime
}

// Lock takes the conversation turn lock.
func (c *Conversation) Lock() {
	c.mu.Lock()
}

// Unlock releases the conversation turn lock.
func (c *Conversation) Unlock() {
	c.mu.Unlock()
}

// Append adds messages to the log. Callers must hold the turn lock.
func (c *Conversation) Append(messages ...llm.Message) {
	c.messages = append(c.messages, messages...)
}

// Messages returns a copy of the message log. Callers must hold the
// turn lock.
func (c *Conversation) Messages() []llm.Message {
	out := make([]llm.Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Registry stores all live conversations.
type Registry struct {
	mu            sync.RWMutex
	conversations map[string]*Conversation
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		conversations: make(map[string]*Conversation),
	}
}

// Start creates a conversation with a fresh UUID and an empty log.
func (r *Registry) Start() *Conversation {
	c := &Conversation{
		id:        uuid.NewString(),
		startTime: time.Now(),
	}

	r.mu.Lock()
	r.conversations[c.id] = c
	r.mu.Unlock()

	return c
}

// Get looks up a conversation by id.
func (r *Registry) Get(id string) (*Conversation, error) {
	r.mu.RLock()
	c, ok := r.conversations[id]
	r.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}
	return c, nil
}

// History returns a copy of a conversation's message log.
func (r *Registry) History(id string) ([]llm.Message, error) {
	c, err := r.Get(id)
	if err != nil {
		return nil, err
	}

	c.Lock()
	defer c.Unlock()
	return c.Messages(), nil
}

// List returns all conversations, newest first. Ties break on id so
// the order is stable.
func (r *Registry) List() []Summary {
	r.mu.RLock()
	summaries := make([]Summary, 0, len(r.conversations))
	for _, c := range r.conversations {
		summaries = append(summaries, Summary{ID: c.id, StartTime: c.startTime})
	}
	r.mu.RUnlock()

	sort.Slice(summaries, func(i, j int) bool {
		if !summaries[i].StartTime.Equal(summaries[j].StartTime) {
			return summaries[i].StartTime.After(summaries[j].StartTime)
		}
		return summaries[i].ID < summaries[j].ID
	})

	return summaries
}

// Len returns the number of live conversations.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conversations)
}
