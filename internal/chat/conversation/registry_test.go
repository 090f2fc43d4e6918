package conversation_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kouzina-io/kouzina/internal/chat/conversation"
	"github.com/kouzina-io/kouzina/pkg/llm"
)

func TestRegistryStart(t *testing.T) {
	r := conversation.NewRegistry()

	c1 := r.Start()
	c2 := r.Start()

	assert.NotEqual(t, c1.ID(), c2.ID())

	_, err := uuid.Parse(c1.ID())
	assert.NoError(t, err)

	history, err := r.History(c1.ID())
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestRegistryGetNotFound(t *testing.T) {
	r := conversation.NewRegistry()
	r.Start()

	_, err := r.Get("no-such-id")
	assert.ErrorIs(t, err, conversation.ErrNotFound)

	_, err = r.History("no-such-id")
	assert.ErrorIs(t, err, conversation.ErrNotFound)
}

func TestRegistryHistoryOrder(t *testing.T) {
	r := conversation.NewRegistry()
	c := r.Start()

	c.Lock()
	c.Append(
		llm.Message{Role: llm.RoleUser, Content: "first"},
		llm.Message{Role: llm.RoleAssistant, Content: "second"},
	)
	c.Append(llm.Message{Role: llm.RoleUser, Content: "third"})
	c.Unlock()

	history, err := r.History(c.ID())
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "first", history[0].Content)
	assert.Equal(t, "second", history[1].Content)
	assert.Equal(t, "third", history[2].Content)

	// History is a copy, mutating it does not touch the log.
	history[0].Content = "mutated"
	again, err := r.History(c.ID())
	require.NoError(t, err)
	assert.Equal(t, "first", again[0].Content)
}

func TestRegistryListNewestFirst(t *testing.T) {
	r := conversation.NewRegistry()

	var ids []string
	for i := 0; i < 5; i++ {
		ids = append(ids, r.Start().ID())
	}

	summaries := r.List()
	require.Len(t, summaries, 5)

	for i := 1; i < len(summaries); i++ {
		prev, cur := summaries[i-1], summaries[i]
		ok := prev.StartTime.After(cur.StartTime) ||
			(prev.StartTime.Equal(cur.StartTime) && prev.ID < cur.ID)
		assert.True(t, ok, "expected newest-first ordering at index %d", i)
	}

	seen := make(map[string]bool)
	for _, s := range summaries {
		seen[s.ID] = true
	}
	for _, id := range ids {
		assert.True(t, seen[id])
	}
}

func TestRegistryConcurrentAppends(t *testing.T) {
	r := conversation.NewRegistry()
	c := r.Start()

	const writers = 8
	const perWriter = 25

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				c.Lock()
				c.Append(
					llm.Message{Role: llm.RoleUser, Content: fmt.Sprintf("u-%d-%d", w, i)},
					llm.Message{Role: llm.RoleAssistant, Content: fmt.Sprintf("a-%d-%d", w, i)},
				)
				c.Unlock()
			}
		}(w)
	}
	wg.Wait()

	history, err := r.History(c.ID())
	require.NoError(t, err)
	require.Len(t, history, writers*perWriter*2)

	// Each turn's user message is immediately followed by its answer.
	for i := 0; i < len(history); i += 2 {
		assert.Equal(t, llm.RoleUser, history[i].Role)
		assert.Equal(t, llm.RoleAssistant, history[i+1].Role)
		assert.Equal(t, history[i].Content[2:], history[i+1].Content[2:])
	}
}

func TestRegistryLen(t *testing.T) {
	r := conversation.NewRegistry()
	assert.Equal(t, 0, r.Len())
	r.Start()
	r.Start()
	assert.Equal(t, 2, r.Len())
}
