package biz

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kouzina-io/kouzina/internal/chat/store"
)

func TestGeneratorSingleChunkUsesQATemplate(t *testing.T) {
	chat := &fakeChat{responses: []string{"η απάντηση"}}
	gen := NewGenerator(chat, nil)

	answer, err := gen.GenerateAnswer(context.Background(), "Τι υλικά χρειάζομαι;", []*store.SearchResult{
		{Content: "Η συνταγή χρειάζεται φακές."},
	})
	require.NoError(t, err)
	assert.Equal(t, "η απάντηση", answer)

	require.Len(t, chat.prompts, 1)
	assert.Contains(t, chat.prompts[0], "Η συνταγή χρειάζεται φακές.")
	assert.Contains(t, chat.prompts[0], "Τι υλικά χρειάζομαι;")
	assert.NotContains(t, chat.prompts[0], "{{context}}")
	assert.NotContains(t, chat.prompts[0], "{{question}}")
}

func TestGeneratorRefinesOverRemainingChunks(t *testing.T) {
	chat := &fakeChat{responses: []string{"draft", "refined once", "refined twice"}}
	gen := NewGenerator(chat, nil)

	answer, err := gen.GenerateAnswer(context.Background(), "ερώτηση", []*store.SearchResult{
		{Content: "chunk a"},
		{Content: "chunk b"},
		{Content: "chunk c"},
	})
	require.NoError(t, err)
	assert.Equal(t, "refined twice", answer)

	require.Len(t, chat.prompts, 3)
	// First call drafts from chunk a, second folds chunk b into the
	// draft, third folds chunk c into the refined answer.
	assert.Contains(t, chat.prompts[0], "chunk a")
	assert.Contains(t, chat.prompts[1], "chunk b")
	assert.Contains(t, chat.prompts[1], "draft")
	assert.Contains(t, chat.prompts[2], "chunk c")
	assert.Contains(t, chat.prompts[2], "refined once")
}

func TestGeneratorNoResults(t *testing.T) {
	chat := &fakeChat{}
	gen := NewGenerator(chat, nil)

	answer, err := gen.GenerateAnswer(context.Background(), "ερώτηση", nil)
	require.NoError(t, err)
	assert.Equal(t, noContextAnswer, answer)
	assert.Zero(t, chat.calls.Load())
}

func TestGeneratorProviderFailure(t *testing.T) {
	gen := NewGenerator(&fakeChat{fail: true}, nil)

	_, err := gen.GenerateAnswer(context.Background(), "ερώτηση", []*store.SearchResult{
		{Content: "chunk"},
	})
	assert.Error(t, err)
}

func TestGeneratorCustomTemplates(t *testing.T) {
	chat := &fakeChat{responses: []string{"ok"}}
	gen := NewGenerator(chat, &GeneratorConfig{
		QATemplate: "Q: {{question}} C: {{context}}",
	})

	_, err := gen.GenerateAnswer(context.Background(), "q1", []*store.SearchResult{
		{Content: "c1"},
	})
	require.NoError(t, err)
	require.Len(t, chat.prompts, 1)
	assert.Equal(t, "Q: q1 C: c1", chat.prompts[0])
}
