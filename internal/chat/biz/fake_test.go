package biz

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"

	"github.com/kouzina-io/kouzina/pkg/llm"
)

// fakeEmbedder maps text to a 2-dimensional topic vector: one axis per
// marker word. Texts about the same topic embed identically, so
// semantic discontinuities land exactly between topics.
type fakeEmbedder struct {
	calls atomic.Int64
	fail  bool
}

func (f *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	f.calls.Add(1)
	if f.fail {
		return nil, errors.New("embedding backend unavailable")
	}

	out := make([][]float32, len(texts))
	for i, text := range texts {
		var a, b float32
		for _, w := range strings.Fields(text) {
			switch {
			case strings.Contains(w, "alpha"):
				a++
			case strings.Contains(w, "beta"):
				b++
			}
		}
		if a == 0 && b == 0 {
			a = 1
		}
		out[i] = []float32{a, b}
	}
	return out, nil
}

func (f *fakeEmbedder) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	vecs, err := f.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (f *fakeEmbedder) Name() string { return "fake-embed" }

// fakeChat replays canned responses, or fails every call.
type fakeChat struct {
	responses []string
	calls     atomic.Int64
	prompts   []string
	fail      bool
}

func (f *fakeChat) Generate(_ context.Context, prompt string, _ string) (string, error) {
	n := f.calls.Add(1)
	if f.fail {
		return "", errors.New("generation backend unavailable")
	}
	f.prompts = append(f.prompts, prompt)
	if len(f.responses) == 0 {
		return "answer", nil
	}
	idx := int(n-1) % len(f.responses)
	return f.responses[idx], nil
}

func (f *fakeChat) Chat(ctx context.Context, messages []llm.Message) (string, error) {
	if len(messages) == 0 {
		return f.Generate(ctx, "", "")
	}
	return f.Generate(ctx, messages[len(messages)-1].Content, "")
}

func (f *fakeChat) Name() string { return "fake-chat" }

var (
	_ llm.EmbeddingProvider = (*fakeEmbedder)(nil)
	_ llm.ChatProvider      = (*fakeChat)(nil)
)
