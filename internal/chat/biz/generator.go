package biz

import (
	"context"
	"fmt"
	"strings"

	"github.com/kart-io/logger"

	"github.com/kouzina-io/kouzina/internal/chat/store"
	"github.com/kouzina-io/kouzina/pkg/llm"
)

// DefaultQATemplate drafts an answer from the best-matching chunk.
const DefaultQATemplate = `Οι παρακάτω πληροφορίες προέρχονται από ελληνικές συνταγές μαγειρικής.
---------------------
{{context}}
---------------------
Με βάση αποκλειστικά τις παραπάνω πληροφορίες και όχι προηγούμενες γνώσεις, απάντησε στην ερώτηση.
Ερώτηση: {{question}}
Απάντηση: `

// DefaultRefineTemplate folds one more chunk into a drafted answer.
const DefaultRefineTemplate = `Η αρχική ερώτηση είναι: {{question}}
Υπάρχει ήδη μια απάντηση: {{existing_answer}}
Μπορείς να βελτιώσεις την απάντηση με τις παρακάτω επιπλέον πληροφορίες από συνταγές.
---------------------
{{context}}
---------------------
Με βάση τις νέες πληροφορίες, βελτίωσε την απάντηση ώστε να απαντά καλύτερα στην ερώτηση. Αν οι πληροφορίες δεν βοηθούν, επέστρεψε την αρχική απάντηση.
Βελτιωμένη απάντηση: `

// noContextAnswer is returned when retrieval finds nothing.
const noContextAnswer = "Δεν βρήκα σχετικές πληροφορίες στις συνταγές. Δοκίμασε να ρωτήσεις κάτι άλλο."

// GeneratorConfig configures answer generation.
type GeneratorConfig struct {
	// QATemplate drafts from the first chunk. Placeholders:
	// {{context}}, {{question}}.
	QATemplate string
	// RefineTemplate folds each further chunk into the running answer.
	// Placeholders: {{context}}, {{question}}, {{existing_answer}}.
	RefineTemplate string
}

// Generator produces grounded answers. The first retrieved chunk seeds
// a draft through the QA template; remaining chunks are folded in one
// at a time through the refine template.
type Generator struct {
	chatProvider llm.ChatProvider
	config       *GeneratorConfig
}

// NewGenerator creates a generator. Empty templates fall back to the
// defaults.
func NewGenerator(chatProvider llm.ChatProvider, config *GeneratorConfig) *Generator {
	if config == nil {
		config = &GeneratorConfig{}
	}
	if config.QATemplate == "" {
		config.QATemplate = DefaultQATemplate
	}
	if config.RefineTemplate == "" {
		config.RefineTemplate = DefaultRefineTemplate
	}
	return &Generator{
		chatProvider: chatProvider,
		config:       config,
	}
}

// GenerateAnswer produces an answer for the question grounded on the
// retrieved chunks.
func (g *Generator) GenerateAnswer(ctx context.Context, question string, results []*store.SearchResult) (string, error) {
	if len(results) == 0 {
		return noContextAnswer, nil
	}

	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("context canceled before generation: %w", err)
	}

	prompt := strings.ReplaceAll(g.config.QATemplate, "{{context}}", results[0].Content)
	prompt = strings.ReplaceAll(prompt, "{{question}}", question)

	answer, err := g.chatProvider.Generate(ctx, prompt, "")
	if err != nil {
		return "", fmt.Errorf("failed to generate answer: %w", err)
	}

	for _, result := range results[1:] {
		prompt := strings.ReplaceAll(g.config.RefineTemplate, "{{context}}", result.Content)
		prompt = strings.ReplaceAll(prompt, "{{question}}", question)
		prompt = strings.ReplaceAll(prompt, "{{existing_answer}}", answer)

		refined, err := g.chatProvider.Generate(ctx, prompt, "")
		if err != nil {
			return "", fmt.Errorf("failed to refine answer: %w", err)
		}
		answer = refined
	}

	logger.Debugw("Answer generated", "chunks_used", len(results), "answer_length", len(answer))
	return answer, nil
}
