package biz

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/kart-io/logger"

	"github.com/kouzina-io/kouzina/internal/pkg/textutil"
)

// Recipe dataset column names.
const (
	colName         = "name"
	colCategory     = "Category"
	colIngredients  = "Ingredients"
	colPrepTime     = "Preparation Time"
	colTotalTime    = "Total Time"
	colServings     = "Number of Servings"
	colKeywords     = "Keywords"
	colInstructions = "Instructions"
)

// Document is a rendered recipe passage.
type Document struct {
	// ID is derived from the rendered text.
	ID string
	// Name is the recipe name.
	Name string
	// Category is the recipe category.
	Category string
	// Text is the rendered natural-language passage.
	Text string
}

// recipeRow maps column names to cell values for one dataset record.
type recipeRow map[string]string

func (r recipeRow) has(field string) bool {
	return strings.TrimSpace(r[field]) != ""
}

// clauseRule renders one clause of the recipe passage. The clause is
// emitted only when every listed field has a value. Rule order defines
// clause order in the rendered text.
type clauseRule struct {
	fields []string
	render func(row recipeRow) string
}

// clauseRules is the recipe passage template. The opening clause is
// unconditional; the rest are included per-field.
var clauseRules = []clauseRule{
	{
		fields: nil,
		render: func(row recipeRow) string {
			return fmt.Sprintf("Η συνταγή για %s είναι ένα %s που χρειάζεται τα εξής υλικά: %s. ",
				row[colName], row[colCategory], row[colIngredients])
		},
	},
	{
		fields: []string{colPrepTime},
		render: func(row recipeRow) string {
			return fmt.Sprintf("Έχει χρόνο προετοιμασίας %s ", row[colPrepTime])
		},
	},
	{
		fields: []string{colTotalTime},
		render: func(row recipeRow) string {
			return fmt.Sprintf("και συνολικά παίρνει %s. ", row[colTotalTime])
		},
	},
	{
		fields: []string{colServings},
		render: func(row recipeRow) string {
			return fmt.Sprintf("Οι μερίδες που φτιάχνει είναι %s. ", row[colServings])
		},
	},
	{
		fields: []string{colKeywords},
		render: func(row recipeRow) string {
			return fmt.Sprintf("Χαρακτηριστικές λέξεις που περιγράφουν αυτή τη συνταγή είναι: %s.", row[colKeywords])
		},
	},
	{
		fields: []string{colInstructions},
		render: func(row recipeRow) string {
			return fmt.Sprintf("Ο τρόπος προετοιμασίας είναι ο εξής: %s.", row[colInstructions])
		},
	},
}

// renderRecipe renders a dataset row into a recipe passage by applying
// the clause rules in order.
func renderRecipe(row recipeRow) string {
	var sb strings.Builder
	for _, rule := range clauseRules {
		include := true
		for _, f := range rule.fields {
			if !row.has(f) {
				include = false
				break
			}
		}
		if include {
			sb.WriteString(rule.render(row))
		}
	}
	return sb.String()
}

// LoaderConfig configures the document loader.
type LoaderConfig struct {
	// Path is the CSV corpus file.
	Path string
}

// Loader reads the recipe dataset and renders one Document per record.
type Loader struct {
	config *LoaderConfig
}

// NewLoader creates a document loader.
func NewLoader(config *LoaderConfig) *Loader {
	return &Loader{config: config}
}

// Load reads the corpus and renders all documents. An unreadable or
// empty corpus wraps ErrIngestion.
func (l *Loader) Load() ([]*Document, error) {
	f, err := os.Open(l.config.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %w", ErrIngestion, l.config.Path, err)
	}
	defer f.Close()

	docs, err := l.parse(f)
	if err != nil {
		return nil, err
	}

	logger.Infow("Corpus loaded", "path", l.config.Path, "documents", len(docs))
	return docs, nil
}

func (l *Loader) parse(r io.Reader) ([]*Document, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: reading header: %w", ErrIngestion, err)
	}

	colIndex := make(map[string]int, len(header))
	for i, name := range header {
		colIndex[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{colName, colCategory, colIngredients} {
		if _, ok := colIndex[required]; !ok {
			return nil, fmt.Errorf("%w: corpus is missing column %q", ErrIngestion, required)
		}
	}

	var docs []*Document
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: reading record: %w", ErrIngestion, err)
		}

		row := make(recipeRow, len(colIndex))
		for name, idx := range colIndex {
			if idx < len(record) {
				row[name] = record[idx]
			}
		}

		text := renderRecipe(row)
		docs = append(docs, &Document{
			ID:       textutil.HashString(text),
			Name:     row[colName],
			Category: row[colCategory],
			Text:     text,
		})
	}

	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: corpus contains no records", ErrIngestion)
	}

	return docs, nil
}
