package biz

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCorpus(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "recipes.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const corpusHeader = "name,Category,Ingredients,Preparation Time,Total Time,Number of Servings,Keywords,Instructions\n"

func TestLoaderLoad(t *testing.T) {
	path := writeCorpus(t, corpusHeader+
		"Μουσακάς,κυρίως πιάτο,\"μελιτζάνες, κιμάς\",30 λεπτά,90 λεπτά,6,\"παραδοσιακό, φούρνου\",Ψήνουμε στον φούρνο.\n"+
		"Χωριάτικη,σαλάτα,\"ντομάτα, φέτα\",,,,,\n")

	loader := NewLoader(&LoaderConfig{Path: path})
	docs, err := loader.Load()
	require.NoError(t, err)
	require.Len(t, docs, 2)

	assert.Equal(t, "Μουσακάς", docs[0].Name)
	assert.Equal(t, "κυρίως πιάτο", docs[0].Category)
	assert.Contains(t, docs[0].Text, "Η συνταγή για Μουσακάς είναι ένα κυρίως πιάτο")
	assert.Contains(t, docs[0].Text, "χρόνο προετοιμασίας 30 λεπτά")
	assert.Contains(t, docs[0].Text, "Ο τρόπος προετοιμασίας είναι ο εξής: Ψήνουμε στον φούρνο.")
	assert.NotEmpty(t, docs[0].ID)

	// Optional clauses are omitted when fields are empty.
	assert.NotContains(t, docs[1].Text, "χρόνο προετοιμασίας")
	assert.NotContains(t, docs[1].Text, "μερίδες")
	assert.NotContains(t, docs[1].Text, "Χαρακτηριστικές λέξεις")
}

func TestLoaderClauseOrderAndOmission(t *testing.T) {
	// Preparation time absent, keywords present: the keywords clause
	// appears after the servings clause, the preparation clause not at all.
	path := writeCorpus(t, corpusHeader+
		"Φακές,όσπρια,\"φακές, κρεμμύδι\",,60 λεπτά,4,\"νηστίσιμο, υγιεινό\",Βράζουμε τις φακές.\n")

	loader := NewLoader(&LoaderConfig{Path: path})
	docs, err := loader.Load()
	require.NoError(t, err)
	require.Len(t, docs, 1)

	text := docs[0].Text
	assert.NotContains(t, text, "χρόνο προετοιμασίας")
	assert.Contains(t, text, "και συνολικά παίρνει 60 λεπτά.")
	assert.Contains(t, text, "Οι μερίδες που φτιάχνει είναι 4.")
	assert.Contains(t, text, "Χαρακτηριστικές λέξεις που περιγράφουν αυτή τη συνταγή είναι: νηστίσιμο, υγιεινό.")

	// Fixed clause order: ingredients, total time, servings, keywords, instructions.
	positions := []int{
		strings.Index(text, "τα εξής υλικά"),
		strings.Index(text, "συνολικά παίρνει"),
		strings.Index(text, "Οι μερίδες"),
		strings.Index(text, "Χαρακτηριστικές λέξεις"),
		strings.Index(text, "Ο τρόπος προετοιμασίας"),
	}
	for i := 1; i < len(positions); i++ {
		assert.Less(t, positions[i-1], positions[i], "clause %d out of order", i)
	}
}

func TestLoaderErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		loader := NewLoader(&LoaderConfig{Path: filepath.Join(t.TempDir(), "absent.csv")})
		_, err := loader.Load()
		assert.ErrorIs(t, err, ErrIngestion)
	})

	t.Run("empty corpus", func(t *testing.T) {
		loader := NewLoader(&LoaderConfig{Path: writeCorpus(t, corpusHeader)})
		_, err := loader.Load()
		assert.ErrorIs(t, err, ErrIngestion)
	})

	t.Run("missing required column", func(t *testing.T) {
		loader := NewLoader(&LoaderConfig{Path: writeCorpus(t, "name,Ingredients\nΦακές,φακές\n")})
		_, err := loader.Load()
		assert.ErrorIs(t, err, ErrIngestion)
	})

	t.Run("empty file", func(t *testing.T) {
		loader := NewLoader(&LoaderConfig{Path: writeCorpus(t, "")})
		_, err := loader.Load()
		assert.ErrorIs(t, err, ErrIngestion)
	})
}
