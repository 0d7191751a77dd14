package lexical

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"lowercases and splits on spaces", "Solar Panels", []string{"solar", "panels"}},
		{"splits hyphenated words", "eco-friendly AI-powered", []string{"eco", "friendly", "ai", "powered"}},
		{"drops punctuation", "wind, solar; and (tidal)!", []string{"wind", "solar", "and", "tidal"}},
		{"keeps digits", "top 10 ideas", []string{"top", "10", "ideas"}},
		{"empty input", "", nil},
		{"only separators", " -- ,, ", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Tokenize(tt.input))
		})
	}
}

func TestJaccardSymmetric(t *testing.T) {
	a := TokenSet("solar panels on green roofs")
	b := TokenSet("green roofs with wind turbines")

	require.Equal(t, Jaccard(a, b), Jaccard(b, a))
	assert.Greater(t, Jaccard(a, b), 0.0)
}

func TestJaccardBothEmpty(t *testing.T) {
	assert.Equal(t, 0.0, Jaccard(nil, nil))
	assert.Equal(t, 0.0, Similarity("", ""))
}

func TestJaccardIdentity(t *testing.T) {
	a := TokenSet("vertical gardens")
	assert.Equal(t, 1.0, Jaccard(a, a))
	assert.Equal(t, 1.0, Similarity("vertical gardens", "vertical gardens"))
}

func TestJaccardDisjoint(t *testing.T) {
	assert.Equal(t, 0.0, Similarity("solar panels", "composting programs"))
}

func TestSimilarityIgnoresDuplicates(t *testing.T) {
	// Set semantics: repeated tokens do not change the index.
	assert.Equal(t, 1.0, Similarity("solar solar panels", "panels solar"))
}
