package stages

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ideamill/ideamill/internal/models"
	"github.com/ideamill/ideamill/internal/store"
)

func TestGenerationExpandsKeywords(t *testing.T) {
	st := store.NewMemStore()
	gen := NewGeneration(st, DefaultRules().Generation)

	ideas, err := gen.Process(context.Background(), 1, "I want to explore solar and sustainable urban ideas")
	require.NoError(t, err)

	// "sustainable" appears before "urban" in the topic, so its ideas come first.
	assert.Equal(t, []string{
		"recycling programs", "composting", "energy-efficient buildings", "water conservation",
		"vertical gardens", "green roofs", "smart city infrastructure", "public transportation",
	}, ideas)
}

func TestGenerationIncludesSolarPanelsForEnergy(t *testing.T) {
	st := store.NewMemStore()
	gen := NewGeneration(st, DefaultRules().Generation)

	ideas, err := gen.Process(context.Background(), 1, "renewable energy for cities")
	require.NoError(t, err)

	assert.Contains(t, ideas, "solar panels")
	assert.Equal(t, "solar power", ideas[0])
}

func TestGenerationDeduplicatesPreservingOrder(t *testing.T) {
	st := store.NewMemStore()
	rules := GenerationRules{Ideas: map[string][]string{
		"solar": {"solar panels", "solar farms"},
		"wind":  {"wind turbines", "solar panels"},
	}}
	gen := NewGeneration(st, rules)

	ideas, err := gen.Process(context.Background(), 1, "solar wind solar")
	require.NoError(t, err)

	assert.Equal(t, []string{"solar panels", "solar farms", "wind turbines"}, ideas)
}

func TestGenerationNoMatchesYieldsEmptyList(t *testing.T) {
	st := store.NewMemStore()
	gen := NewGeneration(st, DefaultRules().Generation)

	ideas, err := gen.Process(context.Background(), 1, "completely unrelated topic")
	require.NoError(t, err)
	assert.Empty(t, ideas)
	assert.NotNil(t, ideas)
}

func TestGenerationIdempotent(t *testing.T) {
	st := store.NewMemStore()
	gen := NewGeneration(st, DefaultRules().Generation)
	ctx := context.Background()

	first, err := gen.Process(ctx, 1, "sustainable urban technology")
	require.NoError(t, err)
	second, err := gen.Process(ctx, 1, "sustainable urban technology")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestGenerationAppendsHistoryEntry(t *testing.T) {
	st := store.NewMemStore()
	gen := NewGeneration(st, DefaultRules().Generation)

	_, err := gen.Process(context.Background(), 7, "urban gardens")
	require.NoError(t, err)

	entries, err := st.RunHistory(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.StageGeneration, entries[0].Stage)
	assert.Equal(t, "generate", entries[0].Action)
	assert.JSONEq(t, `["vertical gardens","green roofs","smart city infrastructure","public transportation"]`, entries[0].Result)
}
