package stages

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ideamill/ideamill/internal/models"
	"github.com/ideamill/ideamill/internal/store"
)

func TestEvolutionGeneratesSolarVariations(t *testing.T) {
	evo := NewEvolution(store.NewMemStore(), DefaultRules().Evolution)

	variations := evo.variations("solar panels")
	require.GreaterOrEqual(t, len(variations), 3)
	assert.Equal(t, []string{"solar window panels", "solar roof tiles", "solar-powered street lights"}, variations)
}

func TestEvolutionCombinesTriggeredRules(t *testing.T) {
	evo := NewEvolution(store.NewMemStore(), DefaultRules().Evolution)

	// "solar energy" triggers both the solar and energy rules, in rule order.
	variations := evo.variations("solar energy")
	assert.Equal(t, []string{
		"solar window panels", "solar roof tiles", "solar-powered street lights",
		"energy storage systems", "energy monitoring systems", "energy optimization platforms",
	}, variations)
}

func TestEvolutionKeepsFirstMaximalVariation(t *testing.T) {
	evo := NewEvolution(store.NewMemStore(), DefaultRules().Evolution)

	// All three solar variations score 1 ("roof" and "street" add one urban
	// point, the first clamps up from zero), so the first is kept.
	evolved, err := evo.Process(context.Background(), 1, []models.Ranking{
		{Idea: "solar panels", FinalScore: 4},
	})
	require.NoError(t, err)
	require.Len(t, evolved, 1)

	e := evolved[0]
	assert.Equal(t, "solar panels", e.OriginalIdea)
	assert.Equal(t, 4, e.OriginalScore)
	assert.Equal(t, "solar window panels", e.EvolvedIdea)
	assert.Equal(t, 1, e.EvolvedScore)
	assert.Equal(t, -3, e.Improvement)
}

func TestEvolutionSelectsBestScoringVariation(t *testing.T) {
	evo := NewEvolution(store.NewMemStore(), DefaultRules().Evolution)

	// "smart recycling bins" scores 2 (technology keyword), beating the
	// other recycling variations.
	evolved, err := evo.Process(context.Background(), 1, []models.Ranking{
		{Idea: "recycling programs", FinalScore: 1},
	})
	require.NoError(t, err)
	require.Len(t, evolved, 1)

	e := evolved[0]
	assert.Equal(t, "smart recycling bins", e.EvolvedIdea)
	assert.Equal(t, 2, e.EvolvedScore)
	assert.Equal(t, 1, e.Improvement)
}

func TestEvolutionNoVariationsPassesThrough(t *testing.T) {
	evo := NewEvolution(store.NewMemStore(), DefaultRules().Evolution)

	evolved, err := evo.Process(context.Background(), 1, []models.Ranking{
		{Idea: "composting", FinalScore: 3},
	})
	require.NoError(t, err)
	require.Len(t, evolved, 1)

	e := evolved[0]
	assert.Equal(t, "composting", e.EvolvedIdea)
	assert.Equal(t, 3, e.EvolvedScore)
	assert.Zero(t, e.Improvement)
}

func TestEvolutionVariationScoreClamped(t *testing.T) {
	evo := NewEvolution(store.NewMemStore(), DefaultRules().Evolution)

	assert.Equal(t, 1, evo.scoreVariation("plain words only"))
	assert.Equal(t, 10, evo.scoreVariation(
		"smart automated optimized efficient monitoring sustainable renewable green urban city street"))
}

func TestEvolutionPreservesInputOrder(t *testing.T) {
	evo := NewEvolution(store.NewMemStore(), DefaultRules().Evolution)
	rankings := []models.Ranking{
		{Idea: "solar panels", FinalScore: 4},
		{Idea: "composting", FinalScore: 3},
		{Idea: "recycling programs", FinalScore: 5},
	}

	evolved, err := evo.Process(context.Background(), 1, rankings)
	require.NoError(t, err)
	require.Len(t, evolved, 3)
	for i, r := range rankings {
		assert.Equal(t, r.Idea, evolved[i].OriginalIdea)
	}
}

func TestEvolutionAppendsHistoryEntry(t *testing.T) {
	st := store.NewMemStore()
	evo := NewEvolution(st, DefaultRules().Evolution)

	_, err := evo.Process(context.Background(), 5, []models.Ranking{{Idea: "solar panels", FinalScore: 4}})
	require.NoError(t, err)

	entries, err := st.RunHistory(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.StageEvolution, entries[0].Stage)
	assert.Equal(t, "evolve", entries[0].Action)
}
