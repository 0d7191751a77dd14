package stages

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ideamill/ideamill/internal/models"
	"github.com/ideamill/ideamill/internal/store"
)

func TestProximityEmptyStorePassesThrough(t *testing.T) {
	prox := NewProximity(store.NewMemStore())

	enhanced, err := prox.Process(context.Background(), 1, []models.Evolution{
		{OriginalIdea: "solar panels", EvolvedIdea: "solar window panels", EvolvedScore: 4},
	})
	require.NoError(t, err)
	require.Len(t, enhanced, 1)

	p := enhanced[0]
	assert.Equal(t, "solar window panels", p.OriginalIdea)
	assert.Equal(t, 4, p.OriginalScore)
	assert.Equal(t, "solar window panels", p.EnhancedIdea)
	assert.NotNil(t, p.HistoricalContext)
	assert.Empty(t, p.HistoricalContext)
}

func TestProximityMatchesSimilarPriorRuns(t *testing.T) {
	st := store.NewMemStore()
	st.SeedRun(models.Run{
		ID:             1,
		Input:          "solar ideas",
		GeneratedIdeas: `["solar panels","wind turbines"]`,
	})
	prox := NewProximity(st)

	enhanced, err := prox.Process(context.Background(), 2, []models.Evolution{
		{EvolvedIdea: "solar panels", EvolvedScore: 5},
	})
	require.NoError(t, err)
	require.Len(t, enhanced, 1)

	p := enhanced[0]
	require.Len(t, p.HistoricalContext, 1)
	// {solar, panels} vs {solar, panels, wind, turbines} = 2/4
	assert.InDelta(t, 0.5, p.HistoricalContext[0].Similarity, 1e-9)
	assert.Equal(t, `["solar panels","wind turbines"]`, p.HistoricalContext[0].Ideas)
	assert.Equal(t, int64(1), p.HistoricalContext[0].HistoricalData.ID)
	// The prior run holds no successful elements, so the text is unchanged.
	assert.Equal(t, "solar panels", p.EnhancedIdea)
}

func TestProximityIgnoresDissimilarRuns(t *testing.T) {
	st := store.NewMemStore()
	st.SeedRun(models.Run{ID: 1, GeneratedIdeas: `["composting","water conservation"]`})
	prox := NewProximity(st)

	enhanced, err := prox.Process(context.Background(), 2, []models.Evolution{
		{EvolvedIdea: "solar panels", EvolvedScore: 5},
	})
	require.NoError(t, err)
	assert.Empty(t, enhanced[0].HistoricalContext)
	assert.Equal(t, "solar panels", enhanced[0].EnhancedIdea)
}

func TestProximitySortsMatchesBySimilarity(t *testing.T) {
	st := store.NewMemStore()
	st.SeedRun(models.Run{ID: 1, GeneratedIdeas: `["solar panels","wind turbines"]`})
	st.SeedRun(models.Run{ID: 2, GeneratedIdeas: `["solar panels"]`})
	prox := NewProximity(st)

	enhanced, err := prox.Process(context.Background(), 3, []models.Evolution{
		{EvolvedIdea: "solar panels", EvolvedScore: 5},
	})
	require.NoError(t, err)
	require.Len(t, enhanced[0].HistoricalContext, 2)

	best := enhanced[0].HistoricalContext[0]
	assert.Equal(t, int64(2), best.HistoricalData.ID)
	assert.InDelta(t, 1.0, best.Similarity, 1e-9)
	assert.Greater(t, best.Similarity, enhanced[0].HistoricalContext[1].Similarity)
}

func TestProximityEnhancesFromBestMatch(t *testing.T) {
	st := store.NewMemStore()
	st.SeedRun(models.Run{
		ID:             1,
		GeneratedIdeas: `["solar panels"]`,
		Reflection:     `[{"idea":"solar panels","criteria":{"feasibility":9,"impact":8,"cost":8,"timeline":8},"overallScore":8}]`,
		Ranking:        `[{"idea":"wind turbines","originalScore":8,"costScore":9,"trendScore":8,"finalScore":8}]`,
		Evolution:      `[{"originalIdea":"solar panels","originalScore":4,"evolvedIdea":"solar roof tiles","evolvedScore":6,"improvement":2}]`,
	})
	prox := NewProximity(st)

	enhanced, err := prox.Process(context.Background(), 2, []models.Evolution{
		{EvolvedIdea: "solar panels", EvolvedScore: 5},
	})
	require.NoError(t, err)

	assert.Equal(t,
		"solar panels (enhanced with solar panels, wind turbines, solar roof tiles)",
		enhanced[0].EnhancedIdea)
}

func TestProximityToleratesMalformedPriorPayloads(t *testing.T) {
	st := store.NewMemStore()
	st.SeedRun(models.Run{
		ID:             1,
		GeneratedIdeas: `["solar panels"]`,
		Reflection:     `{not json`,
		Ranking:        `[{"idea":"wind turbines","finalScore":9}]`,
	})
	prox := NewProximity(st)

	enhanced, err := prox.Process(context.Background(), 2, []models.Evolution{
		{EvolvedIdea: "solar panels", EvolvedScore: 5},
	})
	require.NoError(t, err)
	assert.Equal(t, "solar panels (enhanced with wind turbines)", enhanced[0].EnhancedIdea)
}

func TestProximityExcludesCurrentRun(t *testing.T) {
	st := store.NewMemStore()
	ctx := context.Background()

	runID, err := st.CreateRun(ctx, "solar topic")
	require.NoError(t, err)
	require.NoError(t, st.SaveStageOutput(ctx, runID, models.StageGeneration, []byte(`["solar panels"]`)))

	prox := NewProximity(st)
	enhanced, err := prox.Process(ctx, runID, []models.Evolution{
		{EvolvedIdea: "solar panels", EvolvedScore: 5},
	})
	require.NoError(t, err)

	// The run's own generated ideas must not count as historical context.
	assert.Empty(t, enhanced[0].HistoricalContext)
}

func TestProximityAppendsHistoryEntry(t *testing.T) {
	st := store.NewMemStore()
	prox := NewProximity(st)

	_, err := prox.Process(context.Background(), 4, []models.Evolution{{EvolvedIdea: "solar panels"}})
	require.NoError(t, err)

	entries, err := st.RunHistory(context.Background(), 4)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.StageProximity, entries[0].Stage)
	assert.Equal(t, "proximity", entries[0].Action)
}
