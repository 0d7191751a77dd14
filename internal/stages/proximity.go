package stages

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/ideamill/ideamill/internal/lexical"
	"github.com/ideamill/ideamill/internal/models"
	"github.com/ideamill/ideamill/internal/store"
)

const (
	// historyWindow bounds how many prior runs are considered.
	historyWindow = 10
	// similarityThreshold is the strict lower bound for a historical match.
	similarityThreshold = 0.3
)

// Proximity enriches each evolved idea using lexical similarity to prior
// runs' generated ideas. Prior runs exclude the run being processed.
type Proximity struct {
	recorder
}

// NewProximity creates the proximity stage.
func NewProximity(st store.Store) *Proximity {
	return &Proximity{recorder{models.StageProximity, st}}
}

// Process enhances every evolved idea concurrently against one shared
// snapshot of prior runs, joining results in input order.
func (p *Proximity) Process(ctx context.Context, runID int64, evolved []models.Evolution) ([]models.Proximity, error) {
	prior, err := p.store.PriorRuns(ctx, runID, historyWindow)
	if err != nil {
		return nil, fmt.Errorf("load prior runs: %w", err)
	}

	enhanced := make([]models.Proximity, len(evolved))

	var g errgroup.Group
	for i, ev := range evolved {
		g.Go(func() error {
			enhanced[i] = enhance(ev, prior)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := p.record(ctx, runID, "proximity", enhanced); err != nil {
		return nil, err
	}
	return enhanced, nil
}

func enhance(ev models.Evolution, prior []models.Run) models.Proximity {
	matches := findMatches(ev.EvolvedIdea, prior)

	idea := ev.EvolvedIdea
	if len(matches) > 0 {
		if elements := successfulElements(matches[0].HistoricalData); len(elements) > 0 {
			idea = fmt.Sprintf("%s (enhanced with %s)", idea, strings.Join(elements, ", "))
		}
	}

	return models.Proximity{
		OriginalIdea:      ev.EvolvedIdea,
		OriginalScore:     ev.EvolvedScore,
		EnhancedIdea:      idea,
		HistoricalContext: matches,
	}
}

// findMatches returns the prior runs whose generated ideas are lexically
// similar to the current idea, sorted descending by similarity.
func findMatches(idea string, prior []models.Run) []models.HistoricalMatch {
	current := lexical.TokenSet(idea)

	matches := []models.HistoricalMatch{}
	for _, run := range prior {
		similarity := lexical.Jaccard(current, lexical.TokenSet(run.GeneratedIdeas))
		if similarity > similarityThreshold {
			matches = append(matches, models.HistoricalMatch{
				Ideas:          run.GeneratedIdeas,
				Similarity:     similarity,
				HistoricalData: run,
			})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})
	return matches
}

// successfulElements pulls the idea texts that performed well in a prior
// run: reflections scoring above 7, rankings finishing above 7, and
// evolutions that improved. Malformed stored payloads are skipped.
func successfulElements(run models.Run) []string {
	var elements []string

	var evaluations []models.Evaluation
	if run.Reflection != "" && json.Unmarshal([]byte(run.Reflection), &evaluations) == nil {
		for _, e := range evaluations {
			if e.OverallScore > 7 {
				elements = append(elements, e.Idea)
			}
		}
	}

	var rankings []models.Ranking
	if run.Ranking != "" && json.Unmarshal([]byte(run.Ranking), &rankings) == nil {
		for _, r := range rankings {
			if r.FinalScore > 7 {
				elements = append(elements, r.Idea)
			}
		}
	}

	var evolutions []models.Evolution
	if run.Evolution != "" && json.Unmarshal([]byte(run.Evolution), &evolutions) == nil {
		for _, e := range evolutions {
			if e.Improvement > 0 {
				elements = append(elements, e.EvolvedIdea)
			}
		}
	}

	return elements
}
