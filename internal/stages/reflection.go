package stages

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/ideamill/ideamill/internal/models"
	"github.com/ideamill/ideamill/internal/store"
)

// Overall-score weights for the four criteria.
const (
	weightFeasibility = 0.3
	weightImpact      = 0.3
	weightCost        = 0.2
	weightTimeline    = 0.2
)

// Reflection scores each candidate idea along the four fixed criteria.
// Ideas are evaluated independently; no idea's score depends on another's.
type Reflection struct {
	recorder
	rules ReflectionRules
}

// NewReflection creates the reflection stage.
func NewReflection(st store.Store, rules ReflectionRules) *Reflection {
	return &Reflection{recorder{models.StageReflection, st}, rules}
}

// Process evaluates every idea concurrently and joins the results in input
// order.
func (r *Reflection) Process(ctx context.Context, runID int64, ideas []string) ([]models.Evaluation, error) {
	evaluations := make([]models.Evaluation, len(ideas))

	var g errgroup.Group
	for i, idea := range ideas {
		g.Go(func() error {
			evaluations[i] = r.evaluate(idea)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := r.record(ctx, runID, "reflect", evaluations); err != nil {
		return nil, err
	}
	return evaluations, nil
}

func (r *Reflection) evaluate(idea string) models.Evaluation {
	criteria := models.CriteriaScores{
		Feasibility: bucketScore(idea, r.rules.Feasibility),
		Impact:      bucketScore(idea, r.rules.Impact),
		Cost:        bucketScore(idea, r.rules.Cost),
		Timeline:    bucketScore(idea, r.rules.Timeline),
	}

	overall := roundScore(
		float64(criteria.Feasibility)*weightFeasibility +
			float64(criteria.Impact)*weightImpact +
			float64(criteria.Cost)*weightCost +
			float64(criteria.Timeline)*weightTimeline)

	return models.Evaluation{Idea: idea, Criteria: criteria, OverallScore: overall}
}
