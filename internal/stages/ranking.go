package stages

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/ideamill/ideamill/internal/models"
	"github.com/ideamill/ideamill/internal/store"
)

// Final-score weights blending the reflection score with external signals.
const (
	weightOriginal = 0.4
	weightSignal   = 0.3
)

// SignalSource provides the externally fetched cost and trend scores, both
// in [1,10]. Implementations must degrade to a neutral default instead of
// failing; the ranking stage never fails due to a signal fetch.
type SignalSource interface {
	CostScore(ctx context.Context, idea string) int
	TrendScore(ctx context.Context, idea string) int
}

// Ranking blends each evaluation's overall score with the cost and trend
// signals into a final score.
type Ranking struct {
	recorder
	signals SignalSource
}

// NewRanking creates the ranking stage.
func NewRanking(st store.Store, signals SignalSource) *Ranking {
	return &Ranking{recorder{models.StageRanking, st}, signals}
}

// Process ranks every evaluation concurrently, fetching both signals per
// idea, and joins the results in input order.
func (r *Ranking) Process(ctx context.Context, runID int64, evaluations []models.Evaluation) ([]models.Ranking, error) {
	rankings := make([]models.Ranking, len(evaluations))

	var g errgroup.Group
	for i, eval := range evaluations {
		g.Go(func() error {
			rankings[i] = r.rank(ctx, eval)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := r.record(ctx, runID, "rank", rankings); err != nil {
		return nil, err
	}
	return rankings, nil
}

func (r *Ranking) rank(ctx context.Context, eval models.Evaluation) models.Ranking {
	cost := r.signals.CostScore(ctx, eval.Idea)
	trend := r.signals.TrendScore(ctx, eval.Idea)

	final := roundScore(
		float64(eval.OverallScore)*weightOriginal +
			float64(cost)*weightSignal +
			float64(trend)*weightSignal)

	return models.Ranking{
		Idea:          eval.Idea,
		OriginalScore: eval.OverallScore,
		CostScore:     cost,
		TrendScore:    trend,
		FinalScore:    final,
	}
}
