// Package stages implements the six pipeline stages. Each stage transforms
// the previous stage's output and appends one audit entry to the run's
// history immediately after it finishes processing.
package stages

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/ideamill/ideamill/internal/lexical"
	"github.com/ideamill/ideamill/internal/models"
	"github.com/ideamill/ideamill/internal/store"
)

// recorder appends a stage's history entry. Every stage embeds one.
type recorder struct {
	stage models.StageName
	store store.Store
}

func (r recorder) record(ctx context.Context, runID int64, action string, result any) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode %s result: %w", r.stage, err)
	}
	if err := r.store.AppendHistory(ctx, runID, r.stage, action, payload); err != nil {
		return fmt.Errorf("record %s history: %w", r.stage, err)
	}
	return nil
}

// clampScore bounds a raw keyword score to the inclusive range [1,10].
func clampScore(score int) int {
	if score < 1 {
		return 1
	}
	if score > 10 {
		return 10
	}
	return score
}

// roundScore rounds half away from zero, matching the scoring formulas.
func roundScore(v float64) int {
	return int(math.Round(v))
}

// bucketScore sums 3/2/1 points for each token found in the high/medium/low
// buckets and clamps the result to [1,10].
func bucketScore(text string, b Buckets) int {
	score := 0
	for _, tok := range lexical.Tokenize(text) {
		if containsToken(b.High, tok) {
			score += 3
		}
		if containsToken(b.Medium, tok) {
			score += 2
		}
		if containsToken(b.Low, tok) {
			score += 1
		}
	}
	return clampScore(score)
}

func containsToken(keywords []string, tok string) bool {
	for _, k := range keywords {
		if k == tok {
			return true
		}
	}
	return false
}
