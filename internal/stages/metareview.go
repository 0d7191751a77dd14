package stages

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ideamill/ideamill/internal/models"
	"github.com/ideamill/ideamill/internal/store"
)

const (
	// slowStageThresholdMs flags a stage whose mean inter-entry gap exceeds it.
	slowStageThresholdMs = 5000
	// cachingEntryThreshold triggers a caching suggestion above this count.
	cachingEntryThreshold = 5
	// successRateFloor triggers a criteria-review suggestion below this rate.
	successRateFloor = 0.7
)

// MetaReview reads the run's own execution history and reports performance
// metrics, bottleneck findings, and improvement suggestions. Malformed
// stored history is tolerated, never fatal.
type MetaReview struct {
	recorder
}

// NewMetaReview creates the meta-review stage.
func NewMetaReview(st store.Store) *MetaReview {
	return &MetaReview{recorder{models.StageMetaReview, st}}
}

// Process reads the history log fresh from the store and bundles the
// analysis with the final ideas.
func (m *MetaReview) Process(ctx context.Context, runID int64, finalIdeas []models.Proximity) (*models.Report, error) {
	history, err := m.store.RunHistory(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("load run history: %w", err)
	}

	metrics := analyzePerformance(history)
	bottlenecks := identifyBottlenecks(history)
	report := &models.Report{
		PerformanceMetrics: metrics,
		Bottlenecks:        bottlenecks,
		Suggestions:        buildSuggestions(metrics, bottlenecks),
		FinalIdeas:         finalIdeas,
	}

	if err := m.record(ctx, runID, "meta-review", report); err != nil {
		return nil, err
	}
	return report, nil
}

func analyzePerformance(history []models.HistoryEntry) models.PerformanceMetrics {
	metrics := models.PerformanceMetrics{
		EntryCounts:  make(map[models.StageName]int),
		SuccessRates: make(map[models.StageName]models.StageRate),
	}

	if len(history) > 0 {
		first := history[0].CreatedAt
		last := history[len(history)-1].CreatedAt
		metrics.TotalTimeMs = last.Sub(first).Milliseconds()
	}

	for _, entry := range history {
		metrics.EntryCounts[entry.Stage]++

		rate := metrics.SuccessRates[entry.Stage]
		rate.Total++
		if successfulResult(entry.Result) {
			rate.Successful++
		}
		metrics.SuccessRates[entry.Stage] = rate
	}

	return metrics
}

// successfulResult judges a stored result payload: a non-empty JSON array,
// or a JSON object whose score or finalScore exceeds 7. Anything else,
// including malformed JSON, counts as unsuccessful.
func successfulResult(result string) bool {
	trimmed := strings.TrimSpace(result)
	switch {
	case strings.HasPrefix(trimmed, "["):
		var items []json.RawMessage
		return json.Unmarshal([]byte(trimmed), &items) == nil && len(items) > 0
	case strings.HasPrefix(trimmed, "{"):
		var obj struct {
			Score      float64 `json:"score"`
			FinalScore float64 `json:"finalScore"`
		}
		return json.Unmarshal([]byte(trimmed), &obj) == nil && (obj.Score > 7 || obj.FinalScore > 7)
	default:
		return false
	}
}

func identifyBottlenecks(history []models.HistoryEntry) []models.Bottleneck {
	timings := make(map[models.StageName][]time.Time)
	for _, entry := range history {
		timings[entry.Stage] = append(timings[entry.Stage], entry.CreatedAt)
	}

	bottlenecks := []models.Bottleneck{}
	for _, stage := range models.PipelineStages() {
		stamps := timings[stage]
		if len(stamps) < 2 {
			continue
		}
		if mean := meanGapMs(stamps); mean > slowStageThresholdMs {
			bottlenecks = append(bottlenecks, models.Bottleneck{
				Stage:   stage,
				Issue:   models.IssueSlowProcessing,
				Details: fmt.Sprintf("Average processing time: %dms", mean),
			})
		}
	}

	for _, entry := range history {
		if !successfulResult(entry.Result) {
			bottlenecks = append(bottlenecks, models.Bottleneck{
				Stage:   entry.Stage,
				Issue:   models.IssueFailedOperation,
				Details: "Operation did not meet success criteria",
			})
		}
	}

	return bottlenecks
}

// meanGapMs computes the mean gap between consecutive timestamps.
func meanGapMs(stamps []time.Time) int64 {
	var total int64
	for i := 1; i < len(stamps); i++ {
		total += stamps[i].Sub(stamps[i-1]).Milliseconds()
	}
	return total / int64(len(stamps)-1)
}

func buildSuggestions(metrics models.PerformanceMetrics, bottlenecks []models.Bottleneck) []models.Suggestion {
	suggestions := []models.Suggestion{}

	for _, stage := range models.PipelineStages() {
		if metrics.EntryCounts[stage] > cachingEntryThreshold {
			suggestions = append(suggestions, models.Suggestion{
				Type:       "optimization",
				Target:     stage,
				Suggestion: "Consider implementing caching for repeated operations",
			})
		}
	}

	for _, stage := range models.PipelineStages() {
		rate, ok := metrics.SuccessRates[stage]
		if !ok || rate.Total == 0 {
			continue
		}
		if float64(rate.Successful)/float64(rate.Total) < successRateFloor {
			suggestions = append(suggestions, models.Suggestion{
				Type:       "improvement",
				Target:     stage,
				Suggestion: "Review and improve success criteria implementation",
			})
		}
	}

	for _, b := range bottlenecks {
		if b.Issue == models.IssueSlowProcessing {
			suggestions = append(suggestions, models.Suggestion{
				Type:       "performance",
				Target:     b.Stage,
				Suggestion: "Implement parallel processing or optimize algorithms",
			})
		}
	}

	return suggestions
}
