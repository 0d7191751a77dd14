// Package models defines the shared data model for the idea pipeline:
// per-stage result records, the persistent run and history rows, and the
// meta-review report returned to API clients.
package models

// StageName identifies one of the six pipeline stages.
type StageName string

const (
	StageGeneration StageName = "generation"
	StageReflection StageName = "reflection"
	StageRanking    StageName = "ranking"
	StageEvolution  StageName = "evolution"
	StageProximity  StageName = "proximity"
	StageMetaReview StageName = "meta-review"
)

// PipelineStages returns the stage names in execution order.
func PipelineStages() []StageName {
	return []StageName{
		StageGeneration,
		StageReflection,
		StageRanking,
		StageEvolution,
		StageProximity,
		StageMetaReview,
	}
}

// CriteriaScores holds the four reflection criterion scores, each in [1,10].
type CriteriaScores struct {
	Feasibility int `json:"feasibility"`
	Impact      int `json:"impact"`
	Cost        int `json:"cost"`
	Timeline    int `json:"timeline"`
}

// Evaluation is the reflection stage's per-idea output.
type Evaluation struct {
	Idea         string         `json:"idea"`
	Criteria     CriteriaScores `json:"criteria"`
	OverallScore int            `json:"overallScore"`
}

// Ranking is the ranking stage's per-idea output. OriginalScore carries the
// reflection overall score; FinalScore blends it with the external signals.
type Ranking struct {
	Idea          string `json:"idea"`
	OriginalScore int    `json:"originalScore"`
	CostScore     int    `json:"costScore"`
	TrendScore    int    `json:"trendScore"`
	FinalScore    int    `json:"finalScore"`
}

// Evolution is the evolution stage's per-idea output. Improvement may be
// negative when the best variation scores below the ranked original.
type Evolution struct {
	OriginalIdea  string `json:"originalIdea"`
	OriginalScore int    `json:"originalScore"`
	EvolvedIdea   string `json:"evolvedIdea"`
	EvolvedScore  int    `json:"evolvedScore"`
	Improvement   int    `json:"improvement"`
}

// HistoricalMatch is one prior run judged lexically similar to a current idea.
type HistoricalMatch struct {
	Ideas          string  `json:"idea"`
	Similarity     float64 `json:"similarity"`
	HistoricalData Run     `json:"historicalData"`
}

// Proximity is the proximity stage's per-idea output.
type Proximity struct {
	OriginalIdea      string            `json:"originalIdea"`
	OriginalScore     int               `json:"originalScore"`
	EnhancedIdea      string            `json:"enhancedIdea"`
	HistoricalContext []HistoricalMatch `json:"historicalContext"`
}

// Bottleneck issue labels reported by the meta-review stage.
const (
	IssueSlowProcessing  = "slow_processing"
	IssueFailedOperation = "failed_operation"
)

// StageRate counts history entries and how many met the success criteria.
type StageRate struct {
	Total      int `json:"total"`
	Successful int `json:"successful"`
}

// PerformanceMetrics summarizes a run's own execution history.
type PerformanceMetrics struct {
	// TotalTimeMs is the span between the first and last history entry.
	TotalTimeMs int64 `json:"totalTime"`
	// EntryCounts holds per-stage history entry counts.
	EntryCounts map[StageName]int `json:"agentTimes"`
	// SuccessRates holds per-stage success tallies.
	SuccessRates map[StageName]StageRate `json:"successRates"`
}

// Bottleneck flags a stage as slow or as having produced an unsuccessful result.
type Bottleneck struct {
	Stage   StageName `json:"agent"`
	Issue   string    `json:"issue"`
	Details string    `json:"details"`
}

// Suggestion is a meta-review improvement recommendation for one stage.
type Suggestion struct {
	Type       string    `json:"type"`
	Target     StageName `json:"target"`
	Suggestion string    `json:"suggestion"`
}

// Report is the meta-review stage's output and the payload of a process
// response.
type Report struct {
	PerformanceMetrics PerformanceMetrics `json:"performanceMetrics"`
	Bottlenecks        []Bottleneck       `json:"bottlenecks"`
	Suggestions        []Suggestion       `json:"suggestions"`
	FinalIdeas         []Proximity        `json:"finalIdeas"`
}

// Outcome is the aggregate result of processing one topic end to end.
type Outcome struct {
	Input   string  `json:"input"`
	RunID   int64   `json:"ideaId"`
	Results *Report `json:"results"`
}
