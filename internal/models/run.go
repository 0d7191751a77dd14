package models

import "time"

// Run is one persisted topic submission. The per-stage columns hold the
// stage outputs as serialized JSON text; they stay empty until the
// corresponding stage completes. A run's ID never changes once created.
type Run struct {
	ID             int64     `json:"id"`
	Input          string    `json:"input"`
	GeneratedIdeas string    `json:"generated_ideas"`
	Reflection     string    `json:"reflection"`
	Ranking        string    `json:"ranking"`
	Evolution      string    `json:"evolution"`
	Proximity      string    `json:"proximity"`
	MetaReview     string    `json:"meta_review"`
	CreatedAt      time.Time `json:"created_at"`
}

// HistoryEntry is one immutable audit record: a stage's action and serialized
// result for one run. Entries are append-only and ordered by creation time.
type HistoryEntry struct {
	ID        int64     `json:"id"`
	RunID     int64     `json:"idea_id"`
	Stage     StageName `json:"agent_type"`
	Action    string    `json:"action"`
	Result    string    `json:"result"`
	CreatedAt time.Time `json:"created_at"`
}
