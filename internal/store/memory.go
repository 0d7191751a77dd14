package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ideamill/ideamill/internal/models"
)

// MemStore is an in-memory Store used by tests. Now is swappable so tests
// can control history timestamps.
type MemStore struct {
	mu      sync.Mutex
	runs    []models.Run
	history []models.HistoryEntry
	nextRun int64
	nextHis int64

	Now func() time.Time
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{nextRun: 1, nextHis: 1, Now: time.Now}
}

func (m *MemStore) CreateRun(_ context.Context, input string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextRun
	m.nextRun++
	m.runs = append(m.runs, models.Run{
		ID:             id,
		Input:          input,
		GeneratedIdeas: "[]",
		CreatedAt:      m.Now().UTC(),
	})
	return id, nil
}

func (m *MemStore) SaveStageOutput(_ context.Context, runID int64, stage models.StageName, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.runs {
		if m.runs[i].ID != runID {
			continue
		}
		switch stage {
		case models.StageGeneration:
			m.runs[i].GeneratedIdeas = string(payload)
		case models.StageReflection:
			m.runs[i].Reflection = string(payload)
		case models.StageRanking:
			m.runs[i].Ranking = string(payload)
		case models.StageEvolution:
			m.runs[i].Evolution = string(payload)
		case models.StageProximity:
			m.runs[i].Proximity = string(payload)
		case models.StageMetaReview:
			m.runs[i].MetaReview = string(payload)
		default:
			return fmt.Errorf("unknown stage %q", stage)
		}
		return nil
	}
	return ErrRunNotFound
}

func (m *MemStore) AppendHistory(_ context.Context, runID int64, stage models.StageName, action string, result []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.history = append(m.history, models.HistoryEntry{
		ID:        m.nextHis,
		RunID:     runID,
		Stage:     stage,
		Action:    action,
		Result:    string(result),
		CreatedAt: m.Now().UTC(),
	})
	m.nextHis++
	return nil
}

func (m *MemStore) RunHistory(_ context.Context, runID int64) ([]models.HistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var entries []models.HistoryEntry
	for _, e := range m.history {
		if e.RunID == runID {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

func (m *MemStore) RecentRuns(_ context.Context, limit int) ([]models.Run, error) {
	return m.recent(-1, limit), nil
}

func (m *MemStore) PriorRuns(_ context.Context, excludeRunID int64, limit int) ([]models.Run, error) {
	return m.recent(excludeRunID, limit), nil
}

func (m *MemStore) recent(excludeRunID int64, limit int) []models.Run {
	m.mu.Lock()
	defer m.mu.Unlock()

	var runs []models.Run
	for i := len(m.runs) - 1; i >= 0 && len(runs) < limit; i-- {
		if m.runs[i].ID == excludeRunID {
			continue
		}
		runs = append(runs, m.runs[i])
	}
	return runs
}

// SeedRun inserts a fully populated run, for tests that need prior history.
func (m *MemStore) SeedRun(r models.Run) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if r.ID == 0 {
		r.ID = m.nextRun
	}
	if r.ID >= m.nextRun {
		m.nextRun = r.ID + 1
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = m.Now().UTC()
	}
	m.runs = append(m.runs, r)
}

// Ensure MemStore satisfies Store.
var _ Store = (*MemStore)(nil)
