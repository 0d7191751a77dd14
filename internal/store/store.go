// Package store persists runs and their append-only stage history. The
// pipeline depends only on the Store interface; the SQLite implementation
// backs the service and the in-memory implementation backs tests.
package store

import (
	"context"
	"errors"

	"github.com/ideamill/ideamill/internal/models"
)

// ErrRunNotFound is returned when a run ID does not match any stored run.
var ErrRunNotFound = errors.New("run not found")

// Store provides access to run records and history entries.
type Store interface {
	// CreateRun inserts a new run with an empty generated-ideas placeholder
	// and returns its ID.
	CreateRun(ctx context.Context, input string) (int64, error)

	// SaveStageOutput writes a stage's serialized output into the run record.
	SaveStageOutput(ctx context.Context, runID int64, stage models.StageName, payload []byte) error

	// AppendHistory records one immutable audit entry for a stage invocation.
	AppendHistory(ctx context.Context, runID int64, stage models.StageName, action string, result []byte) error

	// RunHistory returns all history entries for a run, oldest first.
	RunHistory(ctx context.Context, runID int64) ([]models.HistoryEntry, error)

	// RecentRuns returns up to limit runs, newest first.
	RecentRuns(ctx context.Context, limit int) ([]models.Run, error)

	// PriorRuns returns up to limit runs excluding the given run, newest first.
	PriorRuns(ctx context.Context, excludeRunID int64, limit int) ([]models.Run, error)
}
