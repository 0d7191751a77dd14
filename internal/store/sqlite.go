package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ideamill/ideamill/internal/models"
)

// stageColumns maps each stage to its run-record column. Writes go through
// this map only, so a stage name can never reach the SQL text directly.
var stageColumns = map[models.StageName]string{
	models.StageGeneration: "generated_ideas",
	models.StageReflection: "reflection",
	models.StageRanking:    "ranking",
	models.StageEvolution:  "evolution",
	models.StageProximity:  "proximity",
	models.StageMetaReview: "meta_review",
}

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB

	// now is swappable for tests that need controlled timestamps.
	now func() time.Time
}

// NewSQLiteStore opens or creates a SQLite database at the given path and
// applies the schema.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{db: db, now: time.Now}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS ideas (
		id              INTEGER PRIMARY KEY AUTOINCREMENT,
		input           TEXT NOT NULL,
		generated_ideas TEXT NOT NULL,
		reflection      TEXT,
		ranking         TEXT,
		evolution       TEXT,
		proximity       TEXT,
		meta_review     TEXT,
		created_at      TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_ideas_created ON ideas(created_at DESC);

	CREATE TABLE IF NOT EXISTS history (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		idea_id    INTEGER NOT NULL REFERENCES ideas(id),
		agent_type TEXT NOT NULL,
		action     TEXT NOT NULL,
		result     TEXT,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_history_idea ON history(idea_id, created_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// timestamps keep sub-second precision so meta-review gap analysis works.
func (s *SQLiteStore) timestamp() string {
	return s.now().UTC().Format(time.RFC3339Nano)
}

func (s *SQLiteStore) CreateRun(ctx context.Context, input string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO ideas (input, generated_ideas, created_at) VALUES (?, ?, ?)`,
		input, "[]", s.timestamp())
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	return res.LastInsertId()
}

func (s *SQLiteStore) SaveStageOutput(ctx context.Context, runID int64, stage models.StageName, payload []byte) error {
	column, ok := stageColumns[stage]
	if !ok {
		return fmt.Errorf("unknown stage %q", stage)
	}

	res, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE ideas SET %s = ? WHERE id = ?`, column),
		string(payload), runID)
	if err != nil {
		return fmt.Errorf("update run %d: %w", runID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrRunNotFound
	}
	return nil
}

func (s *SQLiteStore) AppendHistory(ctx context.Context, runID int64, stage models.StageName, action string, result []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO history (idea_id, agent_type, action, result, created_at) VALUES (?, ?, ?, ?, ?)`,
		runID, string(stage), action, string(result), s.timestamp())
	if err != nil {
		return fmt.Errorf("insert history: %w", err)
	}
	return nil
}

func (s *SQLiteStore) RunHistory(ctx context.Context, runID int64) ([]models.HistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, idea_id, agent_type, action, result, created_at
		 FROM history WHERE idea_id = ?
		 ORDER BY created_at, id`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.HistoryEntry
	for rows.Next() {
		var e models.HistoryEntry
		var stage, createdAt string
		var result sql.NullString
		if err := rows.Scan(&e.ID, &e.RunID, &stage, &e.Action, &result, &createdAt); err != nil {
			return nil, err
		}
		e.Stage = models.StageName(stage)
		e.Result = result.String
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *SQLiteStore) RecentRuns(ctx context.Context, limit int) ([]models.Run, error) {
	return s.queryRuns(ctx,
		`SELECT id, input, generated_ideas, reflection, ranking, evolution, proximity, meta_review, created_at
		 FROM ideas ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
}

func (s *SQLiteStore) PriorRuns(ctx context.Context, excludeRunID int64, limit int) ([]models.Run, error) {
	return s.queryRuns(ctx,
		`SELECT id, input, generated_ideas, reflection, ranking, evolution, proximity, meta_review, created_at
		 FROM ideas WHERE id != ? ORDER BY created_at DESC, id DESC LIMIT ?`, excludeRunID, limit)
}

func (s *SQLiteStore) queryRuns(ctx context.Context, query string, args ...any) ([]models.Run, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []models.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (models.Run, error) {
	var r models.Run
	var reflection, ranking, evolution, proximity, metaReview sql.NullString
	var createdAt string

	err := row.Scan(&r.ID, &r.Input, &r.GeneratedIdeas,
		&reflection, &ranking, &evolution, &proximity, &metaReview, &createdAt)
	if err != nil {
		return r, err
	}

	r.Reflection = reflection.String
	r.Ranking = ranking.String
	r.Evolution = evolution.String
	r.Proximity = proximity.String
	r.MetaReview = metaReview.String
	r.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)

	return r, nil
}

// Ensure SQLiteStore satisfies Store.
var _ Store = (*SQLiteStore)(nil)
