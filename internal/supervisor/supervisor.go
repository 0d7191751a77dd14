// Package supervisor drives the six pipeline stages in their fixed order,
// persisting each stage's output to the run record as it completes.
package supervisor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ideamill/ideamill/internal/models"
	"github.com/ideamill/ideamill/internal/stages"
	"github.com/ideamill/ideamill/internal/store"
)

// HistoryLimit is how many recent runs the history listing returns.
const HistoryLimit = 10

// Supervisor owns the stage instances and the run store. A single
// Supervisor is safe for concurrent Process calls; each call works on its
// own run record.
type Supervisor struct {
	store store.Store
	log   *slog.Logger

	generation *stages.Generation
	reflection *stages.Reflection
	ranking    *stages.Ranking
	evolution  *stages.Evolution
	proximity  *stages.Proximity
	metaReview *stages.MetaReview
}

// Args configures a Supervisor.
type Args struct {
	Store   store.Store
	Signals stages.SignalSource
	Rules   stages.Rules
	Logger  *slog.Logger
}

// New wires up the six stages against the shared store.
func New(args Args) *Supervisor {
	log := args.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Supervisor{
		store:      args.Store,
		log:        log,
		generation: stages.NewGeneration(args.Store, args.Rules.Generation),
		reflection: stages.NewReflection(args.Store, args.Rules.Reflection),
		ranking:    stages.NewRanking(args.Store, args.Signals),
		evolution:  stages.NewEvolution(args.Store, args.Rules.Evolution),
		proximity:  stages.NewProximity(args.Store),
		metaReview: stages.NewMetaReview(args.Store),
	}
}

// Process runs one topic through the full pipeline. It creates the run
// record first, then advances stage by stage, saving each stage's output
// before moving on. The first stage error aborts the run and leaves the
// record holding everything persisted so far.
func (s *Supervisor) Process(ctx context.Context, input string) (*models.Outcome, error) {
	runID, err := s.store.CreateRun(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("create run: %w", err)
	}
	log := s.log.With("run_id", runID)
	log.Info("pipeline started", "input", input)

	ideas, err := s.generation.Process(ctx, runID, input)
	if err != nil {
		return nil, s.fail(log, models.StageGeneration, err)
	}
	if err := s.save(ctx, runID, models.StageGeneration, ideas); err != nil {
		return nil, err
	}
	log.Debug("stage complete", "stage", models.StageGeneration, "ideas", len(ideas))

	evaluations, err := s.reflection.Process(ctx, runID, ideas)
	if err != nil {
		return nil, s.fail(log, models.StageReflection, err)
	}
	if err := s.save(ctx, runID, models.StageReflection, evaluations); err != nil {
		return nil, err
	}
	log.Debug("stage complete", "stage", models.StageReflection)

	rankings, err := s.ranking.Process(ctx, runID, evaluations)
	if err != nil {
		return nil, s.fail(log, models.StageRanking, err)
	}
	if err := s.save(ctx, runID, models.StageRanking, rankings); err != nil {
		return nil, err
	}
	log.Debug("stage complete", "stage", models.StageRanking)

	evolved, err := s.evolution.Process(ctx, runID, rankings)
	if err != nil {
		return nil, s.fail(log, models.StageEvolution, err)
	}
	if err := s.save(ctx, runID, models.StageEvolution, evolved); err != nil {
		return nil, err
	}
	log.Debug("stage complete", "stage", models.StageEvolution)

	enhanced, err := s.proximity.Process(ctx, runID, evolved)
	if err != nil {
		return nil, s.fail(log, models.StageProximity, err)
	}
	if err := s.save(ctx, runID, models.StageProximity, enhanced); err != nil {
		return nil, err
	}
	log.Debug("stage complete", "stage", models.StageProximity)

	report, err := s.metaReview.Process(ctx, runID, enhanced)
	if err != nil {
		return nil, s.fail(log, models.StageMetaReview, err)
	}
	if err := s.save(ctx, runID, models.StageMetaReview, report); err != nil {
		return nil, err
	}
	log.Info("pipeline finished", "final_ideas", len(report.FinalIdeas))

	return &models.Outcome{
		Input:   input,
		RunID:   runID,
		Results: report,
	}, nil
}

// History returns the most recent runs, newest first.
func (s *Supervisor) History(ctx context.Context) ([]models.Run, error) {
	return s.store.RecentRuns(ctx, HistoryLimit)
}

func (s *Supervisor) save(ctx context.Context, runID int64, stage models.StageName, output any) error {
	payload, err := json.Marshal(output)
	if err != nil {
		return fmt.Errorf("encode %s output: %w", stage, err)
	}
	if err := s.store.SaveStageOutput(ctx, runID, stage, payload); err != nil {
		return fmt.Errorf("save %s output: %w", stage, err)
	}
	return nil
}

func (s *Supervisor) fail(log *slog.Logger, stage models.StageName, err error) error {
	log.Error("stage failed", "stage", stage, "error", err)
	return fmt.Errorf("%s stage: %w", stage, err)
}
