package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/ideamill/ideamill/internal/projectconfig"
	"github.com/ideamill/ideamill/internal/signals"
	"github.com/ideamill/ideamill/internal/stages"
	"github.com/ideamill/ideamill/internal/store"
	"github.com/ideamill/ideamill/internal/supervisor"
)

// buildPipeline wires the store, signal client, and stages from the loaded
// project configuration. The caller closes the returned store.
func buildPipeline(cfg *projectconfig.ProjectConfig, logger *slog.Logger) (*supervisor.Supervisor, *store.SQLiteStore, error) {
	st, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}

	rules, err := stages.RulesFromConfig(cfg.Rules)
	if err != nil {
		st.Close() //nolint:errcheck
		return nil, nil, err
	}

	client := signals.NewClient(signals.Config{
		CostURL:           cfg.Signals.CostURL,
		TrendURL:          cfg.Signals.TrendURL,
		Timeout:           time.Duration(cfg.Signals.Timeout) * time.Second,
		RequestsPerSecond: cfg.Signals.RequestsPerSecond,
		Logger:            logger,
	})

	sup := supervisor.New(supervisor.Args{
		Store:   st,
		Signals: client,
		Rules:   rules,
		Logger:  logger,
	})
	return sup, st, nil
}
