package main

import (
	"context"
	"fmt"

	"github.com/parthasarathygopu/orca/internal/browser"
	"github.com/parthasarathygopu/orca/internal/config"
	"github.com/parthasarathygopu/orca/internal/database"
	"github.com/parthasarathygopu/orca/internal/engine"
	"github.com/parthasarathygopu/orca/internal/evidence"
	"github.com/parthasarathygopu/orca/internal/log"
	"github.com/parthasarathygopu/orca/internal/metrics"
	"github.com/parthasarathygopu/orca/internal/repository"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

// app is the wiring shared by every command.
type app struct {
	cfg      *config.Config
	store    *repository.Store
	registry *prometheus.Registry
	metrics  *metrics.Metrics
}

func newApp(cmd *cobra.Command) (*app, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	log.Configure(cfg.Log.Level, cfg.Log.Format)

	db, err := database.Open(cfg.Database, cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	return &app{
		cfg:      cfg,
		store:    repository.NewStore(db),
		registry: registry,
		metrics:  metrics.NewMetrics(registry),
	}, nil
}

// supervisor wires the execution engine. events may be nil.
func (a *app) supervisor(ctx context.Context, events engine.EventSink) (*engine.Supervisor, error) {
	exec := a.cfg.Execution
	suitePolicy, err := engine.ParseFailurePolicy(exec.SuiteFailurePolicy)
	if err != nil {
		return nil, err
	}
	casePolicy, err := engine.ParseFailurePolicy(exec.CaseFailurePolicy)
	if err != nil {
		return nil, err
	}

	opts := engine.Options{
		SuiteBlockPageSize: exec.SuiteBlockPageSize,
		CaseBlockPageSize:  exec.CaseBlockPageSize,
		ActionPageSize:     exec.ActionPageSize,
		SuitePolicy:        suitePolicy,
		CasePolicy:         casePolicy,
		StatusMode:         engine.StatusMode(exec.RunStatus),
		RunTimeout:         exec.RunTimeout(),
		Events:             events,
		Metrics:            a.metrics,
		SerializeRuns:      a.cfg.Database.Type == "sqlite",
	}
	if a.cfg.Evidence.Enabled {
		store, err := evidence.NewMinioStore(ctx, a.cfg.Evidence)
		if err != nil {
			return nil, err
		}
		opts.Evidence = store
		opts.EvidenceBucket = a.cfg.Evidence.Bucket
	}

	factory := browser.NewWebDriverFactory(browser.WebDriverConfig{
		URL:      a.cfg.Driver.URL,
		Browser:  a.cfg.Driver.Browser,
		Headless: a.cfg.Driver.Headless,
		Timeout:  a.cfg.Driver.Timeout(),
	})
	return engine.NewSupervisor(a.store, factory, opts), nil
}
