package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/busnet/transitcat/internal/app"
	"github.com/busnet/transitcat/internal/appconf"
	"github.com/busnet/transitcat/internal/catalogue"
	"github.com/busnet/transitcat/internal/clock"
	"github.com/busnet/transitcat/internal/logging"
	"github.com/busnet/transitcat/internal/metrics"
)

// BuildApplication wires the dependencies of one run. Logs are written as
// JSON to logOut and tagged with a fresh run id.
func BuildApplication(cfg appconf.Config, logOut io.Writer) (*app.Application, error) {
	level, err := logging.ParseLevel(cfg.EffectiveLogLevel())
	if err != nil {
		return nil, fmt.Errorf("failed to configure logging: %w", err)
	}

	runID := uuid.New().String()
	logger := logging.NewStructuredLogger(logOut, level).With(
		slog.String("run_id", runID),
		slog.String("env", cfg.Env.String()),
	)

	return &app.Application{
		Config:    cfg,
		RunID:     runID,
		Logger:    logger,
		Catalogue: catalogue.New(),
		Clock:     clock.RealClock{},
		Metrics:   metrics.NewWithLogger(logger),
	}, nil
}
