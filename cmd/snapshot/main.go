package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rauljgarcia/pl-rankings-dashboard/external/pulselive"
	"github.com/rauljgarcia/pl-rankings-dashboard/internal/config"
	"github.com/rauljgarcia/pl-rankings-dashboard/internal/infrastructure/repository/csvfile"
	"github.com/rauljgarcia/pl-rankings-dashboard/internal/platform/logging"
	"github.com/rauljgarcia/pl-rankings-dashboard/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := logging.NewJSON(cfg.LogLevel)
	defer func() { _ = logger.Sync() }()
	logging.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := pulselive.NewClient(pulselive.ClientConfig{
		StandingsURL:    cfg.StandingsURL,
		RoundMatchesURL: cfg.RoundMatchesURL,
		NextFixtureURL:  cfg.NextFixtureURL,
		UserAgent:       cfg.UserAgent,
		Timeout:         cfg.HTTPTimeout,
		Logger:          logger,
	})

	service := usecase.NewSnapshotService(usecase.SnapshotServiceConfig{
		Provider: client,
		History:  csvfile.NewHistory(cfg.HistoryPath),
		Logger:           logger,
		LeagueSize:       cfg.LeagueSize,
		FixturesPerRound: cfg.FixturesPerRound,
		FinishedPeriod:   cfg.FinishedPeriod,
		EnrichOpponents:  cfg.EnrichNextOpponent,
		EnrichWorkers:    cfg.EnrichWorkers,
	})

	result, err := service.Run(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "snapshot run failed", "error", err)
		os.Exit(1)
	}

	switch result.Outcome {
	case usecase.OutcomeRecorded:
		logger.InfoContext(ctx, "snapshot recorded",
			"matchweek", result.Matchweek, "rows", result.Rows, "history", cfg.HistoryPath)
	case usecase.OutcomeDuplicate:
		logger.InfoContext(ctx, "matchweek already recorded, append skipped",
			"matchweek", result.Matchweek)
	case usecase.OutcomeNotReady:
		logger.InfoContext(ctx, "matchweek not complete, nothing recorded",
			"matchweek", result.Matchweek)
	}
}
