// Command weekly aggregates the last seven days of history snapshots into
// weekly_performance.json and renders the weekly_report.html digest.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"myxpicks/internal/config"
	"myxpicks/internal/infrastructure"
	"myxpicks/internal/services"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Stdout); err != nil {
		slog.Error("Weekly report failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, stdout io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, closer, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer closer.Close()

	paths, err := cfg.ResolvePaths()
	if err != nil {
		return fmt.Errorf("failed to resolve paths: %w", err)
	}

	svc, err := services.NewPicksService(cfg, paths, logger)
	if err != nil {
		return err
	}

	result, err := svc.GenerateWeekly(ctx)
	if err != nil {
		return err
	}

	s := result.Summary
	fmt.Fprintf(stdout, "Week %s to %s: %d picks over %d trading days\n",
		s.WeekStart, s.WeekEnd, s.TotalStocks, s.TotalDays)
	for _, strategy := range slices.Sorted(maps.Keys(s.StrategyBreakdown)) {
		fmt.Fprintf(stdout, "  %s: %d\n", strategy, s.StrategyBreakdown[strategy])
	}
	fmt.Fprintf(stdout, "  json: %s\n", result.JSONFile)
	fmt.Fprintf(stdout, "  html: %s\n", result.HTMLFile)
	return nil
}
