// Command updater parses the newest picks report and publishes the website
// data: latest and dated snapshots, history index and weekly report.
// With --push the data directory is committed and pushed afterwards.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"myxpicks/internal/app"
	"myxpicks/internal/config"
	"myxpicks/internal/infrastructure"
)

func main() {
	push := flag.Bool("push", false, "commit and push the data directory after the update")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *push, os.Stdout); err != nil {
		slog.Error("Update failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, push bool, stdout io.Writer) error {
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
	paths.LogPathResolution(logger)

	// A one-shot run has no scrape endpoint.
	otelCfg := cfg.OTel
	otelCfg.MetricExporter = "none"
	providers, err := infrastructure.InitializeOTel(otelCfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}
	defer providers.Shutdown(context.WithoutCancel(ctx))

	metrics, err := infrastructure.CreateBusinessMetrics(providers.Meter)
	if err != nil {
		return fmt.Errorf("failed to create metrics: %w", err)
	}

	svc, err := app.NewPicksService(cfg, paths, logger, providers, metrics, push || cfg.Publish.Enabled)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.Schedule.Timeout)
	defer cancel()

	result, err := svc.Refresh(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "%s: %d picks from %s\n", result.Date, result.TotalStocks, result.Report)
	fmt.Fprintf(stdout, "  latest:  %s\n", paths.RelativeToBase(paths.LatestJSON))
	fmt.Fprintf(stdout, "  history: %s\n", result.HistoryFile)
	if len(result.Pruned) > 0 {
		fmt.Fprintf(stdout, "  pruned:  %d old snapshots\n", len(result.Pruned))
	}
	if result.Published {
		fmt.Fprintf(stdout, "  pushed to %s/%s\n", cfg.Publish.Remote, cfg.Publish.Branch)
	}
	return nil
}
