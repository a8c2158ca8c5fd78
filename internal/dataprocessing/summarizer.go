package dataprocessing

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"myxpicks/pkg/contracts/domain"
)

// ErrNoWeeklyData means no history snapshot exists inside the week window.
var ErrNoWeeklyData = errors.New("no history snapshots in the weekly window")

const defaultWeekDays = 7

// WeeklySummarizer folds the history snapshots of the last seven calendar
// days into a WeeklySummary.
type WeeklySummarizer struct {
	historyDir string
	logger     *slog.Logger
	clock      func() time.Time
	days       int
}

// SummarizerOption configures a WeeklySummarizer.
type SummarizerOption func(*WeeklySummarizer)

// WithSummaryClock sets the clock that decides which day is "today".
func WithSummaryClock(clock func() time.Time) SummarizerOption {
	return func(s *WeeklySummarizer) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithWindow changes the number of calendar days summarized.
func WithWindow(days int) SummarizerOption {
	return func(s *WeeklySummarizer) {
		if days > 0 {
			s.days = days
		}
	}
}

// NewWeeklySummarizer reads snapshots from historyDir.
func NewWeeklySummarizer(historyDir string, logger *slog.Logger, opts ...SummarizerOption) *WeeklySummarizer {
	if logger == nil {
		logger = slog.Default()
	}
	s := &WeeklySummarizer{
		historyDir: historyDir,
		logger:     logger.With(slog.String("component", "weekly_summarizer")),
		clock:      time.Now,
		days:       defaultWeekDays,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type weekDay struct {
	dateCode string
	path     string
	snapshot domain.Snapshot
	err      error
}

// Summarize loads the window newest first and aggregates it. Days without a
// file are not counted; files that exist but cannot be read still count as
// trading days and are logged.
func (s *WeeklySummarizer) Summarize(ctx context.Context) (domain.WeeklySummary, error) {
	today := s.clock().UTC()

	var days []*weekDay
	for i := 0; i < s.days; i++ {
		date := today.AddDate(0, 0, -i)
		path := filepath.Join(s.historyDir, domain.HistoryFilename(date))
		if _, err := os.Stat(path); err != nil {
			continue
		}
		days = append(days, &weekDay{dateCode: date.Format(domain.DateCodeLayout), path: path})
	}
	if len(days) == 0 {
		return domain.WeeklySummary{}, ErrNoWeeklyData
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, day := range days {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			day.snapshot, day.err = ReadSnapshot(day.path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return domain.WeeklySummary{}, err
	}

	summary := domain.WeeklySummary{
		WeekStart:         days[len(days)-1].dateCode,
		WeekEnd:           days[0].dateCode,
		TotalDays:         len(days),
		StrategyBreakdown: make(map[string]int),
		BestPerformers:    []domain.BestPerformer{},
	}

	for _, day := range days {
		if day.err != nil {
			s.logger.WarnContext(ctx, "skipping unreadable history snapshot",
				slog.String("path", day.path),
				slog.String("error", day.err.Error()))
			continue
		}

		stocks := day.snapshot.Stocks
		summary.TotalStocks += len(stocks)
		for _, pick := range stocks {
			summary.StrategyBreakdown[pick.Strategy]++
		}
		if best, ok := BestPerformer(stocks); ok {
			summary.BestPerformers = append(summary.BestPerformers, domain.BestPerformer{
				Date:   day.dateCode,
				Code:   best.Code,
				Name:   best.Name,
				Return: best.Change,
			})
		}
	}

	s.logger.InfoContext(ctx, "weekly summary built",
		slog.String("week_start", summary.WeekStart),
		slog.String("week_end", summary.WeekEnd),
		slog.Int("days", summary.TotalDays),
		slog.Int("stocks", summary.TotalStocks))

	return summary, nil
}

// BestPerformer returns the pick with the greatest change percentage. On a
// tie the later pick wins.
func BestPerformer(picks []domain.StockPick) (domain.StockPick, bool) {
	if len(picks) == 0 {
		return domain.StockPick{}, false
	}
	best := picks[0]
	for _, pick := range picks[1:] {
		if pick.ChangePercent >= best.ChangePercent {
			best = pick
		}
	}
	return best, true
}
