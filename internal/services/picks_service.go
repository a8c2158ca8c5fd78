package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"myxpicks/internal/config"
	"myxpicks/internal/dataprocessing"
	apierrors "myxpicks/internal/errors"
	"myxpicks/internal/exporter"
	"myxpicks/internal/files"
	"myxpicks/internal/infrastructure"
	"myxpicks/pkg/contracts/domain"
	"myxpicks/pkg/contracts/events"
)

// Broadcaster pushes events to connected browsers.
type Broadcaster interface {
	Broadcast(ctx context.Context, msgType events.MessageType, data any) error
}

// Publisher ships the data directory after a refresh.
type Publisher interface {
	Publish(ctx context.Context, date time.Time) error
}

// RefreshResult describes one refresh run.
type RefreshResult struct {
	RunID       string               `json:"run_id"`
	Report      string               `json:"report"`
	UpdateTime  string               `json:"updateTime"`
	Date        string               `json:"date"`
	TotalStocks int                  `json:"totalStocks"`
	Stats       dataprocessing.Stats `json:"stats"`
	HistoryFile string               `json:"historyFile,omitempty"`
	Pruned      []string             `json:"pruned,omitempty"`
	Published   bool                 `json:"published"`
	Duration    time.Duration        `json:"-"`
}

// WeeklyResult describes a generated weekly report.
type WeeklyResult struct {
	Summary  domain.WeeklySummary `json:"summary"`
	JSONFile string               `json:"jsonFile"`
	HTMLFile string               `json:"htmlFile"`
}

// PicksService runs the refresh pipeline and serves the published picks.
type PicksService struct {
	cfg        *config.Config
	paths      *config.Paths
	vocab      dataprocessing.Vocabulary
	discovery  *files.Discovery
	files      *files.Manager
	writer     *exporter.SnapshotWriter
	digest     *exporter.DigestRenderer
	summarizer *dataprocessing.WeeklySummarizer
	validate   *validator.Validate

	broadcaster Broadcaster
	publisher   Publisher
	metrics     *infrastructure.BusinessMetrics
	tracer      trace.Tracer
	clock       func() time.Time

	refreshMu sync.Mutex
	logger    *slog.Logger
}

// PicksOption configures a PicksService.
type PicksOption func(*PicksService)

// WithBroadcaster announces finished refreshes through b.
func WithBroadcaster(b Broadcaster) PicksOption {
	return func(s *PicksService) { s.broadcaster = b }
}

// WithPublisher publishes the data directory after each refresh.
func WithPublisher(p Publisher) PicksOption {
	return func(s *PicksService) { s.publisher = p }
}

// WithMetrics records parse and refresh metrics.
func WithMetrics(m *infrastructure.BusinessMetrics) PicksOption {
	return func(s *PicksService) { s.metrics = m }
}

// WithTracer sets the tracer used for refresh spans.
func WithTracer(t trace.Tracer) PicksOption {
	return func(s *PicksService) {
		if t != nil {
			s.tracer = t
		}
	}
}

// WithClock sets the time source for snapshot dates and the weekly window.
func WithClock(clock func() time.Time) PicksOption {
	return func(s *PicksService) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// NewPicksService builds the service from cfg and resolved paths.
func NewPicksService(cfg *config.Config, paths *config.Paths, logger *slog.Logger, opts ...PicksOption) (*PicksService, error) {
	if logger == nil {
		logger = slog.Default()
	}

	vocab, err := dataprocessing.VocabularyFor(cfg.Parser.Locale)
	if err != nil {
		return nil, err
	}
	vocab = vocab.WithMarkers(cfg.Parser.HeaderTokens, cfg.Parser.FooterTokens)
	if err := vocab.Validate(); err != nil {
		return nil, fmt.Errorf("invalid parser vocabulary: %w", err)
	}

	manager := files.NewManager(paths, logger)
	s := &PicksService{
		cfg:       cfg,
		paths:     paths,
		vocab:     vocab,
		discovery: files.NewDiscovery(paths.BaseDir),
		files:     manager,
		writer:    exporter.NewSnapshotWriter(manager, paths, logger),
		digest:    exporter.NewDigestRenderer(time.Local),
		validate:  validator.New(),
		tracer:    otel.Tracer(infrastructure.MeterName),
		clock:     time.Now,
		logger:    logger.With(slog.String("component", "picks_service")),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.summarizer = dataprocessing.NewWeeklySummarizer(paths.HistoryDir, logger,
		dataprocessing.WithSummaryClock(s.clock))

	return s, nil
}

// Refresh parses the newest report and publishes it: latest and history
// snapshots, retention, history index, weekly report, optional git publish
// and a picks.updated broadcast. Only one refresh runs at a time.
func (s *PicksService) Refresh(ctx context.Context) (result RefreshResult, err error) {
	if !s.refreshMu.TryLock() {
		return RefreshResult{}, ErrRefreshRunning
	}
	defer s.refreshMu.Unlock()

	start := time.Now()
	result.RunID = uuid.New().String()
	if infrastructure.GetTraceID(ctx) == "" {
		ctx = infrastructure.WithTraceID(ctx, result.RunID)
	}
	ctx, span := s.tracer.Start(ctx, "picks.refresh",
		trace.WithAttributes(attribute.String("refresh.run_id", result.RunID)))
	defer span.End()

	logger := s.logger.With(slog.String("run_id", result.RunID))
	defer func() {
		outcome := infrastructure.OutcomeSuccess
		switch {
		case errors.Is(err, dataprocessing.ErrNoPicks), errors.Is(err, dataprocessing.ErrEmptyReport):
			outcome = infrastructure.OutcomeNoPicks
		case err != nil:
			outcome = infrastructure.OutcomeFailure
		}
		result.Duration = time.Since(start)
		infrastructure.RecordRefresh(ctx, s.metrics, outcome, result.Duration)
		span.SetAttributes(attribute.String("refresh.outcome", outcome))
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			infrastructure.RecordError(ctx, err)
		}
	}()

	report, err := s.discovery.LatestReport(s.paths.InputDir)
	if err != nil {
		logger.ErrorContext(ctx, "No report to refresh from",
			slog.String("input_dir", s.paths.InputDir),
			slog.String("error", err.Error()))
		return result, err
	}
	result.Report = report.Name
	logger.InfoContext(ctx, "Refreshing picks", slog.String("report", report.Name))

	text, err := os.ReadFile(report.Path)
	if err != nil {
		return result, apierrors.NewStorageError("failed to read report", err).WithContext("report", report.Name)
	}

	now := s.clock().UTC()
	parser := dataprocessing.NewParser(s.vocab, dataprocessing.WithClock(func() time.Time { return now }))
	parsed := parser.Parse(string(text))
	result.Stats = parsed.Stats
	infrastructure.RecordParse(ctx, s.metrics, parsed.Stats.Matched, parsed.Stats.Skipped)

	if warning := parsed.Warning(); warning != nil {
		logger.WarnContext(ctx, "Report produced no picks",
			slog.String("report", report.Name),
			slog.Int("lines", parsed.Stats.Lines),
			slog.Int("data_lines", parsed.Stats.DataLines))
		return result, apierrors.NewParsingError("report produced no picks", warning).WithContext("report", report.Name)
	}

	snapshot := domain.NewSnapshot(now.Format(dataprocessing.TimestampLayout), now.Format(domain.DateCodeLayout), parsed.Picks)
	result.UpdateTime = snapshot.UpdateTime
	result.Date = snapshot.Date
	result.TotalStocks = snapshot.TotalStocks

	if err := s.paths.EnsureDirectories(); err != nil {
		return result, err
	}
	historyPath, err := s.writer.WriteSnapshot(snapshot)
	if err != nil {
		return result, apierrors.NewStorageError("failed to write snapshot", err).WithContext("date", snapshot.Date)
	}
	result.HistoryFile = s.paths.RelativeToBase(historyPath)

	for i, pick := range snapshot.Stocks {
		logger.DebugContext(ctx, "Parsed pick",
			slog.Int("rank", i+1),
			slog.String("code", pick.Code),
			slog.String("name", pick.Name),
			slog.String("price", pick.Price),
			slog.String("change", pick.Change),
			slog.String("strategy", pick.Strategy),
			slog.Int("ai_score", pick.AIScore))
	}

	// Retention, index and weekly output are derived data: failures are
	// logged and the run still counts as a success.
	pruned, err := s.files.PruneHistory(s.cfg.History.DaysToKeep)
	if err != nil {
		logger.WarnContext(ctx, "History pruning failed", slog.String("error", err.Error()))
	}
	result.Pruned = pruned
	infrastructure.RecordPruned(ctx, s.metrics, len(pruned))

	if err := s.writeHistoryIndex(now); err != nil {
		logger.WarnContext(ctx, "History index not updated", slog.String("error", err.Error()))
	}
	if _, err := s.GenerateWeekly(ctx); err != nil {
		logger.WarnContext(ctx, "Weekly report not updated", slog.String("error", err.Error()))
	}

	if s.publisher != nil {
		if perr := s.publisher.Publish(ctx, now); perr != nil {
			logger.WarnContext(ctx, "Publishing skipped", slog.String("error", perr.Error()))
		} else {
			result.Published = true
		}
	}

	if s.broadcaster != nil {
		if berr := s.broadcaster.Broadcast(ctx, events.MessageTypePicksUpdated, events.PicksUpdated{
			RunID:       result.RunID,
			UpdateTime:  snapshot.UpdateTime,
			Date:        snapshot.Date,
			TotalStocks: snapshot.TotalStocks,
		}); berr != nil {
			logger.WarnContext(ctx, "Update broadcast failed", slog.String("error", berr.Error()))
		}
	}

	logger.InfoContext(ctx, "Picks refreshed",
		slog.String("report", report.Name),
		slog.String("date", snapshot.Date),
		slog.Int("total_stocks", snapshot.TotalStocks),
		slog.Int("primary", parsed.Stats.Matched[dataprocessing.MatcherPrimary]),
		slog.Int("fallback", parsed.Stats.Matched[dataprocessing.MatcherFallback]),
		slog.Int("skipped", parsed.Stats.Skipped),
		slog.Int("pruned", len(pruned)),
		slog.Duration("duration", time.Since(start)))

	return result, nil
}

func (s *PicksService) writeHistoryIndex(now time.Time) error {
	index, err := s.files.BuildHistoryIndex(now, s.cfg.History.BaseURL)
	if err != nil {
		return err
	}
	return s.writer.WriteHistoryIndex(index)
}

// Latest returns the most recently published snapshot.
func (s *PicksService) Latest(ctx context.Context) (domain.Snapshot, error) {
	return s.readSnapshot(ctx, s.paths.LatestJSON)
}

type snapshotDate struct {
	Value string `validate:"required,len=8,numeric"`
}

// Snapshot returns the history snapshot for a YYYYMMDD date code.
func (s *PicksService) Snapshot(ctx context.Context, dateCode string) (domain.Snapshot, error) {
	if err := s.validate.Struct(snapshotDate{Value: dateCode}); err != nil {
		return domain.Snapshot{}, fmt.Errorf("%w: %q", ErrInvalidDate, dateCode)
	}
	date, err := time.Parse(domain.DateCodeLayout, dateCode)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("%w: %q", ErrInvalidDate, dateCode)
	}
	return s.readSnapshot(ctx, s.paths.HistoryPath(domain.HistoryFilename(date)))
}

func (s *PicksService) readSnapshot(ctx context.Context, path string) (domain.Snapshot, error) {
	snapshot, err := dataprocessing.ReadSnapshot(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.Snapshot{}, ErrSnapshotNotFound
		}
		s.logger.ErrorContext(ctx, "Failed to read snapshot",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return domain.Snapshot{}, err
	}
	return snapshot, nil
}

// History lists the stored history snapshots, newest first.
func (s *PicksService) History(ctx context.Context) (domain.HistoryIndex, error) {
	index, err := s.files.BuildHistoryIndex(s.clock(), s.cfg.History.BaseURL)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list history", slog.String("error", err.Error()))
		return domain.HistoryIndex{}, err
	}
	return index, nil
}

// Weekly summarizes the history snapshots of the last seven days.
func (s *PicksService) Weekly(ctx context.Context) (domain.WeeklySummary, error) {
	return s.summarizer.Summarize(ctx)
}

// WeeklyHTML renders the weekly digest page without writing it.
func (s *PicksService) WeeklyHTML(ctx context.Context) ([]byte, error) {
	summary, err := s.Weekly(ctx)
	if err != nil {
		return nil, err
	}
	return s.digest.RenderBytes(summary, s.clock())
}

// GenerateWeekly writes the weekly summary JSON and the HTML digest.
func (s *PicksService) GenerateWeekly(ctx context.Context) (WeeklyResult, error) {
	summary, err := s.Weekly(ctx)
	if err != nil {
		return WeeklyResult{}, err
	}
	if err := s.writer.WriteWeekly(summary); err != nil {
		return WeeklyResult{}, err
	}

	page, err := s.digest.RenderBytes(summary, s.clock())
	if err != nil {
		return WeeklyResult{}, fmt.Errorf("failed to render weekly digest: %w", err)
	}
	if err := s.files.WriteFile(s.paths.WeeklyHTML, page); err != nil {
		return WeeklyResult{}, err
	}

	s.logger.InfoContext(ctx, "Weekly report generated",
		slog.String("week_start", summary.WeekStart),
		slog.String("week_end", summary.WeekEnd),
		slog.Int("total_days", summary.TotalDays),
		slog.Int("total_stocks", summary.TotalStocks))

	return WeeklyResult{
		Summary:  summary,
		JSONFile: s.paths.RelativeToBase(s.paths.WeeklyJSON),
		HTMLFile: s.paths.RelativeToBase(s.paths.WeeklyHTML),
	}, nil
}

// Export writes the latest snapshot to w in format and returns the snapshot
// date for naming the download.
func (s *PicksService) Export(ctx context.Context, format ExportFormat, w io.Writer) (string, error) {
	if !format.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	snapshot, err := s.Latest(ctx)
	if err != nil {
		return "", err
	}

	switch format {
	case ExportCSV:
		err = exporter.WriteCSV(w, snapshot)
	case ExportXLSX:
		err = exporter.WriteXLSX(w, snapshot)
	case ExportJSON:
		var data []byte
		if data, err = exporter.MarshalIndent(snapshot); err == nil {
			_, err = w.Write(data)
		}
	}
	if err != nil {
		return "", fmt.Errorf("failed to export %s: %w", format, err)
	}
	return snapshot.Date, nil
}
