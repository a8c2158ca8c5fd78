package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"myxpicks/internal/config"
	"myxpicks/internal/dataprocessing"
	apierrors "myxpicks/internal/errors"
	"myxpicks/internal/files"
	"myxpicks/internal/shared/testutil"
	"myxpicks/pkg/contracts/domain"
	"myxpicks/pkg/contracts/events"
)

var refreshTime = time.Date(2025, 12, 22, 10, 30, 0, 0, time.UTC)

type mockBroadcaster struct {
	mock.Mock
}

func (m *mockBroadcaster) Broadcast(ctx context.Context, msgType events.MessageType, data any) error {
	args := m.Called(ctx, msgType, data)
	return args.Error(0)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, date time.Time) error {
	args := m.Called(ctx, date)
	return args.Error(0)
}

type fixture struct {
	cfg    *config.Config
	paths  *config.Paths
	logger *slog.Logger
	logs   *testutil.BufferedSlogHandler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := config.Default()
	cfg.Paths.BaseDir = t.TempDir()
	cfg.Paths.InputDir = "reports"
	paths, err := cfg.ResolvePaths()
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(paths.InputDir, 0o755))

	logger, logs := testutil.NewTestLogger(t)
	return &fixture{cfg: cfg, paths: paths, logger: logger, logs: logs}
}

func (f *fixture) writeReport(t *testing.T, name, text string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(f.paths.InputDir, name), []byte(text), 0o644))
}

func (f *fixture) service(t *testing.T, opts ...PicksOption) *PicksService {
	t.Helper()
	opts = append([]PicksOption{WithClock(func() time.Time { return refreshTime })}, opts...)
	svc, err := NewPicksService(f.cfg, f.paths, f.logger, opts...)
	require.NoError(t, err)
	return svc
}

func TestPicksService_Refresh(t *testing.T) {
	f := newFixture(t)
	f.writeReport(t, "ai_selected_stocks_20251219.txt", "old report")
	f.writeReport(t, "ai_selected_stocks_20251222.txt", testutil.SampleReport)

	hub := &mockBroadcaster{}
	hub.On("Broadcast", mock.Anything, events.MessageTypePicksUpdated, mock.MatchedBy(func(p events.PicksUpdated) bool {
		return p.TotalStocks == 3 && p.Date == "20251222" && p.UpdateTime == "2025-12-22T10:30:00.000Z" && p.RunID != ""
	})).Return(nil).Once()

	svc := f.service(t, WithBroadcaster(hub))
	result, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	hub.AssertExpectations(t)

	assert.Equal(t, "ai_selected_stocks_20251222.txt", result.Report)
	assert.Equal(t, "20251222", result.Date)
	assert.Equal(t, "2025-12-22T10:30:00.000Z", result.UpdateTime)
	assert.Equal(t, 3, result.TotalStocks)
	assert.Equal(t, 2, result.Stats.Matched[dataprocessing.MatcherPrimary])
	assert.Equal(t, 1, result.Stats.Matched[dataprocessing.MatcherFallback])
	assert.Equal(t, 1, result.Stats.Skipped)
	assert.Equal(t, "website_data/history/ai_stocks_20251222.json", result.HistoryFile)
	assert.False(t, result.Published)

	for _, path := range []string{f.paths.LatestJSON, f.paths.HistoryIndexJSON, f.paths.WeeklyJSON, f.paths.WeeklyHTML} {
		assert.FileExists(t, path)
	}

	latest, err := svc.Latest(context.Background())
	require.NoError(t, err)
	history, err := svc.Snapshot(context.Background(), "20251222")
	require.NoError(t, err)
	assert.Equal(t, latest, history)
	require.Len(t, latest.Stocks, 3)
	assert.Equal(t, "0652NP", latest.Stocks[0].Code)
	assert.Equal(t, "5099", latest.Stocks[2].Code)

	stored, err := dataprocessing.ReadSnapshot(f.paths.HistoryPath("ai_stocks_20251222.json"))
	require.NoError(t, err)
	assert.Equal(t, 3, stored.TotalStocks)

	assert.True(t, f.logs.ContainsMessage("Picks refreshed"))
}

func TestPicksService_RefreshErrors(t *testing.T) {
	t.Run("no report", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.service(t).Refresh(context.Background())
		assert.ErrorIs(t, err, files.ErrNoReportFound)
	})

	t.Run("no picks", func(t *testing.T) {
		f := newFixture(t)
		f.writeReport(t, "ai_selected_stocks_20251222.txt", "代碼 名稱\nnothing useful\n策略分佈:\n")

		hub := &mockBroadcaster{}
		_, err := f.service(t, WithBroadcaster(hub)).Refresh(context.Background())
		assert.ErrorIs(t, err, dataprocessing.ErrNoPicks)
		var appErr *apierrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apierrors.ErrTypeParsing, appErr.Type)
		assert.NoFileExists(t, f.paths.LatestJSON)
		hub.AssertNotCalled(t, "Broadcast", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("already running", func(t *testing.T) {
		f := newFixture(t)
		svc := f.service(t)
		svc.refreshMu.Lock()
		defer svc.refreshMu.Unlock()

		_, err := svc.Refresh(context.Background())
		assert.ErrorIs(t, err, ErrRefreshRunning)
	})
}

func TestPicksService_RefreshPrunesHistory(t *testing.T) {
	f := newFixture(t)
	f.cfg.History.DaysToKeep = 2
	for _, date := range []string{"20251217", "20251218", "20251219"} {
		testutil.WriteJSON(t, f.paths.HistoryPath("ai_stocks_"+date+".json"),
			testutil.SnapshotFor(date, testutil.SamplePicks()...))
	}
	f.writeReport(t, "ai_selected_stocks_20251222.txt", testutil.SampleReport)

	result, err := f.service(t).Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"ai_stocks_20251218.json", "ai_stocks_20251217.json"}, result.Pruned)

	index, err := f.service(t).History(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, index.Count)
	assert.Equal(t, "20251222", index.Latest.DateCode)
	assert.Equal(t, "./history/ai_stocks_20251222.json", index.Latest.URL)
}

func TestPicksService_RefreshPublishes(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		published bool
	}{
		{"pushed", nil, true},
		{"push failed", errors.New("remote rejected"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.writeReport(t, "ai_selected_stocks_20251222.txt", testutil.SampleReport)

			publisher := &mockPublisher{}
			publisher.On("Publish", mock.Anything, refreshTime).Return(tt.err).Once()

			result, err := f.service(t, WithPublisher(publisher)).Refresh(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.published, result.Published)
			publisher.AssertExpectations(t)
		})
	}
}

func TestPicksService_Snapshot(t *testing.T) {
	f := newFixture(t)
	testutil.WriteJSON(t, f.paths.HistoryPath("ai_stocks_20251219.json"),
		testutil.SnapshotFor("20251219", testutil.SamplePicks()...))
	svc := f.service(t)

	tests := []struct {
		name    string
		date    string
		wantErr error
	}{
		{"found", "20251219", nil},
		{"missing", "20250101", ErrSnapshotNotFound},
		{"short", "2025121", ErrInvalidDate},
		{"not numeric", "2025-1-19", ErrInvalidDate},
		{"impossible date", "20251399", ErrInvalidDate},
		{"path traversal", "../../x", ErrInvalidDate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snapshot, err := svc.Snapshot(context.Background(), tt.date)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 3, snapshot.TotalStocks)
		})
	}

	_, err := svc.Latest(context.Background())
	assert.ErrorIs(t, err, ErrSnapshotNotFound)
}

func TestPicksService_Export(t *testing.T) {
	f := newFixture(t)
	svc := f.service(t)

	var buf bytes.Buffer
	_, err := svc.Export(context.Background(), ExportCSV, &buf)
	assert.ErrorIs(t, err, ErrSnapshotNotFound)

	testutil.WriteJSON(t, f.paths.LatestJSON, testutil.SnapshotFor("20251222", testutil.SamplePicks()...))

	t.Run("csv", func(t *testing.T) {
		var buf bytes.Buffer
		date, err := svc.Export(context.Background(), ExportCSV, &buf)
		require.NoError(t, err)
		assert.Equal(t, "20251222", date)
		assert.True(t, strings.HasPrefix(buf.String(), "\xEF\xBB\xBFCode,Name"))
		assert.Contains(t, buf.String(), "0652NP")
	})

	t.Run("xlsx", func(t *testing.T) {
		var buf bytes.Buffer
		_, err := svc.Export(context.Background(), ExportXLSX, &buf)
		require.NoError(t, err)
		book, err := excelize.OpenReader(&buf)
		require.NoError(t, err)
		defer book.Close()
		rows, err := book.GetRows("Picks")
		require.NoError(t, err)
		assert.Len(t, rows, 4)
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		_, err := svc.Export(context.Background(), ExportJSON, &buf)
		require.NoError(t, err)
		snapshot, err := dataprocessing.DecodeSnapshot(buf.Bytes())
		require.NoError(t, err)
		assert.Equal(t, 3, snapshot.TotalStocks)
	})

	t.Run("unsupported", func(t *testing.T) {
		_, err := svc.Export(context.Background(), ExportFormat("pdf"), &bytes.Buffer{})
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})
}

func TestPicksService_GenerateWeekly(t *testing.T) {
	f := newFixture(t)
	svc := f.service(t)

	_, err := svc.GenerateWeekly(context.Background())
	assert.ErrorIs(t, err, dataprocessing.ErrNoWeeklyData)

	testutil.WriteJSON(t, f.paths.HistoryPath("ai_stocks_20251222.json"),
		testutil.SnapshotFor("20251222", testutil.SamplePicks()...))
	testutil.WriteJSON(t, f.paths.HistoryPath("ai_stocks_20251219.json"),
		testutil.SnapshotFor("20251219", testutil.Pick("7113", "強勢股", 4.5)))

	result, err := svc.GenerateWeekly(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "20251219", result.Summary.WeekStart)
	assert.Equal(t, "20251222", result.Summary.WeekEnd)
	assert.Equal(t, 2, result.Summary.TotalDays)
	assert.Equal(t, 4, result.Summary.TotalStocks)
	assert.Equal(t, "website_data/weekly_report.html", result.HTMLFile)

	page, err := os.ReadFile(f.paths.WeeklyHTML)
	require.NoError(t, err)
	assert.Contains(t, string(page), "7113")

	rendered, err := svc.WeeklyHTML(context.Background())
	require.NoError(t, err)
	assert.Contains(t, string(rendered), "AI選股週報")

	var summary domain.WeeklySummary
	data, err := os.ReadFile(f.paths.WeeklyJSON)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &summary))
	assert.Equal(t, 3, summary.StrategyBreakdown["強勢股"]+summary.StrategyBreakdown["量價齊升"])
}

func TestParseExportFormat(t *testing.T) {
	tests := []struct {
		in   string
		want ExportFormat
		ok   bool
	}{
		{"", ExportCSV, true},
		{"CSV", ExportCSV, true},
		{" xlsx ", ExportXLSX, true},
		{"json", ExportJSON, true},
		{"pdf", ExportFormat("pdf"), false},
	}
	for _, tt := range tests {
		got, ok := ParseExportFormat(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
	assert.Equal(t, "ai_stocks_20251222.xlsx", ExportXLSX.Filename("20251222"))
	assert.Contains(t, ExportCSV.ContentType(), "text/csv")
}
