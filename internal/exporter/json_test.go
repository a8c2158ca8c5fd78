package exporter

import (
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"myxpicks/internal/config"
	"myxpicks/internal/files"
	"myxpicks/internal/shared/testutil"
	"myxpicks/pkg/contracts/domain"
)

func newTestWriter(t *testing.T) (*SnapshotWriter, *config.Paths) {
	t.Helper()
	paths, err := config.NewPaths(config.PathsConfig{BaseDir: t.TempDir()})
	require.NoError(t, err)
	logger, _ := testutil.NewTestLogger(t)
	return NewSnapshotWriter(files.NewManager(paths, logger), paths, logger), paths
}

func TestMarshalIndent(t *testing.T) {
	data, err := MarshalIndent(map[string]any{"name": "<大眾銀行> & co"})
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"name\": \"<大眾銀行> & co\"\n}\n", string(data))
}

func TestSnapshotWriter_WriteSnapshot(t *testing.T) {
	w, paths := newTestWriter(t)
	snapshot := testutil.SnapshotFor("20251222", testutil.SamplePicks()...)

	historyPath, err := w.WriteSnapshot(snapshot)
	require.NoError(t, err)
	assert.Equal(t, paths.HistoryPath("ai_stocks_20251222.json"), historyPath)

	latest, err := os.ReadFile(paths.LatestJSON)
	require.NoError(t, err)
	history, err := os.ReadFile(historyPath)
	require.NoError(t, err)
	assert.Equal(t, latest, history)
	assert.True(t, strings.HasPrefix(string(latest), "{\n  \"updateTime\": \"2025-12-22 18:30:00\",\n"))

	var decoded domain.Snapshot
	require.NoError(t, json.Unmarshal(latest, &decoded))
	assert.Equal(t, snapshot, decoded)
}

func TestSnapshotWriter_WriteWeeklyAndIndex(t *testing.T) {
	w, paths := newTestWriter(t)

	summary := domain.WeeklySummary{
		WeekStart:         "20251216",
		WeekEnd:           "20251222",
		TotalDays:         2,
		TotalStocks:       3,
		StrategyBreakdown: map[string]int{"強勢股": 3},
		BestPerformers:    []domain.BestPerformer{{Date: "20251222", Code: "0652NP", Name: "HSI-PWNP", Return: "+2.69%"}},
	}
	require.NoError(t, w.WriteWeekly(summary))
	require.NoError(t, w.WriteHistoryIndex(domain.HistoryIndex{GeneratedAt: "2025-12-22T18:31:00Z", Files: []domain.HistoryEntry{}}))

	data, err := os.ReadFile(paths.WeeklyJSON)
	require.NoError(t, err)
	var decoded domain.WeeklySummary
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, summary, decoded)

	index, err := os.ReadFile(paths.HistoryIndexJSON)
	require.NoError(t, err)
	assert.JSONEq(t, `{"generatedAt":"2025-12-22T18:31:00Z","count":0,"files":[],"latest":null}`, string(index))
}

type failingWriter struct{}

func (failingWriter) WriteFile(string, []byte) error { return errors.New("disk full") }

func TestSnapshotWriter_WriteError(t *testing.T) {
	paths, err := config.NewPaths(config.PathsConfig{BaseDir: t.TempDir()})
	require.NoError(t, err)
	w := NewSnapshotWriter(failingWriter{}, paths, nil)

	_, err = w.WriteSnapshot(testutil.SnapshotFor("20251222"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "latest snapshot")
	assert.Contains(t, err.Error(), "disk full")
}
