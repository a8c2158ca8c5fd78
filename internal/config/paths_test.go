package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPaths(t *testing.T) {
	base := t.TempDir()

	paths, err := NewPaths(PathsConfig{BaseDir: base, DataDir: "website_data", LogsDir: "logs"})
	require.NoError(t, err)

	assert.Equal(t, base, paths.BaseDir)
	assert.Equal(t, base, paths.InputDir)
	assert.Equal(t, filepath.Join(base, "website_data"), paths.DataDir)
	assert.Equal(t, filepath.Join(base, "website_data", "history"), paths.HistoryDir)
	assert.Equal(t, filepath.Join(base, "website_data", "ai_stocks_latest.json"), paths.LatestJSON)
	assert.Equal(t, filepath.Join(base, "website_data", "history_index.json"), paths.HistoryIndexJSON)
	assert.Equal(t, filepath.Join(base, "website_data", "weekly_performance.json"), paths.WeeklyJSON)
	assert.Equal(t, filepath.Join(base, "website_data", "weekly_report.html"), paths.WeeklyHTML)
	assert.Equal(t, filepath.Join(base, "website_data", "history", "ai_stocks_20251222.json"),
		paths.HistoryPath("ai_stocks_20251222.json"))
}

func TestNewPaths_AbsoluteOverrides(t *testing.T) {
	base := t.TempDir()
	input := t.TempDir()

	paths, err := NewPaths(PathsConfig{BaseDir: base, InputDir: input})
	require.NoError(t, err)

	assert.Equal(t, input, paths.InputDir)
	assert.Equal(t, filepath.Join(base, DefaultDataDir), paths.DataDir)
	assert.Equal(t, filepath.Join(base, DefaultLogsDir), paths.LogsDir)
}

func TestNewPaths_WorkingDirectory(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)

	paths, err := NewPaths(PathsConfig{})
	require.NoError(t, err)
	assert.Equal(t, wd, paths.BaseDir)
}

func TestPaths_EnsureDirectories(t *testing.T) {
	paths, err := NewPaths(PathsConfig{BaseDir: t.TempDir()})
	require.NoError(t, err)

	require.NoError(t, paths.EnsureDirectories())
	assert.DirExists(t, paths.HistoryDir)
	assert.DirExists(t, paths.LogsDir)
}

func TestPaths_RelativeToBase(t *testing.T) {
	paths, err := NewPaths(PathsConfig{BaseDir: t.TempDir()})
	require.NoError(t, err)

	assert.Equal(t, "website_data/history/ai_stocks_20251222.json",
		paths.RelativeToBase(paths.HistoryPath("ai_stocks_20251222.json")))
}
