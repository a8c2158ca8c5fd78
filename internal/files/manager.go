package files

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"myxpicks/internal/config"
	"myxpicks/pkg/contracts/domain"
)

// Manager owns the data directory: atomic writes, history retention and the
// history index.
type Manager struct {
	paths  *config.Paths
	logger *slog.Logger
}

// NewManager creates a new file manager instance
func NewManager(paths *config.Paths, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		paths:  paths,
		logger: logger.With(slog.String("component", "files")),
	}
}

// Paths returns the resolved layout the manager works in.
func (m *Manager) Paths() *config.Paths {
	return m.paths
}

// FileExists checks if a file exists at the given path
func (m *Manager) FileExists(path string) bool {
	_, err := os.Stat(m.resolvePath(path))
	return err == nil
}

// WriteFile writes data through a temporary file in the same directory and
// renames it into place, so readers never see a partial document.
func (m *Manager) WriteFile(path string, data []byte) error {
	fullPath := m.resolvePath(path)

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(fullPath)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", fullPath, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync %s: %w", fullPath, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", fullPath, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("failed to set permissions on %s: %w", fullPath, err)
	}
	if err := os.Rename(tmpName, fullPath); err != nil {
		return fmt.Errorf("failed to move %s into place: %w", fullPath, err)
	}

	m.logger.Debug("File written",
		slog.String("path", fullPath),
		slog.Int("size_bytes", len(data)))
	return nil
}

// PruneHistory keeps the newest keep .json files of the history directory
// by name and deletes the rest. Files that cannot be removed are logged and
// skipped. It returns the names that were removed.
func (m *Manager) PruneHistory(keep int) ([]string, error) {
	entries, err := os.ReadDir(m.paths.HistoryDir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read history directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".json") {
			names = append(names, entry.Name())
		}
	}
	if len(names) <= keep {
		return nil, nil
	}

	sort.Sort(sort.Reverse(sort.StringSlice(names)))

	var removed []string
	for _, name := range names[keep:] {
		path := filepath.Join(m.paths.HistoryDir, name)
		if err := os.Remove(path); err != nil {
			m.logger.Warn("Failed to remove old history file",
				slog.String("file", name),
				slog.String("error", err.Error()))
			continue
		}
		removed = append(removed, name)
	}

	m.logger.Info("History pruned",
		slog.Int("kept", keep),
		slog.Int("removed", len(removed)))
	return removed, nil
}

// BuildHistoryIndex describes every dated snapshot in the history directory,
// newest first. URLs are baseURL joined with the data-relative path; an empty
// baseURL means "./".
func (m *Manager) BuildHistoryIndex(now time.Time, baseURL string) (domain.HistoryIndex, error) {
	snapshots, err := NewDiscovery(m.paths.BaseDir).FindHistorySnapshots(m.paths.HistoryDir)
	if err != nil {
		return domain.HistoryIndex{}, err
	}

	if baseURL == "" {
		baseURL = "./"
	} else if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	index := domain.HistoryIndex{
		GeneratedAt: now.UTC().Format(time.RFC3339),
		Count:       len(snapshots),
		Files:       make([]domain.HistoryEntry, 0, len(snapshots)),
	}
	for _, file := range snapshots {
		date, _ := HistoryDate(file.Name)
		rel := config.HistoryDirName + "/" + file.Name
		index.Files = append(index.Files, domain.HistoryEntry{
			Filename: file.Name,
			Path:     rel,
			Date:     date.Format("2006-01-02"),
			DateCode: date.Format(domain.DateCodeLayout),
			Size:     file.Size,
			URL:      baseURL + rel,
		})
	}
	if len(index.Files) > 0 {
		latest := index.Files[0]
		index.Latest = &latest
	}
	return index, nil
}

// resolvePath resolves a relative path against the data directory.
func (m *Manager) resolvePath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(m.paths.DataDir, path)
}
