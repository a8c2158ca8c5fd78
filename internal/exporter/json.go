package exporter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"

	"myxpicks/internal/config"
	"myxpicks/pkg/contracts/domain"
)

// FileWriter persists a complete document at path.
type FileWriter interface {
	WriteFile(path string, data []byte) error
}

// SnapshotWriter writes the JSON documents published in the data directory.
type SnapshotWriter struct {
	files  FileWriter
	paths  *config.Paths
	logger *slog.Logger
}

// NewSnapshotWriter creates a writer that stores documents through files.
func NewSnapshotWriter(files FileWriter, paths *config.Paths, logger *slog.Logger) *SnapshotWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &SnapshotWriter{
		files:  files,
		paths:  paths,
		logger: logger.With(slog.String("component", "exporter")),
	}
}

// MarshalIndent encodes v as two-space indented JSON with a trailing newline.
// HTML characters are not escaped.
func MarshalIndent(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (w *SnapshotWriter) write(path string, v any) error {
	data, err := MarshalIndent(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", filepath.Base(path), err)
	}
	if err := w.files.WriteFile(path, data); err != nil {
		return err
	}
	w.logger.Info("JSON document written",
		slog.String("file", filepath.Base(path)),
		slog.Int("size_bytes", len(data)))
	return nil
}

// WriteSnapshot writes the snapshot as the latest document and as its dated
// history copy. Both files carry identical content. It returns the history
// path.
func (w *SnapshotWriter) WriteSnapshot(snapshot domain.Snapshot) (string, error) {
	if err := w.write(w.paths.LatestJSON, snapshot); err != nil {
		return "", fmt.Errorf("failed to write latest snapshot: %w", err)
	}
	historyPath := w.paths.HistoryPath(domain.HistoryFilePrefix + snapshot.Date + ".json")
	if err := w.write(historyPath, snapshot); err != nil {
		return "", fmt.Errorf("failed to write history snapshot: %w", err)
	}
	return historyPath, nil
}

// WriteWeekly writes the weekly summary document.
func (w *SnapshotWriter) WriteWeekly(summary domain.WeeklySummary) error {
	if err := w.write(w.paths.WeeklyJSON, summary); err != nil {
		return fmt.Errorf("failed to write weekly summary: %w", err)
	}
	return nil
}

// WriteHistoryIndex writes the history index document.
func (w *SnapshotWriter) WriteHistoryIndex(index domain.HistoryIndex) error {
	if err := w.write(w.paths.HistoryIndexJSON, index); err != nil {
		return fmt.Errorf("failed to write history index: %w", err)
	}
	return nil
}
