package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains every resolved location the tools read or write.
type Paths struct {
	BaseDir    string
	InputDir   string
	DataDir    string
	HistoryDir string
	LogsDir    string

	LatestJSON       string
	HistoryIndexJSON string
	WeeklyJSON       string
	WeeklyHTML       string
}

// ResolvePaths resolves the configured paths to absolute locations.
func (c *Config) ResolvePaths() (*Paths, error) {
	return NewPaths(c.Paths)
}

// NewPaths resolves cfg. An empty BaseDir means the working directory and an
// empty InputDir means BaseDir.
func NewPaths(cfg PathsConfig) (*Paths, error) {
	base := cfg.BaseDir
	if base == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		base = wd
	}
	base, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory %s: %w", cfg.BaseDir, err)
	}

	resolve := func(p, fallback string) string {
		if p == "" {
			p = fallback
		}
		if filepath.IsAbs(p) {
			return filepath.Clean(p)
		}
		return filepath.Join(base, p)
	}

	dataDir := resolve(cfg.DataDir, DefaultDataDir)
	return &Paths{
		BaseDir:          base,
		InputDir:         resolve(cfg.InputDir, "."),
		DataDir:          dataDir,
		HistoryDir:       filepath.Join(dataDir, HistoryDirName),
		LogsDir:          resolve(cfg.LogsDir, DefaultLogsDir),
		LatestJSON:       filepath.Join(dataDir, LatestFileName),
		HistoryIndexJSON: filepath.Join(dataDir, HistoryIndexFileName),
		WeeklyJSON:       filepath.Join(dataDir, WeeklyJSONFileName),
		WeeklyHTML:       filepath.Join(dataDir, WeeklyHTMLFileName),
	}, nil
}

// EnsureDirectories creates the data, history and logs directories.
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.DataDir, p.HistoryDir, p.LogsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// HistoryPath returns the history snapshot path for a file name.
func (p *Paths) HistoryPath(filename string) string {
	return filepath.Join(p.HistoryDir, filename)
}

// RelativeToBase returns path relative to BaseDir with forward slashes, the
// form used in history index entries and git commands.
func (p *Paths) RelativeToBase(path string) string {
	rel, err := filepath.Rel(p.BaseDir, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// LogPathResolution logs the resolved layout at debug level.
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("Path resolution summary",
		slog.Group("directories",
			slog.String("base", p.BaseDir),
			slog.String("input", p.InputDir),
			slog.String("data", p.DataDir),
			slog.String("history", p.HistoryDir),
			slog.String("logs", p.LogsDir),
		),
		slog.Group("files",
			slog.String("latest", p.LatestJSON),
			slog.String("history_index", p.HistoryIndexJSON),
			slog.String("weekly_json", p.WeeklyJSON),
			slog.String("weekly_html", p.WeeklyHTML),
		))
}
