package files

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"myxpicks/internal/config"
	"myxpicks/pkg/contracts/domain"
)

// ErrNoReportFound is returned when the input directory holds no picks report.
var ErrNoReportFound = errors.New("no picks report found")

// FileInfo represents information about a discovered file
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// Discovery finds report and history files relative to a base path.
type Discovery struct {
	basePath string
}

// NewDiscovery creates a new file discovery instance
func NewDiscovery(basePath string) *Discovery {
	return &Discovery{basePath: basePath}
}

func (d *Discovery) resolve(dir string) string {
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(d.basePath, dir)
}

// list returns the regular files in dir accepted by keep, sorted by name
// descending. The file names carry their date, so this is newest first.
func (d *Discovery) list(dir string, keep func(name string) bool) ([]FileInfo, error) {
	fullPath := d.resolve(dir)

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", fullPath, err)
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() || !keep(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{
			Path:    filepath.Join(fullPath, entry.Name()),
			Name:    entry.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Name > files[j].Name
	})
	return files, nil
}

// IsReportFile reports whether name looks like a screener picks report.
func IsReportFile(name string) bool {
	return strings.HasPrefix(name, config.ReportFilePrefix) && strings.HasSuffix(name, config.ReportFileSuffix)
}

// FindReportFiles lists picks reports in dir, newest name first.
func (d *Discovery) FindReportFiles(dir string) ([]FileInfo, error) {
	return d.list(dir, IsReportFile)
}

// LatestReport returns the report whose name sorts last.
func (d *Discovery) LatestReport(dir string) (FileInfo, error) {
	reports, err := d.FindReportFiles(dir)
	if err != nil {
		return FileInfo{}, err
	}
	if len(reports) == 0 {
		return FileInfo{}, fmt.Errorf("%w in %s", ErrNoReportFound, d.resolve(dir))
	}
	return reports[0], nil
}

// HistoryDate extracts the date from a history snapshot file name.
func HistoryDate(name string) (time.Time, bool) {
	if !strings.HasPrefix(name, domain.HistoryFilePrefix) || !strings.HasSuffix(name, ".json") {
		return time.Time{}, false
	}
	code := strings.TrimSuffix(strings.TrimPrefix(name, domain.HistoryFilePrefix), ".json")
	date, err := time.Parse(domain.DateCodeLayout, code)
	if err != nil {
		return time.Time{}, false
	}
	return date, true
}

// FindHistorySnapshots lists dated history snapshots in dir, newest first.
// A missing directory yields no snapshots.
func (d *Discovery) FindHistorySnapshots(dir string) ([]FileInfo, error) {
	files, err := d.list(dir, func(name string) bool {
		_, ok := HistoryDate(name)
		return ok
	})
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	return files, err
}
