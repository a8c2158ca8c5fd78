package domain

// WeeklySummary folds a week of history snapshots into digest statistics.
type WeeklySummary struct {
	WeekStart         string          `json:"weekStart"`
	WeekEnd           string          `json:"weekEnd"`
	TotalDays         int             `json:"totalDays"`
	TotalStocks       int             `json:"totalStocks"`
	StrategyBreakdown map[string]int  `json:"strategyBreakdown"`
	BestPerformers    []BestPerformer `json:"bestPerformers"`
}

// BestPerformer is the pick with the highest change on a given day.
type BestPerformer struct {
	Date   string `json:"date"`
	Code   string `json:"code"`
	Name   string `json:"name"`
	Return string `json:"return"`
}

// AveragePerDay returns the rounded mean number of picks per covered day.
func (w WeeklySummary) AveragePerDay() int {
	if w.TotalDays == 0 {
		return 0
	}
	return int(float64(w.TotalStocks)/float64(w.TotalDays) + 0.5)
}

// StrategyShare returns the percentage of picks carrying strategy.
func (w WeeklySummary) StrategyShare(strategy string) float64 {
	if w.TotalStocks == 0 {
		return 0
	}
	return float64(w.StrategyBreakdown[strategy]) / float64(w.TotalStocks) * 100
}

// HistoryEntry describes one dated snapshot file in the history directory.
type HistoryEntry struct {
	Filename string `json:"filename"`
	Path     string `json:"path"`
	Date     string `json:"date"`
	DateCode string `json:"dateCode"`
	Size     int64  `json:"size"`
	URL      string `json:"url"`
}

// HistoryIndex lists available history snapshots, newest first.
type HistoryIndex struct {
	GeneratedAt string         `json:"generatedAt"`
	Count       int            `json:"count"`
	Files       []HistoryEntry `json:"files"`
	Latest      *HistoryEntry  `json:"latest"`
}
