package domain

import "time"

// History snapshot naming. DateCodeLayout is the compact YYYYMMDD form used
// in snapshot dates and file names.
const (
	HistoryFilePrefix = "ai_stocks_"
	DateCodeLayout    = "20060102"
)

// HistoryFilename names the history snapshot for date.
func HistoryFilename(date time.Time) string {
	return HistoryFilePrefix + date.Format(DateCodeLayout) + ".json"
}

// StockPick is one screened stock parsed from a daily picks report.
// Volume and RSI are only known when the report line used the full column layout.
type StockPick struct {
	Code          string   `json:"code" validate:"required,alphanum,min=1,max=8"`
	Name          string   `json:"name" validate:"required"`
	Price         string   `json:"price" validate:"required"`
	Change        string   `json:"change" validate:"required"`
	ChangePercent float64  `json:"changePercent"`
	Volume        *int64   `json:"volume,omitempty"`
	RSI           *float64 `json:"rsi,omitempty"`
	Strategy      string   `json:"strategy" validate:"required"`
	AIScore       int      `json:"aiScore" validate:"min=0,max=100"`
	Timestamp     string   `json:"timestamp" validate:"required"`
}

// Snapshot is the JSON document written for the latest picks and for each
// dated history copy. Date uses the compact YYYYMMDD form.
type Snapshot struct {
	UpdateTime  string      `json:"updateTime"`
	Date        string      `json:"date"`
	TotalStocks int         `json:"totalStocks"`
	Stocks      []StockPick `json:"stocks"`
}

// NewSnapshot builds a snapshot around picks, keeping TotalStocks consistent.
func NewSnapshot(updateTime, date string, picks []StockPick) Snapshot {
	if picks == nil {
		picks = []StockPick{}
	}
	return Snapshot{
		UpdateTime:  updateTime,
		Date:        date,
		TotalStocks: len(picks),
		Stocks:      picks,
	}
}
