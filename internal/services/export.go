package services

import "strings"

// ExportFormat names a download format for the latest snapshot.
type ExportFormat string

const (
	ExportCSV  ExportFormat = "csv"
	ExportXLSX ExportFormat = "xlsx"
	ExportJSON ExportFormat = "json"
)

// ParseExportFormat normalizes a format name. An empty name selects CSV.
func ParseExportFormat(name string) (ExportFormat, bool) {
	if name == "" {
		return ExportCSV, true
	}
	f := ExportFormat(strings.ToLower(strings.TrimSpace(name)))
	return f, f.Valid()
}

// Valid reports whether f is a supported format.
func (f ExportFormat) Valid() bool {
	switch f {
	case ExportCSV, ExportXLSX, ExportJSON:
		return true
	}
	return false
}

// ContentType returns the MIME type of the format.
func (f ExportFormat) ContentType() string {
	switch f {
	case ExportCSV:
		return "text/csv; charset=utf-8"
	case ExportXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/json; charset=utf-8"
	}
}

// Filename names the download for a snapshot date.
func (f ExportFormat) Filename(dateCode string) string {
	return "ai_stocks_" + dateCode + "." + string(f)
}
