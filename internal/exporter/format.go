package exporter

import (
	"strconv"
)

// formatFloat formats a float64 value with exactly 2 decimal places
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}

// formatInt formats an int64 value
func formatInt(i int64) string {
	return strconv.FormatInt(i, 10)
}

// formatOptionalInt formats a missing value as an empty cell.
func formatOptionalInt(i *int64) string {
	if i == nil {
		return ""
	}
	return formatInt(*i)
}

// formatOptionalFloat formats a missing value as an empty cell.
func formatOptionalFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return formatFloat(*f)
}
