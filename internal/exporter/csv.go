package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"myxpicks/pkg/contracts/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// pickHeaders are the column names of tabular pick exports.
var pickHeaders = []string{
	"Code", "Name", "Price", "Change", "ChangePercent",
	"Volume", "RSI", "Strategy", "AIScore", "Timestamp",
}

// pickRow converts a pick to a table row. Volume and RSI are empty for
// picks that came from the short report layout.
func pickRow(p domain.StockPick) []string {
	return []string{
		p.Code,
		p.Name,
		p.Price,
		p.Change,
		formatFloat(p.ChangePercent),
		formatOptionalInt(p.Volume),
		formatOptionalFloat(p.RSI),
		p.Strategy,
		strconv.Itoa(p.AIScore),
		p.Timestamp,
	}
}

// WriteCSV writes the snapshot's picks as CSV with a header row. The output
// starts with a UTF-8 BOM so spreadsheet tools detect the encoding of the
// Chinese names and strategy labels.
func WriteCSV(w io.Writer, snapshot domain.Snapshot) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return fmt.Errorf("failed to write BOM: %w", err)
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(pickHeaders); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	for i, pick := range snapshot.Stocks {
		if err := writer.Write(pickRow(pick)); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}
