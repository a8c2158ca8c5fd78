package exporter

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"myxpicks/pkg/contracts/domain"
)

const picksSheet = "Picks"

// WriteXLSX writes the snapshot as a single-sheet workbook. Numeric columns
// are stored as numbers so they sort and sum in a spreadsheet.
func WriteXLSX(w io.Writer, snapshot domain.Snapshot) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", picksSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#E0E7FF"}},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	header := make([]any, len(pickHeaders))
	for i, h := range pickHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(picksSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header row: %w", err)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(pickHeaders))
	if err := f.SetCellStyle(picksSheet, "A1", lastCol+"1", headerStyle); err != nil {
		return fmt.Errorf("failed to style header row: %w", err)
	}

	for i, pick := range snapshot.Stocks {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := xlsxRow(pick)
		if err := f.SetSheetRow(picksSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.SetColWidth(picksSheet, "A", "A", 10); err != nil {
		return fmt.Errorf("failed to size columns: %w", err)
	}
	if err := f.SetColWidth(picksSheet, "B", "B", 24); err != nil {
		return fmt.Errorf("failed to size columns: %w", err)
	}
	if err := f.SetPanes(picksSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("failed to freeze header: %w", err)
	}

	if err := f.SetDocProps(&excelize.DocProperties{
		Title:   "AI picks " + snapshot.Date,
		Creator: "myxpicks",
	}); err != nil {
		return fmt.Errorf("failed to set properties: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func xlsxRow(p domain.StockPick) []any {
	var volume, rsi any
	if p.Volume != nil {
		volume = *p.Volume
	}
	if p.RSI != nil {
		rsi = *p.RSI
	}
	return []any{
		p.Code,
		p.Name,
		p.Price,
		p.Change,
		p.ChangePercent,
		volume,
		rsi,
		p.Strategy,
		p.AIScore,
		p.Timestamp,
	}
}
