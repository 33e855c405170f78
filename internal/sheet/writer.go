package sheet

import (
	"bytes"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// defaultSheet is the sheet excelize creates in every new file.
const defaultSheet = "Sheet1"

// fixedTimestamp keeps document properties identical across writes.
const fixedTimestamp = "2024-01-01T00:00:00Z"

// Workbook describes a single-sheet workbook to be written.
type Workbook struct {
	Sheet   string
	Headers []string
	Rows    [][]any

	// ColumnWidths, if set, gives a width per header column.
	ColumnWidths []float64

	// Creator is recorded in the document properties.
	Creator string
}

// Write encodes wb as xlsx into w. The header row is bold.
func Write(w io.Writer, wb Workbook) error {
	if wb.Sheet == "" {
		return fmt.Errorf("sheet name is required")
	}
	if len(wb.Headers) == 0 {
		return fmt.Errorf("at least one header is required")
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(defaultSheet, wb.Sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	if err := f.SetDocProps(&excelize.DocProperties{
		Creator:        wb.Creator,
		LastModifiedBy: wb.Creator,
		Created:        fixedTimestamp,
		Modified:       fixedTimestamp,
		Title:          wb.Sheet,
	}); err != nil {
		return fmt.Errorf("set doc props: %w", err)
	}

	header := make([]any, len(wb.Headers))
	for i, h := range wb.Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(wb.Sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(wb.Headers), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(wb.Sheet, "A1", last, bold); err != nil {
		return fmt.Errorf("apply header style: %w", err)
	}

	for i, row := range wb.Rows {
		axis, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		cells := row
		if err := f.SetSheetRow(wb.Sheet, axis, &cells); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	for i, width := range wb.ColumnWidths {
		if i >= len(wb.Headers) || width <= 0 {
			continue
		}
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(wb.Sheet, col, col, width); err != nil {
			return fmt.Errorf("column width %s: %w", col, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("encode workbook: %w", err)
	}
	return nil
}

// Bytes encodes wb and returns the xlsx content.
func Bytes(wb Workbook) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, wb); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
