package sheet

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrNoSheets is returned for a workbook that contains no worksheets.
var ErrNoSheets = errors.New("workbook has no sheets")

// Row is one data row keyed by header text.
type Row struct {
	Line  int // 1-based row number in the worksheet
	Cells map[string]Value
}

// Get returns the value under header, or an absent value.
func (r Row) Get(header string) Value {
	return r.Cells[header]
}

// Table is the decoded content of a worksheet.
type Table struct {
	Sheet   string
	Headers []string
	Rows    []Row
}

// ReadFirstSheet decodes an xlsx workbook and returns its first worksheet
// by position.
//
// The first row with any content is the header row; blank rows above it
// are skipped and line numbers stay those of the worksheet. Header text is
// trimmed. Columns are taken from the used range: a blank header becomes
// "__EMPTY", "__EMPTY_1" and so on, and a repeated header gets a numeric
// suffix ("email_1"), so no cell is dropped. Rows without any content are
// skipped.
func ReadFirstSheet(data []byte) (*Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoSheets
	}
	name := sheets[0]

	rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", name, err)
	}

	table := &Table{Sheet: name}
	headerIdx := firstNonBlankRow(rows)
	if headerIdx < 0 {
		return table, nil
	}

	first, last := usedColumns(rows[headerIdx:])
	columns := headerNames(rows[headerIdx], first, last)
	for col := first; col <= last; col++ {
		table.Headers = append(table.Headers, columns[col])
	}

	for i := headerIdx + 1; i < len(rows); i++ {
		line := i + 1
		row := Row{Line: line, Cells: make(map[string]Value, len(columns))}
		for col, text := range rows[i] {
			if col < first || text == "" {
				continue
			}
			v, err := decodeCell(f, name, col, line, text)
			if err != nil {
				return nil, err
			}
			row.Cells[columns[col]] = v
		}
		if len(row.Cells) == 0 {
			continue
		}
		table.Rows = append(table.Rows, row)
	}

	return table, nil
}

// firstNonBlankRow returns the index of the first row holding any
// non-whitespace cell, or -1.
func firstNonBlankRow(rows [][]string) int {
	for i, row := range rows {
		for _, cell := range row {
			if strings.TrimSpace(cell) != "" {
				return i
			}
		}
	}
	return -1
}

// usedColumns returns the first and last column index holding content.
func usedColumns(rows [][]string) (first, last int) {
	first, last = -1, -1
	for _, row := range rows {
		for col, cell := range row {
			if cell == "" {
				continue
			}
			if first < 0 || col < first {
				first = col
			}
			if col > last {
				last = col
			}
		}
	}
	return first, last
}

// headerNames maps column index to a unique header key for every column
// in [first, last].
func headerNames(header []string, first, last int) map[int]string {
	names := make(map[int]string, last-first+1)
	counts := make(map[string]int, last-first+1)
	for col := first; col <= last; col++ {
		base := ""
		if col < len(header) {
			base = strings.TrimSpace(header[col])
		}
		if base == "" {
			base = emptyHeader
		}

		key := base
		if n := counts[base]; n > 0 {
			for {
				key = fmt.Sprintf("%s_%d", base, n)
				n++
				if counts[key] == 0 {
					break
				}
			}
			counts[base] = n
		} else {
			counts[base] = 1
		}
		counts[key] = max(counts[key], 1)
		names[col] = key
	}
	return names
}

// emptyHeader names a column whose header cell is blank.
const emptyHeader = "__EMPTY"

// decodeCell classifies a raw cell string using the cell's stored type.
func decodeCell(f *excelize.File, sheetName string, col, line int, text string) (Value, error) {
	axis, err := excelize.CoordinatesToCellName(col+1, line)
	if err != nil {
		return Value{}, fmt.Errorf("cell coordinates: %w", err)
	}
	cellType, err := f.GetCellType(sheetName, axis)
	if err != nil {
		return Value{}, fmt.Errorf("cell %s type: %w", axis, err)
	}

	switch cellType {
	case excelize.CellTypeBool:
		return Bool(text == "1" || strings.EqualFold(text, "true")), nil
	case excelize.CellTypeNumber, excelize.CellTypeUnset:
		// Cells without an explicit type attribute are numeric in SpreadsheetML.
		return Number(text), nil
	default:
		return Text(text), nil
	}
}
