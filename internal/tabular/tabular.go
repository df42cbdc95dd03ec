// Package tabular turns a spreadsheet statement into a plain 2-D grid of
// cell values. It is a pure transform with no statement-specific logic.
package tabular

import (
	"bytes"

	"github.com/xuri/excelize/v2"

	"finsight/bankstmt/internal/parsererror"
)

// Grid is the first worksheet as rows of formatted cell values. Trailing
// empty cells may be absent; callers must bounds-check column access.
type Grid [][]string

// Cell returns the value at (row, col), or the empty string when the
// coordinate lies outside the ragged grid.
func (g Grid) Cell(row, col int) string {
	if row < 0 || row >= len(g) {
		return ""
	}
	if col < 0 || col >= len(g[row]) {
		return ""
	}
	return g[row][col]
}

// ExtractGrid reads the first sheet of a spreadsheet into a Grid.
func ExtractGrid(content []byte) (Grid, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, &parsererror.UnsupportedFormatError{
			ExpectedFormat: "XLSX",
			Msg:            err.Error(),
		}
	}
	defer func() {
		_ = f.Close()
	}()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &parsererror.UnsupportedFormatError{
			ExpectedFormat: "XLSX",
			Msg:            "workbook has no sheets",
		}
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, &parsererror.UnsupportedFormatError{
			ExpectedFormat: "XLSX",
			Msg:            err.Error(),
		}
	}

	return Grid(rows), nil
}
