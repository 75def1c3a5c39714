package dataprocessing

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ReadGrid decodes the first sheet of an XLSX workbook
func ReadGrid(r io.Reader) (Grid, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()
	return firstSheetGrid(f)
}

// OpenGrid decodes the first sheet of the workbook at path
func OpenGrid(path string) (Grid, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer f.Close()
	return firstSheetGrid(f)
}

func firstSheetGrid(f *excelize.File) (Grid, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	return sheetGrid(f, sheets[0])
}

// sheetGrid reads a sheet cell by cell. Numeric cells keep their raw value
// so number formats such as percentages or thousands separators do not
// leak into the grid. Date-formatted serials keep their displayed text so
// header dates still carry a month/day token, while fraction-formatted
// values keep their number.
func sheetGrid(f *excelize.File, sheet string) (Grid, error) {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}

	g := make(Grid, len(rows))
	for r, row := range rows {
		cells := make([]Cell, len(row))
		for c, text := range row {
			if text == "" {
				continue
			}
			cell, err := typedCell(f, sheet, r, c, text)
			if err != nil {
				return nil, err
			}
			cells[c] = cell
		}
		g[r] = cells
	}
	return g, nil
}

func typedCell(f *excelize.File, sheet string, r, c int, text string) (Cell, error) {
	axis, err := excelize.CoordinatesToCellName(c+1, r+1)
	if err != nil {
		return Cell{}, fmt.Errorf("cell coordinates (%d,%d): %w", r, c, err)
	}

	typ, err := f.GetCellType(sheet, axis)
	if err != nil {
		return Cell{}, fmt.Errorf("cell type %s: %w", axis, err)
	}

	switch typ {
	case excelize.CellTypeUnset, excelize.CellTypeNumber, excelize.CellTypeFormula:
		raw, err := f.GetCellValue(sheet, axis, excelize.Options{RawCellValue: true})
		if err != nil {
			return Cell{}, fmt.Errorf("cell value %s: %w", axis, err)
		}
		if n, perr := strconv.ParseFloat(strings.TrimSpace(raw), 64); perr == nil {
			// whole serials shown with a slash are dates; fractions stay numeric
			if strings.Contains(text, "/") && n == math.Trunc(n) {
				return TextCell(text), nil
			}
			return NumberCell(n), nil
		}
	}
	return TextCell(text), nil
}
