package dataprocessing

import (
	"strconv"
	"strings"
)

// CellKind identifies what a grid cell holds
type CellKind int

const (
	CellAbsent CellKind = iota
	CellText
	CellNumber
)

// Cell is one raw workbook value
type Cell struct {
	Kind   CellKind
	Text   string
	Number float64
}

// TextCell wraps a string value
func TextCell(s string) Cell {
	return Cell{Kind: CellText, Text: s}
}

// NumberCell wraps a numeric value
func NumberCell(f float64) Cell {
	return Cell{Kind: CellNumber, Number: f}
}

// String renders the cell as header text. Absent cells render empty.
func (c Cell) String() string {
	switch c.Kind {
	case CellText:
		return c.Text
	case CellNumber:
		return strconv.FormatFloat(c.Number, 'f', -1, 64)
	default:
		return ""
	}
}

// IsEmpty reports whether the cell is absent or holds only whitespace
func (c Cell) IsEmpty() bool {
	return strings.TrimSpace(c.String()) == ""
}

// Grid is a decoded sheet. Rows may have different lengths and any
// out-of-range access yields an absent cell.
type Grid [][]Cell

// NewGrid builds a grid from loosely typed values. Strings become text
// cells, Go numeric types become number cells and nil stays absent.
func NewGrid(rows [][]any) Grid {
	g := make(Grid, len(rows))
	for i, row := range rows {
		cells := make([]Cell, len(row))
		for j, v := range row {
			cells[j] = cellOf(v)
		}
		g[i] = cells
	}
	return g
}

func cellOf(v any) Cell {
	switch x := v.(type) {
	case nil:
		return Cell{}
	case Cell:
		return x
	case string:
		return TextCell(x)
	case float64:
		return NumberCell(x)
	case float32:
		return NumberCell(float64(x))
	case int:
		return NumberCell(float64(x))
	case int64:
		return NumberCell(float64(x))
	case int32:
		return NumberCell(float64(x))
	case uint:
		return NumberCell(float64(x))
	case uint64:
		return NumberCell(float64(x))
	case bool:
		if x {
			return NumberCell(1)
		}
		return NumberCell(0)
	default:
		return Cell{}
	}
}

// Rows returns the number of rows
func (g Grid) Rows() int {
	return len(g)
}

// Row returns row r, or nil when r is out of range
func (g Grid) Row(r int) []Cell {
	if r < 0 || r >= len(g) {
		return nil
	}
	return g[r]
}

// Cell returns the value at (r, c)
func (g Grid) Cell(r, c int) Cell {
	row := g.Row(r)
	if c < 0 || c >= len(row) {
		return Cell{}
	}
	return row[c]
}

// Width returns the length of row r
func (g Grid) Width(r int) int {
	return len(g.Row(r))
}
