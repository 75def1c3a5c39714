package dataprocessing

import (
	"regexp"
	"strings"
)

// maxHeaderScan bounds how many leading rows may hold the header
const maxHeaderScan = 5

var bareInteger = regexp.MustCompile(`^\d+$`)

// LocateHeader picks the header row among the first rows of the grid.
// A row whose first cell mentions "provider" wins. Failing that, the first
// row after row 0 whose first cell is text other than a bare integer is used,
// and row 0 is the final fallback. An empty grid yields (0, nil).
func LocateHeader(g Grid) (int, []Cell) {
	limit := min(maxHeaderScan, g.Rows())

	for r := 0; r < limit; r++ {
		first := g.Cell(r, 0)
		if first.Kind == CellText && strings.Contains(strings.ToLower(first.Text), "provider") {
			return r, g.Row(r)
		}
	}

	for r := 1; r < limit; r++ {
		first := g.Cell(r, 0)
		if first.Kind != CellText {
			continue
		}
		text := strings.TrimSpace(first.Text)
		if text != "" && !bareInteger.MatchString(text) {
			return r, g.Row(r)
		}
	}

	return 0, g.Row(0)
}

// headerText returns the label text governing column c: the header cell,
// or the cell directly above it when the header cell is blank.
func headerText(g Grid, headerIdx, c int) string {
	cell := g.Cell(headerIdx, c)
	if cell.IsEmpty() && headerIdx > 0 {
		cell = g.Cell(headerIdx-1, c)
	}
	return strings.TrimSpace(cell.String())
}
