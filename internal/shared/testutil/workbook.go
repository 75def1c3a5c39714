package testutil

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// SampleWeeklyRows is a small two-week export with one reserved total row.
var SampleWeeklyRows = [][]any{
	{"Provider", "Week of 12/30", "", "", "", "Week of 1/6", "", "", ""},
	{"Provider", "Total", "Over 20", "% Over 20", "Hours", "Total", "Over 20", "% Over 20", "Hours"},
	{"Dr. Adams", 40, 10, 25, 160, 50, 5, 10, 150},
	{"Dr. Baker", 20, 4, 20, 80, 0, 0, 0, 0},
	{"Total", 60, 14, 23, 240, 50, 5, 10, 150},
}

// WorkbookBytes renders rows into an in-memory xlsx with a single sheet.
func WorkbookBytes(t *testing.T, rows [][]any) []byte {
	t.Helper()

	f := newWorkbook(t, rows)
	defer f.Close()

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}

// WriteWorkbook saves rows as name inside dir and returns the full path.
func WriteWorkbook(t *testing.T, dir, name string, rows [][]any) string {
	t.Helper()

	f := newWorkbook(t, rows)
	defer f.Close()

	path := filepath.Join(dir, name)
	require.NoError(t, f.SaveAs(path))
	return path
}

func newWorkbook(t *testing.T, rows [][]any) *excelize.File {
	t.Helper()

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	return f
}
