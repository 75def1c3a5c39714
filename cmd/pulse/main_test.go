package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"providerpulse/internal/services"
	"providerpulse/internal/shared/testutil"
	"providerpulse/pkg/contracts/domain"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := newRootCmd(&stdout, &stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRootCommands(t *testing.T) {
	root := newRootCmd(&bytes.Buffer{}, &bytes.Buffer{})
	names := make([]string, 0)
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"parse", "batch", "weeks"})
}

func TestParseCommand(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteWorkbook(t, dir, "weekly.xlsx", testutil.SampleWeeklyRows)

	t.Run("records", func(t *testing.T) {
		out, _, err := execute(t, "parse", path)
		require.NoError(t, err)

		var records []domain.ProviderWeekRecord
		require.NoError(t, json.Unmarshal([]byte(out), &records))
		require.NotEmpty(t, records)
		for _, r := range records {
			assert.Contains(t, []string{"Dr. Adams", "Dr. Baker"}, r.Provider)
		}
		assert.Equal(t, "Week of 12/30", records[0].Week)
		assert.Equal(t, 40.0, records[0].TotalVisits)
	})

	t.Run("full result", func(t *testing.T) {
		out, _, err := execute(t, "parse", "--result", "--pretty", path)
		require.NoError(t, err)
		assert.Contains(t, out, "\n  \"strategy\": \"keyword\"")
		assert.Contains(t, out, `"Week of 1/6"`)
	})

	t.Run("forced fixed width strategy", func(t *testing.T) {
		out, _, err := execute(t, "parse", "--result", "--strategy", "fixed_width", path)
		require.NoError(t, err)
		assert.Contains(t, out, `"strategy":"fixed_width"`)
	})
}

func TestParseCommandErrors(t *testing.T) {
	dir := t.TempDir()
	empty := testutil.WriteWorkbook(t, dir, "empty.xlsx", [][]any{{"nothing", "here"}})
	text := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(text, []byte("hello"), 0o644))
	corrupt := filepath.Join(dir, "corrupt.xlsx")
	require.NoError(t, os.WriteFile(corrupt, []byte("not a zip"), 0o644))

	tests := []struct {
		name    string
		args    []string
		wantErr error
		wantMsg string
	}{
		{name: "no data", args: []string{"parse", empty}, wantErr: services.ErrNoDataFound},
		{name: "corrupt workbook", args: []string{"parse", corrupt}, wantErr: services.ErrInvalidWorkbook},
		{name: "wrong extension", args: []string{"parse", text}, wantMsg: "notes.txt"},
		{name: "missing file", args: []string{"parse", filepath.Join(dir, "missing.xlsx")}, wantMsg: "missing.xlsx"},
		{name: "unknown strategy", args: []string{"parse", "--strategy", "magic", empty}, wantMsg: "unknown strategy"},
		{name: "no args", args: []string{"parse"}, wantMsg: "accepts 1 arg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Empty(t, out)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestBatchCommand(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteWorkbook(t, dir, "weekly_a.xlsx", testutil.SampleWeeklyRows)
	testutil.WriteWorkbook(t, dir, "weekly_b.xlsx", testutil.SampleWeeklyRows)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "~$weekly_a.xlsx"), []byte("lock"), 0o644))

	t.Run("all succeed", func(t *testing.T) {
		out, _, err := execute(t, "batch", "--concurrency", "2", dir)
		require.NoError(t, err)
		assert.Contains(t, out, "ok    weekly_a.xlsx")
		assert.Contains(t, out, "ok    weekly_b.xlsx")
		assert.Contains(t, out, "2 files,")
		assert.Contains(t, out, "0 failed")
		assert.NotContains(t, out, "~$")
	})

	t.Run("json output", func(t *testing.T) {
		out, _, err := execute(t, "batch", "--json", "--pattern", "weekly_a*", dir)
		require.NoError(t, err)

		var lines []map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(out), &lines))
		require.Len(t, lines, 1)
		assert.Equal(t, "weekly_a.xlsx", lines[0]["file"])
		assert.Equal(t, "keyword", lines[0]["strategy"])
	})

	t.Run("failure exits non-zero", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "weekly_c.xlsx"), []byte("not a zip"), 0o644))
		out, _, err := execute(t, "batch", dir)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "1 of 3 workbooks failed")
		assert.Contains(t, out, "FAIL  weekly_c.xlsx")
	})

	t.Run("missing directory", func(t *testing.T) {
		_, _, err := execute(t, "batch", filepath.Join(dir, "nope"))
		require.Error(t, err)
	})
}

func TestWeeksCommand(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []string
	}{
		{
			name: "year rollover",
			args: []string{"Week of 1/6", "12/30", "Week of 12/23"},
			want: []string{"Week of 12/23", "Week of 12/30", "Week of 1/6"},
		},
		{
			name: "undated last",
			args: []string{"Totals", "Week of 3/4", "Week of 2/26"},
			want: []string{"Week of 2/26", "Week of 3/4", "Totals"},
		},
		{
			name: "duplicates collapse",
			args: []string{"1/6", "Week of 1/6"},
			want: []string{"Week of 1/6"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := execute(t, append([]string{"weeks"}, tt.args...)...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, strings.Split(strings.TrimSpace(out), "\n"))
		})
	}
}
