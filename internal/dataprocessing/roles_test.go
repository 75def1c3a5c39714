package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyColumn(t *testing.T) {
	tests := []struct {
		text   string
		want   Role
		wantOK bool
	}{
		{text: "Total", want: RoleTotal, wantOK: true},
		{text: "11/1 Total Visits", want: RoleTotal, wantOK: true},
		{text: "Total over 20", want: RoleOverThreshold, wantOK: true},
		{text: "Visits Over 20 Min", want: RoleOverThreshold, wantOK: true},
		{text: "% Over 20", want: RolePercent, wantOK: true},
		{text: "Total %", want: RolePercent, wantOK: true},
		{text: "Percent 20+", want: RolePercent, wantOK: true},
		{text: "pct>20", want: RolePercent, wantOK: true},
		{text: "Percent", wantOK: false},
		{text: "Hours on 20+", want: RoleHours, wantOK: true},
		{text: "Over 30", wantOK: false},
		{text: "Week of 11/1", wantOK: false},
		{text: "   ", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			role, ok := ClassifyColumn(tt.text, "20")
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, role, "got %s", role)
			}
		})
	}
}

func TestClassifySegment_FirstColumnKeepsRole(t *testing.T) {
	g := NewGrid([][]any{
		{"Provider", "11/1 Total", "Total", "Over 20", "Over 20 (adj)", "%", "Hours"},
	})
	seg := Segment{Label: "Week of 11/1", Start: 1, End: 7}

	roles := ClassifySegment(g, 0, seg, "20")

	assert.Equal(t, RoleMap{
		RoleTotal:         1,
		RoleOverThreshold: 3,
		RolePercent:       5,
		RoleHours:         6,
	}, roles)
}

func TestClassifySegment_NoRoles(t *testing.T) {
	g := NewGrid([][]any{{"Provider", "Week of 11/1", "a", "b"}})

	roles := ClassifySegment(g, 0, Segment{Start: 1, End: 4}, "20")

	assert.Empty(t, roles)
}

func TestFormatThreshold(t *testing.T) {
	assert.Equal(t, "20", FormatThreshold(20))
	assert.Equal(t, "7.5", FormatThreshold(7.5))
}
