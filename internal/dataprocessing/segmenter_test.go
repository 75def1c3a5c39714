package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSegmentWeeks(t *testing.T) {
	tests := []struct {
		name      string
		rows      [][]any
		headerIdx int
		want      []Segment
	}{
		{
			name:      "one token per metric column anchors first occurrence",
			rows:      [][]any{{"Provider", "11/1 Total", "11/1 Over 20", "11/1 %", "11/8 Total", "11/8 Over 20"}},
			headerIdx: 0,
			want: []Segment{
				{Label: "Week of 11/1", Start: 1, End: 4},
				{Label: "Week of 11/8", Start: 4, End: 6},
			},
		},
		{
			name:      "provider column never anchors",
			rows:      [][]any{{"Provider 1/1", "Total"}},
			headerIdx: 0,
			want:      nil,
		},
		{
			name: "blank header cells read the row above",
			rows: [][]any{
				{"", "12/27", "", "", "1/03", ""},
				{"Provider", "", "Total", "Over 20", "", "Total"},
			},
			headerIdx: 1,
			want: []Segment{
				{Label: "Week of 12/27", Start: 1, End: 4},
				{Label: "Week of 1/3", Start: 4, End: 6},
			},
		},
		{
			name: "dates above metric labels anchor weeks",
			rows: [][]any{
				{"", "11/1", "", "", "11/8", "", ""},
				{"Provider", "Total", "Over 20", "% Over 20", "Total", "Over 20", "% Over 20"},
			},
			headerIdx: 1,
			want: []Segment{
				{Label: "Week of 11/1", Start: 1, End: 4},
				{Label: "Week of 11/8", Start: 4, End: 7},
			},
		},
		{
			name: "header token wins over the row above",
			rows: [][]any{
				{"", "12/27", "1/3"},
				{"Provider", "1/10 Total", "Over 20"},
			},
			headerIdx: 1,
			want: []Segment{
				{Label: "Week of 1/10", Start: 1, End: 2},
				{Label: "Week of 1/3", Start: 2, End: 3},
			},
		},
		{
			name: "row above without tokens adds nothing",
			rows: [][]any{
				{"Clinic report", "Q4", ""},
				{"Provider", "Total", "Over 20"},
			},
			headerIdx: 1,
			want:      nil,
		},
		{
			name: "last segment extends to the wider row",
			rows: [][]any{
				{"", "", "", "", "", ""},
				{"Provider", "2/7"},
			},
			headerIdx: 1,
			want:      []Segment{{Label: "Week of 2/7", Start: 1, End: 6}},
		},
		{
			name:      "no tokens",
			rows:      [][]any{{"Provider", "Total", "Over 20"}},
			headerIdx: 0,
			want:      nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SegmentWeeks(NewGrid(tt.rows), tt.headerIdx))
		})
	}
}

func TestSegmentWeeks_OrderedAndNonOverlapping(t *testing.T) {
	g := NewGrid([][]any{{"Provider", "1/5", "x", "12/20", "y", "z", "11/29", "w"}})

	segs := SegmentWeeks(g, 0)

	assert.Len(t, segs, 3)
	for i := 1; i < len(segs); i++ {
		assert.Less(t, segs[i-1].Start, segs[i].Start)
		assert.Equal(t, segs[i-1].End, segs[i].Start)
	}
	assert.Equal(t, 8, segs[2].End)
	assert.Equal(t, []int{2, 3, 2}, []int{segs[0].Width(), segs[1].Width(), segs[2].Width()})
	assert.Equal(t, []string{"Week of 1/5", "Week of 12/20", "Week of 11/29"},
		[]string{segs[0].Label, segs[1].Label, segs[2].Label}, "segments follow column order")
}
