package dataprocessing

import (
	"strings"

	"providerpulse/internal/weeks"
)

// Segment is the column range [Start, End) belonging to one week label
type Segment struct {
	Label string `json:"label"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// Anchor is the column that carried the week's date token
func (s Segment) Anchor() int {
	return s.Start
}

// Width is the number of columns in the segment
func (s Segment) Width() int {
	return s.End - s.Start
}

// gridWidth is the widest of the header row and the row above it
func gridWidth(g Grid, headerIdx int) int {
	width := g.Width(headerIdx)
	if headerIdx > 0 {
		width = max(width, g.Width(headerIdx-1))
	}
	return width
}

// SegmentWeeks scans the header for month/day tokens from column 1 onwards.
// A header cell without a token defers to the row above it, so dates placed
// over metric labels still anchor their weeks. When the same token
// appears twice the earlier column anchors the week and the later one is
// left as an ordinary column inside that segment.
func SegmentWeeks(g Grid, headerIdx int) []Segment {
	width := gridWidth(g, headerIdx)

	var segments []Segment
	seen := make(map[string]struct{})
	for c := 1; c < width; c++ {
		token, ok := weeks.Token(headerText(g, headerIdx, c))
		if !ok && headerIdx > 0 {
			token, ok = weeks.Token(strings.TrimSpace(g.Cell(headerIdx-1, c).String()))
		}
		if !ok {
			continue
		}
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}
		segments = append(segments, Segment{Label: weeks.Label(token), Start: c})
	}

	for i := range segments {
		if i+1 < len(segments) {
			segments[i].End = segments[i+1].Start
		} else {
			segments[i].End = width
		}
	}
	return segments
}
