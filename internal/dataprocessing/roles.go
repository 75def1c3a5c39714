package dataprocessing

import (
	"strconv"
	"strings"
)

// Role is the meaning of a metric column within a week
type Role int

const (
	RoleTotal Role = iota
	RoleOverThreshold
	RolePercent
	RoleHours
)

// Roles lists every role in classification priority order
var Roles = []Role{RoleTotal, RoleOverThreshold, RolePercent, RoleHours}

func (r Role) String() string {
	switch r {
	case RoleTotal:
		return "total"
	case RoleOverThreshold:
		return "over_threshold"
	case RolePercent:
		return "percent"
	case RoleHours:
		return "hours"
	default:
		return "unknown"
	}
}

// RoleMap assigns at most one column to each role of a week
type RoleMap map[Role]int

// Column returns the column assigned to role
func (m RoleMap) Column(role Role) (int, bool) {
	c, ok := m[role]
	return c, ok
}

// assign sets role to column c unless the role is already filled
func (m RoleMap) assign(role Role, c int) bool {
	if _, filled := m[role]; filled {
		return false
	}
	m[role] = c
	return true
}

// FormatThreshold renders the threshold the way it appears in header text
func FormatThreshold(threshold float64) string {
	return strconv.FormatFloat(threshold, 'f', -1, 64)
}

// ClassifyColumn maps header text to a role by first-match priority:
// total, over threshold, percent, hours.
func ClassifyColumn(text, threshold string) (Role, bool) {
	lower := strings.ToLower(strings.TrimSpace(text))
	if lower == "" {
		return 0, false
	}

	hasPercentSign := strings.Contains(lower, "%")
	hasThreshold := threshold != "" && strings.Contains(lower, threshold)

	switch {
	case lower == "total" ||
		(strings.Contains(lower, "total") && !strings.Contains(lower, "over") && !hasPercentSign):
		return RoleTotal, true
	case strings.Contains(lower, "over") && hasThreshold && !hasPercentSign:
		return RoleOverThreshold, true
	case hasPercentSign ||
		((strings.Contains(lower, "percent") || strings.Contains(lower, "pct")) && hasThreshold):
		return RolePercent, true
	case strings.Contains(lower, "hour"):
		return RoleHours, true
	}
	return 0, false
}

// ClassifySegment classifies every column of seg by its header text.
// The first column to qualify for a role keeps it.
func ClassifySegment(g Grid, headerIdx int, seg Segment, threshold string) RoleMap {
	roles := make(RoleMap)
	for c := seg.Start; c < seg.End; c++ {
		role, ok := ClassifyColumn(headerText(g, headerIdx, c), threshold)
		if !ok {
			continue
		}
		roles.assign(role, c)
	}
	return roles
}
