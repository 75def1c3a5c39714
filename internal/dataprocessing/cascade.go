package dataprocessing

import "fmt"

// Strategy names reported on a parse result
const (
	StrategyKeyword    = "keyword"
	StrategyPositional = "positional"
	StrategyFixedWidth = "fixed_width"
	StrategyNone       = "none"
)

const (
	fixedWidthColumns = 3
	maxSyntheticWeeks = 52
)

// WeekColumns is one resolved week with its role columns
type WeekColumns struct {
	Segment Segment `json:"segment"`
	Roles   RoleMap `json:"-"`
}

// Layout is the outcome of schema inference over a header
type Layout struct {
	Strategy string        `json:"strategy"`
	Weeks    []WeekColumns `json:"weeks"`
}

// Empty reports whether no week was resolved
func (l Layout) Empty() bool {
	return len(l.Weeks) == 0
}

// HeaderContext is the read-only input every strategy works from
type HeaderContext struct {
	Grid        Grid
	HeaderIndex int
	Segments    []Segment
	Threshold   string
}

// Strategy resolves week columns from a header. An empty result means the
// strategy found no usable mapping and the next one should be tried.
type Strategy interface {
	Name() string
	Resolve(hc HeaderContext) []WeekColumns
}

// KeywordStrategy classifies each detected segment by header keywords
type KeywordStrategy struct{}

func (KeywordStrategy) Name() string { return StrategyKeyword }

func (KeywordStrategy) Resolve(hc HeaderContext) []WeekColumns {
	var out []WeekColumns
	for _, seg := range hc.Segments {
		roles := ClassifySegment(hc.Grid, hc.HeaderIndex, seg, hc.Threshold)
		if len(roles) == 0 {
			continue
		}
		out = append(out, WeekColumns{Segment: seg, Roles: roles})
	}
	return out
}

// PositionalStrategy assumes Total, OverThreshold, Percent and Hours follow
// each anchor column in that order. Segments with fewer than two columns
// after the anchor are skipped and roles never reach past the segment end.
type PositionalStrategy struct{}

func (PositionalStrategy) Name() string { return StrategyPositional }

func (PositionalStrategy) Resolve(hc HeaderContext) []WeekColumns {
	var out []WeekColumns
	for _, seg := range hc.Segments {
		between := seg.Width() - 1
		if between < 2 {
			continue
		}
		roles := make(RoleMap, len(Roles))
		for i, role := range Roles[:min(between, len(Roles))] {
			roles[role] = seg.Anchor() + 1 + i
		}
		out = append(out, WeekColumns{Segment: seg, Roles: roles})
	}
	return out
}

// FixedWidthStrategy ignores detected segments and cuts the header into
// three column groups starting at column 1, labelled "Week 1", "Week 2"...
type FixedWidthStrategy struct{}

func (FixedWidthStrategy) Name() string { return StrategyFixedWidth }

func (FixedWidthStrategy) Resolve(hc HeaderContext) []WeekColumns {
	n := (hc.Grid.Width(hc.HeaderIndex) - 1) / fixedWidthColumns
	n = min(n, maxSyntheticWeeks)

	out := make([]WeekColumns, 0, max(n, 0))
	for i := 0; i < n; i++ {
		start := 1 + i*fixedWidthColumns
		out = append(out, WeekColumns{
			Segment: Segment{
				Label: fmt.Sprintf("Week %d", i+1),
				Start: start,
				End:   start + fixedWidthColumns,
			},
			Roles: RoleMap{
				RoleTotal:         start,
				RoleOverThreshold: start + 1,
				RolePercent:       start + 2,
			},
		})
	}
	return out
}

// Cascade tries strategies in order and keeps the first non-empty result
type Cascade struct {
	strategies []Strategy
}

// NewCascade builds a cascade over the given strategies
func NewCascade(strategies ...Strategy) *Cascade {
	return &Cascade{strategies: strategies}
}

// DefaultCascade is keyword, then positional, then fixed width
func DefaultCascade() *Cascade {
	return NewCascade(KeywordStrategy{}, PositionalStrategy{}, FixedWidthStrategy{})
}

// Resolve runs the cascade. When every strategy comes back empty the
// layout has strategy "none" and no weeks.
func (c *Cascade) Resolve(hc HeaderContext) Layout {
	for _, s := range c.strategies {
		if w := s.Resolve(hc); len(w) > 0 {
			return Layout{Strategy: s.Name(), Weeks: w}
		}
	}
	return Layout{Strategy: StrategyNone}
}
