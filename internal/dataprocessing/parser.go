package dataprocessing

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/samber/lo"

	"providerpulse/internal/weeks"
	"providerpulse/pkg/contracts/domain"
)

// DefaultThreshold is the visit length in minutes named by header keywords
// such as "Over 20" or "% Over 20".
const DefaultThreshold = 20.0

// ParseResult is everything one parse learned about a grid
type ParseResult struct {
	HeaderRow int                         `json:"headerRow"`
	Strategy  string                      `json:"strategy"`
	Segments  []Segment                   `json:"segments"`
	Weeks     []string                    `json:"weeks"`
	Providers []string                    `json:"providers"`
	Records   []domain.ProviderWeekRecord `json:"records"`
	Warnings  []domain.ValidationWarning  `json:"warnings,omitempty"`
}

// Empty reports whether the parse produced no records
func (r *ParseResult) Empty() bool {
	return len(r.Records) == 0
}

// Parser runs header location, the strategy cascade and row
// materialization over a grid. A Parser holds no per-parse state and may be
// shared between goroutines as long as grids are not.
type Parser struct {
	logger    *slog.Logger
	cascade   *Cascade
	threshold float64
}

// Option configures a Parser
type Option func(*Parser)

// WithLogger sets the logger used for parse diagnostics
func WithLogger(logger *slog.Logger) Option {
	return func(p *Parser) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithThreshold sets the threshold number matched in header keywords
func WithThreshold(threshold float64) Option {
	return func(p *Parser) {
		if threshold > 0 {
			p.threshold = threshold
		}
	}
}

// WithCascade replaces the default keyword/positional/fixed-width cascade
func WithCascade(c *Cascade) Option {
	return func(p *Parser) {
		if c != nil {
			p.cascade = c
		}
	}
}

// NewParser creates a parser with the default threshold and cascade
func NewParser(opts ...Option) *Parser {
	p := &Parser{
		logger:    slog.Default(),
		cascade:   DefaultCascade(),
		threshold: DefaultThreshold,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With(slog.String("component", "parser"))
	return p
}

// Threshold returns the configured threshold
func (p *Parser) Threshold() float64 {
	return p.threshold
}

// Analyze parses a decoded grid. It never fails: malformed input yields
// an empty record set.
func (p *Parser) Analyze(ctx context.Context, g Grid) *ParseResult {
	headerIdx, _ := LocateHeader(g)
	hc := HeaderContext{
		Grid:        g,
		HeaderIndex: headerIdx,
		Segments:    SegmentWeeks(g, headerIdx),
		Threshold:   FormatThreshold(p.threshold),
	}
	layout := p.cascade.Resolve(hc)

	p.logger.DebugContext(ctx, "header resolved",
		slog.Int("header_row", headerIdx),
		slog.Int("segments", len(hc.Segments)),
		slog.String("strategy", layout.Strategy),
		slog.Int("weeks", len(layout.Weeks)))

	records, warnings := Materialize(g, headerIdx, layout)

	result := &ParseResult{
		HeaderRow: headerIdx,
		Strategy:  layout.Strategy,
		Segments:  hc.Segments,
		Weeks: weeks.CanonicalOrder(lo.Map(records, func(r domain.ProviderWeekRecord, _ int) string {
			return r.Week
		})),
		Providers: lo.Uniq(lo.Map(records, func(r domain.ProviderWeekRecord, _ int) string {
			return r.Provider
		})),
		Records:  records,
		Warnings: warnings,
	}

	if result.Empty() {
		p.logger.WarnContext(ctx, "no records parsed",
			slog.Int("rows", g.Rows()),
			slog.Any("header", cellTexts(g.Row(headerIdx))))
	} else {
		p.logger.InfoContext(ctx, "grid parsed",
			slog.String("strategy", result.Strategy),
			slog.Int("records", len(result.Records)),
			slog.Int("weeks", len(result.Weeks)),
			slog.Int("providers", len(result.Providers)),
			slog.Int("coercion_warnings", len(result.Warnings)))
	}
	return result
}

// ParseReader decodes a workbook stream and analyzes its first sheet.
// Only decoding can fail; an unusable layout is an empty result.
func (p *Parser) ParseReader(ctx context.Context, r io.Reader) (*ParseResult, error) {
	g, err := ReadGrid(r)
	if err != nil {
		return nil, err
	}
	return p.Analyze(ctx, g), nil
}

// ParseFile decodes the workbook at path and analyzes its first sheet
func (p *Parser) ParseFile(ctx context.Context, path string) (*ParseResult, error) {
	g, err := OpenGrid(path)
	if err != nil {
		return nil, err
	}
	return p.Analyze(ctx, g), nil
}

// Analyze parses g with the default cascade and the given threshold
func Analyze(g Grid, threshold float64) *ParseResult {
	return NewParser(WithThreshold(threshold)).Analyze(context.Background(), g)
}

// Parse returns the records of g in row then week emission order
func Parse(g Grid, threshold float64) []domain.ProviderWeekRecord {
	return Analyze(g, threshold).Records
}

func cellTexts(row []Cell) []string {
	out := make([]string, len(row))
	for i, c := range row {
		out[i] = c.String()
	}
	return out
}

// String summarizes the result for CLI output
func (r *ParseResult) String() string {
	return fmt.Sprintf("strategy=%s records=%d weeks=%d providers=%d warnings=%d",
		r.Strategy, len(r.Records), len(r.Weeks), len(r.Providers), len(r.Warnings))
}
