package dataprocessing

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"providerpulse/pkg/contracts/domain"
)

// reservedProvider reports whether a first-column value marks a header echo
// or summary row rather than a provider.
func reservedProvider(name string) bool {
	return name == "" || name == "Provider" || strings.EqualFold(name, "total")
}

// Materialize turns every data row below the header into records, one per
// resolved week with non-zero total or over-threshold visits. Cells that
// hold text with no number are read as zero and reported as coercion
// warnings.
func Materialize(g Grid, headerIdx int, layout Layout) ([]domain.ProviderWeekRecord, []domain.ValidationWarning) {
	var (
		records  []domain.ProviderWeekRecord
		warnings []domain.ValidationWarning
	)

	for r := headerIdx + 1; r < g.Rows(); r++ {
		provider := strings.TrimSpace(g.Cell(r, 0).String())
		if reservedProvider(provider) {
			continue
		}

		for _, wk := range layout.Weeks {
			read := func(role Role) (float64, bool) {
				c, mapped := wk.Roles.Column(role)
				if !mapped {
					return 0, false
				}
				v, ok := Coerce(g.Cell(r, c))
				if !ok {
					warnings = append(warnings, coercionWarning(g, r, c, provider, wk.Segment.Label))
				}
				return v, true
			}

			total, _ := read(RoleTotal)
			over, _ := read(RoleOverThreshold)
			percent, _ := read(RolePercent)
			hours, hasHours := read(RoleHours)

			if percent == 0 && total > 0 {
				percent = over / total * 100
			}
			if total <= 0 && over <= 0 {
				continue
			}

			rec := domain.ProviderWeekRecord{
				Provider:             provider,
				Week:                 wk.Segment.Label,
				TotalVisits:          total,
				VisitsOverThreshold:  over,
				PercentOverThreshold: percent,
			}
			if hasHours && hours > 0 {
				h := hours
				rec.HoursOverThreshold = &h
			}
			records = append(records, rec)
		}
	}
	return records, warnings
}

func coercionWarning(g Grid, r, c int, provider, week string) domain.ValidationWarning {
	ref, err := excelize.CoordinatesToCellName(c+1, r+1)
	if err != nil {
		ref = fmt.Sprintf("R%dC%d", r+1, c+1)
	}
	return domain.ValidationWarning{
		Type:     domain.WarningCoercion,
		Severity: domain.SeverityLow,
		Message:  fmt.Sprintf("cell %s: %q is not a number, read as 0", ref, g.Cell(r, c).Text),
		Provider: provider,
		Week:     week,
		Row:      r + 1,
		Column:   c + 1,
	}
}
