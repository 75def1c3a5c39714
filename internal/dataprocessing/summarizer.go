package dataprocessing

import (
	"math"

	"github.com/samber/lo"

	"providerpulse/internal/weeks"
	"providerpulse/pkg/contracts/domain"
)

const (
	// PreviousPeriodWeeks is how many weeks before a range start form the
	// comparison period for the trend.
	PreviousPeriodWeeks = 4

	trendDeadband = 0.5
)

// Summarize aggregates records and compares their mean percent with the
// previous period when one is given. Means and the trend value are
// rounded to one decimal.
func Summarize(records, previous []domain.ProviderWeekRecord) domain.SummaryStats {
	stats := domain.SummaryStats{Trend: domain.TrendNeutral}
	if len(records) == 0 {
		return stats
	}

	stats.TotalProviders = len(ProviderNames(records))
	stats.TotalVisits = lo.SumBy(records, func(r domain.ProviderWeekRecord) float64 {
		return r.TotalVisits
	})
	avg := meanPercent(records)
	stats.AvgPercentOver = round1(avg)

	if len(previous) > 0 {
		delta := avg - meanPercent(previous)
		stats.TrendValue = round1(delta)
		stats.PreviousPeriodSize = len(previous)
		switch {
		case delta > trendDeadband:
			stats.Trend = domain.TrendUp
		case delta < -trendDeadband:
			stats.Trend = domain.TrendDown
		}
	}
	return stats
}

// PreviousPeriod selects the records of the PreviousPeriodWeeks weeks that
// precede the start of the criteria's week range, restricted to the same
// providers. It returns nil when no range is set or fewer than
// PreviousPeriodWeeks weeks precede the start.
func PreviousPeriod(records []domain.ProviderWeekRecord, criteria domain.FilterCriteria) []domain.ProviderWeekRecord {
	if criteria.WeekRange == nil {
		return nil
	}

	order := weeks.NewOrder(WeekLabels(records))
	start := weeks.Canonicalize(criteria.WeekRange.From)
	if order.Index(start) < PreviousPeriodWeeks {
		return nil
	}

	prior := order.Before(start, PreviousPeriodWeeks)
	return FilterRecords(records, domain.FilterCriteria{
		Providers: criteria.Providers,
		WeekRange: &domain.WeekRange{From: prior[0], To: prior[len(prior)-1]},
	})
}

func meanPercent(records []domain.ProviderWeekRecord) float64 {
	if len(records) == 0 {
		return 0
	}
	return lo.SumBy(records, func(r domain.ProviderWeekRecord) float64 {
		return r.PercentOverThreshold
	}) / float64(len(records))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
