package dataprocessing

import (
	"sort"

	"github.com/samber/lo"

	"providerpulse/internal/weeks"
	"providerpulse/pkg/contracts/domain"
)

// FilterRecords returns the records matching every criterion that is set.
// Week range bounds are canonicalized and compared in chronological order
// over the labels present plus the bounds themselves, so a range such as
// 12/6 to 1/17 crosses the year boundary correctly.
func FilterRecords(records []domain.ProviderWeekRecord, criteria domain.FilterCriteria) []domain.ProviderWeekRecord {
	var order *weeks.Order
	var from, to string
	if criteria.WeekRange != nil {
		from = weeks.Canonicalize(criteria.WeekRange.From)
		to = weeks.Canonicalize(criteria.WeekRange.To)
		order = weeks.NewOrder(append(WeekLabels(records), from, to))
	}

	providers := lo.SliceToMap(criteria.Providers, func(p string) (string, struct{}) {
		return p, struct{}{}
	})

	return lo.Filter(records, func(r domain.ProviderWeekRecord, _ int) bool {
		if len(providers) > 0 {
			if _, ok := providers[r.Provider]; !ok {
				return false
			}
		}
		if order != nil && !order.InRange(weeks.Canonicalize(r.Week), from, to) {
			return false
		}
		if criteria.MinPercent != nil && r.PercentOverThreshold < *criteria.MinPercent {
			return false
		}
		if criteria.MinTotalVisits != nil && r.TotalVisits < *criteria.MinTotalVisits {
			return false
		}
		return true
	})
}

// WeekLabels returns the distinct week labels of records in first-seen order
func WeekLabels(records []domain.ProviderWeekRecord) []string {
	return lo.Uniq(lo.Map(records, func(r domain.ProviderWeekRecord, _ int) string {
		return r.Week
	}))
}

// ProviderNames returns the distinct provider names sorted alphabetically
func ProviderNames(records []domain.ProviderWeekRecord) []string {
	names := lo.Uniq(lo.Map(records, func(r domain.ProviderWeekRecord, _ int) string {
		return r.Provider
	}))
	sort.Strings(names)
	return names
}

// SortRecords orders records chronologically by week, then by provider.
// The input slice is not modified.
func SortRecords(records []domain.ProviderWeekRecord) []domain.ProviderWeekRecord {
	order := weeks.NewOrder(WeekLabels(records))
	out := make([]domain.ProviderWeekRecord, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Week != out[j].Week {
			return order.Less(out[i].Week, out[j].Week)
		}
		return out[i].Provider < out[j].Provider
	})
	return out
}
