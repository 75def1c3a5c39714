package validation

import (
	"fmt"
	"log/slog"
	"sort"
	"strconv"

	"github.com/samber/lo"

	"providerpulse/internal/dataprocessing"
	"providerpulse/pkg/contracts/domain"
)

// HighVisitCount flags a weekly total likely to be a data entry error
const HighVisitCount = 10000

// DataValidator runs the advisory checks over parsed records. Findings never
// block ingestion; they are reported next to the dataset.
type DataValidator struct {
	threshold string
	logger    *slog.Logger
}

// NewDataValidator creates a validator whose messages name the threshold
func NewDataValidator(threshold float64, logger *slog.Logger) *DataValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &DataValidator{
		threshold: dataprocessing.FormatThreshold(threshold),
		logger:    logger.With(slog.String("component", "data_validator")),
	}
}

// Validate checks records and merges the parse-time coercion warnings.
// The result is ordered high, medium, low; ties keep discovery order.
func (v *DataValidator) Validate(records []domain.ProviderWeekRecord, coercions []domain.ValidationWarning) []domain.ValidationWarning {
	if len(records) == 0 {
		return []domain.ValidationWarning{{
			Type:     domain.WarningMissingData,
			Severity: domain.SeverityHigh,
			Message:  "No data available",
		}}
	}

	var warnings []domain.ValidationWarning
	for _, r := range records {
		warnings = append(warnings, v.checkRecord(r)...)
	}
	warnings = append(warnings, v.checkCoverage(records)...)
	warnings = append(warnings, coercions...)

	sort.SliceStable(warnings, func(i, j int) bool {
		return warnings[i].Severity.Rank() > warnings[j].Severity.Rank()
	})

	if len(warnings) > 0 {
		v.logger.Debug("advisory validation finished",
			slog.Int("records", len(records)),
			slog.Int("warnings", len(warnings)))
	}
	return warnings
}

func (v *DataValidator) checkRecord(r domain.ProviderWeekRecord) []domain.ValidationWarning {
	var out []domain.ValidationWarning
	add := func(t domain.WarningType, s domain.Severity, msg string) {
		out = append(out, domain.ValidationWarning{
			Type:     t,
			Severity: s,
			Message:  msg,
			Provider: r.Provider,
			Week:     r.Week,
		})
	}

	if r.TotalVisits == 0 && r.VisitsOverThreshold > 0 {
		add(domain.WarningInconsistency, domain.SeverityHigh,
			fmt.Sprintf("Provider %s has visits over %s minutes but zero total visits in week %s", r.Provider, v.threshold, r.Week))
	}
	if r.TotalVisits > 0 && r.VisitsOverThreshold > r.TotalVisits {
		add(domain.WarningInconsistency, domain.SeverityHigh,
			fmt.Sprintf("Provider %s has more visits over %s minutes than total visits in week %s", r.Provider, v.threshold, r.Week))
	}
	if r.PercentOverThreshold > 100 {
		add(domain.WarningSuspiciousValue, domain.SeverityHigh,
			fmt.Sprintf("Provider %s has percentage over 100%% in week %s", r.Provider, r.Week))
	}
	if r.TotalVisits > HighVisitCount {
		add(domain.WarningSuspiciousValue, domain.SeverityMedium,
			fmt.Sprintf("Provider %s has unusually high visit count (%s) in week %s", r.Provider, strconv.FormatFloat(r.TotalVisits, 'f', -1, 64), r.Week))
	}
	return out
}

// checkCoverage reports providers missing some, but fewer than half, of the
// dataset's weeks. Providers missing most weeks are assumed to have joined or
// left mid-period.
func (v *DataValidator) checkCoverage(records []domain.ProviderWeekRecord) []domain.ValidationWarning {
	allWeeks := lo.Uniq(lo.Map(records, func(r domain.ProviderWeekRecord, _ int) string { return r.Week }))
	byProvider := lo.GroupBy(records, func(r domain.ProviderWeekRecord) string { return r.Provider })
	providers := lo.Uniq(lo.Map(records, func(r domain.ProviderWeekRecord, _ int) string { return r.Provider }))

	var out []domain.ValidationWarning
	for _, provider := range providers {
		have := lo.Uniq(lo.Map(byProvider[provider], func(r domain.ProviderWeekRecord, _ int) string { return r.Week }))
		missing := len(allWeeks) - len(have)
		if missing > 0 && float64(missing) < float64(len(allWeeks))/2 {
			out = append(out, domain.ValidationWarning{
				Type:     domain.WarningMissingData,
				Severity: domain.SeverityLow,
				Message:  fmt.Sprintf("Provider %s is missing data for %d week(s)", provider, missing),
				Provider: provider,
			})
		}
	}
	return out
}
