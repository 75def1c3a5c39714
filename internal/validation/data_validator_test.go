package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"providerpulse/internal/shared/testutil"
	"providerpulse/pkg/contracts/domain"
)

func rec(provider, week string, total, over, pct float64) domain.ProviderWeekRecord {
	return domain.ProviderWeekRecord{
		Provider:             provider,
		Week:                 week,
		TotalVisits:          total,
		VisitsOverThreshold:  over,
		PercentOverThreshold: pct,
	}
}

func TestDataValidator_Empty(t *testing.T) {
	got := NewDataValidator(20, nil).Validate(nil, nil)

	require.Len(t, got, 1)
	assert.Equal(t, domain.WarningMissingData, got[0].Type)
	assert.Equal(t, domain.SeverityHigh, got[0].Severity)
	assert.Equal(t, "No data available", got[0].Message)
}

func TestDataValidator_RecordRules(t *testing.T) {
	tests := []struct {
		name         string
		record       domain.ProviderWeekRecord
		wantType     domain.WarningType
		wantSeverity domain.Severity
		wantMessage  string
	}{
		{
			name:         "over without total",
			record:       rec("Dr. A", "Week of 1/6", 0, 3, 0),
			wantType:     domain.WarningInconsistency,
			wantSeverity: domain.SeverityHigh,
			wantMessage:  "Provider Dr. A has visits over 20 minutes but zero total visits in week Week of 1/6",
		},
		{
			name:         "over exceeds total",
			record:       rec("Dr. A", "Week of 1/6", 5, 8, 100),
			wantType:     domain.WarningInconsistency,
			wantSeverity: domain.SeverityHigh,
			wantMessage:  "Provider Dr. A has more visits over 20 minutes than total visits in week Week of 1/6",
		},
		{
			name:         "percent above 100",
			record:       rec("Dr. A", "Week of 1/6", 10, 5, 140),
			wantType:     domain.WarningSuspiciousValue,
			wantSeverity: domain.SeverityHigh,
			wantMessage:  "Provider Dr. A has percentage over 100% in week Week of 1/6",
		},
		{
			name:         "very high total",
			record:       rec("Dr. A", "Week of 1/6", 12000, 10, 0.1),
			wantType:     domain.WarningSuspiciousValue,
			wantSeverity: domain.SeverityMedium,
			wantMessage:  "Provider Dr. A has unusually high visit count (12000) in week Week of 1/6",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewDataValidator(20, nil).Validate([]domain.ProviderWeekRecord{tt.record}, nil)

			require.Len(t, got, 1)
			assert.Equal(t, tt.wantType, got[0].Type)
			assert.Equal(t, tt.wantSeverity, got[0].Severity)
			assert.Equal(t, tt.wantMessage, got[0].Message)
			assert.Equal(t, "Dr. A", got[0].Provider)
			assert.Equal(t, "Week of 1/6", got[0].Week)
		})
	}
}

func TestDataValidator_CleanRecords(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	records := []domain.ProviderWeekRecord{
		rec("Dr. A", "Week of 1/6", 40, 10, 25),
		rec("Dr. A", "Week of 1/13", 30, 3, 10),
	}

	assert.Empty(t, NewDataValidator(20, logger).Validate(records, nil))
	assert.Zero(t, logs.Count())
}

func TestDataValidator_Coverage(t *testing.T) {
	weeks := []string{"Week of 1/6", "Week of 1/13", "Week of 1/20", "Week of 1/27"}

	var records []domain.ProviderWeekRecord
	for _, w := range weeks {
		records = append(records, rec("Dr. Full", w, 10, 1, 10))
	}
	// missing one of four weeks: reported
	for _, w := range weeks[:3] {
		records = append(records, rec("Dr. Gap", w, 10, 1, 10))
	}
	// missing three of four weeks: treated as a partial-period provider
	records = append(records, rec("Dr. New", weeks[3], 10, 1, 10))

	got := NewDataValidator(20, nil).Validate(records, nil)

	require.Len(t, got, 1)
	assert.Equal(t, domain.WarningMissingData, got[0].Type)
	assert.Equal(t, domain.SeverityLow, got[0].Severity)
	assert.Equal(t, "Dr. Gap", got[0].Provider)
	assert.Equal(t, "Provider Dr. Gap is missing data for 1 week(s)", got[0].Message)
}

func TestDataValidator_SortsBySeverityAndMergesCoercions(t *testing.T) {
	coercion := domain.ValidationWarning{
		Type:     domain.WarningCoercion,
		Severity: domain.SeverityLow,
		Message:  `cell C3 holds "n/a"; read as 0`,
		Row:      3,
		Column:   3,
	}
	records := []domain.ProviderWeekRecord{
		rec("Dr. A", "Week of 1/6", 20000, 10, 0.1),
		rec("Dr. B", "Week of 1/6", 0, 2, 0),
	}

	got := NewDataValidator(15, nil).Validate(records, []domain.ValidationWarning{coercion})

	require.Len(t, got, 3)
	assert.Equal(t, domain.SeverityHigh, got[0].Severity)
	assert.Contains(t, got[0].Message, "over 15 minutes")
	assert.Equal(t, domain.SeverityMedium, got[1].Severity)
	assert.Equal(t, coercion, got[2])
}
