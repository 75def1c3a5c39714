package domain

// WarningType classifies an advisory validation finding
type WarningType string

const (
	WarningMissingData     WarningType = "missing_data"
	WarningSuspiciousValue WarningType = "suspicious_value"
	WarningInconsistency   WarningType = "inconsistency"
	WarningOutlier         WarningType = "outlier"
	WarningCoercion        WarningType = "coercion"
)

// Severity of a validation warning
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Rank orders severities so that high sorts first
func (s Severity) Rank() int {
	switch s {
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// ValidationWarning is a non-blocking finding about ingested data
type ValidationWarning struct {
	Type     WarningType `json:"type"`
	Severity Severity    `json:"severity"`
	Message  string      `json:"message"`
	Provider string      `json:"provider,omitempty"`
	Week     string      `json:"week,omitempty"`
	Row      int         `json:"row,omitempty"`
	Column   int         `json:"column,omitempty"`
}
