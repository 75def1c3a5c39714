package domain

// Trend direction of the mean percent against the previous period
type Trend string

const (
	TrendUp      Trend = "up"
	TrendDown    Trend = "down"
	TrendNeutral Trend = "neutral"
)

// SummaryStats aggregates a record set
type SummaryStats struct {
	TotalProviders     int     `json:"totalProviders"`
	TotalVisits        float64 `json:"totalVisits"`
	AvgPercentOver     float64 `json:"avgPercentOverThreshold"`
	Trend              Trend   `json:"trend"`
	TrendValue         float64 `json:"trendValue"`
	PreviousPeriodSize int     `json:"previousPeriodRecords,omitempty"`
}
