package domain

// ProviderWeekRecord is one provider's visit metrics for one week.
// HoursOverThreshold is nil when the workbook carries no hours column
// for the week or the cell holds no positive value.
type ProviderWeekRecord struct {
	Provider             string   `json:"provider" validate:"required"`
	Week                 string   `json:"week" validate:"required"`
	TotalVisits          float64  `json:"totalVisits" validate:"min=0"`
	VisitsOverThreshold  float64  `json:"visitsOverThreshold" validate:"min=0"`
	PercentOverThreshold float64  `json:"percentOverThreshold"`
	HoursOverThreshold   *float64 `json:"hoursOverThreshold,omitempty"`
}

// HasHours reports whether an hours value was read for the record
func (r ProviderWeekRecord) HasHours() bool {
	return r.HoursOverThreshold != nil
}
