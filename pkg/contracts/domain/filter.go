package domain

// WeekRange is an inclusive range of week labels
type WeekRange struct {
	From string `json:"from" validate:"required"`
	To   string `json:"to" validate:"required"`
}

// FilterCriteria selects records from a dataset. Zero values disable a criterion.
type FilterCriteria struct {
	Providers      []string   `json:"providers,omitempty" validate:"omitempty,dive,required"`
	WeekRange      *WeekRange `json:"week_range,omitempty"`
	MinPercent     *float64   `json:"min_percent,omitempty" validate:"omitempty,gte=0,lte=100"`
	MinTotalVisits *float64   `json:"min_total_visits,omitempty" validate:"omitempty,gte=0"`
}

// IsEmpty reports whether no criterion is set
func (f FilterCriteria) IsEmpty() bool {
	return len(f.Providers) == 0 && f.WeekRange == nil && f.MinPercent == nil && f.MinTotalVisits == nil
}
