package domain

import (
	"time"
)

// Dataset is one ingested workbook and the records parsed from it
type Dataset struct {
	ID         string               `json:"id"`
	Name       string               `json:"name"`
	Source     DatasetSource        `json:"source"`
	Threshold  float64              `json:"threshold"`
	Strategy   string               `json:"strategy"`
	Weeks      []string             `json:"weeks"`
	Providers  []string             `json:"providers"`
	Records    []ProviderWeekRecord `json:"-"`
	Warnings   []ValidationWarning  `json:"-"`
	IngestedAt time.Time            `json:"ingested_at"`
}

// DatasetSource describes how a dataset entered the system
type DatasetSource string

const (
	DatasetSourceUpload  DatasetSource = "upload"
	DatasetSourceDefault DatasetSource = "default"
	DatasetSourceBatch   DatasetSource = "batch"
)

// DatasetInfo is the listing view of a dataset
type DatasetInfo struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Source        DatasetSource `json:"source"`
	Strategy      string        `json:"strategy"`
	RecordCount   int           `json:"record_count"`
	WeekCount     int           `json:"week_count"`
	ProviderCount int           `json:"provider_count"`
	WarningCount  int           `json:"warning_count"`
	IngestedAt    time.Time     `json:"ingested_at"`
}

// Info returns the listing view of the dataset
func (d *Dataset) Info() DatasetInfo {
	return DatasetInfo{
		ID:            d.ID,
		Name:          d.Name,
		Source:        d.Source,
		Strategy:      d.Strategy,
		RecordCount:   len(d.Records),
		WeekCount:     len(d.Weeks),
		ProviderCount: len(d.Providers),
		WarningCount:  len(d.Warnings),
		IngestedAt:    d.IngestedAt,
	}
}
