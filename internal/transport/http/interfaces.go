package http

import (
	"context"
	"io"

	"providerpulse/internal/services"
	"providerpulse/pkg/contracts/domain"
)

// DatasetServiceInterface defines the dataset operations the handlers use
type DatasetServiceInterface interface {
	Ingest(ctx context.Context, name string, r io.Reader) (*domain.Dataset, error)
	List(ctx context.Context) []domain.DatasetInfo
	Get(ctx context.Context, id string) (*domain.Dataset, error)
	Delete(ctx context.Context, id string) error
	Records(ctx context.Context, id string, criteria domain.FilterCriteria) ([]domain.ProviderWeekRecord, error)
	Providers(ctx context.Context, id string) ([]string, error)
	Weeks(ctx context.Context, id string) ([]string, error)
	Summary(ctx context.Context, id string, criteria domain.FilterCriteria) (domain.SummaryStats, error)
	Warnings(ctx context.Context, id string) ([]domain.ValidationWarning, error)
}

var _ DatasetServiceInterface = (*services.DatasetService)(nil)
