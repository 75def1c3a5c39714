package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"providerpulse/internal/config"
	"providerpulse/internal/dataprocessing"
	apierrors "providerpulse/internal/errors"
	"providerpulse/internal/files"
	"providerpulse/internal/infrastructure"
	"providerpulse/internal/validation"
	"providerpulse/internal/weeks"
	"providerpulse/pkg/contracts/domain"
	"providerpulse/pkg/contracts/events"
)

// EventPublisher receives dataset lifecycle events. *websocket.Hub
// satisfies it.
type EventPublisher interface {
	Publish(ctx context.Context, t events.MessageType, data interface{})
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, events.MessageType, interface{}) {}

// BatchResult is the outcome of ingesting one file of a directory
type BatchResult struct {
	File      string `json:"file"`
	DatasetID string `json:"dataset_id,omitempty"`
	Strategy  string `json:"strategy,omitempty"`
	Records   int    `json:"records"`
	Size      int64  `json:"size"`
	Err       error  `json:"-"`
}

// DatasetService parses workbooks into datasets and answers queries over
// them. Datasets live in memory only.
type DatasetService struct {
	mu        sync.RWMutex
	datasets  map[string]*domain.Dataset
	order     []string
	defaultID string

	cfg       config.IngestConfig
	parser    *dataprocessing.Parser
	files     *validation.FileValidator
	checker   *validation.DataValidator
	discovery *files.Discovery
	publisher EventPublisher
	metrics   *infrastructure.BusinessMetrics
	tracer    trace.Tracer
	logger    *slog.Logger
}

// NewDatasetService creates a dataset service. publisher and metrics may
// be nil.
func NewDatasetService(cfg config.IngestConfig, publisher EventPublisher, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *DatasetService {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	if publisher == nil {
		publisher = noopPublisher{}
	}
	if cfg.BatchConcurrency < 1 {
		cfg.BatchConcurrency = 1
	}

	return &DatasetService{
		datasets: make(map[string]*domain.Dataset),
		cfg:      cfg,
		parser: dataprocessing.NewParser(
			dataprocessing.WithLogger(logger),
			dataprocessing.WithThreshold(cfg.Threshold),
		),
		files:     validation.NewFileValidator(logger),
		checker:   validation.NewDataValidator(cfg.Threshold, logger),
		discovery: files.NewDiscovery(""),
		publisher: publisher,
		metrics:   metrics,
		tracer:    otel.Tracer("providerpulse/services"),
		logger:    logger.With(slog.String("component", "dataset_service")),
	}
}

// Ingest parses an uploaded workbook and stores it as a new dataset
func (s *DatasetService) Ingest(ctx context.Context, name string, r io.Reader) (*domain.Dataset, error) {
	if err := s.files.ValidateWorkbookName(name); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWorkbook, err)
	}

	data, err := io.ReadAll(io.LimitReader(r, s.cfg.MaxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		return nil, fmt.Errorf("%w: %d bytes", ErrWorkbookTooLarge, s.cfg.MaxUploadBytes)
	}

	ds, _, err := s.ingest(ctx, name, domain.DatasetSourceUpload, func(ctx context.Context) (*dataprocessing.ParseResult, error) {
		return s.parser.ParseReader(ctx, bytes.NewReader(data))
	})
	if err != nil {
		return nil, err
	}
	s.publisher.Publish(ctx, events.MessageTypeDatasetLoaded, events.DatasetEvent{Dataset: ds.Info()})
	return ds, nil
}

// IngestFile parses a workbook on disk and stores it as a dataset
func (s *DatasetService) IngestFile(ctx context.Context, path string, source domain.DatasetSource) (*domain.Dataset, error) {
	ds, _, err := s.ingestPath(ctx, path, source)
	if err != nil {
		return nil, err
	}
	s.publisher.Publish(ctx, events.MessageTypeDatasetLoaded, events.DatasetEvent{Dataset: ds.Info()})
	return ds, nil
}

func (s *DatasetService) ingestPath(ctx context.Context, path string, source domain.DatasetSource) (*domain.Dataset, string, error) {
	if err := s.files.ValidateWorkbook(path); err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrInvalidWorkbook, err)
	}
	return s.ingest(ctx, filepath.Base(path), source, func(ctx context.Context) (*dataprocessing.ParseResult, error) {
		return s.parser.ParseFile(ctx, path)
	})
}

// ingest runs parse under a span, records metrics and stores the result.
// A default-source dataset replaces the previous default; the replaced id
// is returned.
func (s *DatasetService) ingest(ctx context.Context, name string, source domain.DatasetSource,
	parse func(context.Context) (*dataprocessing.ParseResult, error)) (*domain.Dataset, string, error) {

	ctx, span := s.tracer.Start(ctx, "dataset.ingest", trace.WithAttributes(
		attribute.String("dataset.name", name),
		attribute.String("dataset.source", string(source)),
	))
	defer span.End()

	start := time.Now()
	result, err := parse(ctx)
	if err != nil {
		perr := apierrors.NewParsingError("failed to decode workbook", fmt.Errorf("%w: %v", ErrInvalidWorkbook, err)).
			WithContext("file", name)
		s.reject(ctx, name, source, "decode", perr)
		return nil, "", perr
	}

	if result.Empty() {
		s.reject(ctx, name, source, "no_data", ErrNoDataFound)
		return nil, "", ErrNoDataFound
	}

	ds := &domain.Dataset{
		ID:         uuid.New().String(),
		Name:       name,
		Source:     source,
		Threshold:  s.parser.Threshold(),
		Strategy:   result.Strategy,
		Weeks:      result.Weeks,
		Providers:  dataprocessing.ProviderNames(result.Records),
		Records:    result.Records,
		Warnings:   s.checker.Validate(result.Records, result.Warnings),
		IngestedAt: time.Now().UTC(),
	}

	replaced := s.store(ds)

	s.metrics.RecordParse(ctx, infrastructure.ParseOutcome{
		Source:    string(source),
		Strategy:  result.Strategy,
		Records:   len(result.Records),
		Coercions: len(result.Warnings),
		Duration:  time.Since(start),
	})
	if replaced == "" {
		s.metrics.RecordDatasetDelta(ctx, 1)
	}

	span.SetAttributes(
		attribute.String("dataset.id", ds.ID),
		attribute.String("parse.strategy", ds.Strategy),
		attribute.Int("parse.records", len(ds.Records)),
	)

	s.logger.InfoContext(ctx, "dataset ingested",
		slog.String("dataset_id", ds.ID),
		slog.String("name", name),
		slog.String("source", string(source)),
		slog.String("strategy", ds.Strategy),
		slog.Int("records", len(ds.Records)),
		slog.Int("weeks", len(ds.Weeks)),
		slog.Int("providers", len(ds.Providers)),
		slog.Int("warnings", len(ds.Warnings)),
		slog.Duration("duration", time.Since(start)))

	return ds, replaced, nil
}

func (s *DatasetService) reject(ctx context.Context, name string, source domain.DatasetSource, reason string, err error) {
	infrastructure.RecordError(ctx, err)
	s.metrics.RecordParse(ctx, infrastructure.ParseOutcome{
		Source:        string(source),
		FailureReason: reason,
	})
	s.logger.WarnContext(ctx, "workbook rejected",
		slog.String("name", name),
		slog.String("reason", reason),
		slog.String("error", err.Error()))
	s.publisher.Publish(ctx, events.MessageTypeDatasetRejected, events.DatasetRejectedEvent{
		Name:   name,
		Reason: err.Error(),
	})
}

func (s *DatasetService) store(ds *domain.Dataset) (replaced string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ds.Source == domain.DatasetSourceDefault && s.defaultID != "" {
		replaced = s.defaultID
		delete(s.datasets, replaced)
		s.order = lo.Without(s.order, replaced)
	}
	if ds.Source == domain.DatasetSourceDefault {
		s.defaultID = ds.ID
	}

	s.datasets[ds.ID] = ds
	s.order = append(s.order, ds.ID)
	return replaced
}

// List returns every dataset in ingestion order
func (s *DatasetService) List(ctx context.Context) []domain.DatasetInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return lo.Map(s.order, func(id string, _ int) domain.DatasetInfo {
		return s.datasets[id].Info()
	})
}

// Get returns a dataset by id
func (s *DatasetService) Get(ctx context.Context, id string) (*domain.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ds, ok := s.datasets[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDatasetNotFound, id)
	}
	return ds, nil
}

// Delete removes a dataset
func (s *DatasetService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	ds, ok := s.datasets[id]
	if ok {
		delete(s.datasets, id)
		s.order = lo.Without(s.order, id)
		if s.defaultID == id {
			s.defaultID = ""
		}
	}
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrDatasetNotFound, id)
	}

	s.metrics.RecordDatasetDelta(ctx, -1)
	s.logger.InfoContext(ctx, "dataset deleted", slog.String("dataset_id", id))
	s.publisher.Publish(ctx, events.MessageTypeDatasetDeleted, events.DatasetEvent{Dataset: ds.Info()})
	return nil
}

// Count returns the number of stored datasets
func (s *DatasetService) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.datasets)
}

// Records returns the dataset's records matching criteria, sorted by
// week then provider
func (s *DatasetService) Records(ctx context.Context, id string, criteria domain.FilterCriteria) ([]domain.ProviderWeekRecord, error) {
	ds, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkWeekRange(ds, criteria.WeekRange); err != nil {
		return nil, err
	}
	return dataprocessing.SortRecords(dataprocessing.FilterRecords(ds.Records, criteria)), nil
}

// checkWeekRange accepts bounds that are dataset weeks or parse as a
// month/day, and rejects a range whose start sorts after its end.
func checkWeekRange(ds *domain.Dataset, wr *domain.WeekRange) error {
	if wr == nil {
		return nil
	}

	known := lo.SliceToMap(ds.Weeks, func(w string) (string, struct{}) { return w, struct{}{} })
	from, to := weeks.Canonicalize(wr.From), weeks.Canonicalize(wr.To)
	for _, bound := range []string{from, to} {
		if _, ok := known[bound]; ok {
			continue
		}
		if _, _, ok := weeks.MonthDay(bound); !ok {
			return fmt.Errorf("%w: unknown week %q", ErrInvalidWeekRange, bound)
		}
	}

	order := weeks.NewOrder(append(lo.Keys(known), from, to))
	if order.Less(to, from) {
		return fmt.Errorf("%w: %q is after %q", ErrInvalidWeekRange, from, to)
	}
	return nil
}

// Providers returns the dataset's provider names sorted alphabetically
func (s *DatasetService) Providers(ctx context.Context, id string) ([]string, error) {
	ds, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return ds.Providers, nil
}

// Weeks returns the dataset's week labels in chronological order
func (s *DatasetService) Weeks(ctx context.Context, id string) ([]string, error) {
	ds, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return ds.Weeks, nil
}

// Summary aggregates the filtered records and compares them with the
// weeks preceding the range start
func (s *DatasetService) Summary(ctx context.Context, id string, criteria domain.FilterCriteria) (domain.SummaryStats, error) {
	ds, err := s.Get(ctx, id)
	if err != nil {
		return domain.SummaryStats{}, err
	}
	if err := checkWeekRange(ds, criteria.WeekRange); err != nil {
		return domain.SummaryStats{}, err
	}

	current := dataprocessing.FilterRecords(ds.Records, criteria)
	previous := dataprocessing.PreviousPeriod(ds.Records, criteria)
	return dataprocessing.Summarize(current, previous), nil
}

// Warnings returns the advisory and coercion warnings of a dataset
func (s *DatasetService) Warnings(ctx context.Context, id string) ([]domain.ValidationWarning, error) {
	ds, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return ds.Warnings, nil
}

// IngestDirectory ingests the workbooks in dir concurrently. When pattern
// is set only matching workbooks are taken. Per-file failures are
// reported in the results; the error is for discovery or cancellation.
func (s *DatasetService) IngestDirectory(ctx context.Context, dir, pattern string) ([]BatchResult, error) {
	if err := s.files.ValidateInputDirectory(dir); err != nil {
		return nil, err
	}

	found, err := s.findWorkbooks(dir, pattern)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "batch ingest started",
		slog.String("dir", dir),
		slog.Int("files", len(found)),
		slog.Int64("bytes", files.TotalSize(found)),
		slog.Int("concurrency", s.cfg.BatchConcurrency))

	results := make([]BatchResult, len(found))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.BatchConcurrency)

	for i, f := range found {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res := BatchResult{File: f.Name, Size: f.Size}
			ds, _, err := s.ingestPath(gctx, f.Path, domain.DatasetSourceBatch)
			if err != nil {
				res.Err = err
			} else {
				res.DatasetID = ds.ID
				res.Strategy = ds.Strategy
				res.Records = len(ds.Records)
				s.publisher.Publish(gctx, events.MessageTypeDatasetLoaded, events.DatasetEvent{Dataset: ds.Info()})
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}

	failed := lo.CountBy(results, func(r BatchResult) bool { return r.Err != nil })
	s.logger.InfoContext(ctx, "batch ingest finished",
		slog.String("dir", dir),
		slog.Int("succeeded", len(results)-failed),
		slog.Int("failed", failed))

	return results, nil
}

func (s *DatasetService) findWorkbooks(dir, pattern string) ([]files.FileInfo, error) {
	if pattern == "" {
		return s.discovery.FindWorkbooks(dir)
	}
	matched, err := s.discovery.FindFilesByPattern(dir, pattern)
	if err != nil {
		return nil, err
	}
	return lo.Filter(matched, func(f files.FileInfo, _ int) bool {
		return validation.IsWorkbookExtension(filepath.Ext(f.Name)) && !validation.IsLockFile(f.Name)
	}), nil
}

// LoadDefault loads the configured default workbook, replacing the
// previous default dataset. A directory path loads its most recently
// modified workbook.
func (s *DatasetService) LoadDefault(ctx context.Context) (*domain.Dataset, error) {
	path, err := s.resolveDefault()
	if err != nil {
		return nil, err
	}

	ds, replaced, err := s.ingestPath(ctx, path, domain.DatasetSourceDefault)
	if err != nil {
		return nil, err
	}

	msgType := events.MessageTypeDatasetLoaded
	if replaced != "" {
		msgType = events.MessageTypeDatasetRefresh
	}
	s.publisher.Publish(ctx, msgType, events.DatasetEvent{Dataset: ds.Info(), Replaced: replaced})
	return ds, nil
}

func (s *DatasetService) resolveDefault() (string, error) {
	if s.cfg.DefaultPath == "" {
		return "", ErrNoDefaultPath
	}

	info, err := os.Stat(s.cfg.DefaultPath)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidWorkbook, err)
	}
	if !info.IsDir() {
		return s.cfg.DefaultPath, nil
	}

	found, err := s.discovery.FindWorkbooks(s.cfg.DefaultPath)
	if err != nil {
		return "", err
	}
	latest, ok := files.GetLatestFile(found)
	if !ok {
		return "", fmt.Errorf("%w: no workbooks in %s", ErrInvalidWorkbook, s.cfg.DefaultPath)
	}
	return latest.Path, nil
}

// RunRefresher reloads the default workbook every refresh interval until
// ctx is cancelled. It returns immediately when refreshing is disabled.
func (s *DatasetService) RunRefresher(ctx context.Context) {
	if s.cfg.RefreshInterval <= 0 || s.cfg.DefaultPath == "" {
		return
	}

	ticker := time.NewTicker(s.cfg.RefreshInterval)
	defer ticker.Stop()

	s.logger.InfoContext(ctx, "default workbook refresher started",
		slog.String("path", s.cfg.DefaultPath),
		slog.Duration("interval", s.cfg.RefreshInterval))

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.LoadDefault(ctx); err != nil && !errors.Is(err, context.Canceled) {
				s.logger.WarnContext(ctx, "default workbook refresh failed",
					slog.String("error", err.Error()))
			}
		}
	}
}

// DefaultID returns the id of the current default dataset, if any
func (s *DatasetService) DefaultID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.defaultID
}
