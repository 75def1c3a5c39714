package infrastructure

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// BusinessMetrics holds the application metrics
type BusinessMetrics struct {
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram
	HTTPActiveRequests  metric.Int64UpDownCounter

	ParsesTotal      metric.Int64Counter
	ParseDuration    metric.Float64Histogram
	RecordsParsed    metric.Int64Counter
	CoercionWarnings metric.Int64Counter
	IngestErrors     metric.Int64Counter
	DatasetsLoaded   metric.Int64UpDownCounter
}

// CreateBusinessMetrics registers every application instrument on meter
func CreateBusinessMetrics(meter metric.Meter) (*BusinessMetrics, error) {
	var (
		m   BusinessMetrics
		err error
	)

	if m.HTTPRequestsTotal, err = meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
	); err != nil {
		return nil, err
	}

	if m.HTTPRequestDuration, err = meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	if m.HTTPActiveRequests, err = meter.Int64UpDownCounter(
		"http_active_requests",
		metric.WithDescription("Number of active HTTP requests"),
	); err != nil {
		return nil, err
	}

	if m.ParsesTotal, err = meter.Int64Counter(
		"ingest_parses_total",
		metric.WithDescription("Workbooks parsed, by winning strategy and source"),
	); err != nil {
		return nil, err
	}

	if m.ParseDuration, err = meter.Float64Histogram(
		"ingest_parse_duration_seconds",
		metric.WithDescription("Workbook decode and parse duration in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	if m.RecordsParsed, err = meter.Int64Counter(
		"ingest_records_total",
		metric.WithDescription("Provider-week records produced by parsing"),
	); err != nil {
		return nil, err
	}

	if m.CoercionWarnings, err = meter.Int64Counter(
		"ingest_coercion_warnings_total",
		metric.WithDescription("Cells read as zero because they held no number"),
	); err != nil {
		return nil, err
	}

	if m.IngestErrors, err = meter.Int64Counter(
		"ingest_errors_total",
		metric.WithDescription("Workbooks rejected during ingestion"),
	); err != nil {
		return nil, err
	}

	if m.DatasetsLoaded, err = meter.Int64UpDownCounter(
		"datasets_loaded",
		metric.WithDescription("Datasets currently held in memory"),
	); err != nil {
		return nil, err
	}

	return &m, nil
}

// ParseOutcome describes one finished ingestion for metrics. A non-empty
// FailureReason marks a rejected workbook.
type ParseOutcome struct {
	Source        string
	Strategy      string
	Records       int
	Coercions     int
	Duration      time.Duration
	FailureReason string
}

// RecordParse records an ingestion outcome. A nil receiver is a no-op.
func (m *BusinessMetrics) RecordParse(ctx context.Context, o ParseOutcome) {
	if m == nil {
		return
	}

	source := attribute.String("source", o.Source)
	if o.FailureReason != "" {
		m.IngestErrors.Add(ctx, 1, metric.WithAttributes(source,
			attribute.String("reason", o.FailureReason)))
		return
	}

	attrs := metric.WithAttributes(source, attribute.String("strategy", o.Strategy))
	m.ParsesTotal.Add(ctx, 1, attrs)
	m.ParseDuration.Record(ctx, o.Duration.Seconds(), attrs)
	m.RecordsParsed.Add(ctx, int64(o.Records), attrs)
	if o.Coercions > 0 {
		m.CoercionWarnings.Add(ctx, int64(o.Coercions), attrs)
	}
}

// RecordDatasetDelta tracks datasets added to or removed from memory
func (m *BusinessMetrics) RecordDatasetDelta(ctx context.Context, delta int64) {
	if m == nil {
		return
	}
	m.DatasetsLoaded.Add(ctx, delta)
}

// RecordHTTPRequest records a finished request
func (m *BusinessMetrics) RecordHTTPRequest(ctx context.Context, method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("http.route", route),
		attribute.Int("http.status_code", status),
	)
	m.HTTPRequestsTotal.Add(ctx, 1, attrs)
	m.HTTPRequestDuration.Record(ctx, d.Seconds(), attrs)
}
