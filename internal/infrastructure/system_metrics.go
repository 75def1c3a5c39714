package infrastructure

import (
	"context"
	"runtime"

	"go.opentelemetry.io/otel/metric"
)

// StateSources report live service state for the observable gauges.
// Nil sources are not registered.
type StateSources struct {
	Datasets         func() int
	WebSocketClients func() int
}

// SystemMetrics holds the observable gauges read at collection time
type SystemMetrics struct {
	goroutines   metric.Int64ObservableGauge
	datasets     metric.Int64ObservableGauge
	wsClients    metric.Int64ObservableGauge
	registration metric.Registration
}

// NewSystemMetrics registers gauges for goroutines, loaded datasets and
// websocket clients on meter. Values are sampled by the callback on each
// scrape, so nothing needs to run in the background.
func NewSystemMetrics(meter metric.Meter, sources StateSources) (*SystemMetrics, error) {
	var (
		sm  SystemMetrics
		err error
	)

	if sm.goroutines, err = meter.Int64ObservableGauge(
		"system_goroutines",
		metric.WithDescription("Number of active goroutines"),
	); err != nil {
		return nil, err
	}

	if sm.datasets, err = meter.Int64ObservableGauge(
		"datasets_resident",
		metric.WithDescription("Datasets currently held in memory"),
	); err != nil {
		return nil, err
	}

	if sm.wsClients, err = meter.Int64ObservableGauge(
		"websocket_clients",
		metric.WithDescription("Connected websocket clients"),
	); err != nil {
		return nil, err
	}

	instruments := []metric.Observable{sm.goroutines}
	if sources.Datasets != nil {
		instruments = append(instruments, sm.datasets)
	}
	if sources.WebSocketClients != nil {
		instruments = append(instruments, sm.wsClients)
	}

	sm.registration, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		o.ObserveInt64(sm.goroutines, int64(runtime.NumGoroutine()))
		if sources.Datasets != nil {
			o.ObserveInt64(sm.datasets, int64(sources.Datasets()))
		}
		if sources.WebSocketClients != nil {
			o.ObserveInt64(sm.wsClients, int64(sources.WebSocketClients()))
		}
		return nil
	}, instruments...)
	if err != nil {
		return nil, err
	}

	return &sm, nil
}

// Unregister stops the gauges from being observed
func (sm *SystemMetrics) Unregister() error {
	if sm == nil || sm.registration == nil {
		return nil
	}
	return sm.registration.Unregister()
}
