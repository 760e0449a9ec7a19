package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
)

// Metric instrument names.
const (
	MetricEvents            = "sse.events"
	MetricEventsDropped     = "sse.events.dropped"
	MetricConnectionsActive = "sse.connections.active"
	MetricReconnects        = "sse.reconnects"
)

func newMeterProvider(ctx context.Context, cfg Config, res *resource.Resource) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	return sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(cfg.ExportInterval))),
		sdkmetric.WithResource(res),
	), nil
}

// Metrics holds the instruments recorded by an SSE receiver.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	eventsTotal       metric.Int64Counter
	eventsDropped     metric.Int64Counter
	connectionsActive metric.Int64UpDownCounter
	reconnectsTotal   metric.Int64Counter
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	eventsTotal, err := meter.Int64Counter(MetricEvents,
		metric.WithDescription("Events delivered to receivers, by kind"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricEvents, err)
	}

	eventsDropped, err := meter.Int64Counter(MetricEventsDropped,
		metric.WithDescription("Events discarded by a bounded mailbox"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricEventsDropped, err)
	}

	connectionsActive, err := meter.Int64UpDownCounter(MetricConnectionsActive,
		metric.WithDescription("Number of open event stream connections"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s gauge: %w", MetricConnectionsActive, err)
	}

	reconnectsTotal, err := meter.Int64Counter(MetricReconnects,
		metric.WithDescription("Reconnect attempts scheduled by the native stream"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricReconnects, err)
	}

	return &Metrics{
		eventsTotal:       eventsTotal,
		eventsDropped:     eventsDropped,
		connectionsActive: connectionsActive,
		reconnectsTotal:   reconnectsTotal,
	}, nil
}

// RecordEvent counts one delivered event of the given kind.
func (m *Metrics) RecordEvent(ctx context.Context, backend, kind string) {
	if m == nil {
		return
	}
	m.eventsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrBackend, backend),
		attribute.String(AttrEventKind, kind),
	))
}

// RecordDropped counts events discarded by overflow policy.
func (m *Metrics) RecordDropped(ctx context.Context, backend string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.eventsDropped.Add(ctx, int64(n), metric.WithAttributes(
		attribute.String(AttrBackend, backend),
	))
}

// RecordConnectionOpen increments the active connection count.
func (m *Metrics) RecordConnectionOpen(ctx context.Context, backend string) {
	if m == nil {
		return
	}
	m.connectionsActive.Add(ctx, 1, metric.WithAttributes(attribute.String(AttrBackend, backend)))
}

// RecordConnectionClose decrements the active connection count.
func (m *Metrics) RecordConnectionClose(ctx context.Context, backend string) {
	if m == nil {
		return
	}
	m.connectionsActive.Add(ctx, -1, metric.WithAttributes(attribute.String(AttrBackend, backend)))
}

// RecordReconnect counts a scheduled reconnect attempt.
func (m *Metrics) RecordReconnect(ctx context.Context, attempt int) {
	if m == nil {
		return
	}
	m.reconnectsTotal.Add(ctx, 1, metric.WithAttributes(attribute.Int(AttrAttempt, attempt)))
}
