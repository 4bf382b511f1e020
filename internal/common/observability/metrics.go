package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

type Logger interface {
	Warn(msg string, fields map[string]interface{})
}

// Observability records per-action counts and durations through an
// OpenTelemetry meter exported on the default prometheus registry.
type Observability struct {
	meterProvider  *metric.MeterProvider
	meter          otelmetric.Meter
	actionCounter  otelmetric.Int64Counter
	actionDuration otelmetric.Float64Histogram
}

func New(serviceName string, log Logger) *Observability {
	exporter, err := prometheus.New()
	if err != nil {
		if log != nil {
			log.Warn("Failed to create Prometheus exporter", map[string]interface{}{"error": err.Error()})
		}
		return &Observability{}
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	return newWithProvider(provider, serviceName)
}

// NewWithReader is used by tests to collect metrics without a registry.
func NewWithReader(reader metric.Reader, serviceName string) *Observability {
	return newWithProvider(metric.NewMeterProvider(metric.WithReader(reader)), serviceName)
}

func newWithProvider(provider *metric.MeterProvider, serviceName string) *Observability {
	meter := provider.Meter(serviceName)

	actionCounter, _ := meter.Int64Counter(
		"actions.processed",
		otelmetric.WithDescription("Number of chat actions processed"),
	)

	actionDuration, _ := meter.Float64Histogram(
		"actions.duration",
		otelmetric.WithDescription("Chat action duration"),
		otelmetric.WithUnit("ms"),
	)

	return &Observability{
		meterProvider:  provider,
		meter:          meter,
		actionCounter:  actionCounter,
		actionDuration: actionDuration,
	}
}

// RecordAction counts one action outcome and its duration.
func (o *Observability) RecordAction(ctx context.Context, action, status string, duration time.Duration) {
	if o == nil {
		return
	}
	attrs := otelmetric.WithAttributes(
		attribute.String("action", action),
		attribute.String("status", status),
	)
	if o.actionCounter != nil {
		o.actionCounter.Add(ctx, 1, attrs)
	}
	if o.actionDuration != nil {
		o.actionDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
	}
}

func (o *Observability) Shutdown() {
	if o == nil || o.meterProvider == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = o.meterProvider.Shutdown(ctx)
}
