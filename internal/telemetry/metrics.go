package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds all application metrics
type Metrics struct {
	RequestCounter  metric.Int64Counter
	RequestDuration metric.Float64Histogram
	RenderCounter   metric.Int64Counter
	PhaseDuration   metric.Float64Histogram
	QueuedRenders   metric.Int64Counter
}

// InitMetrics initializes all application metrics
func InitMetrics() (*Metrics, error) {
	meter := otel.Meter("render-service")

	requestCounter, err := meter.Int64Counter(
		"http.requests.total",
		metric.WithDescription("Total HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	requestDuration, err := meter.Float64Histogram(
		"http.request.duration",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	renderCounter, err := meter.Int64Counter(
		"renderer.renders.total",
		metric.WithDescription("Total render calls by status"),
	)
	if err != nil {
		return nil, err
	}

	phaseDuration, err := meter.Float64Histogram(
		"renderer.phase.duration",
		metric.WithDescription("Render lifecycle phase duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	queuedRenders, err := meter.Int64Counter(
		"renderer.queue.tasks.total",
		metric.WithDescription("Render tasks enqueued"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		RequestCounter:  requestCounter,
		RequestDuration: requestDuration,
		RenderCounter:   renderCounter,
		PhaseDuration:   phaseDuration,
		QueuedRenders:   queuedRenders,
	}, nil
}

// RecordRequest records one HTTP request observation.
func (m *Metrics) RecordRequest(ctx context.Context, method, path, status string, seconds float64) {
	attrs := metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("path", path),
		attribute.String("status", status),
	)
	m.RequestCounter.Add(ctx, 1, attrs)
	m.RequestDuration.Record(ctx, seconds, attrs)
}

// RecordRender counts one completed render call.
func (m *Metrics) RecordRender(ctx context.Context, status string) {
	m.RenderCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}

// RecordPhase records the duration of one lifecycle phase.
func (m *Metrics) RecordPhase(ctx context.Context, phase string, seconds float64, success bool) {
	m.PhaseDuration.Record(ctx, seconds, metric.WithAttributes(
		attribute.String("phase", phase),
		attribute.Bool("success", success),
	))
}

// RecordQueuedRender counts one enqueued render task.
func (m *Metrics) RecordQueuedRender(ctx context.Context) {
	m.QueuedRenders.Add(ctx, 1)
}
