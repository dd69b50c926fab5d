package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// Page outcomes recorded by Metrics.RecordPageOutcome.
const (
	OutcomeRendered   = "rendered"
	OutcomeRedirected = "redirected"
	OutcomeFailed     = "failed"
)

// InitMeter creates a periodic OTLP meter provider and installs it globally.
func InitMeter(ctx context.Context, cfg Config) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(cfg.MetricsInterval))),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)
	return mp, nil
}

// Meter returns the service meter from the global provider.
func Meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

// Metrics holds the service's metric instruments.
type Metrics struct {
	requestTotal    metric.Int64Counter
	requestDuration metric.Float64Histogram
	pageOutcome     metric.Int64Counter
	uploadTotal     metric.Int64Counter
	jobTotal        metric.Int64Counter
	jobDuration     metric.Float64Histogram
}

// NewMetrics creates the instruments on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	var (
		m   Metrics
		err error
	)
	if m.requestTotal, err = meter.Int64Counter("http.server.requests",
		metric.WithDescription("Total number of HTTP requests")); err != nil {
		return nil, fmt.Errorf("creating http.server.requests counter: %w", err)
	}
	if m.requestDuration, err = meter.Float64Histogram("http.server.duration",
		metric.WithDescription("Duration of HTTP requests"), metric.WithUnit("s")); err != nil {
		return nil, fmt.Errorf("creating http.server.duration histogram: %w", err)
	}
	if m.pageOutcome, err = meter.Int64Counter("transcripts.page.outcome",
		metric.WithDescription("Transcripts page requests by terminal outcome")); err != nil {
		return nil, fmt.Errorf("creating transcripts.page.outcome counter: %w", err)
	}
	if m.uploadTotal, err = meter.Int64Counter("transcripts.uploads",
		metric.WithDescription("Uploaded audio files by result")); err != nil {
		return nil, fmt.Errorf("creating transcripts.uploads counter: %w", err)
	}
	if m.jobTotal, err = meter.Int64Counter("transcripts.jobs",
		metric.WithDescription("Finished transcription jobs by status")); err != nil {
		return nil, fmt.Errorf("creating transcripts.jobs counter: %w", err)
	}
	if m.jobDuration, err = meter.Float64Histogram("transcripts.job.duration",
		metric.WithDescription("Duration of transcription jobs"), metric.WithUnit("s")); err != nil {
		return nil, fmt.Errorf("creating transcripts.job.duration histogram: %w", err)
	}
	return &m, nil
}

// NewGlobalMetrics creates instruments on the global meter. Instruments stay
// no-ops until a provider is installed.
func NewGlobalMetrics() (*Metrics, error) {
	return NewMetrics(Meter())
}

// RecordRequest records a completed HTTP request.
func (m *Metrics) RecordRequest(ctx context.Context, method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("route", route),
		attribute.Int("status", status),
	)
	m.requestTotal.Add(ctx, 1, attrs)
	m.requestDuration.Record(ctx, d.Seconds(), attrs)
}

// RecordPageOutcome counts a transcripts page request by outcome.
func (m *Metrics) RecordPageOutcome(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.pageOutcome.Add(ctx, 1, metric.WithAttributes(attribute.String(AttrOutcome, outcome)))
}

// RecordUpload counts one uploaded file as "accepted" or "rejected".
func (m *Metrics) RecordUpload(ctx context.Context, result string) {
	if m == nil {
		return
	}
	m.uploadTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}

// RecordJob records a finished transcription job.
func (m *Metrics) RecordJob(ctx context.Context, status string, d time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String(AttrStatus, status))
	m.jobTotal.Add(ctx, 1, attrs)
	m.jobDuration.Record(ctx, d.Seconds(), attrs)
}
