package metrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const serviceName = "diffeq"

// Config selects the collector.
type Config struct {
	Endpoint string
	Insecure bool
	Version  string
}

// OTel records into an OpenTelemetry MeterProvider.
type OTel struct {
	provider      *sdkmetric.MeterProvider
	requestsTotal metric.Int64Counter
	durationHist  metric.Float64Histogram
	verdictsTotal metric.Int64Counter
	cacheTotal    metric.Int64Counter
}

// NewOTel creates a recorder exporting to cfg.Endpoint.
func NewOTel(ctx context.Context, cfg Config) (*OTel, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("OTEL endpoint not configured")
	}

	opts := []otlpmetricgrpc.Option{
		otlpmetricgrpc.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlpmetricgrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())))
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}

	exp, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating OTLP exporter: %w", err)
	}

	rec, err := newOTel(ctx, sdkmetric.NewPeriodicReader(exp), cfg.Version)
	if err != nil {
		return nil, err
	}
	otel.SetMeterProvider(rec.provider)
	return rec, nil
}

func newOTel(ctx context.Context, reader sdkmetric.Reader, version string) (*OTel, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(reader),
		sdkmetric.WithResource(res),
	)
	meter := provider.Meter(serviceName)

	requestsTotal, err := meter.Int64Counter(
		"diffeq_http_requests_total",
		metric.WithDescription("HTTP requests served"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating requests counter: %w", err)
	}

	durationHist, err := meter.Float64Histogram(
		"diffeq_http_request_duration_seconds",
		metric.WithDescription("HTTP request latency"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating duration histogram: %w", err)
	}

	verdictsTotal, err := meter.Int64Counter(
		"diffeq_verdicts_total",
		metric.WithDescription("Analysis results by operation and outcome"),
		metric.WithUnit("{verdict}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating verdicts counter: %w", err)
	}

	cacheTotal, err := meter.Int64Counter(
		"diffeq_cache_lookups_total",
		metric.WithDescription("Response cache lookups"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating cache counter: %w", err)
	}

	return &OTel{
		provider:      provider,
		requestsTotal: requestsTotal,
		durationHist:  durationHist,
		verdictsTotal: verdictsTotal,
		cacheTotal:    cacheTotal,
	}, nil
}

func (o *OTel) RecordRequest(ctx context.Context, route string, status int, d time.Duration) {
	opt := metric.WithAttributes(
		attribute.String("route", route),
		attribute.Int("status", status),
	)
	o.requestsTotal.Add(ctx, 1, opt)
	o.durationHist.Record(ctx, d.Seconds(), opt)
}

func (o *OTel) RecordVerdict(ctx context.Context, op, outcome string) {
	o.verdictsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", op),
		attribute.String("outcome", outcome),
	))
}

func (o *OTel) RecordCache(ctx context.Context, hit bool) {
	o.cacheTotal.Add(ctx, 1, metric.WithAttributes(attribute.Bool("hit", hit)))
}

// Close flushes pending metrics and shuts the provider down.
func (o *OTel) Close(ctx context.Context) error {
	return o.provider.Shutdown(ctx)
}
