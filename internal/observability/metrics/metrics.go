package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes application-level instruments.
type Metrics struct {
	uploads        metric.Int64Counter
	uploadFailures metric.Int64Counter
	rowsProcessed  metric.Int64Counter
	uploadDuration metric.Float64Histogram
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if log != nil {
					log.Info("shutting down meter provider")
				}
				return provider.Shutdown(ctx)
			},
		})
	}

	if log != nil {
		log.Info("metrics initialized",
			zap.String("endpoint", cfg.ExporterEndpoint),
			zap.String("protocol", cfg.ExporterProtocol),
		)
	}

	return provider, nil
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "datalysis"
	}
	meter := provider.Meter(name)

	uploads, err := meter.Int64Counter("datalysis_uploads_total")
	if err != nil {
		return nil, err
	}
	uploadFailures, err := meter.Int64Counter("datalysis_upload_failures_total")
	if err != nil {
		return nil, err
	}
	rowsProcessed, err := meter.Int64Counter("datalysis_rows_processed_total")
	if err != nil {
		return nil, err
	}
	uploadDuration, err := meter.Float64Histogram("datalysis_upload_duration_seconds")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		uploads:        uploads,
		uploadFailures: uploadFailures,
		rowsProcessed:  rowsProcessed,
		uploadDuration: uploadDuration,
	}, nil
}

// RecordUpload increments successful upload counts.
func (m *Metrics) RecordUpload(ctx context.Context, domain string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("domain", strings.TrimSpace(domain)))
	m.uploads.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordUploadFailure increments failed upload counts.
func (m *Metrics) RecordUploadFailure(ctx context.Context, reason string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("reason", strings.TrimSpace(reason)))
	m.uploadFailures.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordRowsProcessed adds to the processed row count.
func (m *Metrics) RecordRowsProcessed(ctx context.Context, domain string, rows int) {
	if m == nil || rows <= 0 {
		return
	}
	attrs := FilterAttributes(attribute.String("domain", strings.TrimSpace(domain)))
	m.rowsProcessed.Add(ctx, int64(rows), metric.WithAttributes(attrs...))
}

// RecordUploadDuration records end-to-end processing time.
func (m *Metrics) RecordUploadDuration(ctx context.Context, domain string, d time.Duration) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("domain", strings.TrimSpace(domain)))
	m.uploadDuration.Record(ctx, d.Seconds(), metric.WithAttributes(attrs...))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	protocol = strings.ToLower(strings.TrimSpace(protocol))
	switch protocol {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

var allowedLabelKeys = map[attribute.Key]struct{}{
	"domain":      {},
	"reason":      {},
	"stage":       {},
	"status_code": {},
	"endpoint":    {},
}

// FilterAttributes strips disallowed labels to keep metrics low-cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
