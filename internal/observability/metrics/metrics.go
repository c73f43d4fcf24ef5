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

// Metrics exposes the settlement engine instruments.
type Metrics struct {
	periodsOpened    metric.Int64Counter
	periodsLocked    metric.Int64Counter
	lineItemsWritten metric.Int64Counter
	eventsSkipped    metric.Int64Counter
	adjustments      metric.Int64Counter
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

	return provider, nil
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "revshare"
	}
	meter := provider.Meter(name)

	periodsOpened, err := meter.Int64Counter("revshare_periods_opened_total")
	if err != nil {
		return nil, err
	}
	periodsLocked, err := meter.Int64Counter("revshare_periods_locked_total")
	if err != nil {
		return nil, err
	}
	lineItemsWritten, err := meter.Int64Counter("revshare_line_items_written_total")
	if err != nil {
		return nil, err
	}
	eventsSkipped, err := meter.Int64Counter("revshare_attribution_events_skipped_total")
	if err != nil {
		return nil, err
	}
	adjustments, err := meter.Int64Counter("revshare_adjustments_created_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		periodsOpened:    periodsOpened,
		periodsLocked:    periodsLocked,
		lineItemsWritten: lineItemsWritten,
		eventsSkipped:    eventsSkipped,
		adjustments:      adjustments,
	}, nil
}

func (m *Metrics) PeriodOpened(ctx context.Context) {
	if m == nil {
		return
	}
	m.periodsOpened.Add(ctx, 1)
}

func (m *Metrics) PeriodLocked(ctx context.Context) {
	if m == nil {
		return
	}
	m.periodsLocked.Add(ctx, 1)
}

func (m *Metrics) LineItemsWritten(ctx context.Context, count int, entryType string) {
	if m == nil || count <= 0 {
		return
	}
	m.lineItemsWritten.Add(ctx, int64(count), metric.WithAttributes(
		attribute.String("entry_type", strings.ToLower(entryType)),
	))
}

func (m *Metrics) EventSkipped(ctx context.Context, reason string) {
	if m == nil {
		return
	}
	m.eventsSkipped.Add(ctx, 1, metric.WithAttributes(
		attribute.String("reason", reason),
	))
}

func (m *Metrics) AdjustmentCreated(ctx context.Context) {
	if m == nil {
		return
	}
	m.adjustments.Add(ctx, 1)
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	switch strings.ToLower(strings.TrimSpace(protocol)) {
	case "", "grpc":
		return otlpmetricgrpc.New(context.Background(),
			otlpmetricgrpc.WithEndpoint(endpoint),
			otlpmetricgrpc.WithInsecure(),
		)
	case "http":
		return otlpmetrichttp.New(context.Background(),
			otlpmetrichttp.WithEndpoint(endpoint),
			otlpmetrichttp.WithInsecure(),
		)
	default:
		return nil, fmt.Errorf("unsupported otlp protocol %q", protocol)
	}
}
