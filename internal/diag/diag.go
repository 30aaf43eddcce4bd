// Package diag exposes Prometheus metrics on a separate diagnostics
// listener, kept off the public router.
package diag

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/metric/prometheus"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/global"
	export "go.opentelemetry.io/otel/sdk/export/metric"
	"go.opentelemetry.io/otel/sdk/metric/aggregator/histogram"
	controller "go.opentelemetry.io/otel/sdk/metric/controller/basic"
	processor "go.opentelemetry.io/otel/sdk/metric/processor/basic"
	selector "go.opentelemetry.io/otel/sdk/metric/selector/simple"
)

// Diagnostics holds the metrics instruments and the /metrics handler.
type Diagnostics struct {
	exporter          *prometheus.Exporter
	requestsCompleted metric.Int64Counter
}

// New sets up the Prometheus exporter and registers it as the global meter
// provider.
func New(serviceName string) (*Diagnostics, error) {
	cfg := prometheus.Config{}
	c := controller.New(
		processor.New(
			selector.NewWithHistogramDistribution(
				histogram.WithExplicitBoundaries(cfg.DefaultHistogramBoundaries),
			),
			export.CumulativeExportKindSelector(),
			processor.WithMemory(true),
		),
	)
	exporter, err := prometheus.NewExporter(cfg, c)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize prometheus exporter: %w", err)
	}
	global.SetMeterProvider(exporter.MeterProvider())

	meter := global.Meter(serviceName)
	requestsCompleted := metric.Must(meter).NewInt64Counter(
		"http/server/completed_count",
		metric.WithDescription("Count of completed requests, by HTTP response status"),
	)

	return &Diagnostics{
		exporter:          exporter,
		requestsCompleted: requestsCompleted,
	}, nil
}

// CountRequest records one completed request with its response status.
func (d *Diagnostics) CountRequest(ctx context.Context, status int) {
	d.requestsCompleted.Add(ctx, 1,
		attribute.String("status", strconv.Itoa(status)))
}

// Router returns the diagnostics router serving /metrics.
func (d *Diagnostics) Router() chi.Router {
	r := chi.NewRouter()
	r.Get("/metrics", d.exporter.ServeHTTP)
	return r
}
