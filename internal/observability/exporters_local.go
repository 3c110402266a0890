//go:build !gcloud

package observability

import (
	"context"
	"os"

	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const otlpEndpointEnv = "OTEL_EXPORTER_OTLP_ENDPOINT"

// newExporters returns OTLP/HTTP exporters when a collector endpoint is configured.
// Without one, telemetry stays in-process.
func newExporters(ctx context.Context, _ Config) (sdktrace.SpanExporter, sdkmetric.Exporter, error) {
	if os.Getenv(otlpEndpointEnv) == "" {
		return nil, nil, nil
	}

	spanExporter, err := otlptracehttp.New(ctx)
	if err != nil {
		return nil, nil, err
	}

	metricExporter, err := otlpmetrichttp.New(ctx)
	if err != nil {
		_ = spanExporter.Shutdown(ctx)
		return nil, nil, err
	}

	return spanExporter, metricExporter, nil
}
