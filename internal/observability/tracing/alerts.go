package tracing

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const alertsTracerName = "github.com/KasumiMercury/freelance-deadline-alerts/internal/service/evaluator"

func AlertsTracer() trace.Tracer {
	return otel.Tracer(alertsTracerName)
}

func StartRunSpan(ctx context.Context, runID, trigger string, threshold int, now time.Time) (context.Context, trace.Span) {
	return AlertsTracer().Start(ctx, "alerts.run",
		trace.WithAttributes(
			attribute.String("run.id", runID),
			attribute.String("run.trigger", trigger),
			attribute.Int("run.threshold_days", threshold),
			attribute.String("run.now", now.Format(time.RFC3339)),
		),
	)
}

func StartDispatchSpan(ctx context.Context, projectID, alertType string, daysUntil int) (context.Context, trace.Span) {
	return AlertsTracer().Start(ctx, "alerts.dispatch",
		trace.WithAttributes(
			attribute.String("project_id", projectID),
			attribute.String("alert.type", alertType),
			attribute.Int("alert.days_until", daysUntil),
		),
		trace.WithSpanKind(trace.SpanKindClient),
	)
}

func RecordRunResult(span trace.Span, checked, alertsSent, urgent, errorCount int, skipped bool) {
	span.SetAttributes(
		attribute.Int("run.checked", checked),
		attribute.Int("run.alerts_sent", alertsSent),
		attribute.Int("run.urgent_projects", urgent),
		attribute.Int("run.error_count", errorCount),
		attribute.Bool("run.skipped", skipped),
	)
	if errorCount > 0 {
		span.SetStatus(codes.Error, "run finished with errors")
	} else {
		span.SetStatus(codes.Ok, "")
	}
}

func RecordDispatchResult(span trace.Span, provider, messageID string, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}
	span.SetAttributes(
		attribute.String("delivery.provider", provider),
		attribute.String("delivery.message_id", messageID),
	)
	span.SetStatus(codes.Ok, "")
}
