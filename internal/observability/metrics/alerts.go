package metrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	alertsMeterName = "deadline.alerts"
)

type AlertMetrics struct {
	runsTotal        metric.Int64Counter
	projectsChecked  metric.Int64Counter
	alertsSent       metric.Int64Counter
	deliveryFailures metric.Int64Counter
	dedupSkips       metric.Int64Counter
	runDuration      metric.Float64Histogram
	dispatchDuration metric.Float64Histogram
}

func NewAlertMetrics() (*AlertMetrics, error) {
	meter := otel.Meter(alertsMeterName)

	runsTotal, err := meter.Int64Counter(
		"deadline_runs_total",
		metric.WithDescription("Total number of deadline check runs"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return nil, err
	}

	projectsChecked, err := meter.Int64Counter(
		"deadline_projects_checked_total",
		metric.WithDescription("Total number of projects inspected by deadline checks"),
		metric.WithUnit("{project}"),
	)
	if err != nil {
		return nil, err
	}

	alertsSent, err := meter.Int64Counter(
		"deadline_alerts_sent_total",
		metric.WithDescription("Total number of alerts delivered"),
		metric.WithUnit("{alert}"),
	)
	if err != nil {
		return nil, err
	}

	deliveryFailures, err := meter.Int64Counter(
		"deadline_delivery_failures_total",
		metric.WithDescription("Total number of failed alert deliveries"),
		metric.WithUnit("{alert}"),
	)
	if err != nil {
		return nil, err
	}

	dedupSkips, err := meter.Int64Counter(
		"deadline_dedup_skips_total",
		metric.WithDescription("Alerts skipped because one was already sent within the dedup window"),
		metric.WithUnit("{alert}"),
	)
	if err != nil {
		return nil, err
	}

	runDuration, err := meter.Float64Histogram(
		"deadline_run_duration_seconds",
		metric.WithDescription("Deadline check run duration"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(
			0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60,
		),
	)
	if err != nil {
		return nil, err
	}

	dispatchDuration, err := meter.Float64Histogram(
		"deadline_dispatch_duration_seconds",
		metric.WithDescription("Time spent delivering a single alert"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(
			0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10,
		),
	)
	if err != nil {
		return nil, err
	}

	return &AlertMetrics{
		runsTotal:        runsTotal,
		projectsChecked:  projectsChecked,
		alertsSent:       alertsSent,
		deliveryFailures: deliveryFailures,
		dedupSkips:       dedupSkips,
		runDuration:      runDuration,
		dispatchDuration: dispatchDuration,
	}, nil
}

// RecordRun records one finished run. outcome is "ok", "partial", "failed" or "skipped".
func (m *AlertMetrics) RecordRun(ctx context.Context, trigger, outcome string, checked int, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("trigger", trigger),
		attribute.String("outcome", outcome),
	)
	m.runsTotal.Add(ctx, 1, attrs)
	m.projectsChecked.Add(ctx, int64(checked), metric.WithAttributes(
		attribute.String("trigger", trigger),
	))
	m.runDuration.Record(ctx, duration.Seconds(), attrs)
}

func (m *AlertMetrics) RecordAlertSent(ctx context.Context, provider, alertType string) {
	m.alertsSent.Add(ctx, 1, metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("alert_type", alertType),
	))
}

func (m *AlertMetrics) RecordDeliveryFailure(ctx context.Context, alertType, kind string) {
	m.deliveryFailures.Add(ctx, 1, metric.WithAttributes(
		attribute.String("alert_type", alertType),
		attribute.String("kind", kind),
	))
}

func (m *AlertMetrics) RecordDedupSkip(ctx context.Context, alertType string) {
	m.dedupSkips.Add(ctx, 1, metric.WithAttributes(
		attribute.String("alert_type", alertType),
	))
}

func (m *AlertMetrics) RecordDispatchDuration(ctx context.Context, alertType string, duration time.Duration) {
	m.dispatchDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("alert_type", alertType),
	))
}
