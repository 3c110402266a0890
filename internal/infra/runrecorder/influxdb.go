//go:build !gcloud

package runrecorder

import (
	"context"
	"log/slog"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/KasumiMercury/freelance-deadline-alerts/internal/config"
	"github.com/KasumiMercury/freelance-deadline-alerts/internal/domain"
)

const runMeasurement = "deadline_run"

type influxDBRecorder struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	bucket   string
}

// NewRecorder returns an InfluxDB backed recorder, or a no-op one when recording
// is disabled or the connection settings are incomplete.
func NewRecorder(ctx context.Context, cfg *config.RunRecorderConfig) (domain.RunResultRecorder, error) {
	if cfg.Disabled {
		slog.InfoContext(ctx, "run result recording disabled")
		return NewNoopRecorder(), nil
	}

	if cfg.InfluxDBToken == "" || cfg.InfluxDBOrg == "" {
		slog.WarnContext(ctx, "InfluxDB token or org not configured, run result recording disabled",
			slog.String("url", cfg.InfluxDBURL),
		)
		return NewNoopRecorder(), nil
	}

	client := influxdb2.NewClient(cfg.InfluxDBURL, cfg.InfluxDBToken)

	slog.InfoContext(ctx, "run result recorder initialized",
		slog.String("type", "influxdb"),
		slog.String("url", cfg.InfluxDBURL),
		slog.String("bucket", cfg.InfluxDBBucket),
	)

	return &influxDBRecorder{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.InfluxDBOrg, cfg.InfluxDBBucket),
		bucket:   cfg.InfluxDBBucket,
	}, nil
}

func newRunPoint(record domain.RunResultRecord) *write.Point {
	return influxdb2.NewPoint(
		runMeasurement,
		map[string]string{
			"run_id":  record.RunID,
			"trigger": record.Trigger,
			"skipped": boolTag(record.Skipped),
		},
		map[string]any{
			"checked":      record.Checked,
			"urgent":       record.Urgent,
			"alerts_sent":  record.AlertsSent,
			"deduplicated": record.Deduplicated,
			"error_count":  record.ErrorCount,
			"duration_ms":  record.Duration.Milliseconds(),
		},
		record.StartedAt,
	)
}

func (r *influxDBRecorder) RecordRun(ctx context.Context, record domain.RunResultRecord) error {
	// Write failures never fail the run that produced the record.
	if err := r.writeAPI.WritePoint(ctx, newRunPoint(record)); err != nil {
		slog.WarnContext(ctx, "failed to write run result to InfluxDB",
			slog.String("error", err.Error()),
			slog.String("run_id", record.RunID),
			slog.String("bucket", r.bucket),
		)
	}

	return nil
}

func (r *influxDBRecorder) Flush(ctx context.Context) error {
	return r.writeAPI.Flush(ctx)
}

func (r *influxDBRecorder) Close() error {
	if r.client != nil {
		r.client.Close()
	}
	return nil
}

func boolTag(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
