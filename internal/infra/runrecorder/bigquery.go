//go:build gcloud

package runrecorder

import (
	"context"
	"log/slog"
	"time"

	"cloud.google.com/go/bigquery"

	"github.com/KasumiMercury/freelance-deadline-alerts/internal/config"
	"github.com/KasumiMercury/freelance-deadline-alerts/internal/domain"
)

type bigQueryRecord struct {
	RecordedAt   time.Time `bigquery:"recorded_at"`
	RunID        string    `bigquery:"run_id"`
	Trigger      string    `bigquery:"trigger"`
	StartedAt    time.Time `bigquery:"started_at"`
	DurationMs   int64     `bigquery:"duration_ms"`
	Checked      int64     `bigquery:"checked"`
	Urgent       int64     `bigquery:"urgent"`
	AlertsSent   int64     `bigquery:"alerts_sent"`
	Deduplicated int64     `bigquery:"deduplicated"`
	ErrorCount   int64     `bigquery:"error_count"`
	Skipped      bool      `bigquery:"skipped"`
}

type bigQueryRecorder struct {
	client   *bigquery.Client
	inserter *bigquery.Inserter
}

func NewRecorder(ctx context.Context, cfg *config.RunRecorderConfig) (domain.RunResultRecorder, error) {
	if cfg.Disabled {
		slog.InfoContext(ctx, "run result recording disabled")
		return NewNoopRecorder(), nil
	}

	if cfg.BigQueryProjectID == "" {
		slog.WarnContext(ctx, "BigQuery project ID not configured, run result recording disabled")
		return NewNoopRecorder(), nil
	}

	client, err := bigquery.NewClient(ctx, cfg.BigQueryProjectID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create BigQuery client, run result recording disabled",
			slog.String("error", err.Error()),
			slog.String("project_id", cfg.BigQueryProjectID),
		)
		return NewNoopRecorder(), nil
	}

	inserter := client.Dataset(cfg.BigQueryDataset).Table(cfg.BigQueryTable).Inserter()

	slog.InfoContext(ctx, "run result recorder initialized",
		slog.String("type", "bigquery"),
		slog.String("project_id", cfg.BigQueryProjectID),
		slog.String("dataset", cfg.BigQueryDataset),
		slog.String("table", cfg.BigQueryTable),
	)

	return &bigQueryRecorder{
		client:   client,
		inserter: inserter,
	}, nil
}

func (r *bigQueryRecorder) RecordRun(ctx context.Context, record domain.RunResultRecord) error {
	row := &bigQueryRecord{
		RecordedAt:   time.Now(),
		RunID:        record.RunID,
		Trigger:      record.Trigger,
		StartedAt:    record.StartedAt,
		DurationMs:   record.Duration.Milliseconds(),
		Checked:      int64(record.Checked),
		Urgent:       int64(record.Urgent),
		AlertsSent:   int64(record.AlertsSent),
		Deduplicated: int64(record.Deduplicated),
		ErrorCount:   int64(record.ErrorCount),
		Skipped:      record.Skipped,
	}

	if err := r.inserter.Put(ctx, row); err != nil {
		slog.WarnContext(ctx, "failed to insert run result to BigQuery",
			slog.String("error", err.Error()),
			slog.String("run_id", record.RunID),
		)
	}

	return nil
}

func (r *bigQueryRecorder) Flush(_ context.Context) error {
	return nil
}

func (r *bigQueryRecorder) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}
