package domain

import (
	"context"
	"time"
)

// RunResultRecord is the flattened shape of a RunReport written to the analytics sink.
type RunResultRecord struct {
	RunID        string
	Trigger      string
	StartedAt    time.Time
	Duration     time.Duration
	Checked      int
	Urgent       int
	AlertsSent   int
	Deduplicated int
	ErrorCount   int
	Skipped      bool
}

func NewRunResultRecord(report *RunReport, trigger string) RunResultRecord {
	return RunResultRecord{
		RunID:        report.RunID,
		Trigger:      trigger,
		StartedAt:    report.StartedAt,
		Duration:     report.Duration(),
		Checked:      report.Checked,
		Urgent:       len(report.UrgentProjects),
		AlertsSent:   report.AlertsSent,
		Deduplicated: report.Deduplicated,
		ErrorCount:   len(report.Errors),
		Skipped:      report.Skipped,
	}
}

type RunResultRecorder interface {
	RecordRun(ctx context.Context, record RunResultRecord) error
	Flush(ctx context.Context) error
	Close() error
}
