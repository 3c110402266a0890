package domain

import "time"

type UrgentProject struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	DueDate     string    `json:"dueDate"`
	ClientName  string    `json:"clientName"`
	ClientEmail string    `json:"clientEmail,omitempty"`
	DaysUntil   int       `json:"daysUntil"`
	Urgency     string    `json:"urgency"`
	AlertType   AlertType `json:"alertType"`
	Notified    bool      `json:"notified"`
}

// RunReport summarizes a single evaluator invocation. It is never persisted.
type RunReport struct {
	RunID          string          `json:"runId"`
	StartedAt      time.Time       `json:"startedAt"`
	FinishedAt     time.Time       `json:"finishedAt"`
	Checked        int             `json:"checked"`
	AlertsSent     int             `json:"alertsSent"`
	Deduplicated   int             `json:"deduplicated"`
	Skipped        bool            `json:"skipped"`
	UrgentProjects []UrgentProject `json:"urgentProjects"`
	Errors         []string        `json:"errors"`

	// ConfigurationErrors counts the Errors entries caused by missing delivery settings.
	ConfigurationErrors int `json:"-"`
}

func NewRunReport(runID string, startedAt time.Time) *RunReport {
	return &RunReport{
		RunID:          runID,
		StartedAt:      startedAt,
		UrgentProjects: make([]UrgentProject, 0),
		Errors:         make([]string, 0),
	}
}

func (r *RunReport) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
}

func (r *RunReport) HasErrors() bool {
	return len(r.Errors) > 0
}

func (r *RunReport) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
