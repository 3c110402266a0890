package domain

import "time"

// ProjectStatus is the workflow state of a project as stored by the web application.
type ProjectStatus string

const (
	ProjectStatusPending    ProjectStatus = "pending"
	ProjectStatusInProgress ProjectStatus = "in_progress"
	ProjectStatusCompleted  ProjectStatus = "completed"
	ProjectStatusDelayed    ProjectStatus = "delayed"
	ProjectStatusReview     ProjectStatus = "review"
	ProjectStatusPlanning   ProjectStatus = "planning"
)

func (s ProjectStatus) String() string {
	return string(s)
}

func (s ProjectStatus) IsValid() bool {
	switch s {
	case ProjectStatusPending, ProjectStatusInProgress, ProjectStatusCompleted,
		ProjectStatusDelayed, ProjectStatusReview, ProjectStatusPlanning:
		return true
	}
	return false
}

// DefaultAlertStatuses are the statuses eligible for deadline alerts unless configured otherwise.
var DefaultAlertStatuses = []ProjectStatus{ProjectStatusPending, ProjectStatusInProgress}

type Client struct {
	ID    string
	Name  string
	Email string
}

// Project is the read model the evaluator works on. DueDate is kept as the raw
// persisted value; parsing it is the evaluator's job so bad rows can be skipped.
type Project struct {
	ID          string
	Name        string
	DueDate     string
	Status      ProjectStatus
	ClientID    string
	ClientName  string
	ClientEmail string
	CreatedAt   time.Time
}
