package domain

import (
	"time"

	"github.com/google/uuid"
)

type AlertType string

const (
	AlertTypeDeadlineApproaching AlertType = "deadline_approaching"
	AlertTypeOverdue             AlertType = "overdue"
	AlertTypeStatusChange        AlertType = "status_change"
	AlertTypeCustom              AlertType = "custom"
)

func (t AlertType) String() string {
	return string(t)
}

// AlertTypeForDays maps a day distance to the alert kind the evaluator raises.
func AlertTypeForDays(daysUntil int) AlertType {
	if daysUntil < 0 {
		return AlertTypeOverdue
	}
	return AlertTypeDeadlineApproaching
}

type Alert struct {
	ID        string
	ProjectID string
	AlertType AlertType
	Message   string
	IsRead    bool
	CreatedAt time.Time
}

func NewAlert(projectID string, alertType AlertType, message string, now time.Time) *Alert {
	return &Alert{
		ID:        uuid.NewString(),
		ProjectID: projectID,
		AlertType: alertType,
		Message:   message,
		IsRead:    false,
		CreatedAt: now.UTC(),
	}
}
