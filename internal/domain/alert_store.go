package domain

import (
	"context"
	"time"
)

//go:generate mockgen -source=alert_store.go -destination=alert_store_mock.go -package=domain

// DefaultDedupWindow is the rolling lookback within which a (project, alert type) pair
// is notified at most once.
const DefaultDedupWindow = 24 * time.Hour

type AlertStore interface {
	HasRecent(ctx context.Context, projectID string, alertType AlertType, window time.Duration) (bool, error)
	Record(ctx context.Context, alert *Alert) error
	ListRecent(ctx context.Context, limit int) ([]Alert, error)
}
