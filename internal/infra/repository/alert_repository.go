package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/KasumiMercury/freelance-deadline-alerts/internal/domain"
)

const defaultRecentAlertsLimit = 20

type alertRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewAlertRepository(db *gorm.DB) domain.AlertStore {
	return &alertRepository{
		db:  db,
		now: time.Now,
	}
}

func (r *alertRepository) HasRecent(ctx context.Context, projectID string, alertType domain.AlertType, window time.Duration) (bool, error) {
	if window <= 0 {
		window = domain.DefaultDedupWindow
	}
	since := r.now().Add(-window).UTC()

	var count int64
	err := r.db.WithContext(ctx).
		Model(&alertRecord{}).
		Where("project_id = ? AND alert_type = ? AND created_at >= ?", projectID, alertType.String(), since).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to look up recent alerts: %w", err)
	}

	return count > 0, nil
}

func (r *alertRepository) Record(ctx context.Context, alert *domain.Alert) error {
	if alert == nil || alert.ID == "" || alert.ProjectID == "" {
		return ErrInvalidAlertData
	}

	createdAt := alert.CreatedAt
	if createdAt.IsZero() {
		createdAt = r.now()
	}

	record := alertRecord{
		ID:        alert.ID,
		ProjectID: alert.ProjectID,
		AlertType: alert.AlertType.String(),
		Message:   alert.Message,
		IsRead:    alert.IsRead,
		CreatedAt: createdAt.UTC(),
	}

	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return fmt.Errorf("failed to record alert: %w", err)
	}
	alert.CreatedAt = record.CreatedAt

	return nil
}

func (r *alertRepository) ListRecent(ctx context.Context, limit int) ([]domain.Alert, error) {
	if limit <= 0 {
		limit = defaultRecentAlertsLimit
	}

	var records []alertRecord
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list recent alerts: %w", err)
	}

	alerts := make([]domain.Alert, 0, len(records))
	for _, rec := range records {
		alerts = append(alerts, domain.Alert{
			ID:        rec.ID,
			ProjectID: rec.ProjectID,
			AlertType: domain.AlertType(rec.AlertType),
			Message:   rec.Message,
			IsRead:    rec.IsRead,
			CreatedAt: rec.CreatedAt,
		})
	}

	return alerts, nil
}
