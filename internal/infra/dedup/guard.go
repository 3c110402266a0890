// Package dedup layers redis on top of the alert table so that concurrent runs agree on
// which alerts were already raised.
package dedup

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/KasumiMercury/freelance-deadline-alerts/internal/domain"
)

const dedupKeyPrefix = "alerts:dedup:"

type RedisGuard struct {
	client *redis.Client
	store  domain.AlertStore
	window time.Duration
}

func NewRedisGuard(client *redis.Client, store domain.AlertStore, window time.Duration) *RedisGuard {
	if window <= 0 {
		window = domain.DefaultDedupWindow
	}
	return &RedisGuard{
		client: client,
		store:  store,
		window: window,
	}
}

func dedupKey(projectID string, alertType domain.AlertType) string {
	return fmt.Sprintf("%s%s:%s", dedupKeyPrefix, projectID, alertType)
}

// HasRecent answers from redis when the key is present and falls back to the table
// otherwise, so alerts recorded before redis was introduced still count.
func (g *RedisGuard) HasRecent(ctx context.Context, projectID string, alertType domain.AlertType, window time.Duration) (bool, error) {
	exists, err := g.client.Exists(ctx, dedupKey(projectID, alertType)).Result()
	if err != nil {
		slog.WarnContext(ctx, "dedup key lookup failed, using alert table",
			slog.String("project_id", projectID),
			slog.String("alert_type", alertType.String()),
			slog.String("error", err.Error()),
		)
	} else if exists > 0 {
		return true, nil
	}

	return g.store.HasRecent(ctx, projectID, alertType, window)
}

// Record claims the (project, alert type) key for the dedup window and writes the alert
// row only when the claim succeeds. A lost claim returns domain.ErrAlertAlreadyRecorded.
func (g *RedisGuard) Record(ctx context.Context, alert *domain.Alert) error {
	if alert == nil {
		return g.store.Record(ctx, alert)
	}

	key := dedupKey(alert.ProjectID, alert.AlertType)

	claimed, err := g.client.SetNX(ctx, key, alert.ID, g.window).Result()
	if err != nil {
		slog.WarnContext(ctx, "dedup claim failed, recording without it",
			slog.String("project_id", alert.ProjectID),
			slog.String("alert_id", alert.ID),
			slog.String("error", err.Error()),
		)
		return g.store.Record(ctx, alert)
	}
	if !claimed {
		return domain.ErrAlertAlreadyRecorded
	}

	if err := g.store.Record(ctx, alert); err != nil {
		if delErr := g.client.Del(ctx, key).Err(); delErr != nil {
			slog.WarnContext(ctx, "failed to release dedup claim",
				slog.String("key", key),
				slog.String("error", delErr.Error()),
			)
		}
		return err
	}

	return nil
}

func (g *RedisGuard) ListRecent(ctx context.Context, limit int) ([]domain.Alert, error) {
	return g.store.ListRecent(ctx, limit)
}
