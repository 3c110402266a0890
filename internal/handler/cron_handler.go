package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/KasumiMercury/freelance-deadline-alerts/internal/domain"
	"github.com/KasumiMercury/freelance-deadline-alerts/internal/service/evaluator"
	"github.com/KasumiMercury/freelance-deadline-alerts/internal/service/scheduler"
)

//go:generate mockgen -source=cron_handler.go -destination=cron_handler_mock.go -package=handler

// CheckRunner performs one guarded deadline check.
type CheckRunner interface {
	RunOnce(ctx context.Context, opts evaluator.RunOptions) *domain.RunReport
}

type cronResponse struct {
	Success        bool                   `json:"success"`
	Timestamp      string                 `json:"timestamp"`
	RunID          string                 `json:"runId"`
	Checked        int                    `json:"checked"`
	AlertsSent     int                    `json:"alertsSent"`
	Deduplicated   int                    `json:"deduplicated"`
	UrgentProjects []domain.UrgentProject `json:"urgentProjects"`
	Errors         []string               `json:"errors"`
	Skipped        bool                   `json:"skipped"`
}

type CronHandler struct {
	runner CheckRunner
	clock  func() time.Time
}

func NewCronHandler(runner CheckRunner) *CronHandler {
	return &CronHandler{
		runner: runner,
		clock:  time.Now,
	}
}

// HandleCheckDeadlines runs the full check for an external scheduler.
func (h *CronHandler) HandleCheckDeadlines(c *gin.Context) {
	ctx := c.Request.Context()

	report := h.runner.RunOnce(context.WithoutCancel(ctx), evaluator.RunOptions{Trigger: scheduler.TriggerCron})

	slog.InfoContext(ctx, "cron deadline check completed",
		slog.String("run_id", report.RunID),
		slog.Int("checked", report.Checked),
		slog.Int("alerts_sent", report.AlertsSent),
		slog.Bool("skipped", report.Skipped),
	)

	c.JSON(http.StatusOK, cronResponse{
		Success:        true,
		Timestamp:      h.clock().UTC().Format(time.RFC3339Nano),
		RunID:          report.RunID,
		Checked:        report.Checked,
		AlertsSent:     report.AlertsSent,
		Deduplicated:   report.Deduplicated,
		UrgentProjects: report.UrgentProjects,
		Errors:         report.Errors,
		Skipped:        report.Skipped,
	})
}
