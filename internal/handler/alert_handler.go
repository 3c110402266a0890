package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/KasumiMercury/freelance-deadline-alerts/internal/config"
	"github.com/KasumiMercury/freelance-deadline-alerts/internal/delivery"
	"github.com/KasumiMercury/freelance-deadline-alerts/internal/domain"
	"github.com/KasumiMercury/freelance-deadline-alerts/internal/notification"
	"github.com/KasumiMercury/freelance-deadline-alerts/internal/service/evaluator"
	"github.com/KasumiMercury/freelance-deadline-alerts/internal/service/scheduler"
)

const (
	defaultRecentLimit = 20
	maxRecentLimit     = 100

	modeReal       = "REAL"
	modeSimulation = "SIMULACIÓN"
)

// AlertOptions are the operator defaults the alert endpoints fall back to.
type AlertOptions struct {
	DefaultRecipient string
	Simulation       bool
}

type checkRequest struct {
	Email string          `json:"email"`
	Days  json.RawMessage `json:"days"`
}

type alertResponse struct {
	ID        string           `json:"id"`
	ProjectID string           `json:"projectId"`
	AlertType domain.AlertType `json:"alertType"`
	Message   string           `json:"message"`
	IsRead    bool             `json:"isRead"`
	CreatedAt time.Time        `json:"createdAt"`
}

type AlertHandler struct {
	runner   CheckRunner
	channel  delivery.Channel
	renderer *notification.Renderer
	alerts   domain.AlertStore
	opts     AlertOptions
	clock    func() time.Time
}

func NewAlertHandler(
	runner CheckRunner,
	channel delivery.Channel,
	renderer *notification.Renderer,
	alerts domain.AlertStore,
	opts AlertOptions,
) *AlertHandler {
	if renderer == nil {
		renderer = notification.NewRenderer("")
	}
	if opts.DefaultRecipient == "" {
		opts.DefaultRecipient = config.DefaultAlertRecipient
	}

	return &AlertHandler{
		runner:   runner,
		channel:  channel,
		renderer: renderer,
		alerts:   alerts,
		opts:     opts,
		clock:    time.Now,
	}
}

// HandleCheck runs a check with optional recipient and threshold overrides.
func (h *AlertHandler) HandleCheck(c *gin.Context) {
	ctx := c.Request.Context()

	email, rawDays, err := checkParams(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	days, err := parseDays(rawDays)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	// The run outlives the request so a dropped caller cannot cut a batch short.
	report := h.runner.RunOnce(context.WithoutCancel(ctx), evaluator.RunOptions{
		Recipient: email,
		Threshold: days,
		Trigger:   scheduler.TriggerManual,
	})

	slog.InfoContext(ctx, "manual deadline check completed",
		slog.String("run_id", report.RunID),
		slog.Int("alerts_sent", report.AlertsSent),
		slog.Int("error_count", len(report.Errors)),
	)

	// Configuration errors are reported through the message, not the error list.
	if report.ConfigurationErrors > 0 {
		hidden := *report
		hidden.Errors = []string{}
		c.JSON(http.StatusOK, gin.H{
			"success": false,
			"message": "Verificación completada (configuración pendiente)",
			"result":  hidden,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("Verificación completada. %d alerta(s) enviada(s).", report.AlertsSent),
		"result":  report,
	})
}

// HandleTest sends the sample "[PRUEBA]" email.
func (h *AlertHandler) HandleTest(c *gin.Context) {
	ctx := c.Request.Context()

	email, _, err := checkParams(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	if email == "" {
		email = h.opts.DefaultRecipient
	}

	content, err := h.renderer.RenderTest(email, h.clock())
	if err != nil {
		slog.ErrorContext(ctx, "failed to render test email", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error(), "email": email})
		return
	}

	receipt, err := h.channel.Send(ctx, &delivery.Message{
		To:      email,
		Subject: content.Subject,
		HTML:    content.HTML,
		Text:    content.Text,
	})
	if err != nil {
		slog.WarnContext(ctx, "failed to send test email",
			slog.String("email", email),
			slog.String("error", err.Error()),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error(), "email": email})
		return
	}

	mode := modeReal
	if h.opts.Simulation {
		mode = modeSimulation
	}

	slog.InfoContext(ctx, "test email sent",
		slog.String("email", email),
		slog.String("provider", receipt.Provider),
		slog.String("mode", mode),
	)

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "Correo de prueba enviado exitosamente a " + email,
		"messageId": receipt.MessageID,
		"email":     email,
		"mode":      mode,
	})
}

// HandleRecent lists the latest alert records, newest first.
func (h *AlertHandler) HandleRecent(c *gin.Context) {
	ctx := c.Request.Context()

	limit := defaultRecentLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "limit must be a positive integer"})
			return
		}
		limit = min(parsed, maxRecentLimit)
	}

	alerts, err := h.alerts.ListRecent(ctx, limit)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list recent alerts", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to list recent alerts"})
		return
	}

	resp := make([]alertResponse, 0, len(alerts))
	for _, a := range alerts {
		resp = append(resp, alertResponse{
			ID:        a.ID,
			ProjectID: a.ProjectID,
			AlertType: a.AlertType,
			Message:   a.Message,
			IsRead:    a.IsRead,
			CreatedAt: a.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "alerts": resp})
}

// checkParams reads email and days from the query string on GET and from the
// JSON body on POST. An empty or unparsable POST body counts as no overrides.
func checkParams(c *gin.Context) (string, string, error) {
	if c.Request.Method != http.MethodPost {
		return strings.TrimSpace(c.Query("email")), strings.TrimSpace(c.Query("days")), nil
	}

	var req checkRequest
	if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		slog.DebugContext(c.Request.Context(), "ignoring unparsable request body", slog.String("error", err.Error()))
		return "", "", nil
	}

	days := strings.Trim(strings.TrimSpace(string(req.Days)), `"`)
	if days == "null" {
		days = ""
	}
	return strings.TrimSpace(req.Email), days, nil
}

// parseDays returns nil when no threshold was given. Zero means due today or overdue.
func parseDays(raw string) (*int, error) {
	if raw == "" {
		return nil, nil
	}
	days, err := strconv.Atoi(raw)
	if err != nil || days < 0 {
		return nil, fmt.Errorf("days must be a non-negative integer, got %q", raw)
	}
	return &days, nil
}
