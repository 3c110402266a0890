// Package evaluator runs one deadline check: it loads active projects, picks the
// urgent ones, sends an alert for each that was not alerted recently and returns a
// report of what happened.
package evaluator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/KasumiMercury/freelance-deadline-alerts/internal/config"
	"github.com/KasumiMercury/freelance-deadline-alerts/internal/delivery"
	"github.com/KasumiMercury/freelance-deadline-alerts/internal/domain"
	"github.com/KasumiMercury/freelance-deadline-alerts/internal/notification"
	"github.com/KasumiMercury/freelance-deadline-alerts/internal/observability/metrics"
	"github.com/KasumiMercury/freelance-deadline-alerts/internal/observability/tracing"
	"github.com/KasumiMercury/freelance-deadline-alerts/internal/timepolicy"
)

const defaultThreshold = 3

var ErrFetch = errors.New("failed to fetch projects")

type Config struct {
	Threshold     int
	Statuses      []domain.ProjectStatus
	Recipient     string
	RouteToClient bool
	DedupWindow   time.Duration
}

// ConfigFromAlert maps the loaded alert settings onto the evaluator.
func ConfigFromAlert(cfg *config.AlertConfig) Config {
	return Config{
		Threshold:     cfg.DaysThreshold,
		Statuses:      cfg.Statuses,
		Recipient:     cfg.Recipient,
		RouteToClient: cfg.RouteToClient,
		DedupWindow:   cfg.DedupWindow,
	}
}

// RunOptions are per-run overrides. Zero values fall back to the configured defaults.
// A Threshold of 0 is a valid override and limits the run to projects due today or overdue.
type RunOptions struct {
	Recipient string
	Threshold *int
	Now       time.Time
	Trigger   string
}

type Evaluator struct {
	projects     domain.ProjectRepository
	alerts       domain.AlertStore
	channel      delivery.Channel
	renderer     *notification.Renderer
	alertMetrics *metrics.AlertMetrics
	cfg          Config
	clock        func() time.Time
}

func NewEvaluator(
	projects domain.ProjectRepository,
	alerts domain.AlertStore,
	channel delivery.Channel,
	renderer *notification.Renderer,
	alertMetrics *metrics.AlertMetrics,
	cfg Config,
) *Evaluator {
	if cfg.Threshold <= 0 {
		cfg.Threshold = defaultThreshold
	}
	if len(cfg.Statuses) == 0 {
		cfg.Statuses = domain.DefaultAlertStatuses
	}
	if cfg.Recipient == "" {
		cfg.Recipient = config.DefaultAlertRecipient
	}
	if cfg.DedupWindow <= 0 {
		cfg.DedupWindow = domain.DefaultDedupWindow
	}
	if renderer == nil {
		renderer = notification.NewRenderer("")
	}

	return &Evaluator{
		projects:     projects,
		alerts:       alerts,
		channel:      channel,
		renderer:     renderer,
		alertMetrics: alertMetrics,
		cfg:          cfg,
		clock:        time.Now,
	}
}

// run carries the resolved options of a single invocation.
type run struct {
	report    *domain.RunReport
	now       time.Time
	threshold int
	recipient string
}

func (r *run) thresholds() timepolicy.Thresholds {
	return timepolicy.Thresholds{
		Urgent:   r.threshold,
		Upcoming: max(r.threshold, timepolicy.DefaultThresholds.Upcoming),
	}
}

// Run never returns an error; every failure ends up in the report.
func (e *Evaluator) Run(ctx context.Context, opts RunOptions) *domain.RunReport {
	r := run{
		report:    domain.NewRunReport(uuid.NewString(), e.clock()),
		now:       opts.Now,
		threshold: e.cfg.Threshold,
		recipient: opts.Recipient,
	}
	if r.now.IsZero() {
		r.now = r.report.StartedAt
	}
	if opts.Threshold != nil && *opts.Threshold >= 0 {
		r.threshold = *opts.Threshold
	}

	ctx, span := tracing.StartRunSpan(ctx, r.report.RunID, opts.Trigger, r.threshold, r.now)
	defer span.End()

	slog.InfoContext(ctx, "deadline check started",
		slog.String("run_id", r.report.RunID),
		slog.String("trigger", opts.Trigger),
		slog.Int("threshold_days", r.threshold),
	)

	projects, err := e.projects.ListByStatuses(ctx, e.cfg.Statuses)
	if err != nil {
		slog.ErrorContext(ctx, "failed to fetch projects",
			slog.String("run_id", r.report.RunID),
			slog.String("error", err.Error()),
		)
		r.report.AddError(fmt.Errorf("%w: %w", ErrFetch, err).Error())
		e.finish(ctx, r.report, opts.Trigger, "failed")
		tracing.RecordRunResult(span, 0, 0, 0, len(r.report.Errors), false)
		return r.report
	}

	r.report.Checked = len(projects)
	for _, project := range projects {
		e.evaluate(ctx, &r, project)
	}

	outcome := "ok"
	if r.report.HasErrors() {
		outcome = "partial"
	}
	e.finish(ctx, r.report, opts.Trigger, outcome)
	tracing.RecordRunResult(span, r.report.Checked, r.report.AlertsSent, len(r.report.UrgentProjects), len(r.report.Errors), false)

	return r.report
}

func (e *Evaluator) finish(ctx context.Context, report *domain.RunReport, trigger, outcome string) {
	report.FinishedAt = e.clock()

	if e.alertMetrics != nil {
		e.alertMetrics.RecordRun(ctx, trigger, outcome, report.Checked, report.Duration())
	}

	slog.InfoContext(ctx, "deadline check finished",
		slog.String("run_id", report.RunID),
		slog.String("outcome", outcome),
		slog.Int("checked", report.Checked),
		slog.Int("urgent", len(report.UrgentProjects)),
		slog.Int("alerts_sent", report.AlertsSent),
		slog.Int("deduplicated", report.Deduplicated),
		slog.Int("error_count", len(report.Errors)),
		slog.Int64("duration_ms", report.Duration().Milliseconds()),
	)
}

func (e *Evaluator) evaluate(ctx context.Context, r *run, project domain.Project) {
	defer func() {
		if rec := recover(); rec != nil {
			slog.ErrorContext(ctx, "panic while evaluating project",
				slog.String("project_id", project.ID),
				slog.Any("panic", rec),
			)
			r.report.AddError(fmt.Sprintf("error evaluating project \"%s\": %v", project.Name, rec))
		}
	}()

	due, err := timepolicy.ParseDueDate(project.DueDate, r.now.Location())
	if err != nil {
		slog.DebugContext(ctx, "skipping project with invalid due date",
			slog.String("project_id", project.ID),
			slog.String("due_date", project.DueDate),
		)
		return
	}

	daysUntil := timepolicy.DaysUntil(due, r.now)
	urgency := r.thresholds().ClassifyDays(daysUntil)
	if urgency != timepolicy.UrgencyOverdue && urgency != timepolicy.UrgencyUrgent {
		return
	}

	alertType := domain.AlertTypeForDays(daysUntil)
	urgent := domain.UrgentProject{
		ID:          project.ID,
		Name:        project.Name,
		DueDate:     project.DueDate,
		ClientName:  project.ClientName,
		ClientEmail: project.ClientEmail,
		DaysUntil:   daysUntil,
		Urgency:     urgency.String(),
		AlertType:   alertType,
	}
	defer func() {
		r.report.UrgentProjects = append(r.report.UrgentProjects, urgent)
	}()

	recent, err := e.alerts.HasRecent(ctx, project.ID, alertType, e.cfg.DedupWindow)
	if err != nil {
		// Treated as not recent.
		slog.WarnContext(ctx, "failed to check recent alerts",
			slog.String("project_id", project.ID),
			slog.String("alert_type", alertType.String()),
			slog.String("error", err.Error()),
		)
	} else if recent {
		slog.DebugContext(ctx, "skipping recently alerted project",
			slog.String("project_id", project.ID),
			slog.String("alert_type", alertType.String()),
		)
		r.report.Deduplicated++
		if e.alertMetrics != nil {
			e.alertMetrics.RecordDedupSkip(ctx, alertType.String())
		}
		return
	}

	if err := e.dispatch(ctx, r, project, due, daysUntil, alertType); err != nil {
		if errors.Is(err, delivery.ErrConfiguration) {
			r.report.ConfigurationErrors++
		}
		r.report.AddError(fmt.Sprintf("error sending alert for \"%s\": %v", project.Name, err))
		return
	}

	urgent.Notified = true
	r.report.AlertsSent++

	alert := domain.NewAlert(project.ID, alertType, notification.AlertMessage(project.Name, daysUntil), r.now)
	if err := e.alerts.Record(ctx, alert); err != nil {
		level := slog.LevelWarn
		if errors.Is(err, domain.ErrAlertAlreadyRecorded) {
			level = slog.LevelDebug
		}
		slog.Log(ctx, level, "failed to record alert",
			slog.String("project_id", project.ID),
			slog.String("alert_type", alertType.String()),
			slog.String("error", err.Error()),
		)
	}
}

func (e *Evaluator) dispatch(
	ctx context.Context,
	r *run,
	project domain.Project,
	due time.Time,
	daysUntil int,
	alertType domain.AlertType,
) error {
	ctx, span := tracing.StartDispatchSpan(ctx, project.ID, alertType.String(), daysUntil)
	defer span.End()

	start := time.Now()

	content, err := e.renderer.Render(notification.Fact{
		ProjectName: project.Name,
		ClientName:  project.ClientName,
		DueDate:     due,
		DaysUntil:   daysUntil,
		GeneratedAt: r.now,
	})
	if err != nil {
		tracing.RecordDispatchResult(span, "", "", err)
		return err
	}

	receipt, err := e.channel.Send(ctx, &delivery.Message{
		To:      e.recipientFor(project, r.recipient),
		Subject: content.Subject,
		HTML:    content.HTML,
		Text:    content.Text,
	})

	if e.alertMetrics != nil {
		e.alertMetrics.RecordDispatchDuration(ctx, alertType.String(), time.Since(start))
	}

	if err != nil {
		tracing.RecordDispatchResult(span, "", "", err)
		if e.alertMetrics != nil {
			e.alertMetrics.RecordDeliveryFailure(ctx, alertType.String(), failureKind(err))
		}
		slog.WarnContext(ctx, "failed to send alert",
			slog.String("project_id", project.ID),
			slog.String("alert_type", alertType.String()),
			slog.String("error", err.Error()),
		)
		return err
	}

	tracing.RecordDispatchResult(span, receipt.Provider, receipt.MessageID, nil)
	if e.alertMetrics != nil {
		e.alertMetrics.RecordAlertSent(ctx, receipt.Provider, alertType.String())
	}
	slog.InfoContext(ctx, "alert sent",
		slog.String("project_id", project.ID),
		slog.String("alert_type", alertType.String()),
		slog.Int("days_until", daysUntil),
		slog.String("countdown", timepolicy.FormatCountdown(due, r.now)),
		slog.String("provider", receipt.Provider),
		slog.String("message_id", receipt.MessageID),
	)

	return nil
}

// recipientFor resolves the address: explicit override, then the client when
// routing to clients is enabled, then the configured operator address.
func (e *Evaluator) recipientFor(project domain.Project, override string) string {
	if override != "" {
		return override
	}
	if e.cfg.RouteToClient && project.ClientEmail != "" {
		return project.ClientEmail
	}
	return e.cfg.Recipient
}

func failureKind(err error) string {
	var deliveryErr *delivery.Error
	if errors.As(err, &deliveryErr) {
		return string(deliveryErr.Kind)
	}
	return "unknown"
}
