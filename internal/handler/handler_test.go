package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/mock/gomock"

	"github.com/KasumiMercury/freelance-deadline-alerts/internal/delivery"
	"github.com/KasumiMercury/freelance-deadline-alerts/internal/domain"
	"github.com/KasumiMercury/freelance-deadline-alerts/internal/notification"
	"github.com/KasumiMercury/freelance-deadline-alerts/internal/service/evaluator"
	"github.com/KasumiMercury/freelance-deadline-alerts/internal/service/scheduler"
)

type testDeps struct {
	runner  *MockCheckRunner
	channel *delivery.MockChannel
	alerts  *domain.MockAlertStore
}

func setupRouter(t *testing.T, secret string, opts AlertOptions) (*gin.Engine, testDeps) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ctrl := gomock.NewController(t)
	deps := testDeps{
		runner:  NewMockCheckRunner(ctrl),
		channel: delivery.NewMockChannel(ctrl),
		alerts:  domain.NewMockAlertStore(ctrl),
	}

	cron := NewCronHandler(deps.runner)
	alerts := NewAlertHandler(deps.runner, deps.channel, notification.NewRenderer(""), deps.alerts, opts)

	r := gin.New()
	RegisterRoutes(r, cron, alerts, secret)

	return r, deps
}

func sampleReport() *domain.RunReport {
	report := domain.NewRunReport("run-123", time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC))
	report.Checked = 3
	report.AlertsSent = 1
	report.UrgentProjects = append(report.UrgentProjects, domain.UrgentProject{
		ID:        "p1",
		Name:      "Web",
		DueDate:   "2025-01-15",
		DaysUntil: 0,
		AlertType: domain.AlertTypeDeadlineApproaching,
		Notified:  true,
	})
	report.FinishedAt = report.StartedAt.Add(time.Second)
	return report
}

func intPtr(v int) *int {
	return &v
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
	}
	return body
}

func TestCronSecretGate(t *testing.T) {
	tests := []struct {
		name       string
		secret     string
		header     string
		wantStatus int
	}{
		{name: "no secret configured", secret: "", header: "", wantStatus: http.StatusOK},
		{name: "matching bearer", secret: "s3cret", header: "Bearer s3cret", wantStatus: http.StatusOK},
		{name: "missing header", secret: "s3cret", header: "", wantStatus: http.StatusUnauthorized},
		{name: "wrong secret", secret: "s3cret", header: "Bearer nope", wantStatus: http.StatusUnauthorized},
		{name: "missing scheme", secret: "s3cret", header: "s3cret", wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, deps := setupRouter(t, tt.secret, AlertOptions{})
			if tt.wantStatus == http.StatusOK {
				deps.runner.EXPECT().RunOnce(gomock.Any(), gomock.Any()).Return(sampleReport())
			}

			req := httptest.NewRequest(http.MethodGet, "/api/cron/check-deadlines", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusUnauthorized {
				if body := decode(t, w); body["error"] != "Unauthorized" {
					t.Errorf("error = %v, want Unauthorized", body["error"])
				}
			}
		})
	}
}

func TestHandleCheckDeadlines_Payload(t *testing.T) {
	for _, method := range []string{http.MethodGet, http.MethodPost} {
		t.Run(method, func(t *testing.T) {
			r, deps := setupRouter(t, "", AlertOptions{})
			deps.runner.EXPECT().RunOnce(gomock.Any(), evaluator.RunOptions{Trigger: scheduler.TriggerCron}).Return(sampleReport())

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(method, "/api/cron/check-deadlines", nil))

			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", w.Code)
			}

			body := decode(t, w)
			if body["success"] != true {
				t.Errorf("success = %v", body["success"])
			}
			if body["runId"] != "run-123" {
				t.Errorf("runId = %v", body["runId"])
			}
			if body["checked"] != float64(3) || body["alertsSent"] != float64(1) {
				t.Errorf("checked/alertsSent = %v/%v", body["checked"], body["alertsSent"])
			}
			if body["skipped"] != false {
				t.Errorf("skipped = %v", body["skipped"])
			}
			if _, err := time.Parse(time.RFC3339Nano, body["timestamp"].(string)); err != nil {
				t.Errorf("timestamp %v is not RFC3339: %v", body["timestamp"], err)
			}
			urgent, ok := body["urgentProjects"].([]any)
			if !ok || len(urgent) != 1 {
				t.Fatalf("urgentProjects = %v", body["urgentProjects"])
			}
			if first := urgent[0].(map[string]any); first["dueDate"] != "2025-01-15" || first["alertType"] != "deadline_approaching" {
				t.Errorf("urgentProjects[0] = %v", first)
			}
			if errs, ok := body["errors"].([]any); !ok || len(errs) != 0 {
				t.Errorf("errors = %v, want empty list", body["errors"])
			}
		})
	}
}

func TestHandleCheck_Overrides(t *testing.T) {
	tests := []struct {
		name     string
		method   string
		target   string
		body     string
		wantOpts evaluator.RunOptions
	}{
		{
			name:     "no overrides",
			method:   http.MethodGet,
			target:   "/api/alerts/check",
			wantOpts: evaluator.RunOptions{Trigger: scheduler.TriggerManual},
		},
		{
			name:     "query overrides",
			method:   http.MethodGet,
			target:   "/api/alerts/check?email=me@example.com&days=7",
			wantOpts: evaluator.RunOptions{Recipient: "me@example.com", Threshold: intPtr(7), Trigger: scheduler.TriggerManual},
		},
		{
			name:     "body overrides",
			method:   http.MethodPost,
			target:   "/api/alerts/check",
			body:     `{"email":"me@example.com","days":5}`,
			wantOpts: evaluator.RunOptions{Recipient: "me@example.com", Threshold: intPtr(5), Trigger: scheduler.TriggerManual},
		},
		{
			name:     "quoted days in body",
			method:   http.MethodPost,
			target:   "/api/alerts/check",
			body:     `{"days":"2"}`,
			wantOpts: evaluator.RunOptions{Threshold: intPtr(2), Trigger: scheduler.TriggerManual},
		},
		{
			name:     "zero days means due today or overdue",
			method:   http.MethodGet,
			target:   "/api/alerts/check?days=0",
			wantOpts: evaluator.RunOptions{Threshold: intPtr(0), Trigger: scheduler.TriggerManual},
		},
		{
			name:     "unparsable body",
			method:   http.MethodPost,
			target:   "/api/alerts/check",
			body:     `not json`,
			wantOpts: evaluator.RunOptions{Trigger: scheduler.TriggerManual},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, deps := setupRouter(t, "", AlertOptions{})
			deps.runner.EXPECT().RunOnce(gomock.Any(), tt.wantOpts).Return(sampleReport())

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(tt.method, tt.target, strings.NewReader(tt.body)))

			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
			}

			body := decode(t, w)
			if body["success"] != true {
				t.Errorf("success = %v", body["success"])
			}
			if body["message"] != "Verificación completada. 1 alerta(s) enviada(s)." {
				t.Errorf("message = %v", body["message"])
			}
			result := body["result"].(map[string]any)
			if result["runId"] != "run-123" {
				t.Errorf("result.runId = %v", result["runId"])
			}
		})
	}
}

func TestHandleCheck_BadDays(t *testing.T) {
	for _, target := range []string{
		"/api/alerts/check?days=abc",
		"/api/alerts/check?days=-1",
		"/api/alerts/check?days=2.5",
	} {
		t.Run(target, func(t *testing.T) {
			r, _ := setupRouter(t, "", AlertOptions{})

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))

			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
		})
	}
}

func TestHandleCheck_HidesConfigurationErrors(t *testing.T) {
	r, deps := setupRouter(t, "", AlertOptions{})

	report := sampleReport()
	report.AlertsSent = 0
	report.AddError(`error sending alert for "Web": RESEND_API_KEY is not set`)
	report.ConfigurationErrors = 1
	deps.runner.EXPECT().RunOnce(gomock.Any(), gomock.Any()).Return(report)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/alerts/check", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	body := decode(t, w)
	if body["success"] != false {
		t.Errorf("success = %v, want false", body["success"])
	}
	if body["message"] != "Verificación completada (configuración pendiente)" {
		t.Errorf("message = %v", body["message"])
	}
	if errs := body["result"].(map[string]any)["errors"].([]any); len(errs) != 0 {
		t.Errorf("errors = %v, want hidden", errs)
	}
}

func TestHandleCheck_ReportsOtherErrors(t *testing.T) {
	r, deps := setupRouter(t, "", AlertOptions{})

	report := sampleReport()
	report.AddError(`error sending alert for "configuration error review": resend provider error (status 422): bad address`)
	deps.runner.EXPECT().RunOnce(gomock.Any(), gomock.Any()).Return(report)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/alerts/check", nil))

	body := decode(t, w)
	if body["success"] != true {
		t.Errorf("success = %v, want true", body["success"])
	}
	if errs := body["result"].(map[string]any)["errors"].([]any); len(errs) != 1 {
		t.Errorf("errors = %v, want the provider error", errs)
	}
}

func TestRunsSurviveCallerCancellation(t *testing.T) {
	for _, target := range []string{"/api/cron/check-deadlines", "/api/alerts/check"} {
		t.Run(target, func(t *testing.T) {
			r, deps := setupRouter(t, "", AlertOptions{})

			reqCtx, cancel := context.WithCancel(context.Background())
			defer cancel()

			deps.runner.EXPECT().RunOnce(gomock.Any(), gomock.Any()).DoAndReturn(
				func(ctx context.Context, _ evaluator.RunOptions) *domain.RunReport {
					// The caller hangs up while the run is in progress.
					cancel()
					if err := ctx.Err(); err != nil {
						t.Errorf("run context error = %v after the caller went away", err)
					}
					return sampleReport()
				},
			)

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, target, nil).WithContext(reqCtx)
			r.ServeHTTP(w, req)

			if w.Code != http.StatusOK {
				t.Errorf("status = %d, want 200", w.Code)
			}
		})
	}
}

func TestHandleTest(t *testing.T) {
	tests := []struct {
		name       string
		opts       AlertOptions
		target     string
		sendErr    error
		wantStatus int
		wantEmail  string
		wantMode   string
	}{
		{
			name:       "simulation to default recipient",
			opts:       AlertOptions{Simulation: true},
			target:     "/api/alerts/test",
			wantStatus: http.StatusOK,
			wantEmail:  "admin@example.com",
			wantMode:   "SIMULACIÓN",
		},
		{
			name:       "real delivery to explicit recipient",
			opts:       AlertOptions{DefaultRecipient: "ops@example.com"},
			target:     "/api/alerts/test?email=me@example.com",
			wantStatus: http.StatusOK,
			wantEmail:  "me@example.com",
			wantMode:   "REAL",
		},
		{
			name:       "delivery failure",
			opts:       AlertOptions{DefaultRecipient: "ops@example.com"},
			target:     "/api/alerts/test",
			sendErr:    &delivery.Error{Kind: delivery.KindProvider, Provider: "resend", StatusCode: 422, Message: "invalid from"},
			wantStatus: http.StatusInternalServerError,
			wantEmail:  "ops@example.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, deps := setupRouter(t, "", tt.opts)

			var sent *delivery.Message
			deps.channel.EXPECT().Send(gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, msg *delivery.Message) (*delivery.Receipt, error) {
					sent = msg
					if tt.sendErr != nil {
						return nil, tt.sendErr
					}
					return &delivery.Receipt{MessageID: "msg-9", Provider: "simulation"}, nil
				})

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.target, nil))

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", w.Code, tt.wantStatus, w.Body.String())
			}
			if sent.To != tt.wantEmail {
				t.Errorf("To = %q, want %q", sent.To, tt.wantEmail)
			}
			if !strings.HasPrefix(sent.Subject, "[PRUEBA] ") {
				t.Errorf("Subject = %q, want [PRUEBA] prefix", sent.Subject)
			}

			body := decode(t, w)
			if body["email"] != tt.wantEmail {
				t.Errorf("email = %v, want %s", body["email"], tt.wantEmail)
			}
			if tt.sendErr != nil {
				if body["success"] != false || !strings.Contains(body["error"].(string), "invalid from") {
					t.Errorf("unexpected failure body %v", body)
				}
				return
			}
			if body["success"] != true || body["messageId"] != "msg-9" || body["mode"] != tt.wantMode {
				t.Errorf("unexpected body %v", body)
			}
			if body["message"] != "Correo de prueba enviado exitosamente a "+tt.wantEmail {
				t.Errorf("message = %v", body["message"])
			}
		})
	}
}

func TestHandleRecent(t *testing.T) {
	created := time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC)

	t.Run("default limit", func(t *testing.T) {
		r, deps := setupRouter(t, "", AlertOptions{})
		deps.alerts.EXPECT().ListRecent(gomock.Any(), 20).Return([]domain.Alert{
			{ID: "a1", ProjectID: "p1", AlertType: domain.AlertTypeOverdue, Message: "m", CreatedAt: created},
		}, nil)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/alerts/recent", nil))

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}
		alerts := decode(t, w)["alerts"].([]any)
		if len(alerts) != 1 {
			t.Fatalf("alerts = %v", alerts)
		}
		first := alerts[0].(map[string]any)
		if first["projectId"] != "p1" || first["alertType"] != "overdue" || first["isRead"] != false {
			t.Errorf("alerts[0] = %v", first)
		}
	})

	t.Run("limit is capped", func(t *testing.T) {
		r, deps := setupRouter(t, "", AlertOptions{})
		deps.alerts.EXPECT().ListRecent(gomock.Any(), 100).Return(nil, nil)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/alerts/recent?limit=500", nil))

		if w.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", w.Code)
		}
	})

	t.Run("invalid limit", func(t *testing.T) {
		r, _ := setupRouter(t, "", AlertOptions{})

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/alerts/recent?limit=x", nil))

		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", w.Code)
		}
	})

	t.Run("store failure", func(t *testing.T) {
		r, deps := setupRouter(t, "", AlertOptions{})
		deps.alerts.EXPECT().ListRecent(gomock.Any(), gomock.Any()).Return(nil, errors.New("db down"))

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/alerts/recent", nil))

		if w.Code != http.StatusInternalServerError {
			t.Errorf("status = %d, want 500", w.Code)
		}
	})
}
