package health

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/KasumiMercury/freelance-deadline-alerts/internal/infra/repository"
	"github.com/KasumiMercury/freelance-deadline-alerts/internal/testutil"
)

func TestCheck_DatabaseHealthy(t *testing.T) {
	db := testutil.SetupSQLite(t)

	status := NewChecker(nil, db, "1.0.0").Check(context.Background())

	if status.Status != StatusHealthy {
		t.Errorf("Status = %s, want healthy", status.Status)
	}
	if status.Version != "1.0.0" {
		t.Errorf("Version = %q", status.Version)
	}
	if got := status.Checks["database"].Status; got != StatusHealthy {
		t.Errorf("database check = %s, want healthy", got)
	}
	if _, ok := status.Checks["redis"]; ok {
		t.Error("redis should not be checked when no client is configured")
	}
}

func TestReadyHandler_DatabaseDown(t *testing.T) {
	gin.SetMode(gin.TestMode)

	db := testutil.SetupSQLite(t)
	if err := repository.Close(db); err != nil {
		t.Fatalf("failed to close database: %v", err)
	}

	r := gin.New()
	r.GET("/health/ready", NewChecker(nil, db, "dev").ReadyHandler())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", w.Code)
	}

	var body HealthStatus
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.Checks["database"].Status != StatusUnhealthy || body.Checks["database"].Error == "" {
		t.Errorf("database check = %+v", body.Checks["database"])
	}
}

func TestLiveHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/health/live", NewChecker(nil, nil, "dev").LiveHandler())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}
