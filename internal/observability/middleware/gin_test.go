package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/KasumiMercury/freelance-deadline-alerts/internal/observability/logging"
)

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(Gin(GinConfig{
		SkipPaths:  []string{"/health"},
		Module:     logging.ModuleHTTP,
		TracerName: "test",
	}))
	r.Use(PanicRecoveryGin())

	r.GET("/health", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	r.GET("/module", func(c *gin.Context) {
		module, _ := logging.ModuleFromContext(c.Request.Context())
		c.String(http.StatusOK, string(module))
	})
	r.GET("/panic", func(c *gin.Context) {
		panic("boom")
	})

	return r
}

func TestGin_SetsModuleOnRequestContext(t *testing.T) {
	r := newTestRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/module", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if w.Body.String() != string(logging.ModuleHTTP) {
		t.Errorf("module = %q, want %q", w.Body.String(), logging.ModuleHTTP)
	}
}

func TestGin_SkipPathStillServed(t *testing.T) {
	r := newTestRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestPanicRecoveryGin(t *testing.T) {
	r := newTestRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
	if !strings.Contains(w.Body.String(), `"success":false`) {
		t.Errorf("body = %s, want success=false", w.Body.String())
	}
}
