package router

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"rapor-paud/backend/config"
	"rapor-paud/backend/internal/api/handler"
	"rapor-paud/backend/pkg/jwt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type rejectVerifier struct{}

func (rejectVerifier) Verify(_ context.Context, _ string) (*jwt.Claims, error) {
	return nil, errors.New("rejected")
}

func testConfig(authEnabled bool) *config.Config {
	cfg := &config.Config{}
	cfg.Server.CORS.AllowOrigins = []string{"http://localhost:5173"}
	cfg.Server.MaxBodyBytes = 1 << 20
	if authEnabled {
		cfg.Auth.EditorPasswordHash = "$2a$10$placeholder"
		cfg.Auth.JWTSecret = "0123456789abcdef"
	}
	return cfg
}

// 中间件先于处理器拒绝的请求，不需要真实的服务
func newEngine(authEnabled bool) *gin.Engine {
	return Setup(testConfig(authEnabled), &handler.Handler{}, rejectVerifier{}, nil, zap.NewNop())
}

func TestSetup_Health(t *testing.T) {
	r := newEngine(false)
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if got := w.Header().Get("X-Request-ID"); got != "abc-123" {
		t.Errorf("expected request id echoed, got %q", got)
	}
	if w.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("expected security headers")
	}
}

func TestSetup_AuthEnabledRequiresToken(t *testing.T) {
	r := newEngine(true)

	for _, path := range []string{"/api/v1/state", "/api/v1/dashboard", "/api/v1/export/classes/1/recap"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest("GET", path, nil))
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s: expected 401, got %d", path, w.Code)
		}
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/v1/state", nil)
	req.Header.Set("Authorization", "Bearer bad")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for rejected token, got %d", w.Code)
	}
}

func TestSetup_LogoutOnlyWhenAuthEnabled(t *testing.T) {
	w := httptest.NewRecorder()
	newEngine(false).ServeHTTP(w, httptest.NewRequest("POST", "/api/v1/auth/logout", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 without auth, got %d", w.Code)
	}
}

func TestSetup_CORSPreflight(t *testing.T) {
	r := newEngine(false)
	w := httptest.NewRecorder()
	req := httptest.NewRequest("OPTIONS", "/api/v1/state", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("unexpected allow origin %q", got)
	}
	if got := w.Header().Get("Access-Control-Expose-Headers"); got != "Content-Disposition, X-Request-ID" {
		t.Errorf("unexpected expose headers %q", got)
	}
}

func TestSetup_BodyLimit(t *testing.T) {
	cfg := testConfig(false)
	cfg.Server.MaxBodyBytes = 8
	r := Setup(cfg, &handler.Handler{}, rejectVerifier{}, nil, zap.NewNop())

	w := httptest.NewRecorder()
	req := httptest.NewRequest("PUT", "/api/v1/settings", nil)
	req.ContentLength = 1024
	r.ServeHTTP(w, req)
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected 413, got %d", w.Code)
	}
}
