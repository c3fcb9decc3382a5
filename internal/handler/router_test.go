package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hitoshi/tasuku/internal/metrics"
	"github.com/hitoshi/tasuku/internal/middleware"
	"github.com/hitoshi/tasuku/internal/model"
	"github.com/prometheus/client_golang/prometheus"
)

// --- モック定義 ---

type mockTokenVerifier struct {
	verifyFn func(tokenString string) (int64, error)
}

func (m *mockTokenVerifier) Verify(tokenString string) (int64, error) {
	if m.verifyFn != nil {
		return m.verifyFn(tokenString)
	}
	return 0, errors.New("invalid token")
}

type mockUserFinder struct {
	findByIDFn func(ctx context.Context, id int64) (*model.User, error)
}

func (m *mockUserFinder) FindByID(ctx context.Context, id int64) (*model.User, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

type mockHealthChecker struct {
	pingFn func(ctx context.Context) error
}

func (m *mockHealthChecker) PingContext(ctx context.Context) error {
	if m.pingFn != nil {
		return m.pingFn(ctx)
	}
	return nil
}

// --- テストヘルパー ---

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	registry := prometheus.NewRegistry()

	rl := middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig(120))
	t.Cleanup(rl.Stop)

	verifier := &mockTokenVerifier{
		verifyFn: func(tokenString string) (int64, error) {
			if tokenString == "valid-token" {
				return 1, nil
			}
			return 0, errors.New("invalid token")
		},
	}
	users := &mockUserFinder{
		findByIDFn: func(ctx context.Context, id int64) (*model.User, error) {
			return &model.User{ID: id, Email: "test@example.com"}, nil
		},
	}

	todoSvc := &mockTodoService{
		listFn: func(ctx context.Context, userID int64) ([]*model.Todo, error) {
			return []*model.Todo{{ID: 1, Title: "task", UserID: userID}}, nil
		},
	}
	authSvc := &mockAuthService{
		authorizationURLFn: func() string {
			return "https://accounts.google.com/o/oauth2/auth?client_id=test"
		},
	}

	return NewRouter(&RouterDeps{
		Logger:            slog.Default(),
		CORSAllowedOrigin: "http://localhost:3000",
		TokenVerifier:     verifier,
		UserFinder:        users,
		RateLimiter:       rl,
		AuthService:       authSvc,
		AuthConfig:        AuthHandlerConfig{FrontendOrigin: "http://localhost:3000"},
		TodoService:       todoSvc,
		HealthChecker:     &mockHealthChecker{},
		MetricsCollector:  metrics.NewCollector(registry),
		MetricsGatherer:   registry,
	})
}

// --- テスト ---

func TestRouter_Root_NoAuthRequired(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var result map[string]string
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if result["message"] != "Todo API is running" {
		t.Errorf("message = %q", result["message"])
	}
}

func TestRouter_Health_NoAuthRequired(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestRouter_Metrics_Exposed(t *testing.T) {
	router := newTestRouter(t)

	// メトリクス収集対象のリクエストを1件発生させる
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if !strings.Contains(w.Body.String(), "tasuku_http_requests_total") {
		t.Error("metrics output should contain tasuku_http_requests_total")
	}
}

func TestRouter_GoogleLogin_NoAuthRequired(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/google", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestRouter_ProtectedRoutes_WithoutToken_Return401(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/auth/me"},
		{http.MethodPost, "/api/auth/logout"},
		{http.MethodGet, "/api/todos"},
		{http.MethodPost, "/api/todos"},
		{http.MethodGet, "/api/todos/1"},
		{http.MethodPut, "/api/todos/1"},
		{http.MethodDelete, "/api/todos/1"},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(tt.method, tt.path, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: status = %d, want %d", tt.method, tt.path, w.Code, http.StatusUnauthorized)
		}
	}
}

func TestRouter_ProtectedRoute_WithValidToken_Succeeds(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/todos", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var todos []todoResponse
	if err := json.NewDecoder(w.Body).Decode(&todos); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(todos) != 1 {
		t.Errorf("len(todos) = %d, want 1", len(todos))
	}
}

func TestRouter_SecurityHeaders_AppliedToAllRoutes(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q, want nosniff", got)
	}
	if got := w.Header().Get("X-Request-ID"); got == "" {
		t.Error("expected X-Request-ID header")
	}
}

func TestRouter_UnknownRoute_Returns404(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/no/such/route", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}
