package handler_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/expensesink/expensesink-api/internal/handler"
	"github.com/expensesink/expensesink-api/internal/infra/observability"
	"github.com/expensesink/expensesink-api/internal/service"

	"go.uber.org/zap"
)

func testRouter() http.Handler {
	return handler.NewRouter(handler.Deps{
		Auth:    service.NewAuthService("test-secret", true, zap.NewNop()),
		Metrics: observability.NewMetrics(),
		Logger:  zap.NewNop(),
	})
}

func TestHealthz(t *testing.T) {
	router := testRouter()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestReadyz(t *testing.T) {
	router := testRouter()

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestMetrics(t *testing.T) {
	router := testRouter()

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestEngineMetricsSnapshot(t *testing.T) {
	router := testRouter()

	req := httptest.NewRequest(http.MethodGet, "/v1/metrics/engine", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestProtectedRouteRequiresToken(t *testing.T) {
	router := testRouter()

	req := httptest.NewRequest(http.MethodGet, "/v1/expenses", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}
