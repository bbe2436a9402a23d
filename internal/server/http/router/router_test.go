package router

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/gopherpos/internal/domain/model"
	"github.com/polkiloo/gopherpos/internal/metrics"
	testhelpers "github.com/polkiloo/gopherpos/internal/test"
)

func newEngine(facade *testhelpers.POSFacadeStub) (*gin.Engine, *metrics.Metrics) {
	m := metrics.New()
	engine := Setup(Params{
		Facade:  facade,
		Logger:  slog.New(slog.NewJSONHandler(io.Discard, nil)),
		Metrics: m,
	})
	gin.SetMode(gin.TestMode)
	return engine, m
}

func TestSetupRoutes(t *testing.T) {
	facade := &testhelpers.POSFacadeStub{}
	engine, _ := newEngine(facade)

	body := `{"lines":[{"product_id":1,"quantity":"1"}],"payment_method":"card"}`
	req := httptest.NewRequest(http.MethodPost, "/api/checkout", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Operator-ID", "5")
	resp := httptest.NewRecorder()
	engine.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200 for checkout, got %d: %s", resp.Code, resp.Body.String())
	}
	if resp.Header().Get("X-Request-ID") == "" {
		t.Fatal("expected request id header")
	}
	if len(facade.Requests) != 1 || facade.Requests[0].OperatorID != 5 {
		t.Fatalf("expected operator 5 to reach the facade, got %+v", facade.Requests)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/orders/ORD-9", nil)
	resp = httptest.NewRecorder()
	engine.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200 for order lookup, got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	resp = httptest.NewRecorder()
	engine.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200 for healthz, got %d", resp.Code)
	}
}

func TestCheckoutRequiresOperator(t *testing.T) {
	facade := &testhelpers.POSFacadeStub{}
	engine, _ := newEngine(facade)

	req := httptest.NewRequest(http.MethodPost, "/api/checkout", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	engine.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without operator, got %d", resp.Code)
	}
	if len(facade.Requests) != 0 {
		t.Fatal("facade must not be reached without operator")
	}
}

func TestHealthzReportsUnavailable(t *testing.T) {
	facade := &testhelpers.POSFacadeStub{ReadyFn: func(context.Context) error { return errors.New("down") }}
	engine, _ := newEngine(facade)

	resp := httptest.NewRecorder()
	engine.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", resp.Code)
	}
}

func TestMetricsEndpointExposesRequests(t *testing.T) {
	facade := &testhelpers.POSFacadeStub{
		OrderFn: func(_ context.Context, number string) (*model.Order, error) {
			return &model.Order{Number: number}, nil
		},
	}
	engine, _ := newEngine(facade)

	engine.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/orders/ORD-1", nil))

	resp := httptest.NewRecorder()
	engine.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 from /metrics, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), `gopherpos_http_requests_total{handler="/api/orders/:number",status="200"} 1`) {
		t.Fatalf("expected request counter in exposition, got:\n%s", resp.Body.String())
	}
}
