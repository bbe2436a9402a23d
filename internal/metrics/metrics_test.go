package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveCheckout(t *testing.T) {
	m := New()

	m.ObserveCheckout("success", 1)
	m.ObserveCheckout("success", 3)
	m.ObserveCheckout("invalid", 0)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Checkouts.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Checkouts.WithLabelValues("invalid")))

	var attempts dto.Metric
	require.NoError(t, m.CheckoutAttempt.Write(&attempts))
	assert.Equal(t, uint64(2), attempts.GetHistogram().GetSampleCount())
	assert.Equal(t, 4.0, attempts.GetHistogram().GetSampleSum())
}

func TestObserveCollisionAndReconcile(t *testing.T) {
	m := New()

	m.ObserveCollision()
	m.ObserveCollision()
	m.ObserveReconcile(true)
	m.ObserveReconcile(false)
	m.ObserveReconcile(false)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Collisions))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PointsRetries.WithLabelValues("credited")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.PointsRetries.WithLabelValues("failed")))
}

func TestHandlerExposesRegistry(t *testing.T) {
	m := New()
	m.ObserveRequest("/api/checkout", http.StatusCreated, 12)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `gopherpos_http_requests_total{handler="/api/checkout",status="201"} 1`))
	assert.True(t, strings.Contains(body, "go_goroutines"))
}

func TestNewUsesIsolatedRegistry(t *testing.T) {
	require.NotPanics(t, func() {
		New()
		New()
	})
}
