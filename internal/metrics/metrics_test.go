package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

// TestCounters проверяет учет внешних вызовов и фолбэков.
func TestCounters(t *testing.T) {
	m := New()

	m.Upstream("prediction", nil)
	m.Upstream("prediction", errors.New("down"))
	m.Upstream("prediction", errors.New("down"))
	m.Fallback("chat")

	if got := testutil.ToFloat64(m.upstream.WithLabelValues("prediction", OutcomeError)); got != 2 {
		t.Fatalf("expected 2 errors, got %v", got)
	}
	if got := testutil.ToFloat64(m.fallbacks.WithLabelValues("chat")); got != 1 {
		t.Fatalf("expected 1 fallback, got %v", got)
	}
}

// TestNilMetrics проверяет, что nil-получатель не паникует.
func TestNilMetrics(t *testing.T) {
	var m *Metrics
	m.Upstream("places", nil)
	m.Fallback("places")
	m.SessionCreated()
}

// TestHandlerExposesCounters проверяет вывод /metrics.
func TestHandlerExposesCounters(t *testing.T) {
	m := New()
	m.SessionCreated()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "trip_dashboard_sessions_created_total 1") {
		t.Fatalf("expected sessions counter in output")
	}
}
