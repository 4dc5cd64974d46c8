package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordRequest(t *testing.T) {
	m := New()

	m.RecordRequest("GET", "/api/categories", 200, 20*time.Millisecond)
	m.RecordRequest("GET", "/api/categories", 200, 30*time.Millisecond)
	m.RecordRequest("POST", "", 404, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/api/categories", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("POST", "unmatched", "404")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.RequestDurationSeconds))
}

func TestRecordAuth(t *testing.T) {
	m := New()

	m.RecordAuth("forbidden")
	m.RecordAuth("forbidden")
	m.RecordAuth("login_ok")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.AuthOutcomesTotal.WithLabelValues("forbidden")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AuthOutcomesTotal.WithLabelValues("login_ok")))
}

func TestHandler_ExposesMetrics(t *testing.T) {
	m := New()
	m.RecordAuth("expired")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, string(body), `codepulse_auth_outcomes_total{outcome="expired"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}

func TestNew_IndependentRegistries(t *testing.T) {
	a, b := New(), New()
	a.RecordAuth("login_ok")

	assert.Equal(t, 0.0, testutil.ToFloat64(b.AuthOutcomesTotal.WithLabelValues("login_ok")))
}
