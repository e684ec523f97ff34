package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveHTTPRequest(t *testing.T) {
	m := New()

	m.ObserveHTTPRequest(http.MethodGet, "GET /api/students", http.StatusOK, 15*time.Millisecond)
	m.ObserveHTTPRequest(http.MethodGet, "GET /api/students", http.StatusOK, 5*time.Millisecond)
	m.ObserveHTTPRequest(http.MethodPost, "POST /api/students", http.StatusBadRequest, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requestTotal.WithLabelValues("GET", "GET /api/students", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestTotal.WithLabelValues("POST", "POST /api/students", "400")))
}

func TestNewIsolatedRegistries(t *testing.T) {
	a := New()
	b := New()

	a.CoffeeIncrements.Inc()

	assert.Equal(t, 1.0, testutil.ToFloat64(a.CoffeeIncrements))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.CoffeeIncrements))
}

func TestHandlerExposesCollectors(t *testing.T) {
	m := New()
	m.StudentsCreated.Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "students_created_total 1")
	assert.Contains(t, string(body), "go_goroutines")
}
