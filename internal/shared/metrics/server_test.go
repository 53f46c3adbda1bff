package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestHealthzReportsDependencyFailure(t *testing.T) {
	mux := NewMux(func(ctx context.Context) error { return errors.New("pg down") })

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "pg down")
}

func TestHealthzOK(t *testing.T) {
	mux := NewMux(nil)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestWorkerCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWorker(reg, "test_worker")

	m.Consumed.Inc()
	m.Errors.WithLabelValues("decode").Inc()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Consumed))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Errors.WithLabelValues("decode")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Processed))
}
