package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPinger struct{ err error }

func (s stubPinger) PingContext(context.Context) error { return s.err }

func healthRouter(h *HealthHandler) http.Handler {
	r := newTestRouter()
	r.GET("/health", h.Health)
	r.GET("/ready", h.Ready)
	r.GET("/metrics", h.Prometheus)
	return r
}

func TestReadyReportsDependencies(t *testing.T) {
	r := healthRouter(NewHealthHandler(stubPinger{}, stubPinger{err: errors.New("redis: connection refused")}, nil))

	rec := performRequest(r, http.MethodGet, "/ready", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"cache":"redis: connection refused"`)

	r = healthRouter(NewHealthHandler(stubPinger{err: errors.New("dial tcp: refused")}, nil, nil))
	rec = performRequest(r, http.MethodGet, "/ready", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = performRequest(r, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = performRequest(r, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
