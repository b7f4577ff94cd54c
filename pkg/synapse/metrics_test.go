package synapse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsObserver_Outcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetricsObserver(reg)
	require.NoError(t, err)

	ok, _ := captureServer(t, http.StatusOK, "")
	failing, _ := captureServer(t, http.StatusNotFound, "missing")
	gone := httptest.NewServer(http.NotFoundHandler())
	gone.Close()

	for _, base := range []string{ok.URL, failing.URL, gone.URL} {
		c := New("Users", WithBaseURL(base), WithObserver(m))
		_, _ = Invoke(context.Background(), c, NewRequest("GetUser", http.MethodGet, "/users/1"), None())
	}

	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("Users", "GetUser", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("Users", "GetUser", "failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("Users", "GetUser", "error")))
	assert.Equal(t, 3, testutil.CollectAndCount(m.requests))
}

func TestNewMetricsObserver_ReusesCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewMetricsObserver(reg)
	require.NoError(t, err)
	second, err := NewMetricsObserver(reg)
	require.NoError(t, err)

	assert.Same(t, first.requests, second.requests)
	assert.Same(t, first.duration, second.duration)
}
