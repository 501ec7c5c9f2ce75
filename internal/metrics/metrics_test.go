package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithMetrics_CountsByStatus(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := Register(Config{Registry: reg})
	require.NoError(t, err)

	h := WithMetrics(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/profile?userId=x", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/some/random/abc", nil))

	assert.Equal(t, 1.0, testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/profile", "404")))
	assert.Equal(t, 1.0, testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "other", "404")))
}

func TestRecordUpstreamFetch(t *testing.T) {
	reg := prometheus.NewRegistry()
	handler, err := Register(Config{Registry: reg})
	require.NoError(t, err)

	RecordUpstreamFetch("ok", 20*time.Millisecond)
	RecordUpstreamFetch("not_found", 5*time.Millisecond)
	RecordUpstreamFetch("ok", 10*time.Millisecond)
	RecordRateLimitReject()

	assert.Equal(t, 2.0, testutil.ToFloat64(upstreamFetchTotal.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(upstreamFetchTotal.WithLabelValues("not_found")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rateLimitRejects))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "identity_fetch_total"))
}

func TestNormalizePath(t *testing.T) {
	assert.Equal(t, "/", normalizePath(""))
	assert.Equal(t, "/profile", normalizePath("/profile/"))
	assert.Equal(t, "/readyz", normalizePath("/readyz"))
	assert.Equal(t, "other", normalizePath("/users/123"))
}
