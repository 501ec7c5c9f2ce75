package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dropDatabas3/userprofile/internal/config"
	"github.com/dropDatabas3/userprofile/internal/identity"
)

type fakeFetcher struct {
	user  *identity.RemoteUser
	err   error
	panic bool
	calls int
}

func (f *fakeFetcher) Fetch(_ context.Context, _ identity.Credentials, userID string) (*identity.RemoteUser, error) {
	f.calls++
	if f.panic {
		panic("boom")
	}
	if f.err != nil {
		return nil, f.err
	}
	u := *f.user
	u.ID = userID
	return &u, nil
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	t.Setenv("APPWRITE_FUNCTION_ENDPOINT", "https://cloud.appwrite.io/v1")
	t.Setenv("APPWRITE_FUNCTION_PROJECT_ID", "proj")
	t.Setenv("APPWRITE_FUNCTION_API_KEY", "key")
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Metrics.Enabled = true
	return cfg
}

func build(t *testing.T, cfg *config.Config, f identity.UserFetcher) http.Handler {
	t.Helper()
	h, cleanup, err := Build(cfg, Options{
		Logger:   zap.NewNop(),
		Fetcher:  f,
		Registry: prometheus.NewRegistry(),
		Version:  "test",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = cleanup() })
	return h
}

func serve(h http.Handler, r *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	return rec
}

func TestBuild_ProfileRoutes(t *testing.T) {
	f := &fakeFetcher{user: &identity.RemoteUser{Email: "a@b.com"}}
	h := build(t, testConfig(t), f)

	for _, path := range []string{"/?userId=u1", "/profile?userId=u1"} {
		rec := serve(h, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, rec.Code, path)
		assert.JSONEq(t, `{"id":"u1","email":"a@b.com","name":"a","avatarUrl":""}`, rec.Body.String())
		assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
		assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
		assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	}
	assert.Equal(t, 2, f.calls)
}

func TestBuild_RequestIDIsPropagated(t *testing.T) {
	h := build(t, testConfig(t), &fakeFetcher{user: &identity.RemoteUser{}})
	r := httptest.NewRequest(http.MethodGet, "/profile?userId=u1", nil)
	r.Header.Set("X-Request-ID", "req-123")

	rec := serve(h, r)
	assert.Equal(t, "req-123", rec.Header().Get("X-Request-ID"))
}

func TestBuild_MethodAndRouteErrors(t *testing.T) {
	h := build(t, testConfig(t), &fakeFetcher{user: &identity.RemoteUser{}})

	rec := serve(h, httptest.NewRequest(http.MethodPost, "/profile?userId=u1", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.JSONEq(t, `{"error":"Method not allowed"}`, rec.Body.String())

	rec = serve(h, httptest.NewRequest(http.MethodPost, "/readyz", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.JSONEq(t, `{"error":"Method not allowed"}`, rec.Body.String())

	rec = serve(h, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Not found"}`, rec.Body.String())
}

func TestBuild_PanicIsRecovered(t *testing.T) {
	h := build(t, testConfig(t), &fakeFetcher{panic: true})

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/profile?userId=u1", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, rec.Body.String())
}

func TestBuild_Readyz(t *testing.T) {
	h := build(t, testConfig(t), &fakeFetcher{})

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ready", body["status"])
	assert.Equal(t, "test", rec.Header().Get("X-Service-Version"))
}

func TestBuild_Metrics(t *testing.T) {
	h := build(t, testConfig(t), &fakeFetcher{err: &identity.UpstreamError{Status: 404}})

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/profile?userId=ghost", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(h, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	out := rec.Body.String()
	assert.Contains(t, out, `identity_fetch_total{outcome="not_found"} 1`)
	assert.Contains(t, out, `http_requests_total{method="GET",path="/profile",status="404"} 1`)
}

func TestBuild_MetricsDisabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.Metrics.Enabled = false
	h := build(t, cfg, &fakeFetcher{})

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBuild_RateLimit(t *testing.T) {
	cfg := testConfig(t)
	cfg.Rate.Enabled = true
	cfg.Rate.MaxRequests = 2
	cfg.Rate.Window = "1h"
	f := &fakeFetcher{user: &identity.RemoteUser{}}
	h := build(t, cfg, f)

	for i := 0; i < 2; i++ {
		rec := serve(h, httptest.NewRequest(http.MethodGet, "/profile?userId=u1", nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec := serve(h, httptest.NewRequest(http.MethodGet, "/profile?userId=u1", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.JSONEq(t, `{"error":"Too many requests"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Equal(t, 2, f.calls)

	// readyz queda fuera del limiter
	rec = serve(h, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestBuild_CORSPreflight(t *testing.T) {
	cfg := testConfig(t)
	cfg.Server.CORSAllowedOrigins = []string{"https://app.example.com"}
	f := &fakeFetcher{user: &identity.RemoteUser{}}
	h := build(t, cfg, f)

	r := httptest.NewRequest(http.MethodOptions, "/profile", nil)
	r.Header.Set("Origin", "https://app.example.com")
	r.Header.Set("Access-Control-Request-Method", "GET")
	rec := serve(h, r)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.True(t, strings.Contains(rec.Header().Get("Access-Control-Allow-Headers"), "X-Appwrite-Key"))
	assert.Zero(t, f.calls)
}

func TestBuild_NilConfig(t *testing.T) {
	_, _, err := Build(nil, Options{})
	assert.Error(t, err)
}
