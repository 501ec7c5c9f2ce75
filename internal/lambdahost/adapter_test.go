package lambdahost

import (
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToRequest(t *testing.T) {
	ev := events.APIGatewayProxyRequest{
		HTTPMethod: http.MethodGet,
		Path:       "/profile",
		QueryStringParameters: map[string]string{
			"userId": "u 1",
		},
		MultiValueHeaders: map[string][]string{
			"X-Appwrite-Key": {"k1"},
		},
		Headers: map[string]string{
			"x-user-id":      "h1",
			"X-Appwrite-Key": "ignored",
		},
		RequestContext: events.APIGatewayProxyRequestContext{
			RequestID: "gw-req-1",
			Identity:  events.APIGatewayRequestIdentity{SourceIP: "203.0.113.9"},
		},
	}

	r, err := ToRequest(context.Background(), ev)
	require.NoError(t, err)
	assert.Equal(t, http.MethodGet, r.Method)
	assert.Equal(t, "/profile", r.URL.Path)
	assert.Equal(t, "u 1", r.URL.Query().Get("userId"))
	assert.Equal(t, "h1", r.Header.Get("X-User-Id"))
	assert.Equal(t, "k1", r.Header.Get("X-Appwrite-Key"))
	assert.Equal(t, "gw-req-1", r.Header.Get("X-Request-ID"))
	assert.Equal(t, "203.0.113.9:0", r.RemoteAddr)
}

func TestToRequest_Base64Body(t *testing.T) {
	ev := events.APIGatewayProxyRequest{
		HTTPMethod:      http.MethodPost,
		Body:            base64.StdEncoding.EncodeToString([]byte(`{"a":1}`)),
		IsBase64Encoded: true,
	}
	r, err := ToRequest(context.Background(), ev)
	require.NoError(t, err)
	assert.Equal(t, "/", r.URL.Path)
	b, _ := io.ReadAll(r.Body)
	assert.Equal(t, `{"a":1}`, string(b))

	ev.Body = "%%%"
	_, err = ToRequest(context.Background(), ev)
	assert.Error(t, err)
}

func TestProxy_RoundTrip(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Add("Vary", "Origin")
		w.Header().Add("Vary", "Accept")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"User not found"}`))
	})

	res, err := New(h).Proxy(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod:            http.MethodGet,
		Path:                  "/",
		QueryStringParameters: map[string]string{"userId": "ghost"},
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	assert.Equal(t, `{"error":"User not found"}`, res.Body)
	assert.False(t, res.IsBase64Encoded)
	assert.Equal(t, "application/json", res.Headers["Content-Type"])
	assert.Equal(t, []string{"Origin", "Accept"}, res.MultiValueHeaders["Vary"])
}

func TestProxy_BinaryBody(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte{0xff, 0xfe, 0x00})
	})
	res, err := New(h).Proxy(context.Background(), events.APIGatewayProxyRequest{})
	require.NoError(t, err)
	assert.True(t, res.IsBase64Encoded)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte{0xff, 0xfe, 0x00}), res.Body)
}
