// Package lambdahost sirve el handler HTTP detrás de API Gateway (proxy
// integration) usando aws-lambda-go.
package lambdahost

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
)

const headerRequestID = "X-Request-ID"

// Adapter traduce eventos de API Gateway a requests del handler.
type Adapter struct {
	Handler http.Handler
}

// New crea un Adapter.
func New(h http.Handler) *Adapter {
	return &Adapter{Handler: h}
}

// Start bloquea sirviendo invocaciones (lambda.Start).
func (a *Adapter) Start() {
	lambda.Start(a.Proxy)
}

// Proxy atiende un evento. Los errores de la función de perfil viajan como
// status HTTP; solo se devuelve error si el evento no se puede convertir.
func (a *Adapter) Proxy(ctx context.Context, ev events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	req, err := ToRequest(ctx, ev)
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}
	rec := httptest.NewRecorder()
	a.Handler.ServeHTTP(rec, req)
	return FromRecorder(rec), nil
}

// ToRequest arma el *http.Request equivalente al evento.
func ToRequest(ctx context.Context, ev events.APIGatewayProxyRequest) (*http.Request, error) {
	method := ev.HTTPMethod
	if method == "" {
		method = http.MethodGet
	}
	path := ev.Path
	if path == "" {
		path = "/"
	}

	u := &url.URL{Path: path, RawQuery: query(ev).Encode()}

	body := []byte(ev.Body)
	if ev.IsBase64Encoded && ev.Body != "" {
		b, err := base64.StdEncoding.DecodeString(ev.Body)
		if err != nil {
			return nil, fmt.Errorf("lambdahost: decode body: %w", err)
		}
		body = b
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("lambdahost: build request: %w", err)
	}

	for k, vs := range ev.MultiValueHeaders {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	for k, v := range ev.Headers {
		if req.Header.Get(k) == "" {
			req.Header.Set(k, v)
		}
	}
	if req.Header.Get(headerRequestID) == "" && ev.RequestContext.RequestID != "" {
		req.Header.Set(headerRequestID, ev.RequestContext.RequestID)
	}

	if ip := ev.RequestContext.Identity.SourceIP; ip != "" {
		req.RemoteAddr = ip + ":0"
	}
	req.Host = req.Header.Get("Host")
	return req, nil
}

func query(ev events.APIGatewayProxyRequest) url.Values {
	q := url.Values{}
	for k, vs := range ev.MultiValueQueryStringParameters {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	for k, v := range ev.QueryStringParameters {
		if _, ok := q[k]; !ok {
			q.Set(k, v)
		}
	}
	return q
}

// FromRecorder convierte la respuesta grabada al formato de API Gateway.
// Los bodies que no son UTF-8 válido viajan en base64.
func FromRecorder(rec *httptest.ResponseRecorder) events.APIGatewayProxyResponse {
	res := rec.Result()
	defer res.Body.Close()

	headers := make(map[string]string, len(res.Header))
	multi := make(map[string][]string, len(res.Header))
	for k, vs := range res.Header {
		headers[k] = strings.Join(vs, ", ")
		multi[k] = vs
	}

	out := events.APIGatewayProxyResponse{
		StatusCode:        res.StatusCode,
		Headers:           headers,
		MultiValueHeaders: multi,
	}
	b := rec.Body.Bytes()
	if utf8.Valid(b) {
		out.Body = string(b)
	} else {
		out.Body = base64.StdEncoding.EncodeToString(b)
		out.IsBase64Encoded = true
	}
	return out
}
