// Package appwrite implements identity.UserFetcher over the Appwrite REST API.
//
// The official SDK is not used: calls go straight to
// GET <endpoint>/users/<id> with the project and key headers.
package appwrite

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dropDatabas3/userprofile/internal/identity"
)

const (
	HeaderProject = "X-Appwrite-Project"
	HeaderKey     = "X-Appwrite-Key" //nolint:gosec // header name, not a credential

	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 1 << 20
)

// Client is the Appwrite users API client.
type Client struct {
	http      *http.Client
	userAgent string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client (10s timeout).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithUserAgent sets the User-Agent sent upstream.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// New creates a new Appwrite client.
func New(opts ...Option) *Client {
	c := &Client{
		http:      &http.Client{Timeout: defaultTimeout},
		userAgent: "userprofile/1.0",
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

var _ identity.UserFetcher = (*Client)(nil)

// Fetch implements identity.UserFetcher.
func (c *Client) Fetch(ctx context.Context, creds identity.Credentials, userID string) (*identity.RemoteUser, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, errors.New("appwrite: empty user id")
	}
	endpoint, err := usersURL(creds.Endpoint, userID)
	if err != nil {
		return nil, err
	}

	resp, err := c.get(ctx, endpoint, creds)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, decodeError(resp)
	}

	var u identity.RemoteUser
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&u); err != nil {
		return nil, fmt.Errorf("%w: %v", identity.ErrMalformedResponse, err)
	}
	if strings.TrimSpace(u.ID) == "" {
		return nil, fmt.Errorf("%w: missing $id", identity.ErrMalformedResponse)
	}
	return &u, nil
}

// Health calls GET <endpoint>/health. The key needs the health.read scope.
func (c *Client) Health(ctx context.Context, creds identity.Credentials) error {
	base, err := baseURL(creds.Endpoint)
	if err != nil {
		return err
	}
	resp, err := c.get(ctx, base+"/health", creds)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
	return nil
}

func (c *Client) get(ctx context.Context, endpoint string, creds identity.Credentials) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set(HeaderProject, creds.ProjectID)
	req.Header.Set(HeaderKey, creds.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("appwrite: request failed: %w", err)
	}
	return resp, nil
}

func baseURL(endpoint string) (string, error) {
	endpoint = strings.TrimRight(strings.TrimSpace(endpoint), "/")
	if endpoint == "" {
		return "", errors.New("appwrite: endpoint not configured")
	}
	u, err := url.Parse(endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("appwrite: invalid endpoint %q", endpoint)
	}
	return endpoint, nil
}

func usersURL(endpoint, userID string) (string, error) {
	base, err := baseURL(endpoint)
	if err != nil {
		return "", err
	}
	return base + "/users/" + url.PathEscape(userID), nil
}

// decodeError lee el envelope de error de Appwrite:
// {"message": "...", "code": 404, "type": "user_not_found", "version": "1.5.7"}
func decodeError(resp *http.Response) error {
	ue := &identity.UpstreamError{Status: resp.StatusCode}

	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if len(data) == 0 {
		ue.Message = http.StatusText(resp.StatusCode)
		return ue
	}

	var payload struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
		Type    string `json:"type"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		ue.Message = strings.TrimSpace(string(data))
		return ue
	}
	ue.Message = payload.Message
	ue.Code = payload.Code
	ue.Type = payload.Type
	if ue.Message == "" {
		ue.Message = http.StatusText(resp.StatusCode)
	}
	return ue
}
