// Package identity defines the contract between the profile service and the
// external identity service (Appwrite users API).
//
// The profile code only depends on UserFetcher; the REST client in the appwrite
// sub-package is the production implementation and tests use in-memory fakes.
package identity

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Credentials are the per-call values needed to reach the identity service.
type Credentials struct {
	Endpoint  string // e.g. https://cloud.appwrite.io/v1
	ProjectID string
	APIKey    string
}

// RemoteUser is the subset of the identity service's user document we read.
type RemoteUser struct {
	ID    string         `json:"$id"`
	Email string         `json:"email"`
	Name  string         `json:"name"`
	Prefs map[string]any `json:"prefs"`
}

// Avatar returns prefs.avatar when it is a string, "" otherwise.
func (u RemoteUser) Avatar() string {
	if u.Prefs == nil {
		return ""
	}
	if s, ok := u.Prefs["avatar"].(string); ok {
		return s
	}
	return ""
}

// UserFetcher fetches one user record by id.
// Non-2xx answers from the service come back as *UpstreamError.
type UserFetcher interface {
	Fetch(ctx context.Context, creds Credentials, userID string) (*RemoteUser, error)
}

// UpstreamError is a non-2xx answer from the identity service.
type UpstreamError struct {
	Status  int
	Code    int    // "code" in the Appwrite error envelope
	Type    string // e.g. "user_not_found"
	Message string
}

func (e *UpstreamError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	if e.Type != "" {
		return fmt.Sprintf("identity: %s (%d %s)", msg, e.Status, e.Type)
	}
	return fmt.Sprintf("identity: %s (%d)", msg, e.Status)
}

// StatusOf returns the upstream status carried by err, or 0 when err is not
// (and does not wrap) an *UpstreamError.
func StatusOf(err error) int {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue.Status
	}
	return 0
}

// ErrMalformedResponse is returned when a 2xx body cannot be used as a user.
var ErrMalformedResponse = errors.New("identity: malformed user response")
