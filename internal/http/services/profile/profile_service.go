// Package profile contiene el service que obtiene y normaliza perfiles de usuario.
package profile

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	dto "github.com/dropDatabas3/userprofile/internal/http/dto/profile"
	"github.com/dropDatabas3/userprofile/internal/identity"
	"github.com/dropDatabas3/userprofile/internal/metrics"
	"github.com/dropDatabas3/userprofile/internal/observability/logger"
	"github.com/dropDatabas3/userprofile/internal/util"
)

// ProfileService define las operaciones del endpoint de perfil.
type ProfileService interface {
	Get(ctx context.Context, req dto.ProfileRequest) (*dto.ProfileResult, error)
}

// Deps contiene las dependencias inyectables del service.
type Deps struct {
	Fetcher identity.UserFetcher
	// Defaults tiene endpoint, project y la API key por defecto (puede estar vacía).
	Defaults identity.Credentials
}

type profileService struct {
	deps Deps
}

// NewProfileService crea un nuevo ProfileService.
func NewProfileService(deps Deps) ProfileService {
	return &profileService{deps: deps}
}

const componentProfile = "profile"

func (s *profileService) Get(ctx context.Context, req dto.ProfileRequest) (*dto.ProfileResult, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component(componentProfile),
		logger.Op("Get"),
	)

	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		return nil, ErrMissingUserID
	}

	creds, source, err := s.resolveCredentials(req.APIKey)
	if err != nil {
		return nil, err
	}
	log.Debug("fetching user",
		logger.UserID(userID),
		logger.ProjectID(creds.ProjectID),
		logger.KeySource(source),
		logger.String("key_hint", util.MaskSecret(creds.APIKey)),
	)

	start := time.Now()
	user, err := s.deps.Fetcher.Fetch(ctx, creds, userID)
	outcome, classified := classify(err)
	metrics.RecordUpstreamFetch(outcome, time.Since(start))
	if classified != nil {
		return nil, classified
	}
	if user == nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, identity.ErrMalformedResponse)
	}

	return ToResult(*user), nil
}

// resolveCredentials aplica el orden header > config para la API key.
// source es "header" o "config".
func (s *profileService) resolveCredentials(headerKey string) (identity.Credentials, string, error) {
	creds := s.deps.Defaults
	creds.Endpoint = strings.TrimSpace(creds.Endpoint)
	creds.ProjectID = strings.TrimSpace(creds.ProjectID)
	if creds.Endpoint == "" || creds.ProjectID == "" {
		return identity.Credentials{}, "", ErrMissingEndpoint
	}

	if k := strings.TrimSpace(headerKey); k != "" {
		creds.APIKey = k
		return creds, "header", nil
	}
	if k := strings.TrimSpace(creds.APIKey); k != "" {
		creds.APIKey = k
		return creds, "config", nil
	}
	return identity.Credentials{}, "", ErrMissingAPIKey
}

// classify traduce el error del fetcher a los errores del service y al label
// de métricas.
func classify(err error) (string, error) {
	if err == nil {
		return "ok", nil
	}
	switch identity.StatusOf(err) {
	case http.StatusNotFound:
		return "not_found", fmt.Errorf("%w: %w", ErrUserNotFound, err)
	case http.StatusUnauthorized:
		return "unauthorized", fmt.Errorf("%w: %w", ErrUnauthorized, err)
	case http.StatusForbidden:
		return "forbidden", fmt.Errorf("%w: %w", ErrForbidden, err)
	default:
		return "error", fmt.Errorf("%w: %w", ErrUpstream, err)
	}
}
