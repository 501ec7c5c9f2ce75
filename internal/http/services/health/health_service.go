// Package health contiene el service de readiness (/readyz).
package health

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	dto "github.com/dropDatabas3/userprofile/internal/http/dto/health"
	"github.com/dropDatabas3/userprofile/internal/identity"
	"github.com/dropDatabas3/userprofile/internal/observability/logger"
)

// Estados globales y por componente.
const (
	StatusReady       = "ready"
	StatusDegraded    = "degraded"
	StatusUnavailable = "unavailable"

	ComponentOK       = "ok"
	ComponentError    = "error"
	ComponentDisabled = "disabled"
)

const (
	componentHealth = "health"
	redisTimeout    = 2 * time.Second
)

// HealthService define la operación de readiness.
type HealthService interface {
	Check(ctx context.Context) dto.HealthResponse
}

// Deps contiene las dependencias del service.
type Deps struct {
	// Credentials son los valores por defecto del proceso (endpoint, project, key).
	Credentials identity.Credentials
	// CheckRedis es opcional: nil = redis deshabilitado.
	CheckRedis func(ctx context.Context) error
	Version    string
	Commit     string
	// Now permite fijar el reloj en tests.
	Now func() time.Time
}

type healthService struct {
	deps Deps
}

// NewHealthService crea un HealthService.
func NewHealthService(d Deps) HealthService {
	if d.Now == nil {
		d.Now = time.Now
	}
	return &healthService{deps: d}
}

// Check evalúa la configuración y redis.
//
// Sin endpoint o project el servicio no puede atender ningún request: unavailable.
// Sin API key por defecto solo funcionan los requests que traen x-appwrite-key: degraded.
// Redis caído: degraded (el rate limiter deja pasar los requests).
func (s *healthService) Check(ctx context.Context) dto.HealthResponse {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component(componentHealth),
		logger.Op("Check"),
	)

	c := s.deps.Credentials
	components := map[string]dto.HealthStatus{
		"endpoint": required(c.Endpoint, "APPWRITE_FUNCTION_ENDPOINT not set"),
		"project":  required(c.ProjectID, "APPWRITE_FUNCTION_PROJECT_ID not set"),
		"api_key":  required(c.APIKey, "no default key, x-appwrite-key header required"),
	}
	components["redis"] = s.checkRedis(ctx, log)

	status := StatusReady
	switch {
	case components["endpoint"].Status != ComponentOK || components["project"].Status != ComponentOK:
		status = StatusUnavailable
	case components["api_key"].Status != ComponentOK || components["redis"].Status == ComponentError:
		status = StatusDegraded
	}

	return dto.HealthResponse{
		Status:     status,
		Version:    s.deps.Version,
		Commit:     s.deps.Commit,
		Components: components,
		Timestamp:  s.deps.Now().UTC(),
	}
}

func (s *healthService) checkRedis(ctx context.Context, log *zap.Logger) dto.HealthStatus {
	if s.deps.CheckRedis == nil {
		return dto.HealthStatus{Status: ComponentDisabled}
	}
	ctx, cancel := context.WithTimeout(ctx, redisTimeout)
	defer cancel()
	if err := s.deps.CheckRedis(ctx); err != nil {
		log.Warn("redis unavailable", logger.Err(err))
		return dto.HealthStatus{Status: ComponentError, Message: err.Error()}
	}
	return dto.HealthStatus{Status: ComponentOK}
}

func required(v, msg string) dto.HealthStatus {
	if strings.TrimSpace(v) == "" {
		return dto.HealthStatus{Status: ComponentError, Message: msg}
	}
	return dto.HealthStatus{Status: ComponentOK}
}
