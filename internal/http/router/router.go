// Package router arma el árbol de rutas HTTP del servicio de perfiles.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	healthctrl "github.com/dropDatabas3/userprofile/internal/http/controllers/health"
	profilectrl "github.com/dropDatabas3/userprofile/internal/http/controllers/profile"
	httperrors "github.com/dropDatabas3/userprofile/internal/http/errors"
	mw "github.com/dropDatabas3/userprofile/internal/http/middlewares"
	"github.com/dropDatabas3/userprofile/internal/metrics"
	"github.com/dropDatabas3/userprofile/internal/rate"
)

// Deps contiene las dependencias del router.
type Deps struct {
	Profile *profilectrl.ProfileController
	Health  *healthctrl.HealthController

	// Metrics es el handler de /metrics; nil = métricas deshabilitadas.
	Metrics http.Handler
	// RateLimiter es opcional.
	RateLimiter rate.Limiter
	CORSOrigins []string
	Logger      *zap.Logger
}

// Rutas fuera del rate limiting.
var rateWhitelist = []string{"/readyz", "/metrics"}

// New registra las rutas y devuelve el handler raíz con la cadena global:
// recover -> request id -> security headers -> CORS -> logging -> metrics -> rate limit.
func New(d Deps) http.Handler {
	r := chi.NewRouter()

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrRouteNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
	})

	// El controller valida el método: las rutas de perfil aceptan cualquiera
	// para responder 405 con el body del contrato.
	profile := mw.Chain(http.HandlerFunc(d.Profile.GetProfile), mw.WithNoStore())
	r.Handle("/", profile)
	r.Handle("/profile", profile)

	if d.Health != nil {
		r.Get("/readyz", d.Health.Readyz)
	}
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics)
	}

	var metricsMW mw.Middleware
	if d.Metrics != nil {
		metricsMW = metrics.WithMetrics
	}

	return mw.Chain(r,
		mw.WithRecover(),
		mw.WithRequestID(),
		mw.WithSecurityHeaders(),
		mw.WithCORS(d.CORSOrigins),
		mw.WithLogging(d.Logger),
		metricsMW,
		mw.WithRateLimit(mw.RateLimitConfig{
			Limiter:   d.RateLimiter,
			KeyFunc:   mw.IPPathRateKey,
			Whitelist: rateWhitelist,
		}),
	)
}
