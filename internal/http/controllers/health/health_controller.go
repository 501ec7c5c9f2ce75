// Package health contiene el controller de /readyz.
package health

import (
	"net/http"

	"github.com/dropDatabas3/userprofile/internal/http/helpers"
	svc "github.com/dropDatabas3/userprofile/internal/http/services/health"
	"github.com/dropDatabas3/userprofile/internal/observability/logger"
)

// HealthController maneja GET /readyz.
type HealthController struct {
	service svc.HealthService
}

// NewHealthController crea el controller.
func NewHealthController(s svc.HealthService) *HealthController {
	return &HealthController{service: s}
}

// Readyz responde 200 si el estado es ready o degraded y 503 si es unavailable.
func (c *HealthController) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("HealthController.Readyz"))

	res := c.service.Check(ctx)

	if res.Version != "" {
		w.Header().Set("X-Service-Version", res.Version)
	}
	if res.Commit != "" {
		w.Header().Set("X-Service-Commit", res.Commit)
	}
	w.Header().Set("Cache-Control", "no-store")

	status := http.StatusOK
	if res.Status == svc.StatusUnavailable {
		status = http.StatusServiceUnavailable
	}
	log.Debug("health check completed",
		logger.String("status", res.Status),
		logger.Int("components_count", len(res.Components)),
	)
	helpers.WriteJSON(w, status, res)
}
