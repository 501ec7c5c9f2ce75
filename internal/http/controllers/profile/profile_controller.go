// Package profile contiene el controller del endpoint de perfil de usuario.
package profile

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	dto "github.com/dropDatabas3/userprofile/internal/http/dto/profile"
	httperrors "github.com/dropDatabas3/userprofile/internal/http/errors"
	"github.com/dropDatabas3/userprofile/internal/http/helpers"
	svc "github.com/dropDatabas3/userprofile/internal/http/services/profile"
	"github.com/dropDatabas3/userprofile/internal/identity"
	"github.com/dropDatabas3/userprofile/internal/observability/logger"
	"github.com/dropDatabas3/userprofile/internal/util"
)

// Nombres de parámetros del contrato con la app móvil.
const (
	QueryUserID  = "userId"
	HeaderUserID = "x-user-id"
	HeaderAPIKey = "x-appwrite-key" //nolint:gosec // header name
)

// ProfileController maneja GET /profile.
type ProfileController struct {
	service svc.ProfileService
	log     *zap.Logger
}

// NewProfileController crea el controller. log es el sink de logs del host;
// nil = logger singleton.
func NewProfileController(service svc.ProfileService, log *zap.Logger) *ProfileController {
	return &ProfileController{service: service, log: log}
}

// GetProfile maneja GET /profile?userId=... (o header x-user-id).
func (c *ProfileController) GetProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromOr(ctx, c.log).With(logger.Layer("controller"), logger.Op("ProfileController.GetProfile"))

	if r.Method != http.MethodGet {
		log.Error("method not allowed", logger.Method(r.Method), logger.Status(http.StatusMethodNotAllowed))
		w.Header().Set("Allow", http.MethodGet)
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
		return
	}

	userID := helpers.QueryOrHeader(r, QueryUserID, HeaderUserID)
	if userID == "" {
		log.Error("missing userId parameter", logger.Status(http.StatusBadRequest))
		httperrors.WriteError(w, httperrors.ErrUserIDRequired)
		return
	}
	log = log.With(logger.UserID(userID))
	log.Info("fetching user")

	res, err := c.service.Get(ctx, dto.ProfileRequest{
		UserID: userID,
		APIKey: r.Header.Get(HeaderAPIKey),
	})
	if err != nil {
		appErr := mapProfileError(err)
		log.Error(failureMessage(err),
			logger.Status(appErr.HTTPStatus),
			logger.UpstreamStatus(identity.StatusOf(err)),
			logger.Err(err),
		)
		httperrors.WriteError(w, appErr)
		return
	}

	log.Info("successfully fetched user",
		logger.String("name", res.Name),
		logger.String("email", util.MaskEmail(res.Email)),
		logger.Status(http.StatusOK),
	)
	helpers.WriteJSON(w, http.StatusOK, res.ToResponse())
}

// mapProfileError traduce errores del service a errores HTTP.
func mapProfileError(err error) *httperrors.AppError {
	switch {
	case errors.Is(err, svc.ErrMissingUserID):
		return httperrors.ErrUserIDRequired
	case errors.Is(err, svc.ErrUserNotFound):
		return httperrors.ErrUserNotFound
	case errors.Is(err, svc.ErrUnauthorized):
		return httperrors.ErrUnauthorized
	case errors.Is(err, svc.ErrForbidden):
		return httperrors.ErrForbidden
	default:
		// ErrConfiguration, ErrUpstream y cualquier otro: 500 con detalle.
		return httperrors.ErrInternalServerError.WithDetail(err.Error()).WithCause(err)
	}
}

func failureMessage(err error) string {
	switch {
	case errors.Is(err, svc.ErrUserNotFound):
		return "user not found"
	case errors.Is(err, svc.ErrUnauthorized):
		return "unauthorized access to user data"
	case errors.Is(err, svc.ErrForbidden):
		return "forbidden access to user data"
	case errors.Is(err, svc.ErrConfiguration):
		return "configuration error"
	default:
		return "error fetching user"
	}
}
