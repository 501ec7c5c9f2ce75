package profile

import "errors"

// ErrMissingUserID: no vino userId por query ni x-user-id por header.
var ErrMissingUserID = errors.New("user id is required")

// ErrConfiguration agrupa los errores de configuración del proceso.
// errors.Is(ErrMissingAPIKey, ErrConfiguration) == true.
var ErrConfiguration = errors.New("configuration error")

var (
	ErrMissingAPIKey   = newConfigError("API key not configured (x-appwrite-key header or APPWRITE_FUNCTION_API_KEY)")
	ErrMissingEndpoint = newConfigError("identity endpoint or project id not configured")
)

// Clasificación de la respuesta del servicio de identidad.
var (
	ErrUserNotFound = errors.New("user not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrUpstream     = errors.New("identity service failure")
)

type configError struct{ msg string }

func (e *configError) Error() string { return e.msg }

func (e *configError) Is(target error) bool { return target == ErrConfiguration }

func newConfigError(msg string) error { return &configError{msg: msg} }
