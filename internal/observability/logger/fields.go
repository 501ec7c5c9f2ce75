package logger

import (
	"time"

	"go.uber.org/zap"
)

// =================================================================================
// CAMPOS ESTÁNDAR - HTTP
// =================================================================================

// RequestID crea un campo para el ID del request.
func RequestID(v string) zap.Field {
	return zap.String("request_id", v)
}

// Method crea un campo para el método HTTP.
func Method(v string) zap.Field {
	return zap.String("method", v)
}

// Path crea un campo para el path del request.
func Path(v string) zap.Field {
	return zap.String("path", v)
}

// Status crea un campo para el status code HTTP de nuestra respuesta.
func Status(v int) zap.Field {
	return zap.Int("status", v)
}

// Bytes crea un campo para los bytes de respuesta.
func Bytes(v int) zap.Field {
	return zap.Int("bytes", v)
}

// ClientIP crea un campo para la IP del cliente.
func ClientIP(v string) zap.Field {
	return zap.String("client_ip", v)
}

// DurationMs crea un campo con la duración en milisegundos.
func DurationMs(d time.Duration) zap.Field {
	return zap.Int64("duration_ms", d.Milliseconds())
}

// =================================================================================
// CAMPOS ESTÁNDAR - IDENTIDAD
// =================================================================================

// UserID crea un campo para el ID del usuario consultado.
func UserID(v string) zap.Field {
	return zap.String("user_id", v)
}

// ProjectID crea un campo para el proyecto del servicio de identidad.
func ProjectID(v string) zap.Field {
	return zap.String("project_id", v)
}

// UpstreamStatus crea un campo para el status devuelto por el servicio de identidad.
func UpstreamStatus(v int) zap.Field {
	return zap.Int("upstream_status", v)
}

// KeySource indica de dónde salió la API key ("header" | "config").
// La key en sí nunca se loguea.
func KeySource(v string) zap.Field {
	return zap.String("key_source", v)
}

// =================================================================================
// CAMPOS ESTÁNDAR - SISTEMA
// =================================================================================

// Component crea un campo para el componente/módulo.
func Component(v string) zap.Field {
	return zap.String("component", v)
}

// Op crea un campo para la operación actual.
func Op(v string) zap.Field {
	return zap.String("op", v)
}

// Layer crea un campo para la capa (controller, service, client).
func Layer(v string) zap.Field {
	return zap.String("layer", v)
}

// Err crea un campo para un error.
func Err(err error) zap.Field {
	return zap.Error(err)
}

// String crea un campo string genérico.
func String(key, v string) zap.Field {
	return zap.String(key, v)
}

// Int crea un campo int genérico.
func Int(key string, v int) zap.Field {
	return zap.Int(key, v)
}

// Any crea un campo genérico para cualquier tipo.
func Any(key string, v any) zap.Field {
	return zap.Any(key, v)
}
