// Package errors contiene el AppError y la escritura de errores JSON.
// Todas las respuestas de error tienen la forma {"error": "...", "details"?: "..."}.
package errors

import (
	"encoding/json"
	"net/http"
)

// WriteError escribe la respuesta HTTP para err.
// Los errores que no son *AppError salen como 500 sin detalles.
func WriteError(w http.ResponseWriter, err error) {
	appErr := FromError(err)

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(appErr.HTTPStatus)
	_ = json.NewEncoder(w).Encode(appErr)
}
