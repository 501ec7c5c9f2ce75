// Package helpers contiene utilidades HTTP compartidas por los controllers.
package helpers

import (
	"encoding/json"
	"net/http"
	"strings"
)

// WriteJSON escribe una respuesta JSON estándar.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// QueryOrHeader devuelve el query param q y, si está vacío, el header h.
// Ambos valores se devuelven sin espacios alrededor.
func QueryOrHeader(r *http.Request, q, h string) string {
	if v := strings.TrimSpace(r.URL.Query().Get(q)); v != "" {
		return v
	}
	return strings.TrimSpace(r.Header.Get(h))
}
