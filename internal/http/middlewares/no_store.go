package middlewares

import "net/http"

// WithNoStore agrega Cache-Control: no-store. Los perfiles no se cachean en
// proxies ni en el cliente.
func WithNoStore() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "no-store")
			next.ServeHTTP(w, r)
		})
	}
}
