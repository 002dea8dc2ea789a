package http

import (
	"crypto/subtle"
	"net/http"
)

// AdminSecretHeader carries the shared-secret gate for the admin surface.
// This is the storefront's trivial password gate, not a real auth mechanism.
const AdminSecretHeader = "X-Admin-Secret"

func AdminAuthMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			provided := r.Header.Get(AdminSecretHeader)
			if subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) != 1 {
				respondError(w, http.StatusUnauthorized, "unauthorized", "wrong admin secret")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
