package middleware

import (
	"log/slog"
	"net/http"

	"fundgate/pkg/platform/secrets"
)

// RequireAdminToken rejects requests whose X-Admin-Token header does not
// match the configured bcrypt hash.
func RequireAdminToken(tokenHash string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get("X-Admin-Token")
			if token == "" {
				w.WriteHeader(http.StatusForbidden)
				return
			}
			if err := secrets.Verify(token, tokenHash); err != nil {
				logger.WarnContext(r.Context(), "admin token rejected",
					"request_id", GetRequestID(r.Context()))
				w.WriteHeader(http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
