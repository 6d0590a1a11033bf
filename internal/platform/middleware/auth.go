package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
)

// JWTValidator defines the interface for validating access tokens.
type JWTValidator interface {
	ValidateToken(tokenString string) (*JWTClaims, error)
}

// JWTClaims represents the claims we expect from the JWT validator.
type JWTClaims struct {
	BorrowerID string
}

type contextKeyBorrowerID struct{}

// ContextKeyBorrowerID is exported for use in handlers.
var ContextKeyBorrowerID = contextKeyBorrowerID{}

// GetBorrowerID retrieves the authenticated borrower ID from the context.
func GetBorrowerID(ctx context.Context) string {
	id, ok := ctx.Value(ContextKeyBorrowerID).(string)
	if !ok {
		return ""
	}
	return id
}

// WithBorrowerID injects a borrower identity; used by tests and internal calls.
func WithBorrowerID(ctx context.Context, borrowerID string) context.Context {
	return context.WithValue(ctx, ContextKeyBorrowerID, borrowerID)
}

// RequireAuth rejects requests without a valid bearer token and stores the
// borrower identity in the request context.
func RequireAuth(validator JWTValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			claims, err := validator.ValidateToken(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				logger.WarnContext(r.Context(), "token validation failed",
					"error", err.Error(),
					"request_id", GetRequestID(r.Context()),
				)
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			ctx := WithBorrowerID(r.Context(), claims.BorrowerID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
