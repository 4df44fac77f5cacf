package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ecomstack/backend/internal/auth"
	"github.com/ecomstack/backend/internal/respond"
)

// TokenHeader carries the token on protected routes.
const TokenHeader = "auth-token"

// TokenVerifier is satisfied by *auth.Tokens.
type TokenVerifier interface {
	Verify(ctx context.Context, raw string) (*auth.Claims, error)
}

// RequireAuth validates the auth-token header and injects the token claims
// into the request context.
func RequireAuth(tokens TokenVerifier, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get(TokenHeader)
			if raw == "" {
				respond.JSON(w, http.StatusUnauthorized, map[string]string{"errors": "Please authenticate using valid token"})
				return
			}

			claims, err := tokens.Verify(r.Context(), raw)
			if errors.Is(err, auth.ErrInvalidToken) {
				respond.JSON(w, http.StatusUnauthorized, map[string]string{"errors": "Please authenticate using a valid token"})
				return
			}
			if err != nil {
				log.Error("token verification", "err", err)
				respond.JSON(w, http.StatusInternalServerError, map[string]string{"errors": "internal error"})
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithClaims(r.Context(), claims)))
		})
	}
}
