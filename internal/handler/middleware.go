package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/mkowalski/notekeeper/internal/domain"
	"github.com/mkowalski/notekeeper/internal/service"
)

type contextKey string

const userContextKey contextKey = "user"

// UserFromContext extracts the authenticated user from the request
// context. Returns nil if no user is authenticated.
func UserFromContext(ctx context.Context) *domain.User {
	user, _ := ctx.Value(userContextKey).(*domain.User)
	return user
}

// RequireAuth protects routes requiring authentication. It reads the raw
// access token from the Authorization header, verifies it, resolves the
// user against the store, and injects the user into the request context.
// Verification failures surface as exactly two kinds: expired and invalid.
func RequireAuth(auth *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get("Authorization")
			if token == "" {
				writeError(w, http.StatusForbidden, "The token is invalid")
				return
			}

			user, err := auth.CurrentUser(r.Context(), token)
			if err != nil {
				switch {
				case errors.Is(err, domain.ErrTokenExpired):
					writeError(w, http.StatusForbidden, "The credentials are expired")
				case errors.Is(err, domain.ErrTokenInvalid):
					writeError(w, http.StatusForbidden, "The token is invalid")
				case errors.Is(err, domain.ErrNotFound):
					writeError(w, http.StatusNotFound, "User not found")
				default:
					slog.Error("resolve current user", "error", err)
					writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
				}
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
