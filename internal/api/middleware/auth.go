package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/mcoot/tycoon-backend/internal/api/apierr"
	"github.com/mcoot/tycoon-backend/internal/model"
)

type contextKey string

const playerIDContextKey contextKey = "player_id"

// TokenVerifier resolves a bearer token to the player it was issued for.
// VerifyOptional reports false instead of failing.
type TokenVerifier interface {
	Verify(token string) (model.PlayerID, error)
	VerifyOptional(token string) (model.PlayerID, bool)
}

// Auth creates authentication middleware.
// Requests without a valid bearer token are rejected with 401.
func Auth(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				apierr.WriteError(w, apierr.NewUnauthorizedError())
				return
			}

			playerID, err := verifier.Verify(token)
			if err != nil {
				apierr.WriteError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPlayerID(r.Context(), playerID)))
		})
	}
}

// OptionalAuth extracts the player if a valid token is present but doesn't require it.
// An invalid token is treated the same as no token.
func OptionalAuth(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if playerID, ok := verifier.VerifyOptional(extractToken(r)); ok {
				r = r.WithContext(WithPlayerID(r.Context(), playerID))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// extractToken extracts the bearer token from the Authorization header
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(authHeader, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// WithPlayerID returns a context carrying the authenticated player id
func WithPlayerID(ctx context.Context, playerID model.PlayerID) context.Context {
	return context.WithValue(ctx, playerIDContextKey, playerID)
}

// GetPlayerID returns the authenticated player id from the request context
func GetPlayerID(ctx context.Context) (model.PlayerID, bool) {
	playerID, ok := ctx.Value(playerIDContextKey).(model.PlayerID)
	return playerID, ok
}

// MustGetPlayerID returns the authenticated player id or panics
func MustGetPlayerID(ctx context.Context) model.PlayerID {
	playerID, ok := GetPlayerID(ctx)
	if !ok {
		panic("no player in context - auth middleware not applied?")
	}
	return playerID
}
