package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/mcoot/wordduel/internal/api/apierr"
	"github.com/mcoot/wordduel/internal/model"
)

type contextKey string

const playerContextKey contextKey = "player"

// TokenVerifier resolves a bearer token to the player it identifies
type TokenVerifier interface {
	Verify(token string) (model.PlayerID, error)
}

// Auth creates authentication middleware
func Auth(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				apierr.WriteError(w, apierr.NewUnauthorizedError())
				return
			}

			player, err := verifier.Verify(token)
			if err != nil {
				apierr.WriteError(w, apierr.NewUnauthorizedError())
				return
			}

			ctx := context.WithValue(r.Context(), playerContextKey, player)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractToken extracts the bearer token from the request
func extractToken(r *http.Request) string {
	// Check Authorization header first
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}

	// Browsers cannot set headers on a websocket handshake
	return r.URL.Query().Get("token")
}

// GetPlayer returns the authenticated player from the request context
func GetPlayer(ctx context.Context) model.PlayerID {
	player, _ := ctx.Value(playerContextKey).(model.PlayerID)
	return player
}

// MustGetPlayer returns the authenticated player or panics
func MustGetPlayer(ctx context.Context) model.PlayerID {
	player := GetPlayer(ctx)
	if player == "" {
		panic("no player in context - auth middleware not applied?")
	}
	return player
}
