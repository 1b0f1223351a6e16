package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/membergate/membergate/internal/crypto"
	"github.com/membergate/membergate/internal/model"
)

type contextKey string

const userKey contextKey = "user"

// UserFinder resolves a verified token subject to a stored user record.
type UserFinder interface {
	GetByID(ctx context.Context, id int64) (*model.User, error)
}

// Auth returns middleware that gates a route on a valid bearer token. On
// success the resolved user record is attached to the request context. Every
// failure answers 401; the reason is logged, never exposed to the caller.
func Auth(tokens *crypto.TokenManager, users UserFinder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, found := strings.CutPrefix(header, "Bearer ")
			if !found || token == "" {
				writeJSONError(w, http.StatusUnauthorized, "Missing token")
				return
			}

			claims, err := tokens.Verify(token)
			if err != nil {
				if errors.Is(err, crypto.ErrTokenExpired) {
					slog.Debug("rejected expired token", "path", r.URL.Path)
				} else {
					slog.Debug("rejected invalid token", "path", r.URL.Path)
				}
				writeJSONError(w, http.StatusUnauthorized, "Invalid token")
				return
			}

			user, err := users.GetByID(r.Context(), claims.UserID)
			if err != nil {
				writeJSONError(w, http.StatusUnauthorized, "Invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext extracts the authenticated user from the request context.
func UserFromContext(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(userKey).(*model.User)
	return user, ok
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
