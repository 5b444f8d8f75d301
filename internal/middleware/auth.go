package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/xelth-com/mfgtrack/internal/access"
	"github.com/xelth-com/mfgtrack/internal/models"
	"github.com/xelth-com/mfgtrack/internal/utils"
)

type contextKey string

// UserContextKey holds the session user
const UserContextKey contextKey = "user"

// SessionCookie is the cookie the PHP backend keeps its session in
const SessionCookie = "PHPSESSID"

// SessionMiddleware verifies the session cookie and puts its user in the request context
func SessionMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookie)
			if err != nil || cookie.Value == "" {
				deny(w, http.StatusUnauthorized, "Not authenticated")
				return
			}

			claims, err := utils.ValidateToken(cookie.Value, secret)
			if err != nil {
				deny(w, http.StatusUnauthorized, "Session expired")
				return
			}

			username, _ := claims["username"].(string)
			role, _ := claims["role"].(string)
			user := &models.User{
				ID:       utils.SessionUserID(claims),
				Username: username,
				Role:     models.Role(role),
			}
			if user.ID == "" {
				deny(w, http.StatusUnauthorized, "Invalid session")
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole rejects session users whose role is not permitted with 403
func RequireRole(permitted ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			decision := access.RequireRole(UserFromContext(r.Context()), permitted...)
			if !decision.Allowed {
				deny(w, http.StatusForbidden, "Access denied")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// UserFromContext returns the session user, nil outside SessionMiddleware
func UserFromContext(ctx context.Context) *models.User {
	u, _ := ctx.Value(UserContextKey).(*models.User)
	return u
}

func deny(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{"success": false, "message": message})
}
