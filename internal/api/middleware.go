/**
 * @description
 * This file contains custom middleware for the HTTP router. The bank-system uses
 * HTTP Basic authentication: every protected request carries credentials, the
 * middleware verifies them against the stored bcrypt hash, and the resolved user
 * ID is placed on the request context for handlers to consume. There is no token
 * or session state.
 *
 * @dependencies
 * - context, net/http: Standard Go libraries.
 * - internal/app: Credential verification.
 */

package api

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/google/uuid"

	"github.com/mie-h/bank-system/internal/app"
)

// UserIDContextKey is a custom type for the context key to avoid collisions.
type UserIDContextKey string

const userIDKey UserIDContextKey = "userID"

// BasicAuthMiddleware verifies HTTP Basic credentials on every request and adds
// the authenticated user's ID to the request context.
func BasicAuthMiddleware(service *app.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			username, password, ok := r.BasicAuth()
			if !ok {
				w.Header().Set("WWW-Authenticate", `Basic realm="bank-system"`)
				http.Error(w, "Authorization required", http.StatusUnauthorized)
				return
			}

			user, err := service.Authenticate(r.Context(), username, password)
			if err != nil {
				if errors.Is(err, app.ErrInvalidCredentials) {
					w.Header().Set("WWW-Authenticate", `Basic realm="bank-system"`)
					http.Error(w, "Incorrect username or password", http.StatusUnauthorized)
					return
				}
				log.Printf("level=error component=api msg=\"authentication failed\" err=%v", err)
				http.Error(w, "Authentication unavailable", http.StatusInternalServerError)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, user.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserID extracts the authenticated user's ID from the request context.
func GetUserID(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(userIDKey).(uuid.UUID)
	return userID, ok
}
