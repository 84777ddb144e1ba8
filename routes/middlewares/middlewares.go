package middlewares

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/oauth"
)

type contextKey int

const userIDKey contextKey = iota

// Authenticated validates the bearer token and resolves the authenticated
// user's id from the token claims into the request context.
func Authenticated(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return chi.Chain(oauth.Authorize(secret, nil), resolveUser).Handler(next)
	}
}

func resolveUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := r.Context().Value(oauth.ClaimsContext).(map[string]string)
		if !ok {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}

		userID, err := strconv.Atoi(claims["user_id"])
		if err != nil || userID <= 0 {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
	})
}

// WithUserID marks the context as authenticated for the given user.
func WithUserID(ctx context.Context, id int) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

// UserID returns the authenticated user's id, or 0 outside the
// Authenticated middleware.
func UserID(r *http.Request) int {
	id, _ := r.Context().Value(userIDKey).(int)
	return id
}

// Credential returns the token credential (the user's email) set by the
// oauth middleware.
func Credential(r *http.Request) string {
	credential, _ := r.Context().Value(oauth.CredentialContext).(string)
	return credential
}
