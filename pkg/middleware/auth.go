// Package middleware carries the request-auth layers applied in front of
// API handlers: session authentication and the admin gate.
package middleware

import (
	"errors"
	"net/http"

	"github.com/platinummonkey/docvault/pkg/auth"
	"github.com/platinummonkey/docvault/pkg/contextkeys"
	"github.com/platinummonkey/docvault/pkg/httputil"
	"github.com/platinummonkey/docvault/pkg/org"
)

// RequireAuth resolves the session cookie and stashes the user and session
// in the request context. Requests without a valid session get 401.
func RequireAuth(manager *auth.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(auth.CookieName)
			if err != nil || cookie.Value == "" {
				httputil.WriteUnauthorized(w, "not authenticated")
				return
			}

			session, user, err := manager.Resolve(r.Context(), cookie.Value)
			if errors.Is(err, auth.ErrNoSession) {
				httputil.WriteUnauthorized(w, "not authenticated")
				return
			}
			if err != nil {
				httputil.WriteInternalError(w, err)
				return
			}

			ctx := contextkeys.WithUser(r.Context(), user)
			ctx = contextkeys.WithSession(ctx, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin allows only administrator accounts through. It must run
// after RequireAuth.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := UserFromContext(r)
		if user == nil {
			httputil.WriteUnauthorized(w, "not authenticated")
			return
		}
		if !user.IsAdmin {
			httputil.WriteForbidden(w, "administrator access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// UserFromContext returns the authenticated user stashed by RequireAuth,
// or nil.
func UserFromContext(r *http.Request) *org.User {
	user, _ := r.Context().Value(contextkeys.UserKey).(*org.User)
	return user
}

// SessionFromContext returns the resolved session stashed by RequireAuth,
// or nil.
func SessionFromContext(r *http.Request) *auth.Session {
	session, _ := r.Context().Value(contextkeys.SessionKey).(*auth.Session)
	return session
}
