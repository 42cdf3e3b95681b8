package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/docvault/pkg/auth"
	"github.com/platinummonkey/docvault/pkg/contextkeys"
	"github.com/platinummonkey/docvault/pkg/org"
	"github.com/platinummonkey/docvault/pkg/storage"
)

func newAuthedManager(t *testing.T, isAdmin bool) (*auth.Manager, *auth.Session) {
	t.Helper()
	store := storage.NewMemoryStore()
	hash, err := auth.HashPassword("correct horse")
	require.NoError(t, err)
	user := &org.User{Name: "Ada", Email: "ada@example.com", PasswordHash: hash, IsAdmin: isAdmin}
	require.NoError(t, store.CreateUser(context.Background(), user))

	manager := auth.NewManager(store, time.Hour, nil, nil)
	session, _, err := manager.Login(context.Background(), "ada@example.com", "correct horse")
	require.NoError(t, err)
	return manager, session
}

func okHandler(sawUser *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if UserFromContext(r) != nil && SessionFromContext(r) != nil {
			*sawUser = true
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireAuth(t *testing.T) {
	manager, session := newAuthedManager(t, false)

	t.Run("valid cookie passes and stashes identities", func(t *testing.T) {
		var sawUser bool
		handler := RequireAuth(manager)(okHandler(&sawUser))
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: session.ID})
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, sawUser)
	})

	t.Run("missing cookie", func(t *testing.T) {
		var sawUser bool
		handler := RequireAuth(manager)(okHandler(&sawUser))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.False(t, sawUser)
	})

	t.Run("unknown session", func(t *testing.T) {
		var sawUser bool
		handler := RequireAuth(manager)(okHandler(&sawUser))
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: "bogus"})
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("revoked session", func(t *testing.T) {
		require.NoError(t, manager.Logout(context.Background(), session.ID))
		var sawUser bool
		handler := RequireAuth(manager)(okHandler(&sawUser))
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: session.ID})
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRequireAdmin(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("admin passes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(contextkeys.WithUser(req.Context(), &org.User{ID: "u1", IsAdmin: true}))
		rec := httptest.NewRecorder()
		RequireAdmin(next).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("non-admin is forbidden", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(contextkeys.WithUser(req.Context(), &org.User{ID: "u1"}))
		rec := httptest.NewRecorder()
		RequireAdmin(next).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("unauthenticated request", func(t *testing.T) {
		rec := httptest.NewRecorder()
		RequireAdmin(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
