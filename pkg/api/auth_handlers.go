package api

import (
	"errors"
	"net/http"

	"github.com/platinummonkey/docvault/pkg/auth"
	"github.com/platinummonkey/docvault/pkg/content"
	"github.com/platinummonkey/docvault/pkg/httputil"
	"github.com/platinummonkey/docvault/pkg/middleware"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		httputil.WriteBadRequest(w, "email and password are required")
		return
	}

	session, user, err := s.sessions.Login(r.Context(), req.Email, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		httputil.WriteUnauthorized(w, "invalid credentials")
		return
	}
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}

	http.SetCookie(w, s.sessions.Cookie(session, s.secureCookies))
	httputil.WriteSuccess(w, map[string]any{"user": user})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	session := middleware.SessionFromContext(r)
	if session != nil {
		if err := s.sessions.Logout(r.Context(), session.ID); err != nil {
			httputil.WriteInternalError(w, err)
			return
		}
	}
	http.SetCookie(w, auth.ClearedCookie(s.secureCookies))
	httputil.WriteNoContent(w)
}

// handleMe returns the authenticated user together with the permission
// projection and their personal spaces, so clients can shape their UI
// without probing endpoints.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	profile, err := s.store.LoadUserProfile(r.Context(), user.ID)
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	spaces, _, err := s.store.ListUserSpaces(r.Context(), user.ID, 0, 0)
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	if spaces == nil {
		spaces = []content.UserSpace{}
	}
	httputil.WriteSuccess(w, map[string]any{
		"user":        user,
		"profile":     profile,
		"user_spaces": spaces,
	})
}
