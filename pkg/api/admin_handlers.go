package api

import (
	"net/http"
	"time"

	"github.com/platinummonkey/docvault/pkg/auth"
	"github.com/platinummonkey/docvault/pkg/httputil"
	"github.com/platinummonkey/docvault/pkg/middleware"
	"github.com/platinummonkey/docvault/pkg/org"
	"github.com/platinummonkey/docvault/pkg/storage"
)

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	page := httputil.ParsePagination(r)
	filter := storage.UserFilter{
		Search:             r.URL.Query().Get("search"),
		IncludeDeactivated: httputil.QueryBool(r, "includeDeactivated"),
		SortBy:             r.URL.Query().Get("sortBy"),
		Descending:         r.URL.Query().Get("order") == "desc",
		Limit:              page.Limit,
		Offset:             page.Offset,
	}
	users, total, err := s.store.ListUsers(r.Context(), filter)
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteList(w, users, total, page)
}

type createUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	IsAdmin  bool   `json:"is_admin"`
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if req.Name == "" || req.Email == "" {
		httputil.WriteBadRequest(w, "name and email are required")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	user := &org.User{
		Name:         req.Name,
		Email:        req.Email,
		IsAdmin:      req.IsAdmin,
		PasswordHash: hash,
	}
	if err := s.store.CreateUser(r.Context(), user); err != nil {
		writeStoreError(w, err)
		return
	}
	httputil.WriteCreated(w, user)
}

type updateUserRequest struct {
	Name    *string `json:"name"`
	Email   *string `json:"email"`
	IsAdmin *bool   `json:"is_admin"`
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathStringOrError(w, r, "userId")
	if !ok {
		return
	}
	var req updateUserRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	user, err := s.store.GetUser(r.Context(), id)
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	if user == nil {
		httputil.WriteNotFoundError(w, "user not found")
		return
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.IsAdmin != nil {
		user.IsAdmin = *req.IsAdmin
	}
	if err := s.store.UpdateUser(r.Context(), user); err != nil {
		writeStoreError(w, err)
		return
	}
	httputil.WriteSuccess(w, user)
}

// handleDeactivateUser soft-deletes the account. The user keeps their
// rows but fails every permission check and can no longer log in.
func (s *Server) handleDeactivateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathStringOrError(w, r, "userId")
	if !ok {
		return
	}
	if caller := middleware.UserFromContext(r); caller != nil && caller.ID == id {
		httputil.WriteConflict(w, "cannot deactivate your own account")
		return
	}

	user, err := s.store.GetUser(r.Context(), id)
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	if user == nil {
		httputil.WriteNotFoundError(w, "user not found")
		return
	}
	if user.Deactivated() {
		httputil.WriteSuccess(w, user)
		return
	}

	now := time.Now().UTC()
	user.DeletedAt = &now
	if err := s.store.UpdateUser(r.Context(), user); err != nil {
		writeStoreError(w, err)
		return
	}
	httputil.WriteSuccess(w, user)
}

func (s *Server) handleReactivateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathStringOrError(w, r, "userId")
	if !ok {
		return
	}

	user, err := s.store.GetUser(r.Context(), id)
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	if user == nil {
		httputil.WriteNotFoundError(w, "user not found")
		return
	}

	user.DeletedAt = nil
	if err := s.store.UpdateUser(r.Context(), user); err != nil {
		writeStoreError(w, err)
		return
	}
	httputil.WriteSuccess(w, user)
}

type resetPasswordRequest struct {
	Password string `json:"password"`
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathStringOrError(w, r, "userId")
	if !ok {
		return
	}
	var req resetPasswordRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	user, err := s.store.GetUser(r.Context(), id)
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	if user == nil {
		httputil.WriteNotFoundError(w, "user not found")
		return
	}

	user.PasswordHash = hash
	if err := s.store.UpdateUser(r.Context(), user); err != nil {
		writeStoreError(w, err)
		return
	}
	httputil.WriteNoContent(w)
}
