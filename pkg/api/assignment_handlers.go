package api

import (
	"net/http"

	"github.com/platinummonkey/docvault/pkg/httputil"
	"github.com/platinummonkey/docvault/pkg/middleware"
)

type assignRequest struct {
	UserID string `json:"user_id"`
}

func (s *Server) handleListTeamMembers(w http.ResponseWriter, r *http.Request) {
	teamID, ok := httputil.ParsePathStringOrError(w, r, "teamId")
	if !ok {
		return
	}
	caller := middleware.UserFromContext(r)
	allowed, err := s.engine.CanViewTeam(r.Context(), caller.ID, teamID)
	if !authorize(w, allowed, err) {
		return
	}

	page := httputil.ParsePagination(r)
	members, total, err := s.store.ListTeamMembers(r.Context(), teamID, page.Limit, page.Offset)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	httputil.WriteList(w, members, total, page)
}

func (s *Server) handleAddTeamMember(w http.ResponseWriter, r *http.Request) {
	teamID, ok := httputil.ParsePathStringOrError(w, r, "teamId")
	if !ok {
		return
	}
	var req assignRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if req.UserID == "" {
		httputil.WriteBadRequest(w, "user_id is required")
		return
	}

	caller := middleware.UserFromContext(r)
	allowed, err := s.engine.CanManageTeamMembers(r.Context(), caller.ID, teamID)
	if !authorize(w, allowed, err) {
		return
	}

	if err := s.store.AddTeamMember(r.Context(), teamID, req.UserID); err != nil {
		writeStoreError(w, err)
		return
	}
	httputil.WriteNoContent(w)
}

func (s *Server) handleRemoveTeamMember(w http.ResponseWriter, r *http.Request) {
	teamID, ok := httputil.ParsePathStringOrError(w, r, "teamId")
	if !ok {
		return
	}
	userID, ok := httputil.ParsePathStringOrError(w, r, "userId")
	if !ok {
		return
	}

	caller := middleware.UserFromContext(r)
	allowed, err := s.engine.CanManageTeamMembers(r.Context(), caller.ID, teamID)
	if !authorize(w, allowed, err) {
		return
	}

	if err := s.store.RemoveTeamMember(r.Context(), teamID, userID); err != nil {
		writeStoreError(w, err)
		return
	}
	httputil.WriteNoContent(w)
}

func (s *Server) handleListTeamLeaders(w http.ResponseWriter, r *http.Request) {
	teamID, ok := httputil.ParsePathStringOrError(w, r, "teamId")
	if !ok {
		return
	}
	caller := middleware.UserFromContext(r)
	allowed, err := s.engine.CanViewTeam(r.Context(), caller.ID, teamID)
	if !authorize(w, allowed, err) {
		return
	}

	page := httputil.ParsePagination(r)
	leaders, total, err := s.store.ListTeamLeaders(r.Context(), teamID, page.Limit, page.Offset)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	httputil.WriteList(w, leaders, total, page)
}

// handleAddTeamLeader promotes a user to leader. Leadership is managed
// one level up: only department supervisors and admins, never the team's
// own leaders.
func (s *Server) handleAddTeamLeader(w http.ResponseWriter, r *http.Request) {
	teamID, ok := httputil.ParsePathStringOrError(w, r, "teamId")
	if !ok {
		return
	}
	var req assignRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if req.UserID == "" {
		httputil.WriteBadRequest(w, "user_id is required")
		return
	}

	caller := middleware.UserFromContext(r)
	allowed, err := s.engine.CanManageTeamLeaders(r.Context(), caller.ID, teamID)
	if !authorize(w, allowed, err) {
		return
	}

	if err := s.store.AddTeamLeader(r.Context(), teamID, req.UserID); err != nil {
		writeStoreError(w, err)
		return
	}
	httputil.WriteNoContent(w)
}

func (s *Server) handleRemoveTeamLeader(w http.ResponseWriter, r *http.Request) {
	teamID, ok := httputil.ParsePathStringOrError(w, r, "teamId")
	if !ok {
		return
	}
	userID, ok := httputil.ParsePathStringOrError(w, r, "userId")
	if !ok {
		return
	}

	caller := middleware.UserFromContext(r)
	allowed, err := s.engine.CanManageTeamLeaders(r.Context(), caller.ID, teamID)
	if !authorize(w, allowed, err) {
		return
	}

	if err := s.store.RemoveTeamLeader(r.Context(), teamID, userID); err != nil {
		writeStoreError(w, err)
		return
	}
	httputil.WriteNoContent(w)
}

func (s *Server) handleListSupervisors(w http.ResponseWriter, r *http.Request) {
	departmentID, ok := httputil.ParsePathStringOrError(w, r, "departmentId")
	if !ok {
		return
	}
	caller := middleware.UserFromContext(r)
	allowed, err := s.engine.CanViewDepartment(r.Context(), caller.ID, departmentID)
	if !authorize(w, allowed, err) {
		return
	}

	page := httputil.ParsePagination(r)
	supervisors, total, err := s.store.ListSupervisors(r.Context(), departmentID, page.Limit, page.Offset)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	httputil.WriteList(w, supervisors, total, page)
}

func (s *Server) handleAddSupervisor(w http.ResponseWriter, r *http.Request) {
	departmentID, ok := httputil.ParsePathStringOrError(w, r, "departmentId")
	if !ok {
		return
	}
	var req assignRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if req.UserID == "" {
		httputil.WriteBadRequest(w, "user_id is required")
		return
	}

	caller := middleware.UserFromContext(r)
	allowed, err := s.engine.CanManageSupervisors(r.Context(), caller.ID, departmentID)
	if !authorize(w, allowed, err) {
		return
	}

	if err := s.store.AddSupervisor(r.Context(), departmentID, req.UserID); err != nil {
		writeStoreError(w, err)
		return
	}
	httputil.WriteNoContent(w)
}

func (s *Server) handleRemoveSupervisor(w http.ResponseWriter, r *http.Request) {
	departmentID, ok := httputil.ParsePathStringOrError(w, r, "departmentId")
	if !ok {
		return
	}
	userID, ok := httputil.ParsePathStringOrError(w, r, "userId")
	if !ok {
		return
	}

	caller := middleware.UserFromContext(r)
	allowed, err := s.engine.CanManageSupervisors(r.Context(), caller.ID, departmentID)
	if !authorize(w, allowed, err) {
		return
	}

	if err := s.store.RemoveSupervisor(r.Context(), departmentID, userID); err != nil {
		writeStoreError(w, err)
		return
	}
	httputil.WriteNoContent(w)
}
