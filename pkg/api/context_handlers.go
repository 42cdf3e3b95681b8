package api

import (
	"net/http"

	"github.com/platinummonkey/docvault/pkg/access"
	"github.com/platinummonkey/docvault/pkg/content"
	"github.com/platinummonkey/docvault/pkg/httputil"
	"github.com/platinummonkey/docvault/pkg/middleware"
	"github.com/platinummonkey/docvault/pkg/org"
)

type ownerRequest struct {
	DepartmentID string `json:"department_id"`
	TeamID       string `json:"team_id"`
}

type createContainerRequest struct {
	Name  string       `json:"name"`
	Owner ownerRequest `json:"owner"`
}

// canReadItem checks context read access for the authenticated caller.
func (s *Server) canReadItem(r *http.Request, contextID string) (bool, error) {
	caller := middleware.UserFromContext(r)
	return s.engine.CanReadContext(r.Context(), caller.ID, contextID)
}

func (s *Server) handleListProcesses(w http.ResponseWriter, r *http.Request) {
	page := httputil.ParsePagination(r)
	processes, total, err := s.store.ListProcesses(r.Context(), page.Limit, page.Offset)
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}

	visible := make([]content.Process, 0, len(processes))
	for _, p := range processes {
		ok, err := s.canReadItem(r, p.ContextID)
		if err != nil {
			httputil.WriteInternalError(w, err)
			return
		}
		if ok {
			visible = append(visible, p)
		}
	}
	httputil.WriteList(w, visible, total, page)
}

func (s *Server) handleCreateProcess(w http.ResponseWriter, r *http.Request) {
	var req createContainerRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	owner, ok := s.resolveOwnerForCreate(w, r, req.Name, req.Owner)
	if !ok {
		return
	}

	process := &content.Process{Name: req.Name, OwnerID: owner.ID}
	if err := s.store.CreateProcess(r.Context(), process); err != nil {
		writeStoreError(w, err)
		return
	}
	httputil.WriteCreated(w, process)
}

// resolveOwnerForCreate validates a container create request, runs the
// owner-scoped permission check and resolves the owner row.
func (s *Server) resolveOwnerForCreate(w http.ResponseWriter, r *http.Request, name string, req ownerRequest) (*org.Owner, bool) {
	if name == "" {
		httputil.WriteBadRequest(w, "name is required")
		return nil, false
	}
	if (req.DepartmentID == "") == (req.TeamID == "") {
		httputil.WriteBadRequest(w, "owner must name exactly one of department_id or team_id")
		return nil, false
	}

	caller := middleware.UserFromContext(r)
	allowed, err := s.engine.CanCreateProcessOrProjectForOwner(r.Context(), caller.ID, access.OwnerSpec{
		DepartmentID: req.DepartmentID,
		TeamID:       req.TeamID,
	})
	if !authorize(w, allowed, err) {
		return nil, false
	}

	owner, err := s.store.FindOrCreateOwner(r.Context(), req.DepartmentID, req.TeamID)
	if err != nil {
		writeStoreError(w, err)
		return nil, false
	}
	return owner, true
}

func (s *Server) handleGetProcess(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathStringOrError(w, r, "processId")
	if !ok {
		return
	}
	process, err := s.store.GetProcess(r.Context(), id)
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	if process == nil {
		httputil.WriteNotFoundError(w, "process not found")
		return
	}
	allowed, err := s.canReadItem(r, process.ContextID)
	if !authorize(w, allowed, err) {
		return
	}
	httputil.WriteSuccess(w, process)
}

func (s *Server) handleUpdateProcess(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathStringOrError(w, r, "processId")
	if !ok {
		return
	}
	var req nameRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if req.Name == "" {
		httputil.WriteBadRequest(w, "name is required")
		return
	}

	process, err := s.store.GetProcess(r.Context(), id)
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	if process == nil {
		httputil.WriteNotFoundError(w, "process not found")
		return
	}

	caller := middleware.UserFromContext(r)
	allowed, err := s.engine.CanWriteContext(r.Context(), caller.ID, process.ContextID)
	if !authorize(w, allowed, err) {
		return
	}

	process.Name = req.Name
	if err := s.store.UpdateProcess(r.Context(), process); err != nil {
		writeStoreError(w, err)
		return
	}
	httputil.WriteSuccess(w, process)
}

func (s *Server) handleDeleteProcess(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathStringOrError(w, r, "processId")
	if !ok {
		return
	}
	process, err := s.store.GetProcess(r.Context(), id)
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	if process == nil {
		httputil.WriteNotFoundError(w, "process not found")
		return
	}

	caller := middleware.UserFromContext(r)
	allowed, err := s.engine.CanWriteContext(r.Context(), caller.ID, process.ContextID)
	if !authorize(w, allowed, err) {
		return
	}

	if err := s.store.DeleteProcess(r.Context(), id); err != nil {
		writeStoreError(w, err)
		return
	}
	httputil.WriteNoContent(w)
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	page := httputil.ParsePagination(r)
	projects, total, err := s.store.ListProjects(r.Context(), page.Limit, page.Offset)
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}

	visible := make([]content.Project, 0, len(projects))
	for _, p := range projects {
		ok, err := s.canReadItem(r, p.ContextID)
		if err != nil {
			httputil.WriteInternalError(w, err)
			return
		}
		if ok {
			visible = append(visible, p)
		}
	}
	httputil.WriteList(w, visible, total, page)
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var req createContainerRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	owner, ok := s.resolveOwnerForCreate(w, r, req.Name, req.Owner)
	if !ok {
		return
	}

	project := &content.Project{Name: req.Name, OwnerID: owner.ID}
	if err := s.store.CreateProject(r.Context(), project); err != nil {
		writeStoreError(w, err)
		return
	}
	httputil.WriteCreated(w, project)
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathStringOrError(w, r, "projectId")
	if !ok {
		return
	}
	project, err := s.store.GetProject(r.Context(), id)
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	if project == nil {
		httputil.WriteNotFoundError(w, "project not found")
		return
	}
	allowed, err := s.canReadItem(r, project.ContextID)
	if !authorize(w, allowed, err) {
		return
	}
	httputil.WriteSuccess(w, project)
}

func (s *Server) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathStringOrError(w, r, "projectId")
	if !ok {
		return
	}
	var req nameRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if req.Name == "" {
		httputil.WriteBadRequest(w, "name is required")
		return
	}

	project, err := s.store.GetProject(r.Context(), id)
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	if project == nil {
		httputil.WriteNotFoundError(w, "project not found")
		return
	}

	caller := middleware.UserFromContext(r)
	allowed, err := s.engine.CanWriteContext(r.Context(), caller.ID, project.ContextID)
	if !authorize(w, allowed, err) {
		return
	}

	project.Name = req.Name
	if err := s.store.UpdateProject(r.Context(), project); err != nil {
		writeStoreError(w, err)
		return
	}
	httputil.WriteSuccess(w, project)
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathStringOrError(w, r, "projectId")
	if !ok {
		return
	}
	project, err := s.store.GetProject(r.Context(), id)
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	if project == nil {
		httputil.WriteNotFoundError(w, "project not found")
		return
	}

	caller := middleware.UserFromContext(r)
	allowed, err := s.engine.CanWriteContext(r.Context(), caller.ID, project.ContextID)
	if !authorize(w, allowed, err) {
		return
	}

	if err := s.store.DeleteProject(r.Context(), id); err != nil {
		writeStoreError(w, err)
		return
	}
	httputil.WriteNoContent(w)
}

func (s *Server) handleListSubcontexts(w http.ResponseWriter, r *http.Request) {
	projectID, ok := httputil.ParsePathStringOrError(w, r, "projectId")
	if !ok {
		return
	}
	project, err := s.store.GetProject(r.Context(), projectID)
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	if project == nil {
		httputil.WriteNotFoundError(w, "project not found")
		return
	}
	allowed, err := s.canReadItem(r, project.ContextID)
	if !authorize(w, allowed, err) {
		return
	}

	page := httputil.ParsePagination(r)
	subcontexts, total, err := s.store.ListSubcontexts(r.Context(), projectID, page.Limit, page.Offset)
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteList(w, subcontexts, total, page)
}

// handleCreateSubcontext nests a subcontext under a project. The
// subcontext inherits the project's owner, so the check is against the
// project's own context in write mode.
func (s *Server) handleCreateSubcontext(w http.ResponseWriter, r *http.Request) {
	projectID, ok := httputil.ParsePathStringOrError(w, r, "projectId")
	if !ok {
		return
	}
	var req nameRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if req.Name == "" {
		httputil.WriteBadRequest(w, "name is required")
		return
	}

	project, err := s.store.GetProject(r.Context(), projectID)
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	if project == nil {
		httputil.WriteNotFoundError(w, "project not found")
		return
	}

	caller := middleware.UserFromContext(r)
	allowed, err := s.engine.CanWriteContext(r.Context(), caller.ID, project.ContextID)
	if !authorize(w, allowed, err) {
		return
	}

	subcontext := &content.Subcontext{Name: req.Name, ProjectID: projectID}
	if err := s.store.CreateSubcontext(r.Context(), subcontext); err != nil {
		writeStoreError(w, err)
		return
	}
	httputil.WriteCreated(w, subcontext)
}

func (s *Server) handleGetSubcontext(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathStringOrError(w, r, "subcontextId")
	if !ok {
		return
	}
	subcontext, err := s.store.GetSubcontext(r.Context(), id)
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	if subcontext == nil {
		httputil.WriteNotFoundError(w, "subcontext not found")
		return
	}
	allowed, err := s.canReadItem(r, subcontext.ContextID)
	if !authorize(w, allowed, err) {
		return
	}
	httputil.WriteSuccess(w, subcontext)
}

func (s *Server) handleUpdateSubcontext(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathStringOrError(w, r, "subcontextId")
	if !ok {
		return
	}
	var req nameRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if req.Name == "" {
		httputil.WriteBadRequest(w, "name is required")
		return
	}

	subcontext, err := s.store.GetSubcontext(r.Context(), id)
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	if subcontext == nil {
		httputil.WriteNotFoundError(w, "subcontext not found")
		return
	}

	caller := middleware.UserFromContext(r)
	allowed, err := s.engine.CanWriteContext(r.Context(), caller.ID, subcontext.ContextID)
	if !authorize(w, allowed, err) {
		return
	}

	subcontext.Name = req.Name
	if err := s.store.UpdateSubcontext(r.Context(), subcontext); err != nil {
		writeStoreError(w, err)
		return
	}
	httputil.WriteSuccess(w, subcontext)
}

func (s *Server) handleDeleteSubcontext(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathStringOrError(w, r, "subcontextId")
	if !ok {
		return
	}
	subcontext, err := s.store.GetSubcontext(r.Context(), id)
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	if subcontext == nil {
		httputil.WriteNotFoundError(w, "subcontext not found")
		return
	}

	caller := middleware.UserFromContext(r)
	allowed, err := s.engine.CanWriteContext(r.Context(), caller.ID, subcontext.ContextID)
	if !authorize(w, allowed, err) {
		return
	}

	if err := s.store.DeleteSubcontext(r.Context(), id); err != nil {
		writeStoreError(w, err)
		return
	}
	httputil.WriteNoContent(w)
}

// handleListUserSpaces lists the caller's own spaces. Admins may list
// another user's spaces with the userId query parameter.
func (s *Server) handleListUserSpaces(w http.ResponseWriter, r *http.Request) {
	caller := middleware.UserFromContext(r)
	ownerID := caller.ID
	if requested := r.URL.Query().Get("userId"); requested != "" && requested != caller.ID {
		if !caller.IsAdmin {
			httputil.WriteForbidden(w, "forbidden")
			return
		}
		ownerID = requested
	}

	page := httputil.ParsePagination(r)
	spaces, total, err := s.store.ListUserSpaces(r.Context(), ownerID, page.Limit, page.Offset)
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteList(w, spaces, total, page)
}

func (s *Server) handleCreateUserSpace(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if req.Name == "" {
		httputil.WriteBadRequest(w, "name is required")
		return
	}

	caller := middleware.UserFromContext(r)
	space := &content.UserSpace{Name: req.Name, OwnerUserID: caller.ID}
	if err := s.store.CreateUserSpace(r.Context(), space); err != nil {
		writeStoreError(w, err)
		return
	}
	httputil.WriteCreated(w, space)
}

func (s *Server) handleGetUserSpace(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathStringOrError(w, r, "userSpaceId")
	if !ok {
		return
	}
	space, err := s.store.GetUserSpace(r.Context(), id)
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	if space == nil {
		httputil.WriteNotFoundError(w, "user space not found")
		return
	}
	allowed, err := s.canReadItem(r, space.ContextID)
	if !authorize(w, allowed, err) {
		return
	}
	httputil.WriteSuccess(w, space)
}

func (s *Server) handleUpdateUserSpace(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathStringOrError(w, r, "userSpaceId")
	if !ok {
		return
	}
	var req nameRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if req.Name == "" {
		httputil.WriteBadRequest(w, "name is required")
		return
	}

	space, err := s.store.GetUserSpace(r.Context(), id)
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	if space == nil {
		httputil.WriteNotFoundError(w, "user space not found")
		return
	}

	caller := middleware.UserFromContext(r)
	allowed, err := s.engine.CanWriteContext(r.Context(), caller.ID, space.ContextID)
	if !authorize(w, allowed, err) {
		return
	}

	space.Name = req.Name
	if err := s.store.UpdateUserSpace(r.Context(), space); err != nil {
		writeStoreError(w, err)
		return
	}
	httputil.WriteSuccess(w, space)
}

func (s *Server) handleDeleteUserSpace(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathStringOrError(w, r, "userSpaceId")
	if !ok {
		return
	}
	space, err := s.store.GetUserSpace(r.Context(), id)
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	if space == nil {
		httputil.WriteNotFoundError(w, "user space not found")
		return
	}

	caller := middleware.UserFromContext(r)
	allowed, err := s.engine.CanWriteContext(r.Context(), caller.ID, space.ContextID)
	if !authorize(w, allowed, err) {
		return
	}

	if err := s.store.DeleteUserSpace(r.Context(), id); err != nil {
		writeStoreError(w, err)
		return
	}
	httputil.WriteNoContent(w)
}
