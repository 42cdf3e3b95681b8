package api

import (
	"net/http"
	"time"

	"github.com/platinummonkey/docvault/pkg/access"
	"github.com/platinummonkey/docvault/pkg/content"
	"github.com/platinummonkey/docvault/pkg/httputil"
	"github.com/platinummonkey/docvault/pkg/middleware"
)

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	contextID, ok := httputil.ParsePathStringOrError(w, r, "contextId")
	if !ok {
		return
	}
	caller := middleware.UserFromContext(r)
	allowed, err := s.engine.CanReadContext(r.Context(), caller.ID, contextID)
	if !authorize(w, allowed, err) {
		return
	}

	page := httputil.ParsePagination(r)
	documents, total, err := s.store.ListDocuments(r.Context(), contextID, page.Limit, page.Offset)
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteList(w, documents, total, page)
}

type createDocumentRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	PDFURL  string `json:"pdf_url"`
}

func (s *Server) handleCreateDocument(w http.ResponseWriter, r *http.Request) {
	contextID, ok := httputil.ParsePathStringOrError(w, r, "contextId")
	if !ok {
		return
	}
	var req createDocumentRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if req.Title == "" {
		httputil.WriteBadRequest(w, "title is required")
		return
	}

	caller := middleware.UserFromContext(r)
	allowed, err := s.engine.CanWriteContext(r.Context(), caller.ID, contextID)
	if !authorize(w, allowed, err) {
		return
	}

	document := &content.Document{
		ContextID: contextID,
		Title:     req.Title,
		Content:   req.Content,
		PDFURL:    req.PDFURL,
	}
	if err := s.store.CreateDocument(r.Context(), document); err != nil {
		writeStoreError(w, err)
		return
	}
	httputil.WriteCreated(w, document)
}

// Per-document handlers run behind RequireDocumentAccess, which has
// already loaded the projection and decided the request.

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	doc := access.DocumentFromContext(r)
	httputil.WriteSuccess(w, doc)
}

type updateDocumentRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
	PDFURL  *string `json:"pdf_url"`
}

func (s *Server) handleUpdateDocument(w http.ResponseWriter, r *http.Request) {
	var req updateDocumentRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	doc := access.DocumentFromContext(r)
	document := doc.Document
	if req.Title != nil {
		if *req.Title == "" {
			httputil.WriteBadRequest(w, "title must not be empty")
			return
		}
		document.Title = *req.Title
	}
	if req.Content != nil {
		document.Content = *req.Content
	}
	if req.PDFURL != nil {
		document.PDFURL = *req.PDFURL
	}
	// A soft-deleted document is restored by any authorized write.
	document.DeletedAt = nil

	if err := s.store.UpdateDocument(r.Context(), &document); err != nil {
		writeStoreError(w, err)
		return
	}
	httputil.WriteSuccess(w, &document)
}

// handleDeleteDocument soft-deletes: the row stays resolvable so later
// requests distinguish deleted from never-existed.
func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	doc := access.DocumentFromContext(r)
	document := doc.Document
	if !document.Deleted() {
		now := time.Now().UTC()
		document.DeletedAt = &now
		if err := s.store.UpdateDocument(r.Context(), &document); err != nil {
			writeStoreError(w, err)
			return
		}
	}
	httputil.WriteNoContent(w)
}

type grantRequest struct {
	Role content.GrantRole `json:"role"`
}

func parseGrantRequest(w http.ResponseWriter, r *http.Request) (content.GrantRole, bool) {
	var req grantRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return "", false
	}
	if !req.Role.Valid() {
		httputil.WriteBadRequest(w, "role must be read or write")
		return "", false
	}
	return req.Role, true
}

func (s *Server) handleSetUserGrant(w http.ResponseWriter, r *http.Request) {
	userID, ok := httputil.ParsePathStringOrError(w, r, "userId")
	if !ok {
		return
	}
	role, ok := parseGrantRequest(w, r)
	if !ok {
		return
	}
	doc := access.DocumentFromContext(r)
	if err := s.store.SetUserGrant(r.Context(), doc.ID, userID, role); err != nil {
		writeStoreError(w, err)
		return
	}
	httputil.WriteNoContent(w)
}

func (s *Server) handleRemoveUserGrant(w http.ResponseWriter, r *http.Request) {
	userID, ok := httputil.ParsePathStringOrError(w, r, "userId")
	if !ok {
		return
	}
	doc := access.DocumentFromContext(r)
	if err := s.store.RemoveUserGrant(r.Context(), doc.ID, userID); err != nil {
		writeStoreError(w, err)
		return
	}
	httputil.WriteNoContent(w)
}

func (s *Server) handleSetTeamGrant(w http.ResponseWriter, r *http.Request) {
	teamID, ok := httputil.ParsePathStringOrError(w, r, "teamId")
	if !ok {
		return
	}
	role, ok := parseGrantRequest(w, r)
	if !ok {
		return
	}
	doc := access.DocumentFromContext(r)
	if err := s.store.SetTeamGrant(r.Context(), doc.ID, teamID, role); err != nil {
		writeStoreError(w, err)
		return
	}
	httputil.WriteNoContent(w)
}

func (s *Server) handleRemoveTeamGrant(w http.ResponseWriter, r *http.Request) {
	teamID, ok := httputil.ParsePathStringOrError(w, r, "teamId")
	if !ok {
		return
	}
	doc := access.DocumentFromContext(r)
	if err := s.store.RemoveTeamGrant(r.Context(), doc.ID, teamID); err != nil {
		writeStoreError(w, err)
		return
	}
	httputil.WriteNoContent(w)
}

func (s *Server) handleSetDepartmentGrant(w http.ResponseWriter, r *http.Request) {
	departmentID, ok := httputil.ParsePathStringOrError(w, r, "departmentId")
	if !ok {
		return
	}
	role, ok := parseGrantRequest(w, r)
	if !ok {
		return
	}
	doc := access.DocumentFromContext(r)
	if err := s.store.SetDepartmentGrant(r.Context(), doc.ID, departmentID, role); err != nil {
		writeStoreError(w, err)
		return
	}
	httputil.WriteNoContent(w)
}

func (s *Server) handleRemoveDepartmentGrant(w http.ResponseWriter, r *http.Request) {
	departmentID, ok := httputil.ParsePathStringOrError(w, r, "departmentId")
	if !ok {
		return
	}
	doc := access.DocumentFromContext(r)
	if err := s.store.RemoveDepartmentGrant(r.Context(), doc.ID, departmentID); err != nil {
		writeStoreError(w, err)
		return
	}
	httputil.WriteNoContent(w)
}
