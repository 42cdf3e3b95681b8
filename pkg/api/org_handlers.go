package api

import (
	"net/http"

	"github.com/platinummonkey/docvault/pkg/httputil"
	"github.com/platinummonkey/docvault/pkg/org"
)

type nameRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleListCompanies(w http.ResponseWriter, r *http.Request) {
	page := httputil.ParsePagination(r)
	companies, total, err := s.store.ListCompanies(r.Context(), page.Limit, page.Offset)
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteList(w, companies, total, page)
}

// handleCreateCompany creates the company. The system manages a single
// company, so a second create is rejected with a conflict.
func (s *Server) handleCreateCompany(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if req.Name == "" {
		httputil.WriteBadRequest(w, "name is required")
		return
	}

	count, err := s.store.CountCompanies(r.Context())
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	if count > 0 {
		httputil.WriteConflict(w, "a company already exists")
		return
	}

	company := &org.Company{Name: req.Name}
	if err := s.store.CreateCompany(r.Context(), company); err != nil {
		writeStoreError(w, err)
		return
	}
	httputil.WriteCreated(w, company)
}

func (s *Server) handleUpdateCompany(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathStringOrError(w, r, "companyId")
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

	company, err := s.store.GetCompany(r.Context(), id)
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	if company == nil {
		httputil.WriteNotFoundError(w, "company not found")
		return
	}
	company.Name = req.Name
	if err := s.store.UpdateCompany(r.Context(), company); err != nil {
		writeStoreError(w, err)
		return
	}
	httputil.WriteSuccess(w, company)
}

func (s *Server) handleDeleteCompany(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathStringOrError(w, r, "companyId")
	if !ok {
		return
	}
	if err := s.store.DeleteCompany(r.Context(), id); err != nil {
		writeStoreError(w, err)
		return
	}
	httputil.WriteNoContent(w)
}

func (s *Server) handleListDepartments(w http.ResponseWriter, r *http.Request) {
	page := httputil.ParsePagination(r)
	companyID := r.URL.Query().Get("companyId")
	departments, total, err := s.store.ListDepartments(r.Context(), companyID, page.Limit, page.Offset)
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteList(w, departments, total, page)
}

type createDepartmentRequest struct {
	CompanyID string `json:"company_id"`
	Name      string `json:"name"`
}

func (s *Server) handleCreateDepartment(w http.ResponseWriter, r *http.Request) {
	var req createDepartmentRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if req.CompanyID == "" || req.Name == "" {
		httputil.WriteBadRequest(w, "company_id and name are required")
		return
	}

	department := &org.Department{CompanyID: req.CompanyID, Name: req.Name}
	if err := s.store.CreateDepartment(r.Context(), department); err != nil {
		writeStoreError(w, err)
		return
	}
	httputil.WriteCreated(w, department)
}

func (s *Server) handleUpdateDepartment(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathStringOrError(w, r, "departmentId")
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

	department, err := s.store.GetDepartment(r.Context(), id)
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	if department == nil {
		httputil.WriteNotFoundError(w, "department not found")
		return
	}
	department.Name = req.Name
	if err := s.store.UpdateDepartment(r.Context(), department); err != nil {
		writeStoreError(w, err)
		return
	}
	httputil.WriteSuccess(w, department)
}

func (s *Server) handleDeleteDepartment(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathStringOrError(w, r, "departmentId")
	if !ok {
		return
	}
	if err := s.store.DeleteDepartment(r.Context(), id); err != nil {
		writeStoreError(w, err)
		return
	}
	httputil.WriteNoContent(w)
}

func (s *Server) handleListTeams(w http.ResponseWriter, r *http.Request) {
	departmentID, ok := httputil.ParsePathStringOrError(w, r, "departmentId")
	if !ok {
		return
	}
	page := httputil.ParsePagination(r)
	teams, total, err := s.store.ListTeams(r.Context(), departmentID, page.Limit, page.Offset)
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteList(w, teams, total, page)
}

func (s *Server) handleCreateTeam(w http.ResponseWriter, r *http.Request) {
	departmentID, ok := httputil.ParsePathStringOrError(w, r, "departmentId")
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

	team := &org.Team{DepartmentID: departmentID, Name: req.Name}
	if err := s.store.CreateTeam(r.Context(), team); err != nil {
		writeStoreError(w, err)
		return
	}
	httputil.WriteCreated(w, team)
}

func (s *Server) handleUpdateTeam(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathStringOrError(w, r, "teamId")
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

	team, err := s.store.GetTeam(r.Context(), id)
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	if team == nil {
		httputil.WriteNotFoundError(w, "team not found")
		return
	}
	team.Name = req.Name
	if err := s.store.UpdateTeam(r.Context(), team); err != nil {
		writeStoreError(w, err)
		return
	}
	httputil.WriteSuccess(w, team)
}

func (s *Server) handleDeleteTeam(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathStringOrError(w, r, "teamId")
	if !ok {
		return
	}
	if err := s.store.DeleteTeam(r.Context(), id); err != nil {
		writeStoreError(w, err)
		return
	}
	httputil.WriteNoContent(w)
}
