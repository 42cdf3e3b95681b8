// Package api wires the HTTP surface: routing, middleware layering and
// the handlers for auth, organization management, contexts and documents.
package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/platinummonkey/docvault/pkg/access"
	"github.com/platinummonkey/docvault/pkg/auth"
	"github.com/platinummonkey/docvault/pkg/httputil"
	"github.com/platinummonkey/docvault/pkg/middleware"
	"github.com/platinummonkey/docvault/pkg/observability"
	"github.com/platinummonkey/docvault/pkg/storage"
)

// Server holds the wired application and its router.
type Server struct {
	store    storage.Store
	engine   *access.Engine
	sessions *auth.Manager
	logger   *observability.Logger
	metrics  *observability.Metrics
	router   *mux.Router

	secureCookies bool
	maxBodyBytes  int64
}

// Options configures a Server beyond its required collaborators.
type Options struct {
	Metrics       *observability.Metrics
	SecureCookies bool
	MaxBodyBytes  int64
}

// NewServer wires routes and middleware. logger must not be nil.
func NewServer(store storage.Store, engine *access.Engine, sessions *auth.Manager, logger *observability.Logger, opts Options) *Server {
	s := &Server{
		store:         store,
		engine:        engine,
		sessions:      sessions,
		logger:        logger,
		metrics:       opts.Metrics,
		secureCookies: opts.SecureCookies,
		maxBodyBytes:  opts.MaxBodyBytes,
	}
	s.router = s.buildRouter()
	return s
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) buildRouter() *mux.Router {
	router := mux.NewRouter()
	router.Use(httputil.RecoveryMiddleware(s.logger))
	router.Use(httputil.RequestIDMiddleware)
	router.Use(httputil.LoggingMiddleware(s.logger))
	if s.metrics != nil {
		router.Use(observability.HTTPMetricsMiddleware(s.metrics))
	}
	if s.maxBodyBytes > 0 {
		router.Use(httputil.MaxBytesMiddleware(s.maxBodyBytes))
	}

	api := router.PathPrefix("/api/v1").Subrouter()

	// Login is the only unauthenticated endpoint.
	api.HandleFunc("/auth/login", s.handleLogin).Methods(http.MethodPost)

	authed := api.NewRoute().Subrouter()
	authed.Use(middleware.RequireAuth(s.sessions))

	authed.HandleFunc("/auth/logout", s.handleLogout).Methods(http.MethodPost)
	authed.HandleFunc("/auth/me", s.handleMe).Methods(http.MethodGet)
	authed.HandleFunc("/me", s.handleMe).Methods(http.MethodGet)

	// Organization hierarchy. Reads are for any authenticated user;
	// structural mutations are admin only.
	authed.HandleFunc("/organisation/companies", s.handleListCompanies).Methods(http.MethodGet)
	authed.HandleFunc("/organisation/departments", s.handleListDepartments).Methods(http.MethodGet)
	authed.HandleFunc("/organisation/departments/{departmentId}/teams", s.handleListTeams).Methods(http.MethodGet)

	admin := authed.NewRoute().Subrouter()
	admin.Use(middleware.RequireAdmin)

	admin.HandleFunc("/organisation/companies", s.handleCreateCompany).Methods(http.MethodPost)
	admin.HandleFunc("/organisation/companies/{companyId}", s.handleUpdateCompany).Methods(http.MethodPatch)
	admin.HandleFunc("/organisation/companies/{companyId}", s.handleDeleteCompany).Methods(http.MethodDelete)
	admin.HandleFunc("/organisation/departments", s.handleCreateDepartment).Methods(http.MethodPost)
	admin.HandleFunc("/organisation/departments/{departmentId}", s.handleUpdateDepartment).Methods(http.MethodPatch)
	admin.HandleFunc("/organisation/departments/{departmentId}", s.handleDeleteDepartment).Methods(http.MethodDelete)
	admin.HandleFunc("/organisation/departments/{departmentId}/teams", s.handleCreateTeam).Methods(http.MethodPost)
	admin.HandleFunc("/organisation/teams/{teamId}", s.handleUpdateTeam).Methods(http.MethodPatch)
	admin.HandleFunc("/organisation/teams/{teamId}", s.handleDeleteTeam).Methods(http.MethodDelete)

	admin.HandleFunc("/admin/users", s.handleListUsers).Methods(http.MethodGet)
	admin.HandleFunc("/admin/users", s.handleCreateUser).Methods(http.MethodPost)
	admin.HandleFunc("/admin/users/{userId}", s.handleUpdateUser).Methods(http.MethodPatch)
	admin.HandleFunc("/admin/users/{userId}/deactivate", s.handleDeactivateUser).Methods(http.MethodPost)
	admin.HandleFunc("/admin/users/{userId}/reactivate", s.handleReactivateUser).Methods(http.MethodPost)
	admin.HandleFunc("/admin/users/{userId}/password", s.handleResetPassword).Methods(http.MethodPost)

	// Assignment edges are predicate-gated per request, not router-gated.
	authed.HandleFunc("/teams/{teamId}/members", s.handleListTeamMembers).Methods(http.MethodGet)
	authed.HandleFunc("/teams/{teamId}/members", s.handleAddTeamMember).Methods(http.MethodPost)
	authed.HandleFunc("/teams/{teamId}/members/{userId}", s.handleRemoveTeamMember).Methods(http.MethodDelete)
	authed.HandleFunc("/teams/{teamId}/leaders", s.handleListTeamLeaders).Methods(http.MethodGet)
	authed.HandleFunc("/teams/{teamId}/leaders", s.handleAddTeamLeader).Methods(http.MethodPost)
	authed.HandleFunc("/teams/{teamId}/leaders/{userId}", s.handleRemoveTeamLeader).Methods(http.MethodDelete)
	authed.HandleFunc("/departments/{departmentId}/supervisors", s.handleListSupervisors).Methods(http.MethodGet)
	authed.HandleFunc("/departments/{departmentId}/supervisors", s.handleAddSupervisor).Methods(http.MethodPost)
	authed.HandleFunc("/departments/{departmentId}/supervisors/{userId}", s.handleRemoveSupervisor).Methods(http.MethodDelete)

	// Contexts and their containers.
	authed.HandleFunc("/processes", s.handleListProcesses).Methods(http.MethodGet)
	authed.HandleFunc("/processes", s.handleCreateProcess).Methods(http.MethodPost)
	authed.HandleFunc("/processes/{processId}", s.handleGetProcess).Methods(http.MethodGet)
	authed.HandleFunc("/processes/{processId}", s.handleUpdateProcess).Methods(http.MethodPatch)
	authed.HandleFunc("/processes/{processId}", s.handleDeleteProcess).Methods(http.MethodDelete)

	authed.HandleFunc("/projects", s.handleListProjects).Methods(http.MethodGet)
	authed.HandleFunc("/projects", s.handleCreateProject).Methods(http.MethodPost)
	authed.HandleFunc("/projects/{projectId}", s.handleGetProject).Methods(http.MethodGet)
	authed.HandleFunc("/projects/{projectId}", s.handleUpdateProject).Methods(http.MethodPatch)
	authed.HandleFunc("/projects/{projectId}", s.handleDeleteProject).Methods(http.MethodDelete)

	authed.HandleFunc("/projects/{projectId}/subcontexts", s.handleListSubcontexts).Methods(http.MethodGet)
	authed.HandleFunc("/projects/{projectId}/subcontexts", s.handleCreateSubcontext).Methods(http.MethodPost)
	authed.HandleFunc("/subcontexts/{subcontextId}", s.handleGetSubcontext).Methods(http.MethodGet)
	authed.HandleFunc("/subcontexts/{subcontextId}", s.handleUpdateSubcontext).Methods(http.MethodPatch)
	authed.HandleFunc("/subcontexts/{subcontextId}", s.handleDeleteSubcontext).Methods(http.MethodDelete)

	authed.HandleFunc("/user-spaces", s.handleListUserSpaces).Methods(http.MethodGet)
	authed.HandleFunc("/user-spaces", s.handleCreateUserSpace).Methods(http.MethodPost)
	authed.HandleFunc("/user-spaces/{userSpaceId}", s.handleGetUserSpace).Methods(http.MethodGet)
	authed.HandleFunc("/user-spaces/{userSpaceId}", s.handleUpdateUserSpace).Methods(http.MethodPatch)
	authed.HandleFunc("/user-spaces/{userSpaceId}", s.handleDeleteUserSpace).Methods(http.MethodDelete)

	// Documents inside a context.
	authed.HandleFunc("/contexts/{contextId}/documents", s.handleListDocuments).Methods(http.MethodGet)
	authed.HandleFunc("/contexts/{contextId}/documents", s.handleCreateDocument).Methods(http.MethodPost)

	// Per-document routes run behind the access middleware, which owns
	// the 401/404/403 ordering.
	readDoc := authed.NewRoute().Subrouter()
	readDoc.Use(s.engine.RequireDocumentAccess(access.ModeRead))
	readDoc.HandleFunc("/documents/{documentId}", s.handleGetDocument).Methods(http.MethodGet)

	writeDoc := authed.NewRoute().Subrouter()
	writeDoc.Use(s.engine.RequireDocumentAccess(access.ModeWrite))
	writeDoc.HandleFunc("/documents/{documentId}", s.handleUpdateDocument).Methods(http.MethodPut)
	writeDoc.HandleFunc("/documents/{documentId}", s.handleDeleteDocument).Methods(http.MethodDelete)
	writeDoc.HandleFunc("/documents/{documentId}/grants/users/{userId}", s.handleSetUserGrant).Methods(http.MethodPut)
	writeDoc.HandleFunc("/documents/{documentId}/grants/users/{userId}", s.handleRemoveUserGrant).Methods(http.MethodDelete)
	writeDoc.HandleFunc("/documents/{documentId}/grants/teams/{teamId}", s.handleSetTeamGrant).Methods(http.MethodPut)
	writeDoc.HandleFunc("/documents/{documentId}/grants/teams/{teamId}", s.handleRemoveTeamGrant).Methods(http.MethodDelete)
	writeDoc.HandleFunc("/documents/{documentId}/grants/departments/{departmentId}", s.handleSetDepartmentGrant).Methods(http.MethodPut)
	writeDoc.HandleFunc("/documents/{documentId}/grants/departments/{departmentId}", s.handleRemoveDepartmentGrant).Methods(http.MethodDelete)

	return router
}
