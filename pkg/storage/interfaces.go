package storage

import (
	"context"
	"errors"

	"github.com/platinummonkey/docvault/pkg/access"
	"github.com/platinummonkey/docvault/pkg/auth"
	"github.com/platinummonkey/docvault/pkg/content"
	"github.com/platinummonkey/docvault/pkg/org"
)

var (
	// ErrNotFound is returned by mutation methods for a missing entity.
	// Get methods and the access.Repository loads instead return
	// (nil, nil) so callers can fold absence into their own semantics.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned for unique-constraint and
	// referential-integrity violations, such as a duplicate email or
	// deleting a department that still has teams.
	ErrConflict = errors.New("conflict")
)

// UserFilter narrows and orders admin user listings.
type UserFilter struct {
	// Search matches name or email, case-insensitively.
	Search string
	// IncludeDeactivated includes soft-deleted users.
	IncludeDeactivated bool
	// SortBy is one of name, email, created_at. Empty sorts by name.
	SortBy string
	// Descending reverses the sort order.
	Descending bool
	Limit      int
	Offset     int
}

// UserStore manages accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user *org.User) error
	GetUser(ctx context.Context, id string) (*org.User, error)
	GetUserByEmail(ctx context.Context, email string) (*org.User, error)
	ListUsers(ctx context.Context, filter UserFilter) ([]org.User, int, error)
	// UpdateUser persists name, email, admin flag, password hash and the
	// soft-delete timestamp.
	UpdateUser(ctx context.Context, user *org.User) error
}

// OrgStore manages the company, department and team hierarchy.
type OrgStore interface {
	CreateCompany(ctx context.Context, company *org.Company) error
	GetCompany(ctx context.Context, id string) (*org.Company, error)
	ListCompanies(ctx context.Context, limit, offset int) ([]org.Company, int, error)
	UpdateCompany(ctx context.Context, company *org.Company) error
	// DeleteCompany fails with ErrConflict while departments remain.
	DeleteCompany(ctx context.Context, id string) error
	CountCompanies(ctx context.Context) (int, error)

	CreateDepartment(ctx context.Context, department *org.Department) error
	GetDepartment(ctx context.Context, id string) (*org.Department, error)
	ListDepartments(ctx context.Context, companyID string, limit, offset int) ([]org.Department, int, error)
	UpdateDepartment(ctx context.Context, department *org.Department) error
	// DeleteDepartment fails with ErrConflict while teams remain.
	DeleteDepartment(ctx context.Context, id string) error

	CreateTeam(ctx context.Context, team *org.Team) error
	GetTeam(ctx context.Context, id string) (*org.Team, error)
	ListTeams(ctx context.Context, departmentID string, limit, offset int) ([]org.Team, int, error)
	UpdateTeam(ctx context.Context, team *org.Team) error
	DeleteTeam(ctx context.Context, id string) error
}

// AssignmentStore manages membership, leadership and supervision edges.
// Add methods return ErrConflict for duplicate edges and ErrNotFound when
// either endpoint is missing or the user is deactivated; Remove methods
// return ErrNotFound for an absent edge.
type AssignmentStore interface {
	ListTeamMembers(ctx context.Context, teamID string, limit, offset int) ([]org.UserRef, int, error)
	AddTeamMember(ctx context.Context, teamID, userID string) error
	RemoveTeamMember(ctx context.Context, teamID, userID string) error

	ListTeamLeaders(ctx context.Context, teamID string, limit, offset int) ([]org.UserRef, int, error)
	AddTeamLeader(ctx context.Context, teamID, userID string) error
	RemoveTeamLeader(ctx context.Context, teamID, userID string) error

	ListSupervisors(ctx context.Context, departmentID string, limit, offset int) ([]org.UserRef, int, error)
	AddSupervisor(ctx context.Context, departmentID, userID string) error
	RemoveSupervisor(ctx context.Context, departmentID, userID string) error
}

// ContentStore manages owners, contexts and the containers attached to
// them. Create methods assign the entity id and create the backing
// context row in the same operation.
type ContentStore interface {
	// FindOrCreateOwner resolves the owner row for a department or team.
	// Exactly one of the two ids must be set.
	FindOrCreateOwner(ctx context.Context, departmentID, teamID string) (*org.Owner, error)

	CreateProcess(ctx context.Context, process *content.Process) error
	GetProcess(ctx context.Context, id string) (*content.Process, error)
	ListProcesses(ctx context.Context, limit, offset int) ([]content.Process, int, error)
	UpdateProcess(ctx context.Context, process *content.Process) error
	DeleteProcess(ctx context.Context, id string) error

	CreateProject(ctx context.Context, project *content.Project) error
	GetProject(ctx context.Context, id string) (*content.Project, error)
	ListProjects(ctx context.Context, limit, offset int) ([]content.Project, int, error)
	UpdateProject(ctx context.Context, project *content.Project) error
	DeleteProject(ctx context.Context, id string) error

	CreateSubcontext(ctx context.Context, subcontext *content.Subcontext) error
	GetSubcontext(ctx context.Context, id string) (*content.Subcontext, error)
	ListSubcontexts(ctx context.Context, projectID string, limit, offset int) ([]content.Subcontext, int, error)
	UpdateSubcontext(ctx context.Context, subcontext *content.Subcontext) error
	DeleteSubcontext(ctx context.Context, id string) error

	CreateUserSpace(ctx context.Context, space *content.UserSpace) error
	GetUserSpace(ctx context.Context, id string) (*content.UserSpace, error)
	ListUserSpaces(ctx context.Context, ownerUserID string, limit, offset int) ([]content.UserSpace, int, error)
	UpdateUserSpace(ctx context.Context, space *content.UserSpace) error
	DeleteUserSpace(ctx context.Context, id string) error
}

// DocumentStore manages documents and their explicit grants.
type DocumentStore interface {
	CreateDocument(ctx context.Context, document *content.Document) error
	// GetDocument returns the row whether or not it is soft-deleted;
	// callers apply visibility rules.
	GetDocument(ctx context.Context, id string) (*content.Document, error)
	UpdateDocument(ctx context.Context, document *content.Document) error
	// ListDocuments excludes soft-deleted documents.
	ListDocuments(ctx context.Context, contextID string, limit, offset int) ([]content.Document, int, error)

	// SetUserGrant inserts or updates the user's role on the document.
	SetUserGrant(ctx context.Context, documentID, userID string, role content.GrantRole) error
	RemoveUserGrant(ctx context.Context, documentID, userID string) error
	SetTeamGrant(ctx context.Context, documentID, teamID string, role content.GrantRole) error
	RemoveTeamGrant(ctx context.Context, documentID, teamID string) error
	SetDepartmentGrant(ctx context.Context, documentID, departmentID string, role content.GrantRole) error
	RemoveDepartmentGrant(ctx context.Context, documentID, departmentID string) error
}

// SessionStore persists login sessions for auth.Manager.
type SessionStore interface {
	CreateSession(ctx context.Context, session *auth.Session) error
	GetSession(ctx context.Context, id string) (*auth.Session, error)
	DeleteSession(ctx context.Context, id string) error
	DeleteExpiredSessions(ctx context.Context) (int, error)
}

// Store is everything the API layer needs from persistence. It embeds the
// permission engine's read-side repository so one backend serves both.
type Store interface {
	access.Repository
	UserStore
	OrgStore
	AssignmentStore
	ContentStore
	DocumentStore
	SessionStore

	// Close releases backend resources.
	Close() error
}
