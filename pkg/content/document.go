package content

import "time"

// GrantRole is the access level an explicit grant confers.
type GrantRole string

const (
	GrantRead  GrantRole = "read"
	GrantWrite GrantRole = "write"
)

// Valid reports whether the role is one of the known grant roles.
func (r GrantRole) Valid() bool {
	return r == GrantRead || r == GrantWrite
}

// UserGrant grants a role on a document to a single user.
type UserGrant struct {
	UserID string    `json:"user_id"`
	Role   GrantRole `json:"role"`
}

// TeamGrant grants a role on a document to a team. Read applies to the
// team's members; write applies to the team's leaders only.
type TeamGrant struct {
	TeamID string    `json:"team_id"`
	Role   GrantRole `json:"role"`
}

// DepartmentGrant grants a role on a document to everyone whose team
// membership or leadership falls under the department.
type DepartmentGrant struct {
	DepartmentID string    `json:"department_id"`
	Role         GrantRole `json:"role"`
}

// Document is a piece of content attached to exactly one context.
// DeletedAt marks soft deletion: excluded from normal reads but still
// resolvable for existence checks.
type Document struct {
	ID        string     `json:"id"`
	ContextID string     `json:"context_id"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	PDFURL    string     `json:"pdf_url,omitempty"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Deleted reports whether the document is soft-deleted.
func (d *Document) Deleted() bool {
	return d != nil && d.DeletedAt != nil
}

// DocumentProjection is a document loaded with everything a permission
// check needs: its context's ownership chain and all three grant
// collections.
type DocumentProjection struct {
	Document
	Context          *Context          `json:"context"`
	UserGrants       []UserGrant       `json:"grant_users"`
	TeamGrants       []TeamGrant       `json:"grant_teams"`
	DepartmentGrants []DepartmentGrant `json:"grant_departments"`
}

// HasUserGrant reports an explicit (user, role) grant on the document.
func (d *DocumentProjection) HasUserGrant(userID string, role GrantRole) bool {
	for _, g := range d.UserGrants {
		if g.UserID == userID && g.Role == role {
			return true
		}
	}
	return false
}

// TeamGrantMatches reports a (team, role) grant whose team satisfies the
// given membership test.
func (d *DocumentProjection) TeamGrantMatches(role GrantRole, member func(teamID string) bool) bool {
	for _, g := range d.TeamGrants {
		if g.Role == role && member(g.TeamID) {
			return true
		}
	}
	return false
}

// DepartmentGrantMatches reports a (department, role) grant whose
// department is in the given reachable set.
func (d *DocumentProjection) DepartmentGrantMatches(role GrantRole, departments map[string]bool) bool {
	for _, g := range d.DepartmentGrants {
		if g.Role == role && departments[g.DepartmentID] {
			return true
		}
	}
	return false
}
