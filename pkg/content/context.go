// Package content models the content hierarchy: contexts (process, project,
// subcontext, personal user space) and the documents attached to them.
package content

import (
	"errors"

	"github.com/platinummonkey/docvault/pkg/org"
)

// ErrInvalidContext indicates a context row that does not have exactly one
// populated branch.
var ErrInvalidContext = errors.New("context must have exactly one of process, project, subcontext or user space")

// Kind discriminates the context union.
type Kind string

const (
	KindProcess    Kind = "process"
	KindProject    Kind = "project"
	KindSubcontext Kind = "subcontext"
	KindUserSpace  Kind = "user_space"
	// KindInvalid marks a context that violates the one-branch invariant.
	// Resolution of an invalid context yields nothing and callers deny.
	KindInvalid Kind = "invalid"
)

// ProcessRef is the process branch of a context, carrying its owner
// projection.
type ProcessRef struct {
	Owner org.OwnerRef `json:"owner"`
}

// ProjectRef is the project branch of a context.
type ProjectRef struct {
	Owner org.OwnerRef `json:"owner"`
}

// SubcontextRef is the subcontext branch; it inherits its parent project's
// owner.
type SubcontextRef struct {
	Project ProjectRef `json:"project"`
}

// UserSpaceRef is the personal branch, owned by exactly one user.
type UserSpaceRef struct {
	OwnerUserID string `json:"owner_user_id"`
}

// Context is the polymorphic parent of documents. Exactly one branch is
// populated; use the New*Context constructors so the invariant holds by
// construction. A context with a populated UserSpace is personal, all
// other branches are organizational.
type Context struct {
	ID         string         `json:"id"`
	Process    *ProcessRef    `json:"process,omitempty"`
	Project    *ProjectRef    `json:"project,omitempty"`
	Subcontext *SubcontextRef `json:"subcontext,omitempty"`
	UserSpace  *UserSpaceRef  `json:"user_space,omitempty"`
}

// NewProcessContext returns a context backed by a process.
func NewProcessContext(id string, owner org.OwnerRef) *Context {
	return &Context{ID: id, Process: &ProcessRef{Owner: owner}}
}

// NewProjectContext returns a context backed by a project.
func NewProjectContext(id string, owner org.OwnerRef) *Context {
	return &Context{ID: id, Project: &ProjectRef{Owner: owner}}
}

// NewSubcontextContext returns a context backed by a subcontext of the
// given project.
func NewSubcontextContext(id string, projectOwner org.OwnerRef) *Context {
	return &Context{ID: id, Subcontext: &SubcontextRef{Project: ProjectRef{Owner: projectOwner}}}
}

// NewUserSpaceContext returns a personal context owned by the given user.
func NewUserSpaceContext(id, ownerUserID string) *Context {
	return &Context{ID: id, UserSpace: &UserSpaceRef{OwnerUserID: ownerUserID}}
}

// Kind returns the populated branch, or KindInvalid when zero or more than
// one branch is set.
func (c *Context) Kind() Kind {
	var (
		kind Kind = KindInvalid
		n    int
	)
	if c.Process != nil {
		kind, n = KindProcess, n+1
	}
	if c.Project != nil {
		kind, n = KindProject, n+1
	}
	if c.Subcontext != nil {
		kind, n = KindSubcontext, n+1
	}
	if c.UserSpace != nil {
		kind, n = KindUserSpace, n+1
	}
	if n != 1 {
		return KindInvalid
	}
	return kind
}

// Validate checks the one-branch invariant.
func (c *Context) Validate() error {
	if c.Kind() == KindInvalid {
		return ErrInvalidContext
	}
	return nil
}

// Personal reports whether the context is a user space.
func (c *Context) Personal() bool {
	return c.UserSpace != nil
}

// EffectiveOwner is the result of resolving a context's ownership chain.
// Personal contexts resolve to an owning user; organizational contexts
// resolve to a department (and the owning team when team-owned).
type EffectiveOwner struct {
	OwnerUserID  string `json:"owner_user_id,omitempty"`
	DepartmentID string `json:"department_id,omitempty"`
	TeamID       string `json:"team_id,omitempty"`
}

// Personal reports whether the owner is a user rather than an
// organizational unit.
func (o EffectiveOwner) Personal() bool {
	return o.OwnerUserID != ""
}

// EffectiveOwner walks the context's ownership chain. The second return is
// false only when the context itself is malformed; callers treat that as
// deny. For organizational contexts the department may come back empty
// when the owner union is unresolvable (no effective department), while
// the owning team id is still reported for membership checks.
func (c *Context) EffectiveOwner() (EffectiveOwner, bool) {
	switch c.Kind() {
	case KindUserSpace:
		return EffectiveOwner{OwnerUserID: c.UserSpace.OwnerUserID}, true
	case KindProcess:
		return ownerResult(c.Process.Owner), true
	case KindProject:
		return ownerResult(c.Project.Owner), true
	case KindSubcontext:
		return ownerResult(c.Subcontext.Project.Owner), true
	default:
		return EffectiveOwner{}, false
	}
}

func ownerResult(ref org.OwnerRef) EffectiveOwner {
	dept, _ := ref.EffectiveDepartment()
	return EffectiveOwner{DepartmentID: dept, TeamID: ref.TeamID}
}
