package access

import (
	"context"

	"github.com/platinummonkey/docvault/pkg/content"
	"github.com/platinummonkey/docvault/pkg/org"
)

// Engine evaluates authorization decisions against the organizational
// graph and grant store. It is stateless: every call is an independent
// read-only computation over currently committed state, so concurrent use
// needs no coordination.
type Engine struct {
	repo    Repository
	metrics *Metrics
}

// NewEngine creates a decision engine backed by the given repository.
// metrics may be nil.
func NewEngine(repo Repository, metrics *Metrics) *Engine {
	return &Engine{repo: repo, metrics: metrics}
}

// profile loads the acting user's permission projection. It returns nil
// for a missing or soft-deleted user; that nil is the rule-0 veto every
// predicate applies before anything else.
func (e *Engine) profile(ctx context.Context, userID string) (*org.UserProfile, error) {
	user, err := e.repo.LoadUserProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.Active() {
		return nil, nil
	}
	return user, nil
}

// CanRead reports whether the user may read the document, loading the
// document's permission projection first.
func (e *Engine) CanRead(ctx context.Context, userID, documentID string) (bool, error) {
	doc, err := e.repo.LoadDocumentProjection(ctx, documentID)
	if err != nil {
		return false, err
	}
	return e.CanReadDocument(ctx, userID, doc)
}

// CanReadDocument reports whether the user may read the already-loaded
// document. Rules in order: admin; supervisor of the organizational
// context's effective department; owner of the personal context; explicit
// read grant (user, member team, or reachable department).
func (e *Engine) CanReadDocument(ctx context.Context, userID string, doc *content.DocumentProjection) (bool, error) {
	allowed, err := e.canReadDocument(ctx, userID, doc)
	e.record("can_read", allowed, err)
	return allowed, err
}

func (e *Engine) canReadDocument(ctx context.Context, userID string, doc *content.DocumentProjection) (bool, error) {
	user, err := e.profile(ctx, userID)
	if err != nil || user == nil {
		return false, err
	}
	if doc == nil || doc.Context == nil {
		return false, nil
	}
	if user.IsAdmin {
		return true, nil
	}

	owner, ok := doc.Context.EffectiveOwner()
	if ok && !owner.Personal() && owner.DepartmentID != "" && user.Supervises(owner.DepartmentID) {
		return true, nil
	}
	if ok && owner.Personal() && owner.OwnerUserID == userID {
		return true, nil
	}

	if doc.HasUserGrant(userID, content.GrantRead) {
		return true, nil
	}
	if doc.TeamGrantMatches(content.GrantRead, user.MemberOfTeam) {
		return true, nil
	}
	if doc.DepartmentGrantMatches(content.GrantRead, user.ReachableDepartments()) {
		return true, nil
	}
	return false, nil
}

// CanWrite reports whether the user may write the document, loading the
// document's permission projection first.
func (e *Engine) CanWrite(ctx context.Context, userID, documentID string) (bool, error) {
	doc, err := e.repo.LoadDocumentProjection(ctx, documentID)
	if err != nil {
		return false, err
	}
	return e.CanWriteDocument(ctx, userID, doc)
}

// CanWriteDocument reports whether the user may write the already-loaded
// document. Write is narrower than read: supervisors get no implicit
// access; only admin, personal ownership, or an explicit write grant
// naming the user, a team the user leads, or a reachable department.
func (e *Engine) CanWriteDocument(ctx context.Context, userID string, doc *content.DocumentProjection) (bool, error) {
	allowed, err := e.canWriteDocument(ctx, userID, doc)
	e.record("can_write", allowed, err)
	return allowed, err
}

func (e *Engine) canWriteDocument(ctx context.Context, userID string, doc *content.DocumentProjection) (bool, error) {
	user, err := e.profile(ctx, userID)
	if err != nil || user == nil {
		return false, err
	}
	if doc == nil || doc.Context == nil {
		return false, nil
	}
	if user.IsAdmin {
		return true, nil
	}

	if owner, ok := doc.Context.EffectiveOwner(); ok && owner.Personal() && owner.OwnerUserID == userID {
		return true, nil
	}

	if doc.HasUserGrant(userID, content.GrantWrite) {
		return true, nil
	}
	if doc.TeamGrantMatches(content.GrantWrite, user.LeadsTeam) {
		return true, nil
	}
	if doc.DepartmentGrantMatches(content.GrantWrite, user.ReachableDepartments()) {
		return true, nil
	}
	return false, nil
}

// CanReadContext reports whether the user may read the context itself
// (list its documents, view the container). Personal contexts resolve
// through ownership only; organizational contexts grant read to
// supervisors of the effective department and members of the owning team.
func (e *Engine) CanReadContext(ctx context.Context, userID, contextID string) (bool, error) {
	allowed, err := e.decideContext(ctx, userID, contextID, false)
	e.record("can_read_context", allowed, err)
	return allowed, err
}

// CanWriteContext reports whether the user may mutate the context
// (create, change or delete its process/project/subcontext). Unlike
// document write, department supervision does grant context write; the
// team path requires leadership rather than membership.
func (e *Engine) CanWriteContext(ctx context.Context, userID, contextID string) (bool, error) {
	allowed, err := e.decideContext(ctx, userID, contextID, true)
	e.record("can_write_context", allowed, err)
	return allowed, err
}

func (e *Engine) decideContext(ctx context.Context, userID, contextID string, write bool) (bool, error) {
	user, err := e.profile(ctx, userID)
	if err != nil || user == nil {
		return false, err
	}
	c, err := e.repo.LoadContext(ctx, contextID)
	if err != nil {
		return false, err
	}
	if c == nil {
		return false, nil
	}
	if user.IsAdmin {
		return true, nil
	}

	owner, ok := c.EffectiveOwner()
	if !ok {
		return false, nil
	}
	if owner.Personal() {
		return owner.OwnerUserID == userID, nil
	}
	if owner.DepartmentID != "" && user.Supervises(owner.DepartmentID) {
		return true, nil
	}
	if owner.TeamID != "" {
		if write {
			return user.LeadsTeam(owner.TeamID), nil
		}
		return user.MemberOfTeam(owner.TeamID), nil
	}
	return false, nil
}

// OwnerSpec names the owner a new process or project should be created
// for. Exactly one field is expected to be set; callers validate upstream.
type OwnerSpec struct {
	DepartmentID string
	TeamID       string
}

// CanCreateProcessOrProjectForOwner reports whether the user may create a
// process or project owned by the given department or team: admin,
// supervisor of the department, or leader of the team.
func (e *Engine) CanCreateProcessOrProjectForOwner(ctx context.Context, userID string, spec OwnerSpec) (bool, error) {
	allowed, err := e.canCreateForOwner(ctx, userID, spec)
	e.record("can_create_for_owner", allowed, err)
	return allowed, err
}

func (e *Engine) canCreateForOwner(ctx context.Context, userID string, spec OwnerSpec) (bool, error) {
	user, err := e.profile(ctx, userID)
	if err != nil || user == nil {
		return false, err
	}
	if user.IsAdmin {
		return true, nil
	}
	if spec.DepartmentID != "" && user.Supervises(spec.DepartmentID) {
		return true, nil
	}
	if spec.TeamID != "" && user.LeadsTeam(spec.TeamID) {
		return true, nil
	}
	return false, nil
}
