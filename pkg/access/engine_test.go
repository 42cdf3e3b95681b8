package access

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/docvault/pkg/content"
	"github.com/platinummonkey/docvault/pkg/org"
)

// fakeRepo is an in-memory Repository over a fixed graph. Absent entries
// resolve to (nil, nil), matching the storage contract.
type fakeRepo struct {
	profiles map[string]*org.UserProfile
	docs     map[string]*content.DocumentProjection
	contexts map[string]*content.Context
	teams    map[string]*org.TeamRef
	depts    map[string]*org.Department
	err      error
}

func (f *fakeRepo) LoadUserProfile(_ context.Context, userID string) (*org.UserProfile, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.profiles[userID], nil
}

func (f *fakeRepo) LoadDocumentProjection(_ context.Context, documentID string) (*content.DocumentProjection, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.docs[documentID], nil
}

func (f *fakeRepo) LoadContext(_ context.Context, contextID string) (*content.Context, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.contexts[contextID], nil
}

func (f *fakeRepo) LoadTeamRef(_ context.Context, teamID string) (*org.TeamRef, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.teams[teamID], nil
}

func (f *fakeRepo) LoadDepartmentRef(_ context.Context, departmentID string) (*org.Department, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.depts[departmentID], nil
}

// The fixture graph used throughout:
//
//	engineering department
//	  backend team: member is a plain member, leader leads (not a member)
//	  supervisor supervises engineering
//	sales department
//	  salesSupervisor supervises sales
//	owner holds a personal space; outsider has no edges; ghost is
//	soft-deleted; admin is the administrator.
const (
	engDept   = "dept-eng"
	salesDept = "dept-sales"
	backend   = "team-backend"

	admin      = "user-admin"
	ghost      = "user-ghost"
	supervisor = "user-supervisor"
	salesSup   = "user-sales-supervisor"
	member     = "user-member"
	leader     = "user-leader"
	owner      = "user-owner"
	outsider   = "user-outsider"
)

func newFixtureRepo() *fakeRepo {
	deleted := time.Now().Add(-time.Hour)
	backendRef := org.TeamRef{ID: backend, DepartmentID: engDept}
	return &fakeRepo{
		profiles: map[string]*org.UserProfile{
			admin:      {ID: admin, IsAdmin: true},
			ghost:      {ID: ghost, DeletedAt: &deleted, IsAdmin: true},
			supervisor: {ID: supervisor, SupervisorOf: []string{engDept}},
			salesSup:   {ID: salesSup, SupervisorOf: []string{salesDept}},
			member:     {ID: member, TeamMemberships: []org.TeamRef{backendRef}},
			leader:     {ID: leader, LeaderOfTeams: []org.TeamRef{backendRef}},
			owner:      {ID: owner},
			outsider:   {ID: outsider},
		},
		teams: map[string]*org.TeamRef{backend: &backendRef},
		depts: map[string]*org.Department{
			engDept:   {ID: engDept, Name: "Engineering"},
			salesDept: {ID: salesDept, Name: "Sales"},
		},
		contexts: map[string]*content.Context{},
		docs:     map[string]*content.DocumentProjection{},
	}
}

func teamOwnedDoc(id string) *content.DocumentProjection {
	return &content.DocumentProjection{
		Document: content.Document{ID: id, Title: id},
		Context: content.NewProjectContext("ctx-"+id, org.OwnerRef{
			TeamID: backend, TeamDepartmentID: engDept,
		}),
	}
}

func deptOwnedDoc(id, departmentID string) *content.DocumentProjection {
	return &content.DocumentProjection{
		Document: content.Document{ID: id, Title: id},
		Context:  content.NewProcessContext("ctx-"+id, org.OwnerRef{DepartmentID: departmentID}),
	}
}

func personalDoc(id, ownerUserID string) *content.DocumentProjection {
	return &content.DocumentProjection{
		Document: content.Document{ID: id, Title: id},
		Context:  content.NewUserSpaceContext("ctx-"+id, ownerUserID),
	}
}

func TestCanReadDocument(t *testing.T) {
	repo := newFixtureRepo()
	engine := NewEngine(repo, nil)

	teamDoc := teamOwnedDoc("doc-team")
	deptDoc := deptOwnedDoc("doc-dept", engDept)
	salesDoc := deptOwnedDoc("doc-sales", salesDept)
	personal := personalDoc("doc-personal", owner)

	userGrantDoc := deptOwnedDoc("doc-user-grant", salesDept)
	userGrantDoc.UserGrants = []content.UserGrant{{UserID: outsider, Role: content.GrantRead}}

	teamGrantDoc := deptOwnedDoc("doc-team-grant", salesDept)
	teamGrantDoc.TeamGrants = []content.TeamGrant{{TeamID: backend, Role: content.GrantRead}}

	deptGrantDoc := deptOwnedDoc("doc-dept-grant", salesDept)
	deptGrantDoc.DepartmentGrants = []content.DepartmentGrant{{DepartmentID: engDept, Role: content.GrantRead}}

	supDeptGrantDoc := deptOwnedDoc("doc-sup-grant", engDept)
	supDeptGrantDoc.DepartmentGrants = []content.DepartmentGrant{{DepartmentID: salesDept, Role: content.GrantRead}}

	writeGrantDoc := deptOwnedDoc("doc-write-grant", salesDept)
	writeGrantDoc.UserGrants = []content.UserGrant{{UserID: outsider, Role: content.GrantWrite}}

	tests := []struct {
		name string
		user string
		doc  *content.DocumentProjection
		want bool
	}{
		{"admin reads team doc", admin, teamDoc, true},
		{"admin reads another user's personal doc", admin, personal, true},
		{"admin denied on missing doc", admin, nil, false},

		{"deactivated admin denied", ghost, teamDoc, false},
		{"unknown user denied", "user-unknown", teamDoc, false},

		{"supervisor reads team doc in own department", supervisor, teamDoc, true},
		{"supervisor reads department doc", supervisor, deptDoc, true},
		{"supervisor denied outside own department", supervisor, salesDoc, false},
		{"supervisor denied on personal doc", supervisor, personal, false},

		{"personal owner reads own doc", owner, personal, true},
		{"member denied on another user's personal doc", member, personal, false},

		{"team membership alone grants nothing", member, teamDoc, false},
		{"leadership alone grants nothing", leader, teamDoc, false},

		{"explicit user read grant", outsider, userGrantDoc, true},
		{"user read grant names only its user", member, userGrantDoc, false},
		{"write grant does not imply read", outsider, writeGrantDoc, false},

		{"team read grant reaches members", member, teamGrantDoc, true},
		{"team read grant skips non-member leaders", leader, teamGrantDoc, false},
		{"team read grant skips outsiders", outsider, teamGrantDoc, false},

		{"department read grant via team membership", member, deptGrantDoc, true},
		{"department read grant via team leadership", leader, deptGrantDoc, true},
		{"supervision does not reach department grants", salesSup, supDeptGrantDoc, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := engine.CanReadDocument(context.Background(), tt.user, tt.doc)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCanWriteDocument(t *testing.T) {
	repo := newFixtureRepo()
	engine := NewEngine(repo, nil)

	deptDoc := deptOwnedDoc("doc-dept", engDept)
	personal := personalDoc("doc-personal", owner)

	userWriteDoc := deptOwnedDoc("doc-user-write", salesDept)
	userWriteDoc.UserGrants = []content.UserGrant{{UserID: outsider, Role: content.GrantWrite}}

	userReadDoc := deptOwnedDoc("doc-user-read", salesDept)
	userReadDoc.UserGrants = []content.UserGrant{{UserID: outsider, Role: content.GrantRead}}

	teamWriteDoc := deptOwnedDoc("doc-team-write", salesDept)
	teamWriteDoc.TeamGrants = []content.TeamGrant{{TeamID: backend, Role: content.GrantWrite}}

	deptWriteDoc := deptOwnedDoc("doc-dept-write", salesDept)
	deptWriteDoc.DepartmentGrants = []content.DepartmentGrant{{DepartmentID: engDept, Role: content.GrantWrite}}

	tests := []struct {
		name string
		user string
		doc  *content.DocumentProjection
		want bool
	}{
		{"admin writes everything", admin, personal, true},
		{"admin denied on missing doc", admin, nil, false},
		{"deactivated user denied", ghost, deptDoc, false},

		{"supervision grants read but never write", supervisor, deptDoc, false},
		{"personal owner writes own doc", owner, personal, true},
		{"non-owner denied on personal doc", member, personal, false},

		{"explicit user write grant", outsider, userWriteDoc, true},
		{"read grant does not imply write", outsider, userReadDoc, false},

		{"team write grant reaches leaders", leader, teamWriteDoc, true},
		{"team write grant skips plain members", member, teamWriteDoc, false},

		{"department write grant via team membership", member, deptWriteDoc, true},
		{"department write grant via team leadership", leader, deptWriteDoc, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := engine.CanWriteDocument(context.Background(), tt.user, tt.doc)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDocumentDecisionsAreIdempotent(t *testing.T) {
	repo := newFixtureRepo()
	engine := NewEngine(repo, nil)
	doc := teamOwnedDoc("doc-team")

	for _, user := range []string{admin, supervisor, member, outsider, ghost} {
		first, err := engine.CanReadDocument(context.Background(), user, doc)
		require.NoError(t, err)
		for i := 0; i < 3; i++ {
			again, err := engine.CanReadDocument(context.Background(), user, doc)
			require.NoError(t, err)
			assert.Equal(t, first, again, "repeated evaluation changed outcome for %s", user)
		}
	}
}

func TestDocumentDecisionPropagatesStoreErrors(t *testing.T) {
	repo := newFixtureRepo()
	repo.err = errors.New("connection reset")
	engine := NewEngine(repo, nil)

	_, err := engine.CanRead(context.Background(), admin, "doc-any")
	assert.Error(t, err)
	_, err = engine.CanWrite(context.Background(), admin, "doc-any")
	assert.Error(t, err)
}

func TestContextDecisions(t *testing.T) {
	repo := newFixtureRepo()
	engine := NewEngine(repo, nil)

	repo.contexts["ctx-team"] = content.NewProjectContext("ctx-team",
		org.OwnerRef{TeamID: backend, TeamDepartmentID: engDept})
	repo.contexts["ctx-dept"] = content.NewProcessContext("ctx-dept",
		org.OwnerRef{DepartmentID: engDept})
	repo.contexts["ctx-personal"] = content.NewUserSpaceContext("ctx-personal", owner)
	repo.contexts["ctx-malformed"] = &content.Context{ID: "ctx-malformed"}
	repo.contexts["ctx-orphan-owner"] = content.NewProjectContext("ctx-orphan-owner", org.OwnerRef{})

	tests := []struct {
		name      string
		user      string
		contextID string
		read      bool
		write     bool
	}{
		{"admin on team context", admin, "ctx-team", true, true},
		{"admin on missing context", admin, "ctx-missing", false, false},
		{"deactivated user", ghost, "ctx-team", false, false},

		{"member on team context reads only", member, "ctx-team", true, false},
		{"leader on team context writes", leader, "ctx-team", false, true},
		{"outsider on team context", outsider, "ctx-team", false, false},

		{"supervisor reads and writes own department contexts", supervisor, "ctx-team", true, true},
		{"supervisor on department context", supervisor, "ctx-dept", true, true},
		{"sales supervisor on engineering context", salesSup, "ctx-dept", false, false},

		{"personal owner", owner, "ctx-personal", true, true},
		{"supervisor on personal context", supervisor, "ctx-personal", false, false},
		{"member on personal context", member, "ctx-personal", false, false},

		{"malformed context denies non-admin", supervisor, "ctx-malformed", false, false},
		{"malformed context still bypassed by admin", admin, "ctx-malformed", true, true},
		{"unresolvable owner denies", member, "ctx-orphan-owner", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			read, err := engine.CanReadContext(context.Background(), tt.user, tt.contextID)
			require.NoError(t, err)
			assert.Equal(t, tt.read, read, "read")

			write, err := engine.CanWriteContext(context.Background(), tt.user, tt.contextID)
			require.NoError(t, err)
			assert.Equal(t, tt.write, write, "write")
		})
	}
}

func TestCanCreateProcessOrProjectForOwner(t *testing.T) {
	repo := newFixtureRepo()
	engine := NewEngine(repo, nil)

	tests := []struct {
		name string
		user string
		spec OwnerSpec
		want bool
	}{
		{"admin for any department", admin, OwnerSpec{DepartmentID: salesDept}, true},
		{"supervisor for own department", supervisor, OwnerSpec{DepartmentID: engDept}, true},
		{"supervisor for other department", supervisor, OwnerSpec{DepartmentID: salesDept}, false},
		{"leader for own team", leader, OwnerSpec{TeamID: backend}, true},
		{"member for own team", member, OwnerSpec{TeamID: backend}, false},
		{"deactivated user", ghost, OwnerSpec{DepartmentID: engDept}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := engine.CanCreateProcessOrProjectForOwner(context.Background(), tt.user, tt.spec)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAssignmentPredicates(t *testing.T) {
	repo := newFixtureRepo()
	engine := NewEngine(repo, nil)
	ctx := context.Background()

	t.Run("manage members", func(t *testing.T) {
		for user, want := range map[string]bool{
			admin:      true,
			supervisor: true,
			leader:     true,
			member:     false,
			outsider:   false,
			ghost:      false,
		} {
			got, err := engine.CanManageTeamMembers(ctx, user, backend)
			require.NoError(t, err)
			assert.Equal(t, want, got, "user %s", user)
		}
	})

	t.Run("manage leaders excludes leaders themselves", func(t *testing.T) {
		for user, want := range map[string]bool{
			admin:      true,
			supervisor: true,
			leader:     false,
			member:     false,
		} {
			got, err := engine.CanManageTeamLeaders(ctx, user, backend)
			require.NoError(t, err)
			assert.Equal(t, want, got, "user %s", user)
		}
	})

	t.Run("view team", func(t *testing.T) {
		for user, want := range map[string]bool{
			admin:      true,
			supervisor: true,
			leader:     true,
			member:     true,
			outsider:   false,
		} {
			got, err := engine.CanViewTeam(ctx, user, backend)
			require.NoError(t, err)
			assert.Equal(t, want, got, "user %s", user)
		}
	})

	t.Run("manage supervisors is admin only", func(t *testing.T) {
		for user, want := range map[string]bool{
			admin:      true,
			supervisor: false,
			leader:     false,
		} {
			got, err := engine.CanManageSupervisors(ctx, user, engDept)
			require.NoError(t, err)
			assert.Equal(t, want, got, "user %s", user)
		}
	})

	t.Run("view department", func(t *testing.T) {
		for user, want := range map[string]bool{
			admin:      true,
			supervisor: true,
			salesSup:   false,
			member:     false,
		} {
			got, err := engine.CanViewDepartment(ctx, user, engDept)
			require.NoError(t, err)
			assert.Equal(t, want, got, "user %s", user)
		}
	})

	t.Run("missing team denies even admin", func(t *testing.T) {
		got, err := engine.CanManageTeamMembers(ctx, admin, "team-missing")
		require.NoError(t, err)
		assert.False(t, got)
	})

	t.Run("missing department denies even admin", func(t *testing.T) {
		got, err := engine.CanViewDepartment(ctx, admin, "dept-missing")
		require.NoError(t, err)
		assert.False(t, got)
	})
}
