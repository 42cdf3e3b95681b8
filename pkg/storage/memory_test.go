package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/docvault/pkg/auth"
	"github.com/platinummonkey/docvault/pkg/content"
	"github.com/platinummonkey/docvault/pkg/org"
)

// seedOrg creates a company with one department and one team and returns
// their ids.
func seedOrg(t *testing.T, store *MemoryStore) (companyID, deptID, teamID string) {
	t.Helper()
	ctx := context.Background()

	company := &org.Company{Name: "Acme"}
	require.NoError(t, store.CreateCompany(ctx, company))
	dept := &org.Department{CompanyID: company.ID, Name: "Engineering"}
	require.NoError(t, store.CreateDepartment(ctx, dept))
	team := &org.Team{DepartmentID: dept.ID, Name: "Backend"}
	require.NoError(t, store.CreateTeam(ctx, team))
	return company.ID, dept.ID, team.ID
}

func seedUser(t *testing.T, store *MemoryStore, name, email string) *org.User {
	t.Helper()
	user := &org.User{Name: name, Email: email}
	require.NoError(t, store.CreateUser(context.Background(), user))
	return user
}

func TestMemoryStoreUserCRUD(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	user := seedUser(t, store, "Ada", "ada@example.com")
	assert.NotEmpty(t, user.ID)

	loaded, err := store.GetUserByEmail(ctx, "ADA@example.com")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, user.ID, loaded.ID)

	t.Run("duplicate email conflicts", func(t *testing.T) {
		err := store.CreateUser(ctx, &org.User{Name: "Other", Email: "ada@example.com"})
		assert.ErrorIs(t, err, ErrConflict)
	})

	t.Run("missing user resolves to nil", func(t *testing.T) {
		loaded, err := store.GetUser(ctx, "nope")
		require.NoError(t, err)
		assert.Nil(t, loaded)
	})

	t.Run("update missing user", func(t *testing.T) {
		err := store.UpdateUser(ctx, &org.User{ID: "nope", Email: "x@example.com"})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("soft delete hides user from default listing", func(t *testing.T) {
		now := time.Now().UTC()
		user.DeletedAt = &now
		require.NoError(t, store.UpdateUser(ctx, user))

		users, total, err := store.ListUsers(ctx, UserFilter{})
		require.NoError(t, err)
		assert.Zero(t, total)
		assert.Empty(t, users)

		users, total, err = store.ListUsers(ctx, UserFilter{IncludeDeactivated: true})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		require.Len(t, users, 1)
		assert.NotNil(t, users[0].DeletedAt)
	})
}

func TestMemoryStoreListUsersFilterAndSort(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	seedUser(t, store, "Carol", "carol@example.com")
	seedUser(t, store, "Alice", "alice@example.com")
	seedUser(t, store, "Bob", "bob@other.org")

	users, total, err := store.ListUsers(ctx, UserFilter{SortBy: "name"})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Equal(t, []string{"Alice", "Bob", "Carol"},
		[]string{users[0].Name, users[1].Name, users[2].Name})

	users, total, err = store.ListUsers(ctx, UserFilter{Search: "example.com"})
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	users, total, err = store.ListUsers(ctx, UserFilter{SortBy: "name", Descending: true, Limit: 1, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, users, 1)
	assert.Equal(t, "Bob", users[0].Name)
}

func TestMemoryStoreOrgHierarchy(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	companyID, deptID, teamID := seedOrg(t, store)

	t.Run("company with departments cannot be deleted", func(t *testing.T) {
		assert.ErrorIs(t, store.DeleteCompany(ctx, companyID), ErrConflict)
	})

	t.Run("department with teams cannot be deleted", func(t *testing.T) {
		assert.ErrorIs(t, store.DeleteDepartment(ctx, deptID), ErrConflict)
	})

	t.Run("department under unknown company", func(t *testing.T) {
		err := store.CreateDepartment(ctx, &org.Department{CompanyID: "nope", Name: "X"})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("delete bottom-up", func(t *testing.T) {
		require.NoError(t, store.DeleteTeam(ctx, teamID))
		require.NoError(t, store.DeleteDepartment(ctx, deptID))
		require.NoError(t, store.DeleteCompany(ctx, companyID))
		count, err := store.CountCompanies(ctx)
		require.NoError(t, err)
		assert.Zero(t, count)
	})
}

func TestMemoryStoreAssignments(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	_, deptID, teamID := seedOrg(t, store)
	member := seedUser(t, store, "Member", "member@example.com")
	leader := seedUser(t, store, "Leader", "leader@example.com")
	sup := seedUser(t, store, "Supervisor", "sup@example.com")

	require.NoError(t, store.AddTeamMember(ctx, teamID, member.ID))
	require.NoError(t, store.AddTeamLeader(ctx, teamID, leader.ID))
	require.NoError(t, store.AddSupervisor(ctx, deptID, sup.ID))

	t.Run("duplicate edge conflicts", func(t *testing.T) {
		assert.ErrorIs(t, store.AddTeamMember(ctx, teamID, member.ID), ErrConflict)
	})

	t.Run("unknown endpoints", func(t *testing.T) {
		assert.ErrorIs(t, store.AddTeamMember(ctx, "nope", member.ID), ErrNotFound)
		assert.ErrorIs(t, store.AddTeamMember(ctx, teamID, "nope"), ErrNotFound)
	})

	t.Run("deactivated users cannot be assigned", func(t *testing.T) {
		gone := seedUser(t, store, "Gone", "gone@example.com")
		now := time.Now().UTC()
		gone.DeletedAt = &now
		require.NoError(t, store.UpdateUser(ctx, gone))

		assert.ErrorIs(t, store.AddTeamMember(ctx, teamID, gone.ID), ErrNotFound)
		assert.ErrorIs(t, store.AddTeamLeader(ctx, teamID, gone.ID), ErrNotFound)
		assert.ErrorIs(t, store.AddSupervisor(ctx, deptID, gone.ID), ErrNotFound)
	})

	t.Run("listing", func(t *testing.T) {
		members, total, err := store.ListTeamMembers(ctx, teamID, 10, 0)
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		require.Len(t, members, 1)
		assert.Equal(t, member.ID, members[0].ID)

		sups, total, err := store.ListSupervisors(ctx, deptID, 10, 0)
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		assert.Equal(t, sup.ID, sups[0].ID)
	})

	t.Run("profile reflects edges", func(t *testing.T) {
		profile, err := store.LoadUserProfile(ctx, member.ID)
		require.NoError(t, err)
		require.NotNil(t, profile)
		require.Len(t, profile.TeamMemberships, 1)
		assert.Equal(t, teamID, profile.TeamMemberships[0].ID)
		assert.Equal(t, deptID, profile.TeamMemberships[0].DepartmentID)
		assert.Empty(t, profile.LeaderOfTeams)

		profile, err = store.LoadUserProfile(ctx, sup.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{deptID}, profile.SupervisorOf)
	})

	t.Run("remove absent edge", func(t *testing.T) {
		assert.ErrorIs(t, store.RemoveTeamLeader(ctx, teamID, member.ID), ErrNotFound)
		require.NoError(t, store.RemoveTeamMember(ctx, teamID, member.ID))
		assert.ErrorIs(t, store.RemoveTeamMember(ctx, teamID, member.ID), ErrNotFound)
	})

	t.Run("missing user profile resolves to nil", func(t *testing.T) {
		profile, err := store.LoadUserProfile(ctx, "nope")
		require.NoError(t, err)
		assert.Nil(t, profile)
	})
}

func TestMemoryStoreContentAndContexts(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	_, deptID, teamID := seedOrg(t, store)
	user := seedUser(t, store, "Owner", "owner@example.com")

	t.Run("owner requires exactly one of department or team", func(t *testing.T) {
		_, err := store.FindOrCreateOwner(ctx, deptID, teamID)
		assert.Error(t, err)
		_, err = store.FindOrCreateOwner(ctx, "", "")
		assert.Error(t, err)
	})

	deptOwner, err := store.FindOrCreateOwner(ctx, deptID, "")
	require.NoError(t, err)
	teamOwner, err := store.FindOrCreateOwner(ctx, "", teamID)
	require.NoError(t, err)

	t.Run("owner rows are deduplicated", func(t *testing.T) {
		again, err := store.FindOrCreateOwner(ctx, deptID, "")
		require.NoError(t, err)
		assert.Equal(t, deptOwner.ID, again.ID)
	})

	process := &content.Process{Name: "Onboarding", OwnerID: deptOwner.ID}
	require.NoError(t, store.CreateProcess(ctx, process))
	require.NotEmpty(t, process.ContextID)

	project := &content.Project{Name: "Migration", OwnerID: teamOwner.ID}
	require.NoError(t, store.CreateProject(ctx, project))

	subcontext := &content.Subcontext{Name: "Phase 1", ProjectID: project.ID}
	require.NoError(t, store.CreateSubcontext(ctx, subcontext))

	space := &content.UserSpace{Name: "Notes", OwnerUserID: user.ID}
	require.NoError(t, store.CreateUserSpace(ctx, space))

	t.Run("process context resolves to its department", func(t *testing.T) {
		c, err := store.LoadContext(ctx, process.ContextID)
		require.NoError(t, err)
		require.NotNil(t, c)
		assert.Equal(t, content.KindProcess, c.Kind())
		owner, ok := c.EffectiveOwner()
		require.True(t, ok)
		assert.Equal(t, deptID, owner.DepartmentID)
		assert.Empty(t, owner.TeamID)
	})

	t.Run("team owned project resolves through team department", func(t *testing.T) {
		c, err := store.LoadContext(ctx, project.ContextID)
		require.NoError(t, err)
		owner, ok := c.EffectiveOwner()
		require.True(t, ok)
		assert.Equal(t, teamID, owner.TeamID)
		assert.Equal(t, deptID, owner.DepartmentID)
	})

	t.Run("subcontext inherits its project owner", func(t *testing.T) {
		c, err := store.LoadContext(ctx, subcontext.ContextID)
		require.NoError(t, err)
		assert.Equal(t, content.KindSubcontext, c.Kind())
		owner, ok := c.EffectiveOwner()
		require.True(t, ok)
		assert.Equal(t, teamID, owner.TeamID)
	})

	t.Run("user space context is personal", func(t *testing.T) {
		c, err := store.LoadContext(ctx, space.ContextID)
		require.NoError(t, err)
		assert.True(t, c.Personal())
		owner, ok := c.EffectiveOwner()
		require.True(t, ok)
		assert.Equal(t, user.ID, owner.OwnerUserID)
	})

	t.Run("missing context resolves to nil", func(t *testing.T) {
		c, err := store.LoadContext(ctx, "nope")
		require.NoError(t, err)
		assert.Nil(t, c)
	})

	t.Run("project with subcontexts cannot be deleted", func(t *testing.T) {
		assert.ErrorIs(t, store.DeleteProject(ctx, project.ID), ErrConflict)
		require.NoError(t, store.DeleteSubcontext(ctx, subcontext.ID))
		require.NoError(t, store.DeleteProject(ctx, project.ID))
	})

	t.Run("deleting a process removes its context", func(t *testing.T) {
		require.NoError(t, store.DeleteProcess(ctx, process.ID))
		c, err := store.LoadContext(ctx, process.ContextID)
		require.NoError(t, err)
		assert.Nil(t, c)
	})
}

func TestMemoryStoreDocumentsAndGrants(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	_, deptID, teamID := seedOrg(t, store)
	user := seedUser(t, store, "Reader", "reader@example.com")

	owner, err := store.FindOrCreateOwner(ctx, deptID, "")
	require.NoError(t, err)
	process := &content.Process{Name: "Handbook", OwnerID: owner.ID}
	require.NoError(t, store.CreateProcess(ctx, process))

	doc := &content.Document{ContextID: process.ContextID, Title: "Policies", Content: "..."}
	require.NoError(t, store.CreateDocument(ctx, doc))

	t.Run("document under unknown context", func(t *testing.T) {
		err := store.CreateDocument(ctx, &content.Document{ContextID: "nope", Title: "X"})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	require.NoError(t, store.SetUserGrant(ctx, doc.ID, user.ID, content.GrantRead))
	require.NoError(t, store.SetTeamGrant(ctx, doc.ID, teamID, content.GrantWrite))
	require.NoError(t, store.SetDepartmentGrant(ctx, doc.ID, deptID, content.GrantRead))

	t.Run("projection carries context and grants", func(t *testing.T) {
		projection, err := store.LoadDocumentProjection(ctx, doc.ID)
		require.NoError(t, err)
		require.NotNil(t, projection)
		require.NotNil(t, projection.Context)
		assert.Equal(t, content.KindProcess, projection.Context.Kind())
		assert.True(t, projection.HasUserGrant(user.ID, content.GrantRead))
		require.Len(t, projection.TeamGrants, 1)
		assert.Equal(t, content.GrantWrite, projection.TeamGrants[0].Role)
		require.Len(t, projection.DepartmentGrants, 1)
	})

	t.Run("setting a grant twice updates the role", func(t *testing.T) {
		require.NoError(t, store.SetUserGrant(ctx, doc.ID, user.ID, content.GrantWrite))
		projection, err := store.LoadDocumentProjection(ctx, doc.ID)
		require.NoError(t, err)
		require.Len(t, projection.UserGrants, 1)
		assert.Equal(t, content.GrantWrite, projection.UserGrants[0].Role)
	})

	t.Run("soft-deleted documents stay resolvable but unlisted", func(t *testing.T) {
		now := time.Now().UTC()
		doc.DeletedAt = &now
		require.NoError(t, store.UpdateDocument(ctx, doc))

		projection, err := store.LoadDocumentProjection(ctx, doc.ID)
		require.NoError(t, err)
		require.NotNil(t, projection)
		assert.True(t, projection.Deleted())

		docs, total, err := store.ListDocuments(ctx, process.ContextID, 10, 0)
		require.NoError(t, err)
		assert.Zero(t, total)
		assert.Empty(t, docs)
	})

	t.Run("missing projection resolves to nil", func(t *testing.T) {
		projection, err := store.LoadDocumentProjection(ctx, "nope")
		require.NoError(t, err)
		assert.Nil(t, projection)
	})

	t.Run("removing grants", func(t *testing.T) {
		require.NoError(t, store.RemoveUserGrant(ctx, doc.ID, user.ID))
		assert.ErrorIs(t, store.RemoveUserGrant(ctx, doc.ID, user.ID), ErrNotFound)
	})
}

func TestMemoryStoreSessions(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	live := &auth.Session{ID: "s-live", UserID: "u1", ExpiresAt: time.Now().Add(time.Hour)}
	stale := &auth.Session{ID: "s-stale", UserID: "u1", ExpiresAt: time.Now().Add(-time.Hour)}
	require.NoError(t, store.CreateSession(ctx, live))
	require.NoError(t, store.CreateSession(ctx, stale))

	loaded, err := store.GetSession(ctx, "s-live")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "u1", loaded.UserID)

	n, err := store.DeleteExpiredSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	gone, err := store.GetSession(ctx, "s-stale")
	require.NoError(t, err)
	assert.Nil(t, gone)

	require.NoError(t, store.DeleteSession(ctx, "s-live"))
	gone, err = store.GetSession(ctx, "s-live")
	require.NoError(t, err)
	assert.Nil(t, gone)
}
