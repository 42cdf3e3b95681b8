package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/docvault/pkg/access"
	"github.com/platinummonkey/docvault/pkg/auth"
	"github.com/platinummonkey/docvault/pkg/content"
	"github.com/platinummonkey/docvault/pkg/observability"
	"github.com/platinummonkey/docvault/pkg/org"
	"github.com/platinummonkey/docvault/pkg/storage"
)

const testPassword = "correct-horse-battery"

type fixture struct {
	handler http.Handler
	store   *storage.MemoryStore

	company org.Company
	eng     org.Department
	sales   org.Department
	backend org.Team

	admin, boss, lead, dev, sam org.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	store := storage.NewMemoryStore()
	logger := observability.NewLogger(observability.ErrorLevel, io.Discard)
	engine := access.NewEngine(store, nil)
	sessions := auth.NewManager(store, time.Hour, logger, nil)
	srv := NewServer(store, engine, sessions, logger, Options{})

	f := &fixture{handler: srv.Handler(), store: store}

	f.company = org.Company{Name: "Acme"}
	require.NoError(t, store.CreateCompany(ctx, &f.company))
	f.eng = org.Department{CompanyID: f.company.ID, Name: "Engineering"}
	require.NoError(t, store.CreateDepartment(ctx, &f.eng))
	f.sales = org.Department{CompanyID: f.company.ID, Name: "Sales"}
	require.NoError(t, store.CreateDepartment(ctx, &f.sales))
	f.backend = org.Team{DepartmentID: f.eng.ID, Name: "Backend"}
	require.NoError(t, store.CreateTeam(ctx, &f.backend))

	f.admin = f.newUser(t, "Admin", true)
	f.boss = f.newUser(t, "Boss", false)
	f.lead = f.newUser(t, "Lead", false)
	f.dev = f.newUser(t, "Dev", false)
	f.sam = f.newUser(t, "Sam", false)

	require.NoError(t, store.AddSupervisor(ctx, f.eng.ID, f.boss.ID))
	require.NoError(t, store.AddTeamLeader(ctx, f.backend.ID, f.lead.ID))
	require.NoError(t, store.AddTeamMember(ctx, f.backend.ID, f.dev.ID))
	return f
}

func (f *fixture) newUser(t *testing.T, name string, isAdmin bool) org.User {
	t.Helper()
	hash, err := auth.HashPassword(testPassword)
	require.NoError(t, err)
	user := org.User{
		Name:         name,
		Email:        name + "@acme.test",
		IsAdmin:      isAdmin,
		PasswordHash: hash,
	}
	require.NoError(t, f.store.CreateUser(context.Background(), &user))
	return user
}

// login authenticates through the real endpoint and returns the cookie.
func (f *fixture) login(t *testing.T, email string) *http.Cookie {
	t.Helper()
	rr := f.do(t, http.MethodPost, "/api/v1/auth/login",
		map[string]string{"email": email, "password": testPassword}, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	for _, c := range rr.Result().Cookies() {
		if c.Name == auth.CookieName {
			return c
		}
	}
	t.Fatalf("no session cookie in login response")
	return nil
}

func (f *fixture) do(t *testing.T, method, path string, body interface{}, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), dest))
}

func TestAuthFlow(t *testing.T) {
	f := newFixture(t)

	rr := f.do(t, http.MethodPost, "/api/v1/auth/login",
		map[string]string{"email": f.dev.Email, "password": "wrong"}, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = f.do(t, http.MethodGet, "/api/v1/me", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	cookie := f.login(t, f.dev.Email)
	space := content.UserSpace{Name: "Notes", OwnerUserID: f.dev.ID}
	require.NoError(t, f.store.CreateUserSpace(context.Background(), &space))

	rr = f.do(t, http.MethodGet, "/api/v1/me", nil, cookie)
	require.Equal(t, http.StatusOK, rr.Code)

	var me struct {
		User       org.User            `json:"user"`
		Profile    org.UserProfile     `json:"profile"`
		UserSpaces []content.UserSpace `json:"user_spaces"`
	}
	decode(t, rr, &me)
	assert.Equal(t, f.dev.ID, me.User.ID)
	assert.True(t, me.Profile.MemberOfTeam(f.backend.ID))
	require.Len(t, me.UserSpaces, 1)
	assert.Equal(t, space.ID, me.UserSpaces[0].ID)

	rr = f.do(t, http.MethodPost, "/api/v1/auth/logout", nil, cookie)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = f.do(t, http.MethodGet, "/api/v1/me", nil, cookie)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestOrganisationAdminGating(t *testing.T) {
	f := newFixture(t)
	devCookie := f.login(t, f.dev.Email)
	adminCookie := f.login(t, f.admin.Email)

	rr := f.do(t, http.MethodPost, "/api/v1/organisation/companies",
		map[string]string{"name": "Shadow Corp"}, devCookie)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	// The fixture already created the single company.
	rr = f.do(t, http.MethodPost, "/api/v1/organisation/companies",
		map[string]string{"name": "Second Corp"}, adminCookie)
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = f.do(t, http.MethodGet, "/api/v1/organisation/companies", nil, devCookie)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = f.do(t, http.MethodDelete, "/api/v1/organisation/companies/"+f.company.ID, nil, adminCookie)
	assert.Equal(t, http.StatusConflict, rr.Code, "company with departments must not delete")

	rr = f.do(t, http.MethodPost,
		fmt.Sprintf("/api/v1/organisation/departments/%s/teams", f.eng.ID),
		map[string]string{"name": "Frontend"}, adminCookie)
	require.Equal(t, http.StatusCreated, rr.Code)

	var team org.Team
	decode(t, rr, &team)
	assert.Equal(t, f.eng.ID, team.DepartmentID)

	rr = f.do(t, http.MethodPatch, "/api/v1/organisation/teams/"+team.ID,
		map[string]string{"name": "Web"}, adminCookie)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = f.do(t, http.MethodDelete, "/api/v1/organisation/teams/"+team.ID, nil, devCookie)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = f.do(t, http.MethodDelete, "/api/v1/organisation/teams/"+team.ID, nil, adminCookie)
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestUserAdministration(t *testing.T) {
	f := newFixture(t)
	adminCookie := f.login(t, f.admin.Email)

	rr := f.do(t, http.MethodPost, "/api/v1/admin/users", map[string]interface{}{
		"name": "Newcomer", "email": "new@acme.test", "password": testPassword,
	}, adminCookie)
	require.Equal(t, http.StatusCreated, rr.Code)
	var created org.User
	decode(t, rr, &created)

	rr = f.do(t, http.MethodPost, "/api/v1/admin/users", map[string]interface{}{
		"name": "Dup", "email": "NEW@acme.test", "password": testPassword,
	}, adminCookie)
	assert.Equal(t, http.StatusConflict, rr.Code, "emails are unique case-insensitively")

	rr = f.do(t, http.MethodGet, "/api/v1/admin/users?search=newcomer", nil, adminCookie)
	require.Equal(t, http.StatusOK, rr.Code)
	var list struct {
		Items []org.User `json:"items"`
		Total int        `json:"total"`
	}
	decode(t, rr, &list)
	require.Equal(t, 1, list.Total)
	assert.Equal(t, created.ID, list.Items[0].ID)

	// Deactivation blocks login until reactivated.
	rr = f.do(t, http.MethodPost, "/api/v1/admin/users/"+created.ID+"/deactivate", nil, adminCookie)
	require.Equal(t, http.StatusOK, rr.Code)
	rr = f.do(t, http.MethodPost, "/api/v1/auth/login",
		map[string]string{"email": created.Email, "password": testPassword}, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = f.do(t, http.MethodPost, "/api/v1/admin/users/"+created.ID+"/reactivate", nil, adminCookie)
	require.Equal(t, http.StatusOK, rr.Code)
	f.login(t, created.Email)

	rr = f.do(t, http.MethodPost, "/api/v1/admin/users/"+f.admin.ID+"/deactivate", nil, adminCookie)
	assert.Equal(t, http.StatusConflict, rr.Code, "admins cannot deactivate themselves")

	rr = f.do(t, http.MethodPost, "/api/v1/admin/users/"+created.ID+"/password",
		map[string]string{"password": "a-brand-new-secret"}, adminCookie)
	require.Equal(t, http.StatusNoContent, rr.Code)
	rr = f.do(t, http.MethodPost, "/api/v1/auth/login",
		map[string]string{"email": created.Email, "password": testPassword}, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	rr = f.do(t, http.MethodPost, "/api/v1/auth/login",
		map[string]string{"email": created.Email, "password": "a-brand-new-secret"}, nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	devCookie := f.login(t, f.dev.Email)
	rr = f.do(t, http.MethodGet, "/api/v1/admin/users", nil, devCookie)
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestAssignmentRoutes(t *testing.T) {
	f := newFixture(t)
	leadCookie := f.login(t, f.lead.Email)
	devCookie := f.login(t, f.dev.Email)
	bossCookie := f.login(t, f.boss.Email)
	adminCookie := f.login(t, f.admin.Email)

	membersPath := fmt.Sprintf("/api/v1/teams/%s/members", f.backend.ID)
	leadersPath := fmt.Sprintf("/api/v1/teams/%s/leaders", f.backend.ID)

	// Leaders manage members; members do not.
	rr := f.do(t, http.MethodPost, membersPath, map[string]string{"user_id": f.sam.ID}, devCookie)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	rr = f.do(t, http.MethodPost, membersPath, map[string]string{"user_id": f.sam.ID}, leadCookie)
	require.Equal(t, http.StatusNoContent, rr.Code)
	rr = f.do(t, http.MethodPost, membersPath, map[string]string{"user_id": f.sam.ID}, leadCookie)
	assert.Equal(t, http.StatusConflict, rr.Code, "duplicate membership")

	// Leadership is managed one level up.
	rr = f.do(t, http.MethodPost, leadersPath, map[string]string{"user_id": f.sam.ID}, leadCookie)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	rr = f.do(t, http.MethodPost, leadersPath, map[string]string{"user_id": f.sam.ID}, bossCookie)
	require.Equal(t, http.StatusNoContent, rr.Code)

	rr = f.do(t, http.MethodGet, membersPath, nil, devCookie)
	require.Equal(t, http.StatusOK, rr.Code)
	var list struct {
		Items []org.UserRef `json:"items"`
		Total int           `json:"total"`
	}
	decode(t, rr, &list)
	assert.Equal(t, 2, list.Total)

	// A deactivated user is not assignable; mirrors the missing-user 404.
	gone := f.newUser(t, "Gone", false)
	now := time.Now().UTC()
	gone.DeletedAt = &now
	require.NoError(t, f.store.UpdateUser(context.Background(), &gone))
	rr = f.do(t, http.MethodPost, membersPath, map[string]string{"user_id": gone.ID}, leadCookie)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	// Supervision is admin-only.
	supervisorsPath := fmt.Sprintf("/api/v1/departments/%s/supervisors", f.sales.ID)
	rr = f.do(t, http.MethodPost, supervisorsPath, map[string]string{"user_id": f.sam.ID}, bossCookie)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	rr = f.do(t, http.MethodPost, supervisorsPath, map[string]string{"user_id": f.sam.ID}, adminCookie)
	require.Equal(t, http.StatusNoContent, rr.Code)

	rr = f.do(t, http.MethodDelete, supervisorsPath+"/"+f.dev.ID, nil, adminCookie)
	assert.Equal(t, http.StatusNotFound, rr.Code, "removing an absent edge")
}

func TestProcessLifecycle(t *testing.T) {
	f := newFixture(t)
	leadCookie := f.login(t, f.lead.Email)
	devCookie := f.login(t, f.dev.Email)
	samCookie := f.login(t, f.sam.Email)

	body := map[string]interface{}{
		"name":  "Release Process",
		"owner": map[string]string{"team_id": f.backend.ID},
	}
	rr := f.do(t, http.MethodPost, "/api/v1/processes", body, devCookie)
	assert.Equal(t, http.StatusForbidden, rr.Code, "members do not create containers")

	rr = f.do(t, http.MethodPost, "/api/v1/processes", body, leadCookie)
	require.Equal(t, http.StatusCreated, rr.Code)
	var process content.Process
	decode(t, rr, &process)
	require.NotEmpty(t, process.ContextID)

	rr = f.do(t, http.MethodGet, "/api/v1/processes/"+process.ID, nil, devCookie)
	assert.Equal(t, http.StatusOK, rr.Code, "team members read team-owned containers")
	rr = f.do(t, http.MethodGet, "/api/v1/processes/"+process.ID, nil, samCookie)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = f.do(t, http.MethodPatch, "/api/v1/processes/"+process.ID,
		map[string]string{"name": "Release v2"}, devCookie)
	assert.Equal(t, http.StatusForbidden, rr.Code, "members read but do not write")
	rr = f.do(t, http.MethodPatch, "/api/v1/processes/"+process.ID,
		map[string]string{"name": "Release v2"}, leadCookie)
	require.Equal(t, http.StatusOK, rr.Code)

	// Listing filters per caller.
	rr = f.do(t, http.MethodGet, "/api/v1/processes", nil, samCookie)
	require.Equal(t, http.StatusOK, rr.Code)
	var list struct {
		Items []content.Process `json:"items"`
	}
	decode(t, rr, &list)
	assert.Empty(t, list.Items)

	rr = f.do(t, http.MethodDelete, "/api/v1/processes/"+process.ID, nil, leadCookie)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	rr = f.do(t, http.MethodGet, "/api/v1/processes/"+process.ID, nil, leadCookie)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestProjectSubcontexts(t *testing.T) {
	f := newFixture(t)
	bossCookie := f.login(t, f.boss.Email)
	devCookie := f.login(t, f.dev.Email)

	rr := f.do(t, http.MethodPost, "/api/v1/projects", map[string]interface{}{
		"name":  "Migration",
		"owner": map[string]string{"department_id": f.eng.ID},
	}, bossCookie)
	require.Equal(t, http.StatusCreated, rr.Code)
	var project content.Project
	decode(t, rr, &project)

	subPath := fmt.Sprintf("/api/v1/projects/%s/subcontexts", project.ID)
	rr = f.do(t, http.MethodPost, subPath, map[string]string{"name": "Phase 1"}, devCookie)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	rr = f.do(t, http.MethodPost, subPath, map[string]string{"name": "Phase 1"}, bossCookie)
	require.Equal(t, http.StatusCreated, rr.Code)
	var sub content.Subcontext
	decode(t, rr, &sub)

	// Subcontexts inherit the project's ownership chain; a department
	// owner reaches supervisors only, not members of its teams.
	rr = f.do(t, http.MethodGet, "/api/v1/subcontexts/"+sub.ID, nil, devCookie)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	rr = f.do(t, http.MethodGet, "/api/v1/subcontexts/"+sub.ID, nil, bossCookie)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = f.do(t, http.MethodDelete, "/api/v1/projects/"+project.ID, nil, bossCookie)
	assert.Equal(t, http.StatusConflict, rr.Code, "project with subcontexts must not delete")
	rr = f.do(t, http.MethodDelete, "/api/v1/subcontexts/"+sub.ID, nil, bossCookie)
	require.Equal(t, http.StatusNoContent, rr.Code)
	rr = f.do(t, http.MethodDelete, "/api/v1/projects/"+project.ID, nil, bossCookie)
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestUserSpaceExclusivity(t *testing.T) {
	f := newFixture(t)
	devCookie := f.login(t, f.dev.Email)
	bossCookie := f.login(t, f.boss.Email)
	adminCookie := f.login(t, f.admin.Email)

	rr := f.do(t, http.MethodPost, "/api/v1/user-spaces",
		map[string]string{"name": "Notes"}, devCookie)
	require.Equal(t, http.StatusCreated, rr.Code)
	var space content.UserSpace
	decode(t, rr, &space)
	assert.Equal(t, f.dev.ID, space.OwnerUserID)

	// Supervisors have no reach into personal spaces; admins do.
	rr = f.do(t, http.MethodGet, "/api/v1/user-spaces/"+space.ID, nil, bossCookie)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	rr = f.do(t, http.MethodGet, "/api/v1/user-spaces/"+space.ID, nil, adminCookie)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = f.do(t, http.MethodPatch, "/api/v1/user-spaces/"+space.ID,
		map[string]string{"name": "Private Notes"}, bossCookie)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	rr = f.do(t, http.MethodPatch, "/api/v1/user-spaces/"+space.ID,
		map[string]string{"name": "Private Notes"}, devCookie)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = f.do(t, http.MethodGet, "/api/v1/user-spaces", nil, bossCookie)
	require.Equal(t, http.StatusOK, rr.Code)
	var list struct {
		Items []content.UserSpace `json:"items"`
	}
	decode(t, rr, &list)
	assert.Empty(t, list.Items, "listing shows only the caller's spaces")

	rr = f.do(t, http.MethodGet, "/api/v1/user-spaces?userId="+f.dev.ID, nil, bossCookie)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	rr = f.do(t, http.MethodGet, "/api/v1/user-spaces?userId="+f.dev.ID, nil, adminCookie)
	require.Equal(t, http.StatusOK, rr.Code)
	decode(t, rr, &list)
	assert.Len(t, list.Items, 1)
}

func TestDocumentAccessAndGrants(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	leadCookie := f.login(t, f.lead.Email)
	devCookie := f.login(t, f.dev.Email)
	samCookie := f.login(t, f.sam.Email)
	bossCookie := f.login(t, f.boss.Email)

	process := content.Process{Name: "Handbook"}
	owner, err := f.store.FindOrCreateOwner(ctx, "", f.backend.ID)
	require.NoError(t, err)
	process.OwnerID = owner.ID
	require.NoError(t, f.store.CreateProcess(ctx, &process))

	docsPath := fmt.Sprintf("/api/v1/contexts/%s/documents", process.ContextID)
	rr := f.do(t, http.MethodPost, docsPath,
		map[string]string{"title": "Onboarding", "content": "welcome"}, devCookie)
	assert.Equal(t, http.StatusForbidden, rr.Code, "document creation needs context write")

	rr = f.do(t, http.MethodPost, docsPath,
		map[string]string{"title": "Onboarding", "content": "welcome"}, leadCookie)
	require.Equal(t, http.StatusCreated, rr.Code)
	var doc content.Document
	decode(t, rr, &doc)
	docPath := "/api/v1/documents/" + doc.ID

	// No grant yet: members and outsiders see 403, supervision grants read.
	rr = f.do(t, http.MethodGet, docPath, nil, devCookie)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	rr = f.do(t, http.MethodGet, docPath, nil, bossCookie)
	assert.Equal(t, http.StatusOK, rr.Code)
	rr = f.do(t, http.MethodPut, docPath, map[string]string{"content": "edit"}, bossCookie)
	assert.Equal(t, http.StatusForbidden, rr.Code, "supervisors read but never write")

	// A team write grant reaches leaders only; members get nothing from it.
	require.NoError(t, f.store.SetTeamGrant(ctx, doc.ID, f.backend.ID, content.GrantWrite))
	rr = f.do(t, http.MethodPut, docPath, map[string]string{"content": "v2"}, devCookie)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	rr = f.do(t, http.MethodPut, docPath, map[string]string{"content": "v2"}, leadCookie)
	require.Equal(t, http.StatusOK, rr.Code)

	// The leader can now manage grants over the document route.
	rr = f.do(t, http.MethodPut, docPath+"/grants/users/"+f.sam.ID,
		map[string]string{"role": "read"}, leadCookie)
	require.Equal(t, http.StatusNoContent, rr.Code)
	rr = f.do(t, http.MethodGet, docPath, nil, samCookie)
	assert.Equal(t, http.StatusOK, rr.Code)
	rr = f.do(t, http.MethodPut, docPath, map[string]string{"content": "x"}, samCookie)
	assert.Equal(t, http.StatusForbidden, rr.Code, "read grant does not imply write")

	rr = f.do(t, http.MethodDelete, docPath+"/grants/users/"+f.sam.ID, nil, leadCookie)
	require.Equal(t, http.StatusNoContent, rr.Code)
	rr = f.do(t, http.MethodGet, docPath, nil, samCookie)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = f.do(t, http.MethodPut, docPath+"/grants/users/"+f.sam.ID,
		map[string]string{"role": "admin"}, leadCookie)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	// Soft delete: gone for readers, row still present.
	rr = f.do(t, http.MethodDelete, docPath, nil, leadCookie)
	require.Equal(t, http.StatusNoContent, rr.Code)
	rr = f.do(t, http.MethodGet, docPath, nil, bossCookie)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = f.do(t, http.MethodGet, docsPath, nil, devCookie)
	require.Equal(t, http.StatusOK, rr.Code)
	var list struct {
		Items []content.Document `json:"items"`
	}
	decode(t, rr, &list)
	assert.Empty(t, list.Items, "soft-deleted documents drop out of listings")

	// An authorized write restores the document.
	rr = f.do(t, http.MethodPut, docPath, map[string]string{"content": "back"}, leadCookie)
	require.Equal(t, http.StatusOK, rr.Code)
	rr = f.do(t, http.MethodGet, docPath, nil, bossCookie)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestDocumentMiddlewareOrdering(t *testing.T) {
	f := newFixture(t)
	adminCookie := f.login(t, f.admin.Email)
	samCookie := f.login(t, f.sam.Email)

	rr := f.do(t, http.MethodGet, "/api/v1/documents/nope", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code, "auth is decided before existence")

	rr = f.do(t, http.MethodGet, "/api/v1/documents/nope", nil, adminCookie)
	assert.Equal(t, http.StatusNotFound, rr.Code, "missing documents 404 even for admins")

	rr = f.do(t, http.MethodGet, "/api/v1/documents/nope", nil, samCookie)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
