package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/platinummonkey/docvault/pkg/auth"
	"github.com/platinummonkey/docvault/pkg/content"
	"github.com/platinummonkey/docvault/pkg/org"
)

// contextRow mirrors the relational shape of a context: exactly one of the
// four references is set.
type contextRow struct {
	ID           string
	ProcessID    string
	ProjectID    string
	SubcontextID string
	UserSpaceID  string
}

// MemoryStore is a map-backed Store for tests and local development. All
// methods are safe for concurrent use.
type MemoryStore struct {
	mu sync.RWMutex

	users     map[string]org.User
	companies map[string]org.Company
	depts     map[string]org.Department
	teams     map[string]org.Team

	teamMembers map[string]map[string]time.Time // teamID -> userID -> added
	teamLeaders map[string]map[string]time.Time
	supervisors map[string]map[string]time.Time // departmentID -> userID -> added

	owners      map[string]org.Owner
	contexts    map[string]contextRow
	processes   map[string]content.Process
	projects    map[string]content.Project
	subcontexts map[string]content.Subcontext
	userSpaces  map[string]content.UserSpace

	documents  map[string]content.Document
	userGrants map[string]map[string]content.GrantRole // documentID -> userID -> role
	teamGrants map[string]map[string]content.GrantRole
	deptGrants map[string]map[string]content.GrantRole

	sessions map[string]auth.Session
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:       make(map[string]org.User),
		companies:   make(map[string]org.Company),
		depts:       make(map[string]org.Department),
		teams:       make(map[string]org.Team),
		teamMembers: make(map[string]map[string]time.Time),
		teamLeaders: make(map[string]map[string]time.Time),
		supervisors: make(map[string]map[string]time.Time),
		owners:      make(map[string]org.Owner),
		contexts:    make(map[string]contextRow),
		processes:   make(map[string]content.Process),
		projects:    make(map[string]content.Project),
		subcontexts: make(map[string]content.Subcontext),
		userSpaces:  make(map[string]content.UserSpace),
		documents:   make(map[string]content.Document),
		userGrants:  make(map[string]map[string]content.GrantRole),
		teamGrants:  make(map[string]map[string]content.GrantRole),
		deptGrants:  make(map[string]map[string]content.GrantRole),
		sessions:    make(map[string]auth.Session),
	}
}

// Close is a no-op for the in-memory backend.
func (s *MemoryStore) Close() error { return nil }

func newID(id string) string {
	if id != "" {
		return id
	}
	return uuid.NewString()
}

func clampPage(limit, offset, total int) (int, int) {
	if limit <= 0 {
		limit = total
	}
	if offset < 0 {
		offset = 0
	}
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return offset, end
}

// ---- access.Repository ----

// LoadUserProfile builds the permission projection for a user, nil when
// the user does not exist.
func (s *MemoryStore) LoadUserProfile(_ context.Context, userID string) (*org.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[userID]
	if !ok {
		return nil, nil
	}
	profile := &org.UserProfile{
		ID:        user.ID,
		IsAdmin:   user.IsAdmin,
		DeletedAt: user.DeletedAt,
	}
	for teamID, members := range s.teamMembers {
		if _, in := members[userID]; in {
			profile.TeamMemberships = append(profile.TeamMemberships, s.teamRefLocked(teamID))
		}
	}
	for teamID, leaders := range s.teamLeaders {
		if _, in := leaders[userID]; in {
			profile.LeaderOfTeams = append(profile.LeaderOfTeams, s.teamRefLocked(teamID))
		}
	}
	for deptID, sups := range s.supervisors {
		if _, in := sups[userID]; in {
			profile.SupervisorOf = append(profile.SupervisorOf, deptID)
		}
	}
	sortTeamRefs(profile.TeamMemberships)
	sortTeamRefs(profile.LeaderOfTeams)
	sort.Strings(profile.SupervisorOf)
	return profile, nil
}

func (s *MemoryStore) teamRefLocked(teamID string) org.TeamRef {
	ref := org.TeamRef{ID: teamID}
	if team, ok := s.teams[teamID]; ok {
		ref.DepartmentID = team.DepartmentID
	}
	return ref
}

func sortTeamRefs(refs []org.TeamRef) {
	sort.Slice(refs, func(i, j int) bool { return refs[i].ID < refs[j].ID })
}

// LoadDocumentProjection loads a document with its context and grants,
// nil when the document does not exist. Soft-deleted documents are
// returned.
func (s *MemoryStore) LoadDocumentProjection(_ context.Context, documentID string) (*content.DocumentProjection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.documents[documentID]
	if !ok {
		return nil, nil
	}
	projection := &content.DocumentProjection{
		Document: doc,
		Context:  s.buildContextLocked(doc.ContextID),
	}
	for userID, role := range s.userGrants[documentID] {
		projection.UserGrants = append(projection.UserGrants, content.UserGrant{UserID: userID, Role: role})
	}
	for teamID, role := range s.teamGrants[documentID] {
		projection.TeamGrants = append(projection.TeamGrants, content.TeamGrant{TeamID: teamID, Role: role})
	}
	for deptID, role := range s.deptGrants[documentID] {
		projection.DepartmentGrants = append(projection.DepartmentGrants, content.DepartmentGrant{DepartmentID: deptID, Role: role})
	}
	return projection, nil
}

// LoadContext resolves a context and its ownership chain, nil when
// absent.
func (s *MemoryStore) LoadContext(_ context.Context, contextID string) (*content.Context, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.buildContextLocked(contextID), nil
}

func (s *MemoryStore) buildContextLocked(contextID string) *content.Context {
	row, ok := s.contexts[contextID]
	if !ok {
		return nil
	}
	switch {
	case row.ProcessID != "":
		if p, ok := s.processes[row.ProcessID]; ok {
			return content.NewProcessContext(row.ID, s.ownerRefLocked(p.OwnerID))
		}
	case row.ProjectID != "":
		if p, ok := s.projects[row.ProjectID]; ok {
			return content.NewProjectContext(row.ID, s.ownerRefLocked(p.OwnerID))
		}
	case row.SubcontextID != "":
		if sc, ok := s.subcontexts[row.SubcontextID]; ok {
			if p, ok := s.projects[sc.ProjectID]; ok {
				return content.NewSubcontextContext(row.ID, s.ownerRefLocked(p.OwnerID))
			}
			return content.NewSubcontextContext(row.ID, org.OwnerRef{})
		}
	case row.UserSpaceID != "":
		if us, ok := s.userSpaces[row.UserSpaceID]; ok {
			return content.NewUserSpaceContext(row.ID, us.OwnerUserID)
		}
	}
	// Context row without a live branch resolves as malformed.
	return &content.Context{ID: row.ID}
}

func (s *MemoryStore) ownerRefLocked(ownerID string) org.OwnerRef {
	owner, ok := s.owners[ownerID]
	if !ok {
		return org.OwnerRef{}
	}
	ref := org.OwnerRef{DepartmentID: owner.DepartmentID, TeamID: owner.TeamID}
	if owner.TeamID != "" {
		if team, ok := s.teams[owner.TeamID]; ok {
			ref.TeamDepartmentID = team.DepartmentID
		}
	}
	return ref
}

// LoadTeamRef returns a team's id and department, nil when absent.
func (s *MemoryStore) LoadTeamRef(_ context.Context, teamID string) (*org.TeamRef, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	team, ok := s.teams[teamID]
	if !ok {
		return nil, nil
	}
	return &org.TeamRef{ID: team.ID, DepartmentID: team.DepartmentID}, nil
}

// LoadDepartmentRef returns a department, nil when absent.
func (s *MemoryStore) LoadDepartmentRef(_ context.Context, departmentID string) (*org.Department, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	dept, ok := s.depts[departmentID]
	if !ok {
		return nil, nil
	}
	out := dept
	return &out, nil
}

// ---- UserStore ----

func (s *MemoryStore) CreateUser(_ context.Context, user *org.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return ErrConflict
		}
	}
	user.ID = newID(user.ID)
	now := time.Now().UTC()
	user.CreatedAt, user.UpdatedAt = now, now
	s.users[user.ID] = *user
	return nil
}

func (s *MemoryStore) GetUser(_ context.Context, id string) (*org.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	out := user
	return &out, nil
}

func (s *MemoryStore) GetUserByEmail(_ context.Context, email string) (*org.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.users {
		if strings.EqualFold(user.Email, email) {
			out := user
			return &out, nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) ListUsers(_ context.Context, filter UserFilter) ([]org.User, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var all []org.User
	search := strings.ToLower(filter.Search)
	for _, user := range s.users {
		if !filter.IncludeDeactivated && user.DeletedAt != nil {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(user.Name), search) &&
			!strings.Contains(strings.ToLower(user.Email), search) {
			continue
		}
		all = append(all, user)
	}
	sort.Slice(all, func(i, j int) bool {
		var less bool
		switch filter.SortBy {
		case "email":
			less = all[i].Email < all[j].Email
		case "created_at":
			less = all[i].CreatedAt.Before(all[j].CreatedAt)
		default:
			less = all[i].Name < all[j].Name
		}
		if filter.Descending {
			return !less
		}
		return less
	})
	total := len(all)
	from, to := clampPage(filter.Limit, filter.Offset, total)
	return all[from:to], total, nil
}

func (s *MemoryStore) UpdateUser(_ context.Context, user *org.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.users[user.ID]
	if !ok {
		return ErrNotFound
	}
	for id, other := range s.users {
		if id != user.ID && strings.EqualFold(other.Email, user.Email) {
			return ErrConflict
		}
	}
	user.CreatedAt = existing.CreatedAt
	user.UpdatedAt = time.Now().UTC()
	s.users[user.ID] = *user
	return nil
}

// ---- OrgStore ----

func (s *MemoryStore) CreateCompany(_ context.Context, company *org.Company) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	company.ID = newID(company.ID)
	now := time.Now().UTC()
	company.CreatedAt, company.UpdatedAt = now, now
	s.companies[company.ID] = *company
	return nil
}

func (s *MemoryStore) GetCompany(_ context.Context, id string) (*org.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	company, ok := s.companies[id]
	if !ok {
		return nil, nil
	}
	out := company
	return &out, nil
}

func (s *MemoryStore) ListCompanies(_ context.Context, limit, offset int) ([]org.Company, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var all []org.Company
	for _, c := range s.companies {
		all = append(all, c)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	total := len(all)
	from, to := clampPage(limit, offset, total)
	return all[from:to], total, nil
}

func (s *MemoryStore) UpdateCompany(_ context.Context, company *org.Company) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.companies[company.ID]
	if !ok {
		return ErrNotFound
	}
	company.CreatedAt = existing.CreatedAt
	company.UpdatedAt = time.Now().UTC()
	s.companies[company.ID] = *company
	return nil
}

func (s *MemoryStore) DeleteCompany(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.companies[id]; !ok {
		return ErrNotFound
	}
	for _, dept := range s.depts {
		if dept.CompanyID == id {
			return ErrConflict
		}
	}
	delete(s.companies, id)
	return nil
}

func (s *MemoryStore) CountCompanies(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.companies), nil
}

func (s *MemoryStore) CreateDepartment(_ context.Context, department *org.Department) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.companies[department.CompanyID]; !ok {
		return ErrNotFound
	}
	department.ID = newID(department.ID)
	now := time.Now().UTC()
	department.CreatedAt, department.UpdatedAt = now, now
	s.depts[department.ID] = *department
	return nil
}

func (s *MemoryStore) GetDepartment(_ context.Context, id string) (*org.Department, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	dept, ok := s.depts[id]
	if !ok {
		return nil, nil
	}
	out := dept
	return &out, nil
}

func (s *MemoryStore) ListDepartments(_ context.Context, companyID string, limit, offset int) ([]org.Department, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var all []org.Department
	for _, d := range s.depts {
		if companyID == "" || d.CompanyID == companyID {
			all = append(all, d)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	total := len(all)
	from, to := clampPage(limit, offset, total)
	return all[from:to], total, nil
}

func (s *MemoryStore) UpdateDepartment(_ context.Context, department *org.Department) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.depts[department.ID]
	if !ok {
		return ErrNotFound
	}
	department.CompanyID = existing.CompanyID
	department.CreatedAt = existing.CreatedAt
	department.UpdatedAt = time.Now().UTC()
	s.depts[department.ID] = *department
	return nil
}

func (s *MemoryStore) DeleteDepartment(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.depts[id]; !ok {
		return ErrNotFound
	}
	for _, team := range s.teams {
		if team.DepartmentID == id {
			return ErrConflict
		}
	}
	delete(s.depts, id)
	delete(s.supervisors, id)
	return nil
}

func (s *MemoryStore) CreateTeam(_ context.Context, team *org.Team) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.depts[team.DepartmentID]; !ok {
		return ErrNotFound
	}
	team.ID = newID(team.ID)
	now := time.Now().UTC()
	team.CreatedAt, team.UpdatedAt = now, now
	s.teams[team.ID] = *team
	return nil
}

func (s *MemoryStore) GetTeam(_ context.Context, id string) (*org.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	team, ok := s.teams[id]
	if !ok {
		return nil, nil
	}
	out := team
	return &out, nil
}

func (s *MemoryStore) ListTeams(_ context.Context, departmentID string, limit, offset int) ([]org.Team, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var all []org.Team
	for _, t := range s.teams {
		if departmentID == "" || t.DepartmentID == departmentID {
			all = append(all, t)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	total := len(all)
	from, to := clampPage(limit, offset, total)
	return all[from:to], total, nil
}

func (s *MemoryStore) UpdateTeam(_ context.Context, team *org.Team) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.teams[team.ID]
	if !ok {
		return ErrNotFound
	}
	team.DepartmentID = existing.DepartmentID
	team.CreatedAt = existing.CreatedAt
	team.UpdatedAt = time.Now().UTC()
	s.teams[team.ID] = *team
	return nil
}

func (s *MemoryStore) DeleteTeam(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.teams[id]; !ok {
		return ErrNotFound
	}
	delete(s.teams, id)
	delete(s.teamMembers, id)
	delete(s.teamLeaders, id)
	return nil
}

// ---- AssignmentStore ----

func (s *MemoryStore) listEdgeUsersLocked(edges map[string]time.Time, limit, offset int) ([]org.UserRef, int) {
	var all []org.UserRef
	for userID := range edges {
		if user, ok := s.users[userID]; ok {
			all = append(all, org.UserRef{ID: user.ID, Name: user.Name})
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	total := len(all)
	from, to := clampPage(limit, offset, total)
	return all[from:to], total
}

func (s *MemoryStore) addEdgeLocked(edges map[string]map[string]time.Time, key, userID string) error {
	user, ok := s.users[userID]
	if !ok || user.DeletedAt != nil {
		// Deactivated users cannot take on new assignments.
		return ErrNotFound
	}
	set := edges[key]
	if set == nil {
		set = make(map[string]time.Time)
		edges[key] = set
	}
	if _, exists := set[userID]; exists {
		return ErrConflict
	}
	set[userID] = time.Now().UTC()
	return nil
}

func removeEdge(edges map[string]map[string]time.Time, key, userID string) error {
	set := edges[key]
	if _, ok := set[userID]; !ok {
		return ErrNotFound
	}
	delete(set, userID)
	return nil
}

func (s *MemoryStore) ListTeamMembers(_ context.Context, teamID string, limit, offset int) ([]org.UserRef, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.teams[teamID]; !ok {
		return nil, 0, ErrNotFound
	}
	refs, total := s.listEdgeUsersLocked(s.teamMembers[teamID], limit, offset)
	return refs, total, nil
}

func (s *MemoryStore) AddTeamMember(_ context.Context, teamID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.teams[teamID]; !ok {
		return ErrNotFound
	}
	return s.addEdgeLocked(s.teamMembers, teamID, userID)
}

func (s *MemoryStore) RemoveTeamMember(_ context.Context, teamID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return removeEdge(s.teamMembers, teamID, userID)
}

func (s *MemoryStore) ListTeamLeaders(_ context.Context, teamID string, limit, offset int) ([]org.UserRef, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.teams[teamID]; !ok {
		return nil, 0, ErrNotFound
	}
	refs, total := s.listEdgeUsersLocked(s.teamLeaders[teamID], limit, offset)
	return refs, total, nil
}

func (s *MemoryStore) AddTeamLeader(_ context.Context, teamID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.teams[teamID]; !ok {
		return ErrNotFound
	}
	return s.addEdgeLocked(s.teamLeaders, teamID, userID)
}

func (s *MemoryStore) RemoveTeamLeader(_ context.Context, teamID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return removeEdge(s.teamLeaders, teamID, userID)
}

func (s *MemoryStore) ListSupervisors(_ context.Context, departmentID string, limit, offset int) ([]org.UserRef, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.depts[departmentID]; !ok {
		return nil, 0, ErrNotFound
	}
	refs, total := s.listEdgeUsersLocked(s.supervisors[departmentID], limit, offset)
	return refs, total, nil
}

func (s *MemoryStore) AddSupervisor(_ context.Context, departmentID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.depts[departmentID]; !ok {
		return ErrNotFound
	}
	return s.addEdgeLocked(s.supervisors, departmentID, userID)
}

func (s *MemoryStore) RemoveSupervisor(_ context.Context, departmentID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return removeEdge(s.supervisors, departmentID, userID)
}

// ---- ContentStore ----

func (s *MemoryStore) FindOrCreateOwner(_ context.Context, departmentID, teamID string) (*org.Owner, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	owner := org.Owner{DepartmentID: departmentID, TeamID: teamID}
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	if departmentID != "" {
		if _, ok := s.depts[departmentID]; !ok {
			return nil, ErrNotFound
		}
	}
	if teamID != "" {
		if _, ok := s.teams[teamID]; !ok {
			return nil, ErrNotFound
		}
	}
	for _, existing := range s.owners {
		if existing.DepartmentID == departmentID && existing.TeamID == teamID {
			out := existing
			return &out, nil
		}
	}
	owner.ID = uuid.NewString()
	s.owners[owner.ID] = owner
	out := owner
	return &out, nil
}

func (s *MemoryStore) createContextLocked(row contextRow) string {
	row.ID = newID(row.ID)
	s.contexts[row.ID] = row
	return row.ID
}

func (s *MemoryStore) CreateProcess(_ context.Context, process *content.Process) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.owners[process.OwnerID]; !ok {
		return ErrNotFound
	}
	process.ID = newID(process.ID)
	process.ContextID = s.createContextLocked(contextRow{ProcessID: process.ID})
	now := time.Now().UTC()
	process.CreatedAt, process.UpdatedAt = now, now
	s.processes[process.ID] = *process
	return nil
}

func (s *MemoryStore) GetProcess(_ context.Context, id string) (*content.Process, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.processes[id]
	if !ok {
		return nil, nil
	}
	out := p
	return &out, nil
}

func (s *MemoryStore) ListProcesses(_ context.Context, limit, offset int) ([]content.Process, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var all []content.Process
	for _, p := range s.processes {
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	total := len(all)
	from, to := clampPage(limit, offset, total)
	return all[from:to], total, nil
}

func (s *MemoryStore) UpdateProcess(_ context.Context, process *content.Process) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.processes[process.ID]
	if !ok {
		return ErrNotFound
	}
	process.ContextID = existing.ContextID
	process.CreatedAt = existing.CreatedAt
	process.UpdatedAt = time.Now().UTC()
	s.processes[process.ID] = *process
	return nil
}

func (s *MemoryStore) DeleteProcess(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.processes[id]
	if !ok {
		return ErrNotFound
	}
	delete(s.processes, id)
	delete(s.contexts, p.ContextID)
	return nil
}

func (s *MemoryStore) CreateProject(_ context.Context, project *content.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.owners[project.OwnerID]; !ok {
		return ErrNotFound
	}
	project.ID = newID(project.ID)
	project.ContextID = s.createContextLocked(contextRow{ProjectID: project.ID})
	now := time.Now().UTC()
	project.CreatedAt, project.UpdatedAt = now, now
	s.projects[project.ID] = *project
	return nil
}

func (s *MemoryStore) GetProject(_ context.Context, id string) (*content.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.projects[id]
	if !ok {
		return nil, nil
	}
	out := p
	return &out, nil
}

func (s *MemoryStore) ListProjects(_ context.Context, limit, offset int) ([]content.Project, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var all []content.Project
	for _, p := range s.projects {
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	total := len(all)
	from, to := clampPage(limit, offset, total)
	return all[from:to], total, nil
}

func (s *MemoryStore) UpdateProject(_ context.Context, project *content.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.projects[project.ID]
	if !ok {
		return ErrNotFound
	}
	project.ContextID = existing.ContextID
	project.CreatedAt = existing.CreatedAt
	project.UpdatedAt = time.Now().UTC()
	s.projects[project.ID] = *project
	return nil
}

func (s *MemoryStore) DeleteProject(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[id]
	if !ok {
		return ErrNotFound
	}
	for _, sc := range s.subcontexts {
		if sc.ProjectID == id {
			return ErrConflict
		}
	}
	delete(s.projects, id)
	delete(s.contexts, p.ContextID)
	return nil
}

func (s *MemoryStore) CreateSubcontext(_ context.Context, subcontext *content.Subcontext) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.projects[subcontext.ProjectID]; !ok {
		return ErrNotFound
	}
	subcontext.ID = newID(subcontext.ID)
	subcontext.ContextID = s.createContextLocked(contextRow{SubcontextID: subcontext.ID})
	now := time.Now().UTC()
	subcontext.CreatedAt, subcontext.UpdatedAt = now, now
	s.subcontexts[subcontext.ID] = *subcontext
	return nil
}

func (s *MemoryStore) GetSubcontext(_ context.Context, id string) (*content.Subcontext, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sc, ok := s.subcontexts[id]
	if !ok {
		return nil, nil
	}
	out := sc
	return &out, nil
}

func (s *MemoryStore) ListSubcontexts(_ context.Context, projectID string, limit, offset int) ([]content.Subcontext, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var all []content.Subcontext
	for _, sc := range s.subcontexts {
		if projectID == "" || sc.ProjectID == projectID {
			all = append(all, sc)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	total := len(all)
	from, to := clampPage(limit, offset, total)
	return all[from:to], total, nil
}

func (s *MemoryStore) UpdateSubcontext(_ context.Context, subcontext *content.Subcontext) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.subcontexts[subcontext.ID]
	if !ok {
		return ErrNotFound
	}
	subcontext.ProjectID = existing.ProjectID
	subcontext.ContextID = existing.ContextID
	subcontext.CreatedAt = existing.CreatedAt
	subcontext.UpdatedAt = time.Now().UTC()
	s.subcontexts[subcontext.ID] = *subcontext
	return nil
}

func (s *MemoryStore) DeleteSubcontext(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sc, ok := s.subcontexts[id]
	if !ok {
		return ErrNotFound
	}
	delete(s.subcontexts, id)
	delete(s.contexts, sc.ContextID)
	return nil
}

func (s *MemoryStore) CreateUserSpace(_ context.Context, space *content.UserSpace) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[space.OwnerUserID]; !ok {
		return ErrNotFound
	}
	space.ID = newID(space.ID)
	space.ContextID = s.createContextLocked(contextRow{UserSpaceID: space.ID})
	now := time.Now().UTC()
	space.CreatedAt, space.UpdatedAt = now, now
	s.userSpaces[space.ID] = *space
	return nil
}

func (s *MemoryStore) GetUserSpace(_ context.Context, id string) (*content.UserSpace, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	us, ok := s.userSpaces[id]
	if !ok {
		return nil, nil
	}
	out := us
	return &out, nil
}

func (s *MemoryStore) ListUserSpaces(_ context.Context, ownerUserID string, limit, offset int) ([]content.UserSpace, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var all []content.UserSpace
	for _, us := range s.userSpaces {
		if ownerUserID == "" || us.OwnerUserID == ownerUserID {
			all = append(all, us)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	total := len(all)
	from, to := clampPage(limit, offset, total)
	return all[from:to], total, nil
}

func (s *MemoryStore) UpdateUserSpace(_ context.Context, space *content.UserSpace) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.userSpaces[space.ID]
	if !ok {
		return ErrNotFound
	}
	space.OwnerUserID = existing.OwnerUserID
	space.ContextID = existing.ContextID
	space.CreatedAt = existing.CreatedAt
	space.UpdatedAt = time.Now().UTC()
	s.userSpaces[space.ID] = *space
	return nil
}

func (s *MemoryStore) DeleteUserSpace(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	us, ok := s.userSpaces[id]
	if !ok {
		return ErrNotFound
	}
	delete(s.userSpaces, id)
	delete(s.contexts, us.ContextID)
	return nil
}

// ---- DocumentStore ----

func (s *MemoryStore) CreateDocument(_ context.Context, document *content.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.contexts[document.ContextID]; !ok {
		return ErrNotFound
	}
	document.ID = newID(document.ID)
	now := time.Now().UTC()
	document.CreatedAt, document.UpdatedAt = now, now
	s.documents[document.ID] = *document
	return nil
}

func (s *MemoryStore) GetDocument(_ context.Context, id string) (*content.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[id]
	if !ok {
		return nil, nil
	}
	out := doc
	return &out, nil
}

func (s *MemoryStore) UpdateDocument(_ context.Context, document *content.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.documents[document.ID]
	if !ok {
		return ErrNotFound
	}
	document.ContextID = existing.ContextID
	document.CreatedAt = existing.CreatedAt
	document.UpdatedAt = time.Now().UTC()
	s.documents[document.ID] = *document
	return nil
}

func (s *MemoryStore) ListDocuments(_ context.Context, contextID string, limit, offset int) ([]content.Document, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var all []content.Document
	for _, doc := range s.documents {
		if doc.DeletedAt != nil {
			continue
		}
		if contextID == "" || doc.ContextID == contextID {
			all = append(all, doc)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Title < all[j].Title })
	total := len(all)
	from, to := clampPage(limit, offset, total)
	return all[from:to], total, nil
}

func (s *MemoryStore) setGrantLocked(grants map[string]map[string]content.GrantRole, documentID, key string, role content.GrantRole) error {
	if _, ok := s.documents[documentID]; !ok {
		return ErrNotFound
	}
	set := grants[documentID]
	if set == nil {
		set = make(map[string]content.GrantRole)
		grants[documentID] = set
	}
	set[key] = role
	return nil
}

func removeGrant(grants map[string]map[string]content.GrantRole, documentID, key string) error {
	set := grants[documentID]
	if _, ok := set[key]; !ok {
		return ErrNotFound
	}
	delete(set, key)
	return nil
}

func (s *MemoryStore) SetUserGrant(_ context.Context, documentID, userID string, role content.GrantRole) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setGrantLocked(s.userGrants, documentID, userID, role)
}

func (s *MemoryStore) RemoveUserGrant(_ context.Context, documentID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return removeGrant(s.userGrants, documentID, userID)
}

func (s *MemoryStore) SetTeamGrant(_ context.Context, documentID, teamID string, role content.GrantRole) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setGrantLocked(s.teamGrants, documentID, teamID, role)
}

func (s *MemoryStore) RemoveTeamGrant(_ context.Context, documentID, teamID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return removeGrant(s.teamGrants, documentID, teamID)
}

func (s *MemoryStore) SetDepartmentGrant(_ context.Context, documentID, departmentID string, role content.GrantRole) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setGrantLocked(s.deptGrants, documentID, departmentID, role)
}

func (s *MemoryStore) RemoveDepartmentGrant(_ context.Context, documentID, departmentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return removeGrant(s.deptGrants, documentID, departmentID)
}

// ---- SessionStore ----

func (s *MemoryStore) CreateSession(_ context.Context, session *auth.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = *session
	return nil
}

func (s *MemoryStore) GetSession(_ context.Context, id string) (*auth.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, nil
	}
	out := session
	return &out, nil
}

func (s *MemoryStore) DeleteSession(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

func (s *MemoryStore) DeleteExpiredSessions(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	var n int
	for id, session := range s.sessions {
		if now.After(session.ExpiresAt) {
			delete(s.sessions, id)
			n++
		}
	}
	return n, nil
}

var _ Store = (*MemoryStore)(nil)
