package access

import (
	"context"

	"github.com/platinummonkey/docvault/pkg/org"
)

// Assignment management predicates gate mutation of the membership,
// leadership and supervision edges themselves. Each one resolves the
// target entity first and returns false when it does not exist;
// non-existence and denial are observably identical here, callers that
// need a 404 perform their own existence check before asking.

// CanManageTeamMembers reports whether the user may add or remove members
// of the team: admin, supervisor of the team's department, or leader of
// that team.
func (e *Engine) CanManageTeamMembers(ctx context.Context, userID, teamID string) (bool, error) {
	allowed, err := e.decideTeam(ctx, userID, teamID, func(user *org.UserProfile, team *org.TeamRef) bool {
		return user.Supervises(team.DepartmentID) || user.LeadsTeam(team.ID)
	})
	e.record("can_manage_team_members", allowed, err)
	return allowed, err
}

// CanManageTeamLeaders reports whether the user may appoint or remove team
// leaders: admin or supervisor of the team's department. Leaders cannot
// manage other leaders.
func (e *Engine) CanManageTeamLeaders(ctx context.Context, userID, teamID string) (bool, error) {
	allowed, err := e.decideTeam(ctx, userID, teamID, func(user *org.UserProfile, team *org.TeamRef) bool {
		return user.Supervises(team.DepartmentID)
	})
	e.record("can_manage_team_leaders", allowed, err)
	return allowed, err
}

// CanViewTeam reports whether the user may see a team's members and
// leaders: admin, supervisor of the team's department, member, or leader.
func (e *Engine) CanViewTeam(ctx context.Context, userID, teamID string) (bool, error) {
	allowed, err := e.decideTeam(ctx, userID, teamID, func(user *org.UserProfile, team *org.TeamRef) bool {
		return user.Supervises(team.DepartmentID) || user.MemberOfTeam(team.ID) || user.LeadsTeam(team.ID)
	})
	e.record("can_view_team", allowed, err)
	return allowed, err
}

func (e *Engine) decideTeam(ctx context.Context, userID, teamID string, grant func(*org.UserProfile, *org.TeamRef) bool) (bool, error) {
	user, err := e.profile(ctx, userID)
	if err != nil || user == nil {
		return false, err
	}
	team, err := e.repo.LoadTeamRef(ctx, teamID)
	if err != nil {
		return false, err
	}
	if team == nil {
		return false, nil
	}
	if user.IsAdmin {
		return true, nil
	}
	return grant(user, team), nil
}

// CanManageSupervisors reports whether the user may assign or remove
// department supervisors. Admin only.
func (e *Engine) CanManageSupervisors(ctx context.Context, userID, departmentID string) (bool, error) {
	allowed, err := e.decideDepartment(ctx, userID, departmentID, func(*org.UserProfile) bool {
		return false
	})
	e.record("can_manage_supervisors", allowed, err)
	return allowed, err
}

// CanViewDepartment reports whether the user may see a department's
// supervisors: admin or supervisor of that department.
func (e *Engine) CanViewDepartment(ctx context.Context, userID, departmentID string) (bool, error) {
	allowed, err := e.decideDepartment(ctx, userID, departmentID, func(user *org.UserProfile) bool {
		return user.Supervises(departmentID)
	})
	e.record("can_view_department", allowed, err)
	return allowed, err
}

func (e *Engine) decideDepartment(ctx context.Context, userID, departmentID string, grant func(*org.UserProfile) bool) (bool, error) {
	user, err := e.profile(ctx, userID)
	if err != nil || user == nil {
		return false, err
	}
	dept, err := e.repo.LoadDepartmentRef(ctx, departmentID)
	if err != nil {
		return false, err
	}
	if dept == nil {
		return false, nil
	}
	if user.IsAdmin {
		return true, nil
	}
	return grant(user), nil
}
