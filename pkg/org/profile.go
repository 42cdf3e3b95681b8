package org

import "time"

// UserProfile is the permission projection of a user: identity flags plus
// every membership edge the decision engine consults. It is loaded once
// per check and never mutated.
type UserProfile struct {
	ID              string     `json:"id"`
	IsAdmin         bool       `json:"is_admin"`
	DeletedAt       *time.Time `json:"deleted_at,omitempty"`
	TeamMemberships []TeamRef  `json:"team_memberships"`
	LeaderOfTeams   []TeamRef  `json:"leader_of_teams"`
	SupervisorOf    []string   `json:"supervisor_of_departments"`
}

// Active reports whether the profile belongs to a live account. Soft-deleted
// users fail this check and are denied everything.
func (p *UserProfile) Active() bool {
	return p != nil && p.DeletedAt == nil
}

// MemberOfTeam reports plain membership in the given team.
func (p *UserProfile) MemberOfTeam(teamID string) bool {
	for _, t := range p.TeamMemberships {
		if t.ID == teamID {
			return true
		}
	}
	return false
}

// LeadsTeam reports leadership of the given team.
func (p *UserProfile) LeadsTeam(teamID string) bool {
	for _, t := range p.LeaderOfTeams {
		if t.ID == teamID {
			return true
		}
	}
	return false
}

// Supervises reports supervision of the given department.
func (p *UserProfile) Supervises(departmentID string) bool {
	for _, d := range p.SupervisorOf {
		if d == departmentID {
			return true
		}
	}
	return false
}

// ReachableDepartments returns the set of department ids reachable through
// the user's team memberships and team leaderships. Department grants match
// against this set; supervised departments are deliberately excluded.
func (p *UserProfile) ReachableDepartments() map[string]bool {
	set := make(map[string]bool, len(p.TeamMemberships)+len(p.LeaderOfTeams))
	for _, t := range p.TeamMemberships {
		if t.DepartmentID != "" {
			set[t.DepartmentID] = true
		}
	}
	for _, t := range p.LeaderOfTeams {
		if t.DepartmentID != "" {
			set[t.DepartmentID] = true
		}
	}
	return set
}
