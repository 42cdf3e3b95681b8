package org

import "errors"

// ErrInvalidOwner indicates an owner row that violates the
// department-xor-team invariant.
var ErrInvalidOwner = errors.New("owner must reference exactly one of department or team")

// Owner ties a process or project to the department or team that owns it.
// Exactly one of DepartmentID and TeamID is set; construct owners through
// DepartmentOwner or TeamOwner so the invariant holds from the start.
type Owner struct {
	ID           string `json:"id"`
	DepartmentID string `json:"department_id,omitempty"`
	TeamID       string `json:"team_id,omitempty"`
}

// DepartmentOwner returns an owner backed by a department.
func DepartmentOwner(id, departmentID string) Owner {
	return Owner{ID: id, DepartmentID: departmentID}
}

// TeamOwner returns an owner backed by a team.
func TeamOwner(id, teamID string) Owner {
	return Owner{ID: id, TeamID: teamID}
}

// Validate checks the department-xor-team invariant.
func (o Owner) Validate() error {
	if (o.DepartmentID == "") == (o.TeamID == "") {
		return ErrInvalidOwner
	}
	return nil
}

// OwnerRef is the owner projection loaded for permission checks: the raw
// union plus the owning team's department when the owner is team-backed.
// It is just enough to answer "which department does this owner fall
// under" without deeper traversal.
type OwnerRef struct {
	DepartmentID     string `json:"department_id,omitempty"`
	TeamID           string `json:"team_id,omitempty"`
	TeamDepartmentID string `json:"team_department_id,omitempty"`
}

// EffectiveDepartment resolves the department this owner falls under.
// A malformed owner (both or neither side set) has no effective
// department; callers treat that as deny.
func (r OwnerRef) EffectiveDepartment() (string, bool) {
	if r.DepartmentID != "" && r.TeamID != "" {
		return "", false
	}
	if r.DepartmentID != "" {
		return r.DepartmentID, true
	}
	if r.TeamID != "" && r.TeamDepartmentID != "" {
		return r.TeamDepartmentID, true
	}
	return "", false
}
