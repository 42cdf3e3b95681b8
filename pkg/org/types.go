package org

import (
	"time"
)

// Company is the root of the organizational hierarchy. The system manages
// exactly one company; departments hang off it.
type Company struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Department belongs to one company and groups teams.
type Department struct {
	ID        string    `json:"id"`
	CompanyID string    `json:"company_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Team belongs to exactly one department.
type Team struct {
	ID           string    `json:"id"`
	DepartmentID string    `json:"department_id"`
	Name         string    `json:"name"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// User is an account in the system. DeletedAt marks soft deletion; a
// deactivated user is denied every permission and cannot log in.
type User struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email,omitempty"`
	IsAdmin      bool       `json:"is_admin"`
	PasswordHash string     `json:"-"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Deactivated reports whether the user is soft-deleted.
func (u *User) Deactivated() bool {
	return u != nil && u.DeletedAt != nil
}

// TeamMember is a plain membership edge between a user and a team.
type TeamMember struct {
	TeamID  string    `json:"team_id"`
	UserID  string    `json:"user_id"`
	AddedAt time.Time `json:"added_at"`
}

// TeamLeader grants a user management authority over one team.
type TeamLeader struct {
	TeamID  string    `json:"team_id"`
	UserID  string    `json:"user_id"`
	AddedAt time.Time `json:"added_at"`
}

// Supervisor grants a user oversight of an entire department.
type Supervisor struct {
	DepartmentID string    `json:"department_id"`
	UserID       string    `json:"user_id"`
	AddedAt      time.Time `json:"added_at"`
}

// TeamRef is the minimal team projection permission checks need: the team
// id and the department it belongs to.
type TeamRef struct {
	ID           string `json:"id"`
	DepartmentID string `json:"department_id"`
}

// UserRef is the slim user projection returned by assignment listings.
type UserRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
