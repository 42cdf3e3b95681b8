package content

import "time"

// Process is a long-running organizational activity. It owns one context
// and is owned by a department or team through its Owner.
type Process struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	ContextID string     `json:"context_id"`
	OwnerID   string     `json:"owner_id"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Project is a bounded organizational effort; subcontexts nest under it.
type Project struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	ContextID string     `json:"context_id"`
	OwnerID   string     `json:"owner_id"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Subcontext is a child container inside a project. It has its own context
// but inherits the project's owner for permission purposes.
type Subcontext struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	ContextID string    `json:"context_id"`
	ProjectID string    `json:"project_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserSpace is a personal container owned by exactly one user, exempt from
// department and team based access.
type UserSpace struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	ContextID   string    `json:"context_id"`
	OwnerUserID string    `json:"owner_user_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
