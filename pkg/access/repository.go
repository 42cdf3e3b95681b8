package access

import (
	"context"

	"github.com/platinummonkey/docvault/pkg/content"
	"github.com/platinummonkey/docvault/pkg/org"
)

// Repository is the read-only data access the decision engine needs. Every
// method returns (nil, nil) when the entity does not exist; the engine
// folds absence into a false decision. Errors are reserved for
// infrastructure failures and surface unchanged to the caller.
//
// The interface is deliberately narrow so the engine can be unit-tested
// against an in-memory graph; storage.Store satisfies it structurally.
type Repository interface {
	// LoadUserProfile loads the acting user's permission projection:
	// identity flags plus memberships, leaderships and supervised
	// departments.
	LoadUserProfile(ctx context.Context, userID string) (*org.UserProfile, error)

	// LoadDocumentProjection loads a document with its context's ownership
	// chain and all grant collections. Soft-deleted documents are still
	// returned; visibility rules are applied by the caller.
	LoadDocumentProjection(ctx context.Context, documentID string) (*content.DocumentProjection, error)

	// LoadContext loads a context with the owner chain needed for
	// resolution.
	LoadContext(ctx context.Context, contextID string) (*content.Context, error)

	// LoadTeamRef loads a team's id and department.
	LoadTeamRef(ctx context.Context, teamID string) (*org.TeamRef, error)

	// LoadDepartmentRef loads a department by id, nil when absent.
	LoadDepartmentRef(ctx context.Context, departmentID string) (*org.Department, error)
}
