package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/platinummonkey/docvault/pkg/content"
	"github.com/platinummonkey/docvault/pkg/org"
)

// LoadUserProfile builds the permission projection for a user, nil when
// the user does not exist.
func (s *Store) LoadUserProfile(ctx context.Context, userID string) (*org.UserProfile, error) {
	var (
		profile   org.UserProfile
		deletedAt sql.NullTime
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, is_admin, deleted_at FROM users WHERE id = $1`, userID).
		Scan(&profile.ID, &profile.IsAdmin, &deletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("selecting user profile: %w", err)
	}
	profile.DeletedAt = timePtr(deletedAt)

	profile.TeamMemberships, err = s.loadTeamRefs(ctx, "team_members", userID)
	if err != nil {
		return nil, err
	}
	profile.LeaderOfTeams, err = s.loadTeamRefs(ctx, "team_leaders", userID)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT department_id FROM supervisors WHERE user_id = $1 ORDER BY department_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("selecting supervised departments: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var deptID string
		if err := rows.Scan(&deptID); err != nil {
			return nil, fmt.Errorf("scanning supervised department: %w", err)
		}
		profile.SupervisorOf = append(profile.SupervisorOf, deptID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (s *Store) loadTeamRefs(ctx context.Context, edgeTable, userID string) ([]org.TeamRef, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT t.id, t.department_id FROM %s e
		JOIN teams t ON t.id = e.team_id
		WHERE e.user_id = $1
		ORDER BY t.id`, edgeTable), userID)
	if err != nil {
		return nil, fmt.Errorf("selecting %s: %w", edgeTable, err)
	}
	defer rows.Close()

	var refs []org.TeamRef
	for rows.Next() {
		var ref org.TeamRef
		if err := rows.Scan(&ref.ID, &ref.DepartmentID); err != nil {
			return nil, fmt.Errorf("scanning %s: %w", edgeTable, err)
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

// LoadContext resolves a context row and its ownership chain, nil when
// absent. A context whose branch entity has gone missing comes back with
// no branch set, which resolution treats as malformed.
func (s *Store) LoadContext(ctx context.Context, contextID string) (*content.Context, error) {
	var processID, projectID, subcontextID, userSpaceID sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT process_id, project_id, subcontext_id, user_space_id
		FROM contexts WHERE id = $1`, contextID).
		Scan(&processID, &projectID, &subcontextID, &userSpaceID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("selecting context: %w", err)
	}

	switch {
	case processID.Valid && processID.String != "":
		ref, ok, err := s.ownerRefFor(ctx, "processes", processID.String)
		if err != nil {
			return nil, err
		}
		if ok {
			return content.NewProcessContext(contextID, ref), nil
		}
	case projectID.Valid && projectID.String != "":
		ref, ok, err := s.ownerRefFor(ctx, "projects", projectID.String)
		if err != nil {
			return nil, err
		}
		if ok {
			return content.NewProjectContext(contextID, ref), nil
		}
	case subcontextID.Valid && subcontextID.String != "":
		var scProjectID string
		err := s.db.QueryRowContext(ctx,
			`SELECT project_id FROM subcontexts WHERE id = $1`, subcontextID.String).
			Scan(&scProjectID)
		if errors.Is(err, sql.ErrNoRows) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("selecting subcontext project: %w", err)
		}
		ref, ok, err := s.ownerRefFor(ctx, "projects", scProjectID)
		if err != nil {
			return nil, err
		}
		if !ok {
			ref = org.OwnerRef{}
		}
		return content.NewSubcontextContext(contextID, ref), nil
	case userSpaceID.Valid && userSpaceID.String != "":
		var ownerUserID string
		err := s.db.QueryRowContext(ctx,
			`SELECT owner_user_id FROM user_spaces WHERE id = $1`, userSpaceID.String).
			Scan(&ownerUserID)
		if errors.Is(err, sql.ErrNoRows) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("selecting user space owner: %w", err)
		}
		return content.NewUserSpaceContext(contextID, ownerUserID), nil
	}
	return &content.Context{ID: contextID}, nil
}

// ownerRefFor loads the owner projection for a process or project row.
func (s *Store) ownerRefFor(ctx context.Context, table, entityID string) (org.OwnerRef, bool, error) {
	var ref org.OwnerRef
	err := s.db.QueryRowContext(ctx, fmt.Sprintf(`
		SELECT COALESCE(o.department_id, ''), COALESCE(o.team_id, ''), COALESCE(t.department_id, '')
		FROM %s e
		JOIN owners o ON o.id = e.owner_id
		LEFT JOIN teams t ON t.id = o.team_id
		WHERE e.id = $1`, table), entityID).
		Scan(&ref.DepartmentID, &ref.TeamID, &ref.TeamDepartmentID)
	if errors.Is(err, sql.ErrNoRows) {
		return org.OwnerRef{}, false, nil
	}
	if err != nil {
		return org.OwnerRef{}, false, fmt.Errorf("selecting %s owner: %w", table, err)
	}
	return ref, true, nil
}

// LoadDocumentProjection loads a document with its context and grants,
// nil when the document does not exist. Soft-deleted documents are
// returned.
func (s *Store) LoadDocumentProjection(ctx context.Context, documentID string) (*content.DocumentProjection, error) {
	doc, err := s.GetDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, nil
	}
	projection := &content.DocumentProjection{Document: *doc}
	projection.Context, err = s.LoadContext(ctx, doc.ContextID)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, role FROM document_user_grants WHERE document_id = $1`, documentID)
	if err != nil {
		return nil, fmt.Errorf("selecting user grants: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var g content.UserGrant
		if err := rows.Scan(&g.UserID, &g.Role); err != nil {
			return nil, fmt.Errorf("scanning user grant: %w", err)
		}
		projection.UserGrants = append(projection.UserGrants, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	teamRows, err := s.db.QueryContext(ctx,
		`SELECT team_id, role FROM document_team_grants WHERE document_id = $1`, documentID)
	if err != nil {
		return nil, fmt.Errorf("selecting team grants: %w", err)
	}
	defer teamRows.Close()
	for teamRows.Next() {
		var g content.TeamGrant
		if err := teamRows.Scan(&g.TeamID, &g.Role); err != nil {
			return nil, fmt.Errorf("scanning team grant: %w", err)
		}
		projection.TeamGrants = append(projection.TeamGrants, g)
	}
	if err := teamRows.Err(); err != nil {
		return nil, err
	}

	deptRows, err := s.db.QueryContext(ctx,
		`SELECT department_id, role FROM document_department_grants WHERE document_id = $1`, documentID)
	if err != nil {
		return nil, fmt.Errorf("selecting department grants: %w", err)
	}
	defer deptRows.Close()
	for deptRows.Next() {
		var g content.DepartmentGrant
		if err := deptRows.Scan(&g.DepartmentID, &g.Role); err != nil {
			return nil, fmt.Errorf("scanning department grant: %w", err)
		}
		projection.DepartmentGrants = append(projection.DepartmentGrants, g)
	}
	return projection, deptRows.Err()
}

// LoadTeamRef returns a team's id and department, nil when absent.
func (s *Store) LoadTeamRef(ctx context.Context, teamID string) (*org.TeamRef, error) {
	var ref org.TeamRef
	err := s.db.QueryRowContext(ctx,
		`SELECT id, department_id FROM teams WHERE id = $1`, teamID).
		Scan(&ref.ID, &ref.DepartmentID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("selecting team ref: %w", err)
	}
	return &ref, nil
}

// LoadDepartmentRef returns a department, nil when absent.
func (s *Store) LoadDepartmentRef(ctx context.Context, departmentID string) (*org.Department, error) {
	return s.GetDepartment(ctx, departmentID)
}
