package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/platinummonkey/docvault/pkg/content"
	"github.com/platinummonkey/docvault/pkg/org"
	"github.com/platinummonkey/docvault/pkg/storage"
)

func (s *Store) FindOrCreateOwner(ctx context.Context, departmentID, teamID string) (*org.Owner, error) {
	owner := org.Owner{DepartmentID: departmentID, TeamID: teamID}
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	if departmentID != "" {
		if err := s.requireDepartment(ctx, departmentID); err != nil {
			return nil, err
		}
	}
	if teamID != "" {
		if err := s.requireTeam(ctx, teamID); err != nil {
			return nil, err
		}
	}

	err := s.db.QueryRowContext(ctx, `
		SELECT id, COALESCE(department_id, ''), COALESCE(team_id, '')
		FROM owners
		WHERE COALESCE(department_id, '') = $1 AND COALESCE(team_id, '') = $2`,
		departmentID, teamID).Scan(&owner.ID, &owner.DepartmentID, &owner.TeamID)
	if err == nil {
		return &owner, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("selecting owner: %w", err)
	}

	owner.ID = uuid.NewString()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO owners (id, department_id, team_id) VALUES ($1, $2, $3)`,
		owner.ID, nullString(departmentID), nullString(teamID))
	if err != nil {
		return nil, fmt.Errorf("inserting owner: %w", translateErr(err))
	}
	return &owner, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// createContextFor inserts a context row pointing at exactly one entity
// column.
func (s *Store) createContextFor(ctx context.Context, column, entityID string) (string, error) {
	contextID := uuid.NewString()
	_, err := s.db.ExecContext(ctx, fmt.Sprintf(
		`INSERT INTO contexts (id, %s) VALUES ($1, $2)`, column), contextID, entityID)
	if err != nil {
		return "", fmt.Errorf("inserting context: %w", translateErr(err))
	}
	return contextID, nil
}

func (s *Store) deleteContext(ctx context.Context, contextID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM contexts WHERE id = $1`, contextID); err != nil {
		return fmt.Errorf("deleting context: %w", translateErr(err))
	}
	return nil
}

// ---- processes ----

func (s *Store) CreateProcess(ctx context.Context, process *content.Process) error {
	process.ID = uuid.NewString()
	contextID, err := s.createContextFor(ctx, "process_id", process.ID)
	if err != nil {
		return err
	}
	process.ContextID = contextID
	now := time.Now().UTC()
	process.CreatedAt, process.UpdatedAt = now, now
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO processes (id, name, context_id, owner_id, deleted_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		process.ID, process.Name, process.ContextID, process.OwnerID,
		nullTime(process.DeletedAt), process.CreatedAt, process.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting process: %w", translateErr(err))
	}
	return nil
}

func (s *Store) GetProcess(ctx context.Context, id string) (*content.Process, error) {
	var (
		p         content.Process
		deletedAt sql.NullTime
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, context_id, owner_id, deleted_at, created_at, updated_at
		FROM processes WHERE id = $1`, id).
		Scan(&p.ID, &p.Name, &p.ContextID, &p.OwnerID, &deletedAt, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("selecting process: %w", err)
	}
	p.DeletedAt = timePtr(deletedAt)
	return &p, nil
}

func (s *Store) ListProcesses(ctx context.Context, limit, offset int) ([]content.Process, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM processes WHERE deleted_at IS NULL`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting processes: %w", err)
	}
	if limit <= 0 {
		limit = total
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, context_id, owner_id, deleted_at, created_at, updated_at
		FROM processes WHERE deleted_at IS NULL
		ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("listing processes: %w", err)
	}
	defer rows.Close()

	var processes []content.Process
	for rows.Next() {
		var (
			p         content.Process
			deletedAt sql.NullTime
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.ContextID, &p.OwnerID, &deletedAt,
			&p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("scanning process: %w", err)
		}
		p.DeletedAt = timePtr(deletedAt)
		processes = append(processes, p)
	}
	return processes, total, rows.Err()
}

func (s *Store) UpdateProcess(ctx context.Context, process *content.Process) error {
	process.UpdatedAt = time.Now().UTC()
	result, err := s.db.ExecContext(ctx,
		`UPDATE processes SET name = $1, deleted_at = $2, updated_at = $3 WHERE id = $4`,
		process.Name, nullTime(process.DeletedAt), process.UpdatedAt, process.ID)
	if err != nil {
		return fmt.Errorf("updating process: %w", translateErr(err))
	}
	return requireRowAffected(result)
}

func (s *Store) DeleteProcess(ctx context.Context, id string) error {
	process, err := s.GetProcess(ctx, id)
	if err != nil {
		return err
	}
	if process == nil {
		return storage.ErrNotFound
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM processes WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deleting process: %w", translateErr(err))
	}
	return s.deleteContext(ctx, process.ContextID)
}

// ---- projects ----

func (s *Store) CreateProject(ctx context.Context, project *content.Project) error {
	project.ID = uuid.NewString()
	contextID, err := s.createContextFor(ctx, "project_id", project.ID)
	if err != nil {
		return err
	}
	project.ContextID = contextID
	now := time.Now().UTC()
	project.CreatedAt, project.UpdatedAt = now, now
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO projects (id, name, context_id, owner_id, deleted_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		project.ID, project.Name, project.ContextID, project.OwnerID,
		nullTime(project.DeletedAt), project.CreatedAt, project.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting project: %w", translateErr(err))
	}
	return nil
}

func (s *Store) GetProject(ctx context.Context, id string) (*content.Project, error) {
	var (
		p         content.Project
		deletedAt sql.NullTime
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, context_id, owner_id, deleted_at, created_at, updated_at
		FROM projects WHERE id = $1`, id).
		Scan(&p.ID, &p.Name, &p.ContextID, &p.OwnerID, &deletedAt, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("selecting project: %w", err)
	}
	p.DeletedAt = timePtr(deletedAt)
	return &p, nil
}

func (s *Store) ListProjects(ctx context.Context, limit, offset int) ([]content.Project, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM projects WHERE deleted_at IS NULL`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting projects: %w", err)
	}
	if limit <= 0 {
		limit = total
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, context_id, owner_id, deleted_at, created_at, updated_at
		FROM projects WHERE deleted_at IS NULL
		ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("listing projects: %w", err)
	}
	defer rows.Close()

	var projects []content.Project
	for rows.Next() {
		var (
			p         content.Project
			deletedAt sql.NullTime
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.ContextID, &p.OwnerID, &deletedAt,
			&p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("scanning project: %w", err)
		}
		p.DeletedAt = timePtr(deletedAt)
		projects = append(projects, p)
	}
	return projects, total, rows.Err()
}

func (s *Store) UpdateProject(ctx context.Context, project *content.Project) error {
	project.UpdatedAt = time.Now().UTC()
	result, err := s.db.ExecContext(ctx,
		`UPDATE projects SET name = $1, deleted_at = $2, updated_at = $3 WHERE id = $4`,
		project.Name, nullTime(project.DeletedAt), project.UpdatedAt, project.ID)
	if err != nil {
		return fmt.Errorf("updating project: %w", translateErr(err))
	}
	return requireRowAffected(result)
}

func (s *Store) DeleteProject(ctx context.Context, id string) error {
	project, err := s.GetProject(ctx, id)
	if err != nil {
		return err
	}
	if project == nil {
		return storage.ErrNotFound
	}
	var subcontexts int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM subcontexts WHERE project_id = $1`, id).Scan(&subcontexts); err != nil {
		return fmt.Errorf("counting subcontexts: %w", err)
	}
	if subcontexts > 0 {
		return storage.ErrConflict
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deleting project: %w", translateErr(err))
	}
	return s.deleteContext(ctx, project.ContextID)
}

// ---- subcontexts ----

func (s *Store) CreateSubcontext(ctx context.Context, subcontext *content.Subcontext) error {
	project, err := s.GetProject(ctx, subcontext.ProjectID)
	if err != nil {
		return err
	}
	if project == nil {
		return storage.ErrNotFound
	}
	subcontext.ID = uuid.NewString()
	contextID, err := s.createContextFor(ctx, "subcontext_id", subcontext.ID)
	if err != nil {
		return err
	}
	subcontext.ContextID = contextID
	now := time.Now().UTC()
	subcontext.CreatedAt, subcontext.UpdatedAt = now, now
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO subcontexts (id, name, context_id, project_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		subcontext.ID, subcontext.Name, subcontext.ContextID, subcontext.ProjectID,
		subcontext.CreatedAt, subcontext.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting subcontext: %w", translateErr(err))
	}
	return nil
}

func (s *Store) GetSubcontext(ctx context.Context, id string) (*content.Subcontext, error) {
	var sc content.Subcontext
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, context_id, project_id, created_at, updated_at
		FROM subcontexts WHERE id = $1`, id).
		Scan(&sc.ID, &sc.Name, &sc.ContextID, &sc.ProjectID, &sc.CreatedAt, &sc.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("selecting subcontext: %w", err)
	}
	return &sc, nil
}

func (s *Store) ListSubcontexts(ctx context.Context, projectID string, limit, offset int) ([]content.Subcontext, int, error) {
	clause, args := "", []any{}
	if projectID != "" {
		clause = ` WHERE project_id = $1`
		args = append(args, projectID)
	}
	var total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM subcontexts`+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting subcontexts: %w", err)
	}
	if limit <= 0 {
		limit = total
	}
	query := fmt.Sprintf(`
		SELECT id, name, context_id, project_id, created_at, updated_at
		FROM subcontexts%s ORDER BY name LIMIT $%d OFFSET $%d`,
		clause, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing subcontexts: %w", err)
	}
	defer rows.Close()

	var subcontexts []content.Subcontext
	for rows.Next() {
		var sc content.Subcontext
		if err := rows.Scan(&sc.ID, &sc.Name, &sc.ContextID, &sc.ProjectID,
			&sc.CreatedAt, &sc.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("scanning subcontext: %w", err)
		}
		subcontexts = append(subcontexts, sc)
	}
	return subcontexts, total, rows.Err()
}

func (s *Store) UpdateSubcontext(ctx context.Context, subcontext *content.Subcontext) error {
	subcontext.UpdatedAt = time.Now().UTC()
	result, err := s.db.ExecContext(ctx,
		`UPDATE subcontexts SET name = $1, updated_at = $2 WHERE id = $3`,
		subcontext.Name, subcontext.UpdatedAt, subcontext.ID)
	if err != nil {
		return fmt.Errorf("updating subcontext: %w", translateErr(err))
	}
	return requireRowAffected(result)
}

func (s *Store) DeleteSubcontext(ctx context.Context, id string) error {
	subcontext, err := s.GetSubcontext(ctx, id)
	if err != nil {
		return err
	}
	if subcontext == nil {
		return storage.ErrNotFound
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM subcontexts WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deleting subcontext: %w", translateErr(err))
	}
	return s.deleteContext(ctx, subcontext.ContextID)
}

// ---- user spaces ----

func (s *Store) CreateUserSpace(ctx context.Context, space *content.UserSpace) error {
	if err := s.requireUser(ctx, space.OwnerUserID); err != nil {
		return err
	}
	space.ID = uuid.NewString()
	contextID, err := s.createContextFor(ctx, "user_space_id", space.ID)
	if err != nil {
		return err
	}
	space.ContextID = contextID
	now := time.Now().UTC()
	space.CreatedAt, space.UpdatedAt = now, now
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO user_spaces (id, name, context_id, owner_user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		space.ID, space.Name, space.ContextID, space.OwnerUserID,
		space.CreatedAt, space.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting user space: %w", translateErr(err))
	}
	return nil
}

func (s *Store) GetUserSpace(ctx context.Context, id string) (*content.UserSpace, error) {
	var us content.UserSpace
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, context_id, owner_user_id, created_at, updated_at
		FROM user_spaces WHERE id = $1`, id).
		Scan(&us.ID, &us.Name, &us.ContextID, &us.OwnerUserID, &us.CreatedAt, &us.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("selecting user space: %w", err)
	}
	return &us, nil
}

func (s *Store) ListUserSpaces(ctx context.Context, ownerUserID string, limit, offset int) ([]content.UserSpace, int, error) {
	clause, args := "", []any{}
	if ownerUserID != "" {
		clause = ` WHERE owner_user_id = $1`
		args = append(args, ownerUserID)
	}
	var total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM user_spaces`+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting user spaces: %w", err)
	}
	if limit <= 0 {
		limit = total
	}
	query := fmt.Sprintf(`
		SELECT id, name, context_id, owner_user_id, created_at, updated_at
		FROM user_spaces%s ORDER BY name LIMIT $%d OFFSET $%d`,
		clause, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing user spaces: %w", err)
	}
	defer rows.Close()

	var spaces []content.UserSpace
	for rows.Next() {
		var us content.UserSpace
		if err := rows.Scan(&us.ID, &us.Name, &us.ContextID, &us.OwnerUserID,
			&us.CreatedAt, &us.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("scanning user space: %w", err)
		}
		spaces = append(spaces, us)
	}
	return spaces, total, rows.Err()
}

func (s *Store) UpdateUserSpace(ctx context.Context, space *content.UserSpace) error {
	space.UpdatedAt = time.Now().UTC()
	result, err := s.db.ExecContext(ctx,
		`UPDATE user_spaces SET name = $1, updated_at = $2 WHERE id = $3`,
		space.Name, space.UpdatedAt, space.ID)
	if err != nil {
		return fmt.Errorf("updating user space: %w", translateErr(err))
	}
	return requireRowAffected(result)
}

func (s *Store) DeleteUserSpace(ctx context.Context, id string) error {
	space, err := s.GetUserSpace(ctx, id)
	if err != nil {
		return err
	}
	if space == nil {
		return storage.ErrNotFound
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM user_spaces WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deleting user space: %w", translateErr(err))
	}
	return s.deleteContext(ctx, space.ContextID)
}
