package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/platinummonkey/docvault/pkg/org"
	"github.com/platinummonkey/docvault/pkg/storage"
)

// edgeSpec describes one of the three assignment tables, which share a
// (key, user_id, added_at) shape.
type edgeSpec struct {
	table  string
	keyCol string
}

var (
	memberEdges     = edgeSpec{table: "team_members", keyCol: "team_id"}
	leaderEdges     = edgeSpec{table: "team_leaders", keyCol: "team_id"}
	supervisorEdges = edgeSpec{table: "supervisors", keyCol: "department_id"}
)

func (s *Store) listEdgeUsers(ctx context.Context, spec edgeSpec, key string, limit, offset int) ([]org.UserRef, int, error) {
	var total int
	err := s.db.QueryRowContext(ctx, fmt.Sprintf(
		`SELECT COUNT(*) FROM %s WHERE %s = $1`, spec.table, spec.keyCol), key).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("counting %s: %w", spec.table, err)
	}
	if limit <= 0 {
		limit = total
	}
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT u.id, u.name FROM %s e
		JOIN users u ON u.id = e.user_id
		WHERE e.%s = $1
		ORDER BY u.name LIMIT $2 OFFSET $3`, spec.table, spec.keyCol),
		key, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("listing %s: %w", spec.table, err)
	}
	defer rows.Close()

	var refs []org.UserRef
	for rows.Next() {
		var ref org.UserRef
		if err := rows.Scan(&ref.ID, &ref.Name); err != nil {
			return nil, 0, fmt.Errorf("scanning %s: %w", spec.table, err)
		}
		refs = append(refs, ref)
	}
	return refs, total, rows.Err()
}

func (s *Store) addEdge(ctx context.Context, spec edgeSpec, key, userID string) error {
	_, err := s.db.ExecContext(ctx, fmt.Sprintf(
		`INSERT INTO %s (%s, user_id, added_at) VALUES ($1, $2, $3)`, spec.table, spec.keyCol),
		key, userID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("inserting into %s: %w", spec.table, translateErr(err))
	}
	return nil
}

func (s *Store) removeEdge(ctx context.Context, spec edgeSpec, key, userID string) error {
	result, err := s.db.ExecContext(ctx, fmt.Sprintf(
		`DELETE FROM %s WHERE %s = $1 AND user_id = $2`, spec.table, spec.keyCol),
		key, userID)
	if err != nil {
		return fmt.Errorf("deleting from %s: %w", spec.table, translateErr(err))
	}
	return requireRowAffected(result)
}

// requireTeam and requireDepartment give Add and List a clean ErrNotFound
// for a bad key instead of relying on foreign keys being enforced.
func (s *Store) requireTeam(ctx context.Context, teamID string) error {
	team, err := s.GetTeam(ctx, teamID)
	if err != nil {
		return err
	}
	if team == nil {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) requireDepartment(ctx context.Context, departmentID string) error {
	dept, err := s.GetDepartment(ctx, departmentID)
	if err != nil {
		return err
	}
	if dept == nil {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) requireUser(ctx context.Context, userID string) error {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil || user.Deactivated() {
		// Deactivated users cannot take on new assignments.
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) ListTeamMembers(ctx context.Context, teamID string, limit, offset int) ([]org.UserRef, int, error) {
	if err := s.requireTeam(ctx, teamID); err != nil {
		return nil, 0, err
	}
	return s.listEdgeUsers(ctx, memberEdges, teamID, limit, offset)
}

func (s *Store) AddTeamMember(ctx context.Context, teamID, userID string) error {
	if err := s.requireTeam(ctx, teamID); err != nil {
		return err
	}
	if err := s.requireUser(ctx, userID); err != nil {
		return err
	}
	return s.addEdge(ctx, memberEdges, teamID, userID)
}

func (s *Store) RemoveTeamMember(ctx context.Context, teamID, userID string) error {
	return s.removeEdge(ctx, memberEdges, teamID, userID)
}

func (s *Store) ListTeamLeaders(ctx context.Context, teamID string, limit, offset int) ([]org.UserRef, int, error) {
	if err := s.requireTeam(ctx, teamID); err != nil {
		return nil, 0, err
	}
	return s.listEdgeUsers(ctx, leaderEdges, teamID, limit, offset)
}

func (s *Store) AddTeamLeader(ctx context.Context, teamID, userID string) error {
	if err := s.requireTeam(ctx, teamID); err != nil {
		return err
	}
	if err := s.requireUser(ctx, userID); err != nil {
		return err
	}
	return s.addEdge(ctx, leaderEdges, teamID, userID)
}

func (s *Store) RemoveTeamLeader(ctx context.Context, teamID, userID string) error {
	return s.removeEdge(ctx, leaderEdges, teamID, userID)
}

func (s *Store) ListSupervisors(ctx context.Context, departmentID string, limit, offset int) ([]org.UserRef, int, error) {
	if err := s.requireDepartment(ctx, departmentID); err != nil {
		return nil, 0, err
	}
	return s.listEdgeUsers(ctx, supervisorEdges, departmentID, limit, offset)
}

func (s *Store) AddSupervisor(ctx context.Context, departmentID, userID string) error {
	if err := s.requireDepartment(ctx, departmentID); err != nil {
		return err
	}
	if err := s.requireUser(ctx, userID); err != nil {
		return err
	}
	return s.addEdge(ctx, supervisorEdges, departmentID, userID)
}

func (s *Store) RemoveSupervisor(ctx context.Context, departmentID, userID string) error {
	return s.removeEdge(ctx, supervisorEdges, departmentID, userID)
}
