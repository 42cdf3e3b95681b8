package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/platinummonkey/docvault/pkg/org"
	"github.com/platinummonkey/docvault/pkg/storage"
)

func (s *Store) CreateCompany(ctx context.Context, company *org.Company) error {
	if company.ID == "" {
		company.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	company.CreatedAt, company.UpdatedAt = now, now
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO companies (id, name, created_at, updated_at) VALUES ($1, $2, $3, $4)`,
		company.ID, company.Name, company.CreatedAt, company.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting company: %w", translateErr(err))
	}
	return nil
}

func (s *Store) GetCompany(ctx context.Context, id string) (*org.Company, error) {
	var company org.Company
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, created_at, updated_at FROM companies WHERE id = $1`, id).
		Scan(&company.ID, &company.Name, &company.CreatedAt, &company.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("selecting company: %w", err)
	}
	return &company, nil
}

func (s *Store) ListCompanies(ctx context.Context, limit, offset int) ([]org.Company, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM companies`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting companies: %w", err)
	}
	if limit <= 0 {
		limit = total
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, created_at, updated_at FROM companies ORDER BY name LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("listing companies: %w", err)
	}
	defer rows.Close()

	var companies []org.Company
	for rows.Next() {
		var c org.Company
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("scanning company: %w", err)
		}
		companies = append(companies, c)
	}
	return companies, total, rows.Err()
}

func (s *Store) UpdateCompany(ctx context.Context, company *org.Company) error {
	company.UpdatedAt = time.Now().UTC()
	result, err := s.db.ExecContext(ctx,
		`UPDATE companies SET name = $1, updated_at = $2 WHERE id = $3`,
		company.Name, company.UpdatedAt, company.ID)
	if err != nil {
		return fmt.Errorf("updating company: %w", translateErr(err))
	}
	return requireRowAffected(result)
}

func (s *Store) DeleteCompany(ctx context.Context, id string) error {
	var departments int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM departments WHERE company_id = $1`, id).Scan(&departments); err != nil {
		return fmt.Errorf("counting departments: %w", err)
	}
	if departments > 0 {
		return storage.ErrConflict
	}
	result, err := s.db.ExecContext(ctx, `DELETE FROM companies WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting company: %w", translateErr(err))
	}
	return requireRowAffected(result)
}

func (s *Store) CountCompanies(ctx context.Context) (int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM companies`).Scan(&total); err != nil {
		return 0, fmt.Errorf("counting companies: %w", err)
	}
	return total, nil
}

func (s *Store) CreateDepartment(ctx context.Context, department *org.Department) error {
	if department.ID == "" {
		department.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	department.CreatedAt, department.UpdatedAt = now, now
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO departments (id, company_id, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`,
		department.ID, department.CompanyID, department.Name,
		department.CreatedAt, department.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting department: %w", translateErr(err))
	}
	return nil
}

func (s *Store) GetDepartment(ctx context.Context, id string) (*org.Department, error) {
	var dept org.Department
	err := s.db.QueryRowContext(ctx,
		`SELECT id, company_id, name, created_at, updated_at FROM departments WHERE id = $1`, id).
		Scan(&dept.ID, &dept.CompanyID, &dept.Name, &dept.CreatedAt, &dept.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("selecting department: %w", err)
	}
	return &dept, nil
}

func (s *Store) ListDepartments(ctx context.Context, companyID string, limit, offset int) ([]org.Department, int, error) {
	clause, args := "", []any{}
	if companyID != "" {
		clause = ` WHERE company_id = $1`
		args = append(args, companyID)
	}
	var total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM departments`+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting departments: %w", err)
	}
	if limit <= 0 {
		limit = total
	}
	query := fmt.Sprintf(
		`SELECT id, company_id, name, created_at, updated_at FROM departments%s ORDER BY name LIMIT $%d OFFSET $%d`,
		clause, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing departments: %w", err)
	}
	defer rows.Close()

	var departments []org.Department
	for rows.Next() {
		var d org.Department
		if err := rows.Scan(&d.ID, &d.CompanyID, &d.Name, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("scanning department: %w", err)
		}
		departments = append(departments, d)
	}
	return departments, total, rows.Err()
}

func (s *Store) UpdateDepartment(ctx context.Context, department *org.Department) error {
	department.UpdatedAt = time.Now().UTC()
	result, err := s.db.ExecContext(ctx,
		`UPDATE departments SET name = $1, updated_at = $2 WHERE id = $3`,
		department.Name, department.UpdatedAt, department.ID)
	if err != nil {
		return fmt.Errorf("updating department: %w", translateErr(err))
	}
	return requireRowAffected(result)
}

func (s *Store) DeleteDepartment(ctx context.Context, id string) error {
	var teams int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM teams WHERE department_id = $1`, id).Scan(&teams); err != nil {
		return fmt.Errorf("counting teams: %w", err)
	}
	if teams > 0 {
		return storage.ErrConflict
	}
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM supervisors WHERE department_id = $1`, id); err != nil {
		return fmt.Errorf("deleting supervisors: %w", translateErr(err))
	}
	result, err := s.db.ExecContext(ctx, `DELETE FROM departments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting department: %w", translateErr(err))
	}
	return requireRowAffected(result)
}

func (s *Store) CreateTeam(ctx context.Context, team *org.Team) error {
	if team.ID == "" {
		team.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	team.CreatedAt, team.UpdatedAt = now, now
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO teams (id, department_id, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`,
		team.ID, team.DepartmentID, team.Name, team.CreatedAt, team.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting team: %w", translateErr(err))
	}
	return nil
}

func (s *Store) GetTeam(ctx context.Context, id string) (*org.Team, error) {
	var team org.Team
	err := s.db.QueryRowContext(ctx,
		`SELECT id, department_id, name, created_at, updated_at FROM teams WHERE id = $1`, id).
		Scan(&team.ID, &team.DepartmentID, &team.Name, &team.CreatedAt, &team.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("selecting team: %w", err)
	}
	return &team, nil
}

func (s *Store) ListTeams(ctx context.Context, departmentID string, limit, offset int) ([]org.Team, int, error) {
	clause, args := "", []any{}
	if departmentID != "" {
		clause = ` WHERE department_id = $1`
		args = append(args, departmentID)
	}
	var total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM teams`+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting teams: %w", err)
	}
	if limit <= 0 {
		limit = total
	}
	query := fmt.Sprintf(
		`SELECT id, department_id, name, created_at, updated_at FROM teams%s ORDER BY name LIMIT $%d OFFSET $%d`,
		clause, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing teams: %w", err)
	}
	defer rows.Close()

	var teams []org.Team
	for rows.Next() {
		var t org.Team
		if err := rows.Scan(&t.ID, &t.DepartmentID, &t.Name, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("scanning team: %w", err)
		}
		teams = append(teams, t)
	}
	return teams, total, rows.Err()
}

func (s *Store) UpdateTeam(ctx context.Context, team *org.Team) error {
	team.UpdatedAt = time.Now().UTC()
	result, err := s.db.ExecContext(ctx,
		`UPDATE teams SET name = $1, updated_at = $2 WHERE id = $3`,
		team.Name, team.UpdatedAt, team.ID)
	if err != nil {
		return fmt.Errorf("updating team: %w", translateErr(err))
	}
	return requireRowAffected(result)
}

func (s *Store) DeleteTeam(ctx context.Context, id string) error {
	for _, table := range []string{"team_members", "team_leaders"} {
		if _, err := s.db.ExecContext(ctx,
			fmt.Sprintf(`DELETE FROM %s WHERE team_id = $1`, table), id); err != nil {
			return fmt.Errorf("deleting %s: %w", table, translateErr(err))
		}
	}
	result, err := s.db.ExecContext(ctx, `DELETE FROM teams WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting team: %w", translateErr(err))
	}
	return requireRowAffected(result)
}
