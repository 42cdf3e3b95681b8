package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/platinummonkey/docvault/pkg/org"
	"github.com/platinummonkey/docvault/pkg/storage"
)

const userColumns = `id, name, email, is_admin, password_hash, deleted_at, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*org.User, error) {
	var (
		user      org.User
		deletedAt sql.NullTime
	)
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.IsAdmin,
		&user.PasswordHash, &deletedAt, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, err
	}
	user.DeletedAt = timePtr(deletedAt)
	return &user, nil
}

func (s *Store) CreateUser(ctx context.Context, user *org.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	user.CreatedAt, user.UpdatedAt = now, now
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, name, email, is_admin, password_hash, deleted_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		user.ID, user.Name, strings.ToLower(user.Email), user.IsAdmin,
		user.PasswordHash, nullTime(user.DeletedAt), user.CreatedAt, user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting user: %w", translateErr(err))
	}
	user.Email = strings.ToLower(user.Email)
	return nil
}

func (s *Store) GetUser(ctx context.Context, id string) (*org.User, error) {
	user, err := scanUser(s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("selecting user: %w", err)
	}
	return user, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*org.User, error) {
	user, err := scanUser(s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, strings.ToLower(email)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("selecting user by email: %w", err)
	}
	return user, nil
}

func (s *Store) ListUsers(ctx context.Context, filter storage.UserFilter) ([]org.User, int, error) {
	var (
		where []string
		args  []any
	)
	if !filter.IncludeDeactivated {
		where = append(where, "deleted_at IS NULL")
	}
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		where = append(where, fmt.Sprintf(
			"(LOWER(name) LIKE $%d OR LOWER(email) LIKE $%d)", len(args)+1, len(args)+2))
		args = append(args, pattern, pattern)
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users`+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting users: %w", err)
	}

	orderBy := "name"
	switch filter.SortBy {
	case "email":
		orderBy = "email"
	case "created_at":
		orderBy = "created_at"
	}
	direction := "ASC"
	if filter.Descending {
		direction = "DESC"
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = total
	}
	query := fmt.Sprintf(`SELECT %s FROM users%s ORDER BY %s %s LIMIT $%d OFFSET $%d`,
		userColumns, clause, orderBy, direction, len(args)+1, len(args)+2)
	args = append(args, limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var users []org.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scanning user: %w", err)
		}
		users = append(users, *user)
	}
	return users, total, rows.Err()
}

func (s *Store) UpdateUser(ctx context.Context, user *org.User) error {
	user.UpdatedAt = time.Now().UTC()
	result, err := s.db.ExecContext(ctx, `
		UPDATE users SET name = $1, email = $2, is_admin = $3, password_hash = $4,
			deleted_at = $5, updated_at = $6
		WHERE id = $7`,
		user.Name, strings.ToLower(user.Email), user.IsAdmin, user.PasswordHash,
		nullTime(user.DeletedAt), user.UpdatedAt, user.ID)
	if err != nil {
		return fmt.Errorf("updating user: %w", translateErr(err))
	}
	return requireRowAffected(result)
}

func requireRowAffected(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}
