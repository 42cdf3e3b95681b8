package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

// Migration is one ordered schema change. Statements stay portable between
// PostgreSQL and SQLite so store tests can run against an in-memory
// database.
type Migration struct {
	Version int
	Name    string
	SQL     string
}

var migrations = []Migration{
	{
		Version: 1,
		Name:    "organization",
		SQL: `
CREATE TABLE IF NOT EXISTS companies (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS departments (
	id TEXT PRIMARY KEY,
	company_id TEXT NOT NULL REFERENCES companies(id),
	name TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS teams (
	id TEXT PRIMARY KEY,
	department_id TEXT NOT NULL REFERENCES departments(id),
	name TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	email TEXT NOT NULL UNIQUE,
	is_admin BOOLEAN NOT NULL DEFAULT FALSE,
	password_hash TEXT NOT NULL DEFAULT '',
	deleted_at TIMESTAMP,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);
`,
	},
	{
		Version: 2,
		Name:    "assignments",
		SQL: `
CREATE TABLE IF NOT EXISTS team_members (
	team_id TEXT NOT NULL REFERENCES teams(id),
	user_id TEXT NOT NULL REFERENCES users(id),
	added_at TIMESTAMP NOT NULL,
	PRIMARY KEY (team_id, user_id)
);
CREATE TABLE IF NOT EXISTS team_leaders (
	team_id TEXT NOT NULL REFERENCES teams(id),
	user_id TEXT NOT NULL REFERENCES users(id),
	added_at TIMESTAMP NOT NULL,
	PRIMARY KEY (team_id, user_id)
);
CREATE TABLE IF NOT EXISTS supervisors (
	department_id TEXT NOT NULL REFERENCES departments(id),
	user_id TEXT NOT NULL REFERENCES users(id),
	added_at TIMESTAMP NOT NULL,
	PRIMARY KEY (department_id, user_id)
);
`,
	},
	{
		Version: 3,
		Name:    "content",
		SQL: `
CREATE TABLE IF NOT EXISTS owners (
	id TEXT PRIMARY KEY,
	department_id TEXT REFERENCES departments(id),
	team_id TEXT REFERENCES teams(id)
);
CREATE TABLE IF NOT EXISTS contexts (
	id TEXT PRIMARY KEY,
	process_id TEXT,
	project_id TEXT,
	subcontext_id TEXT,
	user_space_id TEXT
);
CREATE TABLE IF NOT EXISTS processes (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	context_id TEXT NOT NULL REFERENCES contexts(id),
	owner_id TEXT NOT NULL REFERENCES owners(id),
	deleted_at TIMESTAMP,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS projects (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	context_id TEXT NOT NULL REFERENCES contexts(id),
	owner_id TEXT NOT NULL REFERENCES owners(id),
	deleted_at TIMESTAMP,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS subcontexts (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	context_id TEXT NOT NULL REFERENCES contexts(id),
	project_id TEXT NOT NULL REFERENCES projects(id),
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS user_spaces (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	context_id TEXT NOT NULL REFERENCES contexts(id),
	owner_user_id TEXT NOT NULL REFERENCES users(id),
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);
`,
	},
	{
		Version: 4,
		Name:    "documents",
		SQL: `
CREATE TABLE IF NOT EXISTS documents (
	id TEXT PRIMARY KEY,
	context_id TEXT NOT NULL REFERENCES contexts(id),
	title TEXT NOT NULL,
	content TEXT NOT NULL DEFAULT '',
	pdf_url TEXT NOT NULL DEFAULT '',
	deleted_at TIMESTAMP,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS document_user_grants (
	document_id TEXT NOT NULL REFERENCES documents(id),
	user_id TEXT NOT NULL REFERENCES users(id),
	role TEXT NOT NULL,
	PRIMARY KEY (document_id, user_id)
);
CREATE TABLE IF NOT EXISTS document_team_grants (
	document_id TEXT NOT NULL REFERENCES documents(id),
	team_id TEXT NOT NULL REFERENCES teams(id),
	role TEXT NOT NULL,
	PRIMARY KEY (document_id, team_id)
);
CREATE TABLE IF NOT EXISTS document_department_grants (
	document_id TEXT NOT NULL REFERENCES documents(id),
	department_id TEXT NOT NULL REFERENCES departments(id),
	role TEXT NOT NULL,
	PRIMARY KEY (document_id, department_id)
);
`,
	},
	{
		Version: 5,
		Name:    "sessions",
		SQL: `
CREATE TABLE IF NOT EXISTS sessions (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL REFERENCES users(id),
	expires_at TIMESTAMP NOT NULL,
	created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions(expires_at);
`,
	},
}

// Migrate applies pending migrations in order. It is idempotent.
func Migrate(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS schema_migrations (
	version INTEGER PRIMARY KEY,
	name TEXT NOT NULL
)`)
	if err != nil {
		return fmt.Errorf("creating migrations table: %w", err)
	}

	for _, m := range migrations {
		var applied int
		err := db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM schema_migrations WHERE version = $1`, m.Version).Scan(&applied)
		if err != nil {
			return fmt.Errorf("checking migration %d: %w", m.Version, err)
		}
		if applied > 0 {
			continue
		}
		if _, err := db.ExecContext(ctx, m.SQL); err != nil {
			return fmt.Errorf("applying migration %d %s: %w", m.Version, m.Name, err)
		}
		if _, err := db.ExecContext(ctx,
			`INSERT INTO schema_migrations (version, name) VALUES ($1, $2)`, m.Version, m.Name); err != nil {
			return fmt.Errorf("recording migration %d: %w", m.Version, err)
		}
	}
	return nil
}
