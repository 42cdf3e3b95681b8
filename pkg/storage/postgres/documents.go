package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/platinummonkey/docvault/pkg/content"
	"github.com/platinummonkey/docvault/pkg/storage"
)

const documentColumns = `id, context_id, title, content, pdf_url, deleted_at, created_at, updated_at`

func scanDocument(row interface{ Scan(...any) error }) (*content.Document, error) {
	var (
		doc       content.Document
		deletedAt sql.NullTime
	)
	err := row.Scan(&doc.ID, &doc.ContextID, &doc.Title, &doc.Content, &doc.PDFURL,
		&deletedAt, &doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		return nil, err
	}
	doc.DeletedAt = timePtr(deletedAt)
	return &doc, nil
}

func (s *Store) CreateDocument(ctx context.Context, document *content.Document) error {
	if document.ID == "" {
		document.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	document.CreatedAt, document.UpdatedAt = now, now
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (id, context_id, title, content, pdf_url, deleted_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		document.ID, document.ContextID, document.Title, document.Content,
		document.PDFURL, nullTime(document.DeletedAt), document.CreatedAt, document.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting document: %w", translateErr(err))
	}
	return nil
}

func (s *Store) GetDocument(ctx context.Context, id string) (*content.Document, error) {
	doc, err := scanDocument(s.db.QueryRowContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("selecting document: %w", err)
	}
	return doc, nil
}

func (s *Store) UpdateDocument(ctx context.Context, document *content.Document) error {
	document.UpdatedAt = time.Now().UTC()
	result, err := s.db.ExecContext(ctx, `
		UPDATE documents SET title = $1, content = $2, pdf_url = $3, deleted_at = $4, updated_at = $5
		WHERE id = $6`,
		document.Title, document.Content, document.PDFURL,
		nullTime(document.DeletedAt), document.UpdatedAt, document.ID)
	if err != nil {
		return fmt.Errorf("updating document: %w", translateErr(err))
	}
	return requireRowAffected(result)
}

func (s *Store) ListDocuments(ctx context.Context, contextID string, limit, offset int) ([]content.Document, int, error) {
	clause, args := ` WHERE deleted_at IS NULL`, []any{}
	if contextID != "" {
		clause += ` AND context_id = $1`
		args = append(args, contextID)
	}
	var total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM documents`+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting documents: %w", err)
	}
	if limit <= 0 {
		limit = total
	}
	query := fmt.Sprintf(`SELECT %s FROM documents%s ORDER BY title LIMIT $%d OFFSET $%d`,
		documentColumns, clause, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	var documents []content.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scanning document: %w", err)
		}
		documents = append(documents, *doc)
	}
	return documents, total, rows.Err()
}

// grantSpec describes one of the three grant tables, which share a
// (document_id, key, role) shape.
type grantSpec struct {
	table  string
	keyCol string
}

var (
	userGrantSpec = grantSpec{table: "document_user_grants", keyCol: "user_id"}
	teamGrantSpec = grantSpec{table: "document_team_grants", keyCol: "team_id"}
	deptGrantSpec = grantSpec{table: "document_department_grants", keyCol: "department_id"}
)

func (s *Store) setGrant(ctx context.Context, spec grantSpec, documentID, key string, role content.GrantRole) error {
	doc, err := s.GetDocument(ctx, documentID)
	if err != nil {
		return err
	}
	if doc == nil {
		return storage.ErrNotFound
	}
	_, err = s.db.ExecContext(ctx, fmt.Sprintf(`
		INSERT INTO %s (document_id, %s, role) VALUES ($1, $2, $3)
		ON CONFLICT (document_id, %s) DO UPDATE SET role = $3`,
		spec.table, spec.keyCol, spec.keyCol),
		documentID, key, string(role))
	if err != nil {
		return fmt.Errorf("upserting grant: %w", translateErr(err))
	}
	return nil
}

func (s *Store) removeGrant(ctx context.Context, spec grantSpec, documentID, key string) error {
	result, err := s.db.ExecContext(ctx, fmt.Sprintf(
		`DELETE FROM %s WHERE document_id = $1 AND %s = $2`, spec.table, spec.keyCol),
		documentID, key)
	if err != nil {
		return fmt.Errorf("deleting grant: %w", translateErr(err))
	}
	return requireRowAffected(result)
}

func (s *Store) SetUserGrant(ctx context.Context, documentID, userID string, role content.GrantRole) error {
	return s.setGrant(ctx, userGrantSpec, documentID, userID, role)
}

func (s *Store) RemoveUserGrant(ctx context.Context, documentID, userID string) error {
	return s.removeGrant(ctx, userGrantSpec, documentID, userID)
}

func (s *Store) SetTeamGrant(ctx context.Context, documentID, teamID string, role content.GrantRole) error {
	return s.setGrant(ctx, teamGrantSpec, documentID, teamID, role)
}

func (s *Store) RemoveTeamGrant(ctx context.Context, documentID, teamID string) error {
	return s.removeGrant(ctx, teamGrantSpec, documentID, teamID)
}

func (s *Store) SetDepartmentGrant(ctx context.Context, documentID, departmentID string, role content.GrantRole) error {
	return s.setGrant(ctx, deptGrantSpec, documentID, departmentID, role)
}

func (s *Store) RemoveDepartmentGrant(ctx context.Context, documentID, departmentID string) error {
	return s.removeGrant(ctx, deptGrantSpec, documentID, departmentID)
}
