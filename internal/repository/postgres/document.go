// Package postgres implements the service repository interfaces against
// PostgreSQL using database/sql and lib/pq.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/printmechecks/server/internal/domain"
	"github.com/printmechecks/server/internal/service/document"
)

// DocumentRepo implements document.Repository against PostgreSQL.
type DocumentRepo struct{ db *sql.DB }

// NewDocumentRepo creates a Postgres-backed document repository.
func NewDocumentRepo(db *sql.DB) *DocumentRepo { return &DocumentRepo{db: db} }

const documentColumns = `id, filename, mime_type, size_bytes, storage_url, blob_name, is_check, uploaded_by, created_at, updated_at`

func (r *DocumentRepo) Create(ctx context.Context, d *domain.Document) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO documents (id, filename, mime_type, size_bytes, storage_url, blob_name, is_check, uploaded_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING created_at, updated_at
	`, d.ID, d.Filename, d.MimeType, d.SizeBytes, d.StorageURL, d.BlobName, d.IsCheck, d.UploadedBy).
		Scan(&d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create document: %w", err)
	}
	return nil
}

func (r *DocumentRepo) Get(ctx context.Context, id string) (*domain.Document, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE id = $1`, id)

	d, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, document.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	return d, nil
}

func (r *DocumentRepo) List(ctx context.Context) ([]domain.Document, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+documentColumns+` FROM documents ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	out := []domain.Document{}
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*domain.Document, error) {
	var d domain.Document
	err := row.Scan(&d.ID, &d.Filename, &d.MimeType, &d.SizeBytes, &d.StorageURL,
		&d.BlobName, &d.IsCheck, &d.UploadedBy, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
