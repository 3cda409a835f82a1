package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/printmechecks/server/internal/domain"
	"github.com/printmechecks/server/internal/service/sendjob"
)

// SendJobRepo implements sendjob.Repository against PostgreSQL.
type SendJobRepo struct{ db *sql.DB }

// NewSendJobRepo creates a Postgres-backed send job repository.
func NewSendJobRepo(db *sql.DB) *SendJobRepo { return &SendJobRepo{db: db} }

const sendJobColumns = `id, method, check_document_id, status, recipient_json, provider_id, provider_response_json, created_at, updated_at`

func (r *SendJobRepo) Create(ctx context.Context, job *domain.SendJob) error {
	if job.ID == "" {
		job.ID = uuid.New().String()
	}
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO send_jobs (id, method, check_document_id, status, recipient_json, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING created_at, updated_at
	`, job.ID, job.Method, job.CheckDocumentID, job.Status, job.RecipientJSON).
		Scan(&job.CreatedAt, &job.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create send job: %w", err)
	}
	return nil
}

func (r *SendJobRepo) Get(ctx context.Context, id string) (*domain.SendJob, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+sendJobColumns+` FROM send_jobs WHERE id = $1`, id)

	job, err := scanSendJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sendjob.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get send job: %w", err)
	}

	if err := r.hydrate(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

func (r *SendJobRepo) List(ctx context.Context) ([]domain.SendJob, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+sendJobColumns+` FROM send_jobs ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list send jobs: %w", err)
	}
	defer rows.Close()

	out := []domain.SendJob{}
	for rows.Next() {
		job, err := scanSendJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan send job: %w", err)
		}
		out = append(out, *job)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		attachments, err := r.attachmentsFor(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Attachments = attachments
	}
	return out, nil
}

func (r *SendJobRepo) FindByProviderID(ctx context.Context, providerID string) (*domain.SendJob, error) {
	var id string
	err := r.db.QueryRowContext(ctx,
		`SELECT id FROM send_jobs WHERE provider_id = $1`, providerID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sendjob.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find send job by provider id: %w", err)
	}
	return r.Get(ctx, id)
}

// UpdateResult applies a provider outcome. provider_id only lands on a
// job that has none yet; a nil response leaves the stored one alone.
func (r *SendJobRepo) UpdateResult(ctx context.Context, id string, upd sendjob.ResultUpdate) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE send_jobs
		SET provider_id = COALESCE(provider_id, $2),
		    status = $3,
		    provider_response_json = COALESCE($4, provider_response_json),
		    updated_at = NOW()
		WHERE id = $1
	`, id, upd.ProviderID, upd.Status, upd.ProviderResponse)
	if err != nil {
		return fmt.Errorf("update send job result: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return sendjob.ErrNotFound
	}
	return nil
}

func (r *SendJobRepo) AddAttachment(ctx context.Context, jobID, documentID string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO send_job_attachments (id, send_job_id, document_id, created_at)
		VALUES ($1, $2, $3, NOW())
	`, uuid.New().String(), jobID, documentID)
	if err != nil {
		return fmt.Errorf("add attachment: %w", err)
	}
	return nil
}

// hydrate loads a job's attachments and check document.
func (r *SendJobRepo) hydrate(ctx context.Context, job *domain.SendJob) error {
	attachments, err := r.attachmentsFor(ctx, job.ID)
	if err != nil {
		return err
	}
	job.Attachments = attachments

	if job.CheckDocumentID != nil {
		row := r.db.QueryRowContext(ctx,
			`SELECT `+documentColumns+` FROM documents WHERE id = $1`, *job.CheckDocumentID)
		doc, err := scanDocument(row)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("load check document: %w", err)
		}
		job.CheckDocument = doc
	}
	return nil
}

func (r *SendJobRepo) attachmentsFor(ctx context.Context, jobID string) ([]domain.SendJobAttachment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT a.id, a.send_job_id, a.document_id, a.created_at,
		       d.id, d.filename, d.mime_type, d.size_bytes, d.storage_url, d.blob_name, d.is_check, d.uploaded_by, d.created_at, d.updated_at
		FROM send_job_attachments a
		JOIN documents d ON d.id = a.document_id
		WHERE a.send_job_id = $1
		ORDER BY a.created_at
	`, jobID)
	if err != nil {
		return nil, fmt.Errorf("load attachments: %w", err)
	}
	defer rows.Close()

	out := []domain.SendJobAttachment{}
	for rows.Next() {
		var a domain.SendJobAttachment
		var d domain.Document
		err := rows.Scan(&a.ID, &a.SendJobID, &a.DocumentID, &a.CreatedAt,
			&d.ID, &d.Filename, &d.MimeType, &d.SizeBytes, &d.StorageURL,
			&d.BlobName, &d.IsCheck, &d.UploadedBy, &d.CreatedAt, &d.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan attachment: %w", err)
		}
		a.Document = &d
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanSendJob(row rowScanner) (*domain.SendJob, error) {
	var job domain.SendJob
	err := row.Scan(&job.ID, &job.Method, &job.CheckDocumentID, &job.Status,
		&job.RecipientJSON, &job.ProviderID, &job.ProviderResponse,
		&job.CreatedAt, &job.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &job, nil
}
