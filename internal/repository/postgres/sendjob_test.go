package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/printmechecks/server/internal/domain"
	"github.com/printmechecks/server/internal/service/sendjob"
)

func newMockDB(t *testing.T) (*SendJobRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewSendJobRepo(db), mock
}

func TestSendJobCreate_GeneratesID(t *testing.T) {
	repo, mock := newMockDB(t)
	now := time.Now()

	mock.ExpectQuery(`INSERT INTO send_jobs`).
		WithArgs(sqlmock.AnyArg(), "POSTGRID", nil, "PENDING", nil).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	job := &domain.SendJob{Method: domain.MethodPostgrid, Status: domain.StatusPending}
	if err := repo.Create(context.Background(), job); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if job.ID == "" {
		t.Error("expected generated id")
	}
	if !job.CreatedAt.Equal(now) {
		t.Error("expected created_at from the database")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestSendJobUpdateResult_SetOnceProviderID(t *testing.T) {
	repo, mock := newMockDB(t)
	providerID := "pg_1"
	resp := `{"status":"QUEUED"}`

	// provider_id lands through COALESCE so an existing value survives
	mock.ExpectExec(`UPDATE send_jobs\s+SET provider_id = COALESCE\(provider_id, \$2\)`).
		WithArgs("job-1", &providerID, "QUEUED", &resp).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateResult(context.Background(), "job-1", sendjob.ResultUpdate{
		ProviderID:       &providerID,
		Status:           "QUEUED",
		ProviderResponse: &resp,
	})
	if err != nil {
		t.Fatalf("UpdateResult: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestSendJobUpdateResult_NotFound(t *testing.T) {
	repo, mock := newMockDB(t)

	mock.ExpectExec(`UPDATE send_jobs`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateResult(context.Background(), "ghost", sendjob.ResultUpdate{Status: "QUEUED"})
	if !errors.Is(err, sendjob.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestSendJobFindByProviderID_NotFound(t *testing.T) {
	repo, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT id FROM send_jobs WHERE provider_id`).
		WithArgs("pg_ghost").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.FindByProviderID(context.Background(), "pg_ghost")
	if !errors.Is(err, sendjob.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestSendJobGet_HydratesRelations(t *testing.T) {
	repo, mock := newMockDB(t)
	now := time.Now()
	checkID := "doc-check"

	jobRows := sqlmock.NewRows([]string{
		"id", "method", "check_document_id", "status", "recipient_json",
		"provider_id", "provider_response_json", "created_at", "updated_at",
	}).AddRow("job-1", "POSTGRID", checkID, "QUEUED", nil, "pg_1", nil, now, now)
	mock.ExpectQuery(`SELECT .* FROM send_jobs WHERE id`).
		WithArgs("job-1").
		WillReturnRows(jobRows)

	attachmentRows := sqlmock.NewRows([]string{
		"id", "send_job_id", "document_id", "created_at",
		"id", "filename", "mime_type", "size_bytes", "storage_url", "blob_name", "is_check", "uploaded_by", "created_at", "updated_at",
	}).AddRow("att-1", "job-1", "doc-a", now,
		"doc-a", "a.pdf", "application/pdf", 10, "s3://x/a", "blob-a", false, nil, now, now)
	mock.ExpectQuery(`FROM send_job_attachments a`).
		WithArgs("job-1").
		WillReturnRows(attachmentRows)

	checkRows := sqlmock.NewRows([]string{
		"id", "filename", "mime_type", "size_bytes", "storage_url", "blob_name", "is_check", "uploaded_by", "created_at", "updated_at",
	}).AddRow(checkID, "check.pdf", "application/pdf", 20, "s3://x/c", "blob-c", true, nil, now, now)
	mock.ExpectQuery(`SELECT .* FROM documents WHERE id`).
		WithArgs(checkID).
		WillReturnRows(checkRows)

	job, err := repo.Get(context.Background(), "job-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	if len(job.Attachments) != 1 || job.Attachments[0].DocumentID != "doc-a" {
		t.Errorf("attachments = %+v", job.Attachments)
	}
	if job.Attachments[0].Document == nil || job.Attachments[0].Document.Filename != "a.pdf" {
		t.Error("expected attachment document hydrated")
	}
	if job.CheckDocument == nil || job.CheckDocument.ID != checkID {
		t.Error("expected check document hydrated")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestSendJobGet_NotFound(t *testing.T) {
	repo, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT .* FROM send_jobs WHERE id`).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.Get(context.Background(), "ghost")
	if !errors.Is(err, sendjob.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
