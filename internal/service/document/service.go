package document

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/printmechecks/server/internal/domain"
)

// BlobStore is the content storage contract the service needs. Satisfied
// by the blob package's S3 and local stores.
type BlobStore interface {
	Put(ctx context.Context, name string, data []byte, contentType string) (string, error)
	Get(ctx context.Context, name string) ([]byte, error)
}

// Service implements document business logic. It is safe for concurrent use.
type Service struct {
	repo  Repository
	blobs BlobStore
}

// NewService creates a document service backed by the given repository
// and blob store.
func NewService(repo Repository, blobs BlobStore) *Service {
	return &Service{repo: repo, blobs: blobs}
}

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9_.-]`)

// Upload validates a PDF, stores its content, and records its metadata.
// The blob name is the upload timestamp plus the sanitized filename so
// repeated uploads of the same file never collide.
func (s *Service) Upload(ctx context.Context, filename, mimeType string, content []byte, isCheck bool, uploadedBy *string) (*domain.Document, error) {
	if len(content) == 0 {
		return nil, fmt.Errorf("empty upload")
	}
	if !strings.EqualFold(mimeType, "application/pdf") || !bytes.HasPrefix(content, []byte("%PDF")) {
		return nil, ErrNotPDF
	}

	if filename == "" {
		filename = "document.pdf"
	}
	blobName := fmt.Sprintf("%d_%s", time.Now().UnixMilli(), unsafeNameChars.ReplaceAllString(filename, "_"))

	url, err := s.blobs.Put(ctx, blobName, content, mimeType)
	if err != nil {
		return nil, fmt.Errorf("storing content: %w", err)
	}

	doc := &domain.Document{
		Filename:   filename,
		MimeType:   "application/pdf",
		SizeBytes:  int64(len(content)),
		StorageURL: url,
		BlobName:   blobName,
		IsCheck:    isCheck,
		UploadedBy: uploadedBy,
	}
	if err := s.repo.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("saving metadata: %w", err)
	}
	return doc, nil
}

// Get returns one document's metadata.
func (s *Service) Get(ctx context.Context, id string) (*domain.Document, error) {
	return s.repo.Get(ctx, id)
}

// List returns all documents, newest first.
func (s *Service) List(ctx context.Context) ([]domain.Document, error) {
	return s.repo.List(ctx)
}

// Content returns a document's metadata together with its stored bytes.
func (s *Service) Content(ctx context.Context, id string) (*domain.Document, []byte, error) {
	doc, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	data, err := s.blobs.Get(ctx, doc.BlobName)
	if err != nil {
		return nil, nil, fmt.Errorf("fetching content for %s: %w", id, err)
	}
	return doc, data, nil
}
