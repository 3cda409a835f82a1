package document

import (
	"context"

	"github.com/printmechecks/server/internal/domain"
)

// Repository defines the data access contract for document metadata.
type Repository interface {
	// Create inserts a new document record and fills in its generated
	// fields (ID, timestamps).
	Create(ctx context.Context, d *domain.Document) error

	// Get returns one document by id. Returns ErrNotFound if it doesn't exist.
	Get(ctx context.Context, id string) (*domain.Document, error)

	// List returns documents ordered newest first.
	List(ctx context.Context) ([]domain.Document, error)
}
