package sendjob

import (
	"context"

	"github.com/printmechecks/server/internal/domain"
)

// ResultUpdate carries the fields a provider interaction may change on
// a job. ProviderID is applied set-once: a nil value leaves the column
// alone, and a non-nil value only lands if the job has none yet. Status
// and ProviderResponse always overwrite.
type ResultUpdate struct {
	ProviderID       *string
	Status           string
	ProviderResponse *string
}

// Repository defines the data access contract for send jobs.
type Repository interface {
	// Create inserts a new job and fills in its generated fields.
	Create(ctx context.Context, job *domain.SendJob) error

	// Get returns one job with its check document and attachments
	// hydrated. Returns ErrNotFound if it doesn't exist.
	Get(ctx context.Context, id string) (*domain.SendJob, error)

	// List returns jobs ordered newest first, attachments hydrated.
	List(ctx context.Context) ([]domain.SendJob, error)

	// FindByProviderID returns the job carrying the given provider id.
	// Returns ErrNotFound if no job matches.
	FindByProviderID(ctx context.Context, providerID string) (*domain.SendJob, error)

	// UpdateResult applies a provider interaction outcome to a job.
	UpdateResult(ctx context.Context, id string, upd ResultUpdate) error

	// AddAttachment links a document to a job.
	AddAttachment(ctx context.Context, jobID, documentID string) error
}
