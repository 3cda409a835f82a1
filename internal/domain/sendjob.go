package domain

import "time"

// SendMethod selects the delivery channel for a send job.
type SendMethod string

const (
	// MethodPostgrid delivers printed documents through the PostGrid
	// letter/check printing API.
	MethodPostgrid SendMethod = "POSTGRID"
	// MethodEmail delivers documents as email attachments.
	MethodEmail SendMethod = "EMAIL"
)

// Well-known send job statuses. The status domain is deliberately open:
// providers report their own vocabulary through webhooks and status
// queries, and whatever they report is stored verbatim. These constants
// name the values this service sets itself or relies on in tests.
const (
	StatusPending   = "PENDING"
	StatusQueued    = "QUEUED"
	StatusSubmitted = "SUBMITTED"
	StatusDelivered = "DELIVERED"
	StatusFailed    = "FAILED"
)

// SendJob is one delivery attempt of one or more documents to one
// recipient, postal or email. Method is fixed at creation; ProviderID is
// set at most once, when the provider first accepts the job; Status and
// ProviderResponse are overwritten by every adapter interaction
// (submit, webhook, manual refresh); last writer wins.
type SendJob struct {
	ID               string     `json:"id" db:"id"`
	Method           SendMethod `json:"method" db:"method"`
	CheckDocumentID  *string    `json:"checkDocumentId" db:"check_document_id"`
	Status           string     `json:"status" db:"status"`
	RecipientJSON    *string    `json:"recipientJson" db:"recipient_json"`
	ProviderID       *string    `json:"providerId" db:"provider_id"`
	ProviderResponse *string    `json:"providerResponseJson" db:"provider_response_json"`
	CreatedAt        time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time  `json:"updatedAt" db:"updated_at"`

	// Hydrated relations (populated by repository Get/List)
	CheckDocument *Document           `json:"checkDocument,omitempty"`
	Attachments   []SendJobAttachment `json:"attachments"`
}

// SendJobAttachment links one send job to one attached document. Join
// rows exist only as long as their parent job does.
type SendJobAttachment struct {
	ID         string    `json:"id" db:"id"`
	SendJobID  string    `json:"sendJobId" db:"send_job_id"`
	DocumentID string    `json:"documentId" db:"document_id"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`

	Document *Document `json:"document,omitempty"`
}
