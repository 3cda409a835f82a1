package sendjob

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/printmechecks/server/internal/domain"
	"github.com/printmechecks/server/internal/pkg/logger"
	"github.com/printmechecks/server/internal/postgrid"
	"github.com/printmechecks/server/internal/sesmail"
)

// DocumentFinder resolves document ids to metadata records. Satisfied by
// the document service.
type DocumentFinder interface {
	Get(ctx context.Context, id string) (*domain.Document, error)
}

// BlobStore fetches stored document content for email attachments.
type BlobStore interface {
	Get(ctx context.Context, name string) ([]byte, error)
}

// PostalClient is the PostGrid adapter contract.
type PostalClient interface {
	Submit(ctx context.Context, req postgrid.SubmitRequest, mode postgrid.Mode) (*postgrid.Result, error)
	QueryStatus(ctx context.Context, providerID string) (*postgrid.Result, error)
}

// EmailSender is the SES adapter contract.
type EmailSender interface {
	Send(ctx context.Context, msg sesmail.Message) (*sesmail.Result, error)
}

// Service implements send job business logic. It is safe for concurrent
// use; concurrent updates to one job are resolved last-writer-wins with
// no locking.
type Service struct {
	repo          Repository
	docs          DocumentFinder
	blobs         BlobStore
	postal        PostalClient
	email         EmailSender
	sendMode      postgrid.Mode
	webhookSecret string
}

// NewService creates a send job service wired to both delivery adapters.
func NewService(repo Repository, docs DocumentFinder, blobs BlobStore, postal PostalClient, email EmailSender, sendMode postgrid.Mode, webhookSecret string) *Service {
	if sendMode == "" {
		sendMode = postgrid.ModeAuto
	}
	return &Service{
		repo:          repo,
		docs:          docs,
		blobs:         blobs,
		postal:        postal,
		email:         email,
		sendMode:      sendMode,
		webhookSecret: webhookSecret,
	}
}

// CreateInput is a create request after JSON decoding. Recipient and
// CheckData stay raw; their shape belongs to the provider.
type CreateInput struct {
	Method                domain.SendMethod `json:"method"`
	CheckDocumentID       *string           `json:"checkDocumentId"`
	Recipient             json.RawMessage   `json:"recipient"`
	CheckData             json.RawMessage   `json:"checkData"`
	DocumentIDs           []string          `json:"documentIds"`
	AttachmentDocumentIDs []string          `json:"attachmentDocumentIds"`
	EmailOptions          EmailOptions      `json:"emailOptions"`
}

// EmailOptions customizes the email envelope. Postal jobs ignore it.
type EmailOptions struct {
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// recipientFields is the subset of the recipient JSON the email path
// reads. Postal recipients pass through untouched.
type recipientFields struct {
	Email   string `json:"email"`
	Subject string `json:"subject"`
}

// Create validates the request, records the job, links its attachments,
// and dispatches it to the configured adapter. Adapter failure does not
// fail creation: the job is kept with status FAILED and the error
// captured in its provider response. Returns the hydrated job plus the
// ids of requested attachments that did not resolve to a document.
func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.SendJob, []string, error) {
	if in.Method != domain.MethodPostgrid && in.Method != domain.MethodEmail {
		return nil, nil, validationErr("method must be POSTGRID or EMAIL")
	}

	var recipient recipientFields
	if len(in.Recipient) > 0 {
		// Tolerate unparseable recipients for postal jobs; the payload
		// is opaque to us there.
		_ = json.Unmarshal(in.Recipient, &recipient)
	}

	switch in.Method {
	case domain.MethodPostgrid:
		if err := s.validatePostal(in); err != nil {
			return nil, nil, err
		}
	case domain.MethodEmail:
		if recipient.Email == "" {
			return nil, nil, validationErr("recipient.email required for EMAIL method")
		}
	}

	if in.CheckDocumentID != nil {
		if _, err := s.docs.Get(ctx, *in.CheckDocumentID); err != nil {
			return nil, nil, validationErr("invalid_checkDocumentId")
		}
	}

	job := &domain.SendJob{
		Method:          in.Method,
		CheckDocumentID: in.CheckDocumentID,
		Status:          domain.StatusPending,
	}
	if len(in.Recipient) > 0 {
		raw := string(in.Recipient)
		job.RecipientJSON = &raw
	}
	if err := s.repo.Create(ctx, job); err != nil {
		return nil, nil, fmt.Errorf("creating job: %w", err)
	}

	attached, skipped := s.linkAttachments(ctx, job, in)

	switch in.Method {
	case domain.MethodEmail:
		s.dispatchEmail(ctx, job, recipient, in.EmailOptions, attached)
	case domain.MethodPostgrid:
		s.dispatchPostal(ctx, job, in, attached)
	}

	hydrated, err := s.repo.Get(ctx, job.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("reloading job %s: %w", job.ID, err)
	}
	return hydrated, skipped, nil
}

// validatePostal enforces the payload requirements of the configured
// submission mode.
func (s *Service) validatePostal(in CreateInput) error {
	switch s.sendMode {
	case postgrid.ModePDF:
		if in.CheckDocumentID == nil {
			return validationErr("checkDocumentId required in pdf mode")
		}
	case postgrid.ModeRaw:
		if len(in.CheckData) == 0 {
			return validationErr("checkData required in raw mode")
		}
	default:
		if in.CheckDocumentID == nil && len(in.CheckData) == 0 {
			return validationErr("need checkDocumentId or checkData in auto mode")
		}
	}
	return nil
}

// linkAttachments resolves the requested attachment ids and links the
// ones that exist. Ids that resolve to nothing are skipped, not fatal;
// the caller reports them back to the client.
func (s *Service) linkAttachments(ctx context.Context, job *domain.SendJob, in CreateInput) ([]*domain.Document, []string) {
	ids := in.DocumentIDs
	if len(ids) == 0 {
		ids = in.AttachmentDocumentIDs
	}

	var attached []*domain.Document
	skipped := []string{}
	seen := map[string]bool{}
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		if in.CheckDocumentID != nil && id == *in.CheckDocumentID {
			continue
		}
		doc, err := s.docs.Get(ctx, id)
		if err != nil {
			log.Printf("[sendjob] Skipping attachment %s for job %s: %v", id, job.ID, err)
			skipped = append(skipped, id)
			continue
		}
		if err := s.repo.AddAttachment(ctx, job.ID, id); err != nil {
			log.Printf("[sendjob] Failed to link attachment %s to job %s: %v", id, job.ID, err)
			skipped = append(skipped, id)
			continue
		}
		attached = append(attached, doc)
	}
	return attached, skipped
}

// dispatchEmail sends the job's documents as email attachments. The
// check document, when present, rides along first.
func (s *Service) dispatchEmail(ctx context.Context, job *domain.SendJob, recipient recipientFields, opts EmailOptions, attached []*domain.Document) {
	docs := attached
	if job.CheckDocumentID != nil {
		if check, err := s.docs.Get(ctx, *job.CheckDocumentID); err == nil {
			docs = append([]*domain.Document{check}, attached...)
		}
	}

	msg := sesmail.Message{
		To:        recipient.Email,
		Subject:   opts.Subject,
		PlainText: opts.Message,
	}
	if msg.Subject == "" {
		msg.Subject = recipient.Subject
	}
	if msg.Subject == "" {
		msg.Subject = "Check Delivery"
	}
	if msg.PlainText == "" {
		msg.PlainText = "Attached documents."
	}
	for _, doc := range docs {
		content, err := s.blobs.Get(ctx, doc.BlobName)
		if err != nil {
			log.Printf("[sendjob] Skipping attachment content %s for job %s: %v", doc.ID, job.ID, err)
			continue
		}
		msg.Attachments = append(msg.Attachments, sesmail.Attachment{
			Name:        doc.Filename,
			ContentType: doc.MimeType,
			Content:     content,
		})
	}

	res, err := s.email.Send(ctx, msg)
	if err != nil {
		log.Printf("[sendjob] Email dispatch failed for job %s: %v", job.ID, err)
		s.recordFailure(ctx, job.ID, err)
		return
	}

	status := res.Status
	if status == "" {
		status = domain.StatusSubmitted
	}
	upd := ResultUpdate{Status: status, ProviderResponse: jsonString(res)}
	if res.MessageID != "" {
		upd.ProviderID = &res.MessageID
	}
	if err := s.repo.UpdateResult(ctx, job.ID, upd); err != nil {
		log.Printf("[sendjob] Failed to record email result for job %s: %v", job.ID, err)
	}
	log.Printf("[sendjob] Job %s emailed to %s (status %s)", job.ID, logger.RedactEmail(recipient.Email), status)
}

// dispatchPostal submits the job to PostGrid.
func (s *Service) dispatchPostal(ctx context.Context, job *domain.SendJob, in CreateInput, attached []*domain.Document) {
	attachedIDs := make([]string, 0, len(attached))
	for _, doc := range attached {
		attachedIDs = append(attachedIDs, doc.ID)
	}
	fileIDs := attachedIDs
	if job.CheckDocumentID != nil {
		fileIDs = append([]string{*job.CheckDocumentID}, attachedIDs...)
	}

	res, err := s.postal.Submit(ctx, postgrid.SubmitRequest{
		JobID:                 job.ID,
		Recipient:             in.Recipient,
		CheckData:             in.CheckData,
		AttachmentDocumentIDs: attachedIDs,
		DocumentIDs:           fileIDs,
	}, s.sendMode)
	if err != nil {
		log.Printf("[sendjob] Postal dispatch failed for job %s: %v", job.ID, err)
		s.recordFailure(ctx, job.ID, err)
		return
	}

	status := res.Status
	if status == "" {
		// A silent accept leaves the job awaiting a webhook.
		status = domain.StatusPending
	}
	upd := ResultUpdate{Status: status, ProviderResponse: jsonString(res)}
	if res.ProviderID != "" {
		upd.ProviderID = &res.ProviderID
	}
	if err := s.repo.UpdateResult(ctx, job.ID, upd); err != nil {
		log.Printf("[sendjob] Failed to record postal result for job %s: %v", job.ID, err)
	}
	log.Printf("[sendjob] Job %s submitted to provider as %s (status %s)", job.ID, res.ProviderID, status)
}

// recordFailure keeps the job with the adapter error captured in its
// provider response. The create call itself still succeeds.
func (s *Service) recordFailure(ctx context.Context, jobID string, dispatchErr error) {
	resp := jsonString(map[string]string{"error": dispatchErr.Error()})
	if err := s.repo.UpdateResult(ctx, jobID, ResultUpdate{Status: domain.StatusFailed, ProviderResponse: resp}); err != nil {
		log.Printf("[sendjob] Failed to record failure for job %s: %v", jobID, err)
	}
}

// Get returns one job with relations hydrated.
func (s *Service) Get(ctx context.Context, id string) (*domain.SendJob, error) {
	return s.repo.Get(ctx, id)
}

// List returns all jobs, newest first.
func (s *Service) List(ctx context.Context) ([]domain.SendJob, error) {
	return s.repo.List(ctx)
}

// Refresh queries the postal provider for a job's current status and
// overwrites the stored one with the answer. A provider failure is
// recorded in the job's provider response without changing its status.
// Jobs that never received a provider id have nothing to query.
func (s *Service) Refresh(ctx context.Context, id string) (*domain.SendJob, error) {
	job, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if job.ProviderID == nil || *job.ProviderID == "" {
		return nil, ErrNoProviderID
	}

	var resp *string
	status := job.Status
	res, err := s.postal.QueryStatus(ctx, *job.ProviderID)
	if err != nil {
		// Provider errors are captured into the stored response, not
		// surfaced; the job keeps its last known status.
		log.Printf("[sendjob] Status query failed for job %s: %v", id, err)
		resp = jsonString(map[string]string{"error": err.Error()})
	} else {
		if res.Status != "" {
			status = res.Status
		}
		resp = jsonString(res)
	}
	if err := s.repo.UpdateResult(ctx, id, ResultUpdate{Status: status, ProviderResponse: resp}); err != nil {
		return nil, fmt.Errorf("recording refreshed status for %s: %w", id, err)
	}
	return s.repo.Get(ctx, id)
}

// jsonString serializes v for storage in a provider response column.
func jsonString(v any) *string {
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	s := string(data)
	return &s
}
