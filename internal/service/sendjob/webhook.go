package sendjob

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log"

	"github.com/printmechecks/server/internal/domain"
)

// webhookPayload is the subset of a provider callback we read. The full
// raw body is stored as the job's provider response regardless.
type webhookPayload struct {
	ID         string `json:"id"`
	JobID      string `json:"jobId"`
	ProviderID string `json:"providerId"`
	Status     string `json:"status"`
	State      string `json:"state"`
}

// HandleWebhook reconciles a provider callback into the matching job.
// The signature is HMAC-SHA256 over the raw body, hex encoded. With no
// secret configured, verification is skipped entirely and every payload
// is accepted.
func (s *Service) HandleWebhook(ctx context.Context, body []byte, signature string) (*domain.SendJob, error) {
	if s.webhookSecret != "" {
		if signature == "" {
			return nil, ErrMissingSignature
		}
		if !verifySignature(s.webhookSecret, body, signature) {
			return nil, ErrInvalidSignature
		}
	}

	var payload webhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, ErrInvalidJSON
	}

	providerID := payload.ID
	if providerID == "" {
		providerID = payload.JobID
	}
	if providerID == "" {
		providerID = payload.ProviderID
	}
	if providerID == "" {
		return nil, ErrMissingProviderID
	}

	job, err := s.repo.FindByProviderID(ctx, providerID)
	if err != nil {
		return nil, err
	}

	status := payload.Status
	if status == "" {
		status = payload.State
	}
	if status == "" {
		status = job.Status
	}

	raw := string(body)
	if err := s.repo.UpdateResult(ctx, job.ID, ResultUpdate{Status: status, ProviderResponse: &raw}); err != nil {
		return nil, err
	}
	log.Printf("[sendjob] Webhook updated job %s (provider %s, status %s)", job.ID, providerID, status)

	return s.repo.Get(ctx, job.ID)
}

func verifySignature(secret string, body []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
