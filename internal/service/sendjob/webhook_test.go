package sendjob

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/printmechecks/server/internal/domain"
)

func sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// seedJob creates a job carrying the given provider id.
func seedJob(t *testing.T, f *fixture, providerID string) *domain.SendJob {
	t.Helper()
	job := &domain.SendJob{Method: domain.MethodPostgrid, Status: domain.StatusQueued}
	if err := f.repo.Create(context.Background(), job); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := f.repo.UpdateResult(context.Background(), job.ID, ResultUpdate{ProviderID: &providerID, Status: domain.StatusQueued}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return job
}

func TestHandleWebhook_UpdatesJob(t *testing.T) {
	f := newFixture("auto", "topsecret")
	job := seedJob(t, f, "pg_wh1")

	body := []byte(`{"id":"pg_wh1","status":"DELIVERED","trackingNumber":"TN-1"}`)
	updated, err := f.svc.HandleWebhook(context.Background(), body, sign("topsecret", body))
	if err != nil {
		t.Fatalf("HandleWebhook: %v", err)
	}

	if updated.ID != job.ID {
		t.Errorf("job id = %s, want %s", updated.ID, job.ID)
	}
	if updated.Status != domain.StatusDelivered {
		t.Errorf("status = %s, want DELIVERED", updated.Status)
	}
	// Full payload stored verbatim
	if updated.ProviderResponse == nil || *updated.ProviderResponse != string(body) {
		t.Error("expected raw payload as provider response")
	}
}

func TestHandleWebhook_SignatureRequired(t *testing.T) {
	f := newFixture("auto", "topsecret")
	seedJob(t, f, "pg_wh2")

	body := []byte(`{"id":"pg_wh2","status":"DELIVERED"}`)

	_, err := f.svc.HandleWebhook(context.Background(), body, "")
	if !errors.Is(err, ErrMissingSignature) {
		t.Errorf("err = %v, want ErrMissingSignature", err)
	}

	_, err = f.svc.HandleWebhook(context.Background(), body, sign("wrongsecret", body))
	if !errors.Is(err, ErrInvalidSignature) {
		t.Errorf("err = %v, want ErrInvalidSignature", err)
	}

	// Tampered body fails against a signature of the original
	_, err = f.svc.HandleWebhook(context.Background(), []byte(`{"id":"pg_wh2","status":"FAILED"}`), sign("topsecret", body))
	if !errors.Is(err, ErrInvalidSignature) {
		t.Errorf("err = %v, want ErrInvalidSignature", err)
	}
}

func TestHandleWebhook_NoSecretSkipsVerification(t *testing.T) {
	f := newFixture("auto", "")
	seedJob(t, f, "pg_wh3")

	body := []byte(`{"id":"pg_wh3","status":"IN_TRANSIT"}`)
	updated, err := f.svc.HandleWebhook(context.Background(), body, "")
	if err != nil {
		t.Fatalf("HandleWebhook: %v", err)
	}
	if updated.Status != "IN_TRANSIT" {
		t.Errorf("status = %s", updated.Status)
	}
}

func TestHandleWebhook_InvalidJSON(t *testing.T) {
	f := newFixture("auto", "")

	_, err := f.svc.HandleWebhook(context.Background(), []byte("not json"), "")
	if !errors.Is(err, ErrInvalidJSON) {
		t.Errorf("err = %v, want ErrInvalidJSON", err)
	}
}

func TestHandleWebhook_ProviderIDFallbacks(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"id field", `{"id":"pg_fb","status":"DELIVERED"}`},
		{"jobId field", `{"jobId":"pg_fb","status":"DELIVERED"}`},
		{"providerId field", `{"providerId":"pg_fb","status":"DELIVERED"}`},
	}

	for _, tc := range cases {
		f := newFixture("auto", "")
		seedJob(t, f, "pg_fb")

		updated, err := f.svc.HandleWebhook(context.Background(), []byte(tc.body), "")
		if err != nil {
			t.Errorf("%s: %v", tc.name, err)
			continue
		}
		if updated.Status != domain.StatusDelivered {
			t.Errorf("%s: status = %s", tc.name, updated.Status)
		}
	}
}

func TestHandleWebhook_MissingProviderID(t *testing.T) {
	f := newFixture("auto", "")

	_, err := f.svc.HandleWebhook(context.Background(), []byte(`{"status":"DELIVERED"}`), "")
	if !errors.Is(err, ErrMissingProviderID) {
		t.Errorf("err = %v, want ErrMissingProviderID", err)
	}
}

func TestHandleWebhook_UnknownProviderID(t *testing.T) {
	f := newFixture("auto", "")

	_, err := f.svc.HandleWebhook(context.Background(), []byte(`{"id":"pg_ghost","status":"DELIVERED"}`), "")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestHandleWebhook_StateFallbackAndCurrent(t *testing.T) {
	f := newFixture("auto", "")
	seedJob(t, f, "pg_state")

	// state is read when status is absent
	updated, err := f.svc.HandleWebhook(context.Background(), []byte(`{"id":"pg_state","state":"RETURNED"}`), "")
	if err != nil {
		t.Fatalf("HandleWebhook: %v", err)
	}
	if updated.Status != "RETURNED" {
		t.Errorf("status = %s, want RETURNED", updated.Status)
	}

	// Neither field keeps the current status but still stores the payload
	body := []byte(`{"id":"pg_state","note":"scanned"}`)
	updated, err = f.svc.HandleWebhook(context.Background(), body, "")
	if err != nil {
		t.Fatalf("HandleWebhook: %v", err)
	}
	if updated.Status != "RETURNED" {
		t.Errorf("status = %s, want RETURNED", updated.Status)
	}
	if updated.ProviderResponse == nil || *updated.ProviderResponse != string(body) {
		t.Error("expected payload stored even without a status")
	}
}
