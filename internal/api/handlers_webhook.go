package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/printmechecks/server/internal/pkg/httputil"
	"github.com/printmechecks/server/internal/service/sendjob"
)

// webhookMaxBytes caps provider callback bodies. Far above anything a
// status update needs.
const webhookMaxBytes = 5 * 1024 * 1024

// PostGridWebhook ingests provider status callbacks. The signature
// travels in the postgrid-signature header (x-postgrid-signature also
// accepted) as hex HMAC-SHA256 over the raw body.
func (h *Handlers) PostGridWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, webhookMaxBytes))
	if err != nil {
		httputil.BadRequest(w, "unreadable_body")
		return
	}

	signature := r.Header.Get("postgrid-signature")
	if signature == "" {
		signature = r.Header.Get("x-postgrid-signature")
	}

	_, err = h.jobs.HandleWebhook(r.Context(), body, signature)
	switch {
	case errors.Is(err, sendjob.ErrMissingSignature):
		httputil.Unauthorized(w, "missing_signature")
		return
	case errors.Is(err, sendjob.ErrInvalidSignature):
		httputil.Unauthorized(w, "invalid_signature")
		return
	case errors.Is(err, sendjob.ErrInvalidJSON):
		httputil.BadRequest(w, "invalid_json")
		return
	case errors.Is(err, sendjob.ErrMissingProviderID):
		httputil.BadRequest(w, "missing_provider_id")
		return
	case errors.Is(err, sendjob.ErrNotFound):
		httputil.NotFound(w, "job_not_found")
		return
	case err != nil:
		httputil.InternalError(w, "webhook_failed", err)
		return
	}

	httputil.OK(w, map[string]any{"ok": true})
}
