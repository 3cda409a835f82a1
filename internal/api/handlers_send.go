package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/printmechecks/server/internal/domain"
	"github.com/printmechecks/server/internal/pkg/httputil"
	"github.com/printmechecks/server/internal/service/sendjob"
)

// sendJobCreated is the create response: the job plus the attachment ids
// that did not resolve to a document.
type sendJobCreated struct {
	*domain.SendJob
	SkippedDocumentIDs []string `json:"skippedDocumentIds"`
}

// CreateSendJob creates and dispatches a send job. Adapter failures do
// not fail the request; the returned job carries FAILED and the error
// in its provider response.
func (h *Handlers) CreateSendJob(w http.ResponseWriter, r *http.Request) {
	var in sendjob.CreateInput
	if !httputil.Decode(w, r, &in) {
		return
	}

	job, skipped, err := h.jobs.Create(r.Context(), in)
	var verr *sendjob.ValidationError
	if errors.As(err, &verr) {
		httputil.BadRequest(w, verr.Code)
		return
	}
	if err != nil {
		httputil.InternalError(w, "create_failed", err)
		return
	}

	httputil.Created(w, sendJobCreated{SendJob: job, SkippedDocumentIDs: skipped})
}

// ListSendJobs returns all jobs, newest first.
func (h *Handlers) ListSendJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.jobs.List(r.Context())
	if err != nil {
		httputil.InternalError(w, "list_failed", err)
		return
	}
	httputil.OK(w, jobs)
}

// GetSendJob returns one job with relations hydrated.
func (h *Handlers) GetSendJob(w http.ResponseWriter, r *http.Request) {
	job, err := h.jobs.Get(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, sendjob.ErrNotFound) {
		httputil.NotFound(w, "not_found")
		return
	}
	if err != nil {
		httputil.InternalError(w, "get_failed", err)
		return
	}
	httputil.OK(w, job)
}

// RefreshSendJob queries the provider for the job's current status and
// returns the updated job.
func (h *Handlers) RefreshSendJob(w http.ResponseWriter, r *http.Request) {
	job, err := h.jobs.Refresh(r.Context(), chi.URLParam(r, "id"))
	switch {
	case errors.Is(err, sendjob.ErrNotFound):
		httputil.NotFound(w, "not_found")
		return
	case errors.Is(err, sendjob.ErrNoProviderID):
		httputil.BadRequest(w, "no_provider_id")
		return
	case err != nil:
		httputil.InternalError(w, "refresh_failed", err)
		return
	}
	httputil.OK(w, job)
}
