package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/printmechecks/server/internal/auth"
	"github.com/printmechecks/server/internal/pkg/httputil"
	"github.com/printmechecks/server/internal/service/document"
)

// UploadDocument accepts a multipart PDF upload in the "file" field.
// The optional "isCheck" field marks the document as a printable check.
func (h *Handlers) UploadDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		httputil.BadRequest(w, "invalid_multipart")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.BadRequest(w, "file field required")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		httputil.BadRequest(w, "unreadable_upload")
		return
	}

	mimeType := header.Header.Get("Content-Type")
	isCheck := r.FormValue("isCheck") == "true" || r.FormValue("isCheck") == "1"

	var uploadedBy *string
	if id := auth.IdentityFrom(r.Context()); id != nil {
		uploadedBy = &id.Subject
	}

	doc, err := h.docs.Upload(r.Context(), header.Filename, mimeType, content, isCheck, uploadedBy)
	if errors.Is(err, document.ErrNotPDF) {
		httputil.BadRequest(w, "only_pdf_supported")
		return
	}
	if err != nil {
		httputil.InternalError(w, "upload_failed", err)
		return
	}

	httputil.Created(w, doc)
}

// ListDocuments returns all document metadata, newest first.
func (h *Handlers) ListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := h.docs.List(r.Context())
	if err != nil {
		httputil.InternalError(w, "list_failed", err)
		return
	}
	httputil.OK(w, docs)
}

// GetDocument returns one document's metadata.
func (h *Handlers) GetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := h.docs.Get(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, document.ErrNotFound) {
		httputil.NotFound(w, "not_found")
		return
	}
	if err != nil {
		httputil.InternalError(w, "get_failed", err)
		return
	}
	httputil.OK(w, doc)
}

// GetDocumentContent streams the stored bytes back with the original
// content type.
func (h *Handlers) GetDocumentContent(w http.ResponseWriter, r *http.Request) {
	doc, data, err := h.docs.Content(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, document.ErrNotFound) {
		httputil.NotFound(w, "not_found")
		return
	}
	if err != nil {
		httputil.InternalError(w, "content_failed", err)
		return
	}

	w.Header().Set("Content-Type", doc.MimeType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", doc.Filename))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
