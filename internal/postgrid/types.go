package postgrid

import "encoding/json"

// Mode selects how a submission payload is shaped.
type Mode string

const (
	// ModePDF references uploaded document ids; PostGrid renders the
	// files themselves.
	ModePDF Mode = "pdf"
	// ModeRaw carries structured check data plus attachment references
	// instead of uploaded files.
	ModeRaw Mode = "raw"
	// ModeAuto resolves to raw when the account supports it, pdf
	// otherwise. Resolution happens per call, never cached on a job.
	ModeAuto Mode = "auto"
)

// SubmitRequest is the job payload handed to Submit. Recipient and
// CheckData are opaque JSON captured from the create request.
type SubmitRequest struct {
	JobID                 string
	Recipient             json.RawMessage
	CheckData             json.RawMessage
	AttachmentDocumentIDs []string
	DocumentIDs           []string
}

// Result is the normalized outcome of a submit or status query. It is
// serialized verbatim into the job's provider response, so field names
// match what the original API consumers expect.
type Result struct {
	ProviderID string          `json:"providerId,omitempty"`
	Status     string          `json:"status,omitempty"`
	Mode       Mode            `json:"mode,omitempty"`
	JobID      string          `json:"jobId,omitempty"`
	Simulated  bool            `json:"simulated,omitempty"`
	Raw        json.RawMessage `json:"raw,omitempty"`
	Error      string          `json:"error,omitempty"`
}

// submitPayload is the wire shape for live submissions.
type submitPayload struct {
	Recipient   json.RawMessage `json:"recipient,omitempty"`
	CheckData   json.RawMessage `json:"checkData,omitempty"`
	Files       []string        `json:"files,omitempty"`
	Attachments []string        `json:"attachments,omitempty"`
	Metadata    metadata        `json:"metadata"`
}

type metadata struct {
	JobID string `json:"jobId"`
	Mode  Mode   `json:"mode"`
}

// submitResponse is the subset of the provider's response we read.
type submitResponse struct {
	ID     string `json:"id"`
	JobID  string `json:"jobId"`
	Status string `json:"status"`
}
