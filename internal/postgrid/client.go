// Package postgrid is the client for the PostGrid letter/check printing
// API. Without configured credentials it runs in simulation mode:
// submissions synthesize a fresh providerId and report QUEUED, and
// status queries report DELIVERED, so the whole send-job lifecycle can
// be exercised locally with no live integration.
package postgrid

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/printmechecks/server/internal/config"
	"github.com/printmechecks/server/internal/pkg/httpretry"
)

// Client talks to the PostGrid API.
type Client struct {
	apiKey      string
	apiURL      string
	supportsRaw bool
	httpClient  httpretry.HTTPDoer
}

// NewClient creates a PostGrid client from configuration.
func NewClient(cfg config.PostGridConfig) *Client {
	return &Client{
		apiKey:      cfg.APIKey,
		apiURL:      strings.TrimSuffix(cfg.APIURL, "/"),
		supportsRaw: cfg.SupportsRaw,
		httpClient: httpretry.NewRetryClient(&http.Client{
			Timeout: cfg.Timeout(),
		}, 3),
	}
}

// Simulated reports whether the client has no live credentials and will
// synthesize responses.
func (c *Client) Simulated() bool {
	return c.apiKey == "" || c.apiURL == ""
}

// ResolveMode maps auto to the account's effective payload mode. Any
// other mode passes through unchanged.
func (c *Client) ResolveMode(mode Mode) Mode {
	if mode != ModeAuto {
		return mode
	}
	if c.supportsRaw {
		return ModeRaw
	}
	return ModePDF
}

func simulatedID() string {
	return "postgrid_" + gonanoid.Must(21)
}

// Submit sends a job to PostGrid in the given mode and returns the
// provider's correlation id and reported status.
func (c *Client) Submit(ctx context.Context, req SubmitRequest, mode Mode) (*Result, error) {
	effective := c.ResolveMode(mode)

	if c.Simulated() {
		return &Result{
			ProviderID: simulatedID(),
			Status:     "QUEUED",
			Simulated:  true,
			Mode:       effective,
			JobID:      req.JobID,
		}, nil
	}

	var payload submitPayload
	var path string
	if effective == ModeRaw {
		path = "/raw/send"
		payload = submitPayload{
			Recipient:   req.Recipient,
			CheckData:   req.CheckData,
			Attachments: attachmentRefs(req),
			Metadata:    metadata{JobID: req.JobID, Mode: ModeRaw},
		}
	} else {
		path = "/send"
		payload = submitPayload{
			Recipient: req.Recipient,
			Files:     req.DocumentIDs,
			Metadata:  metadata{JobID: req.JobID, Mode: ModePDF},
		}
	}

	raw, err := c.doRequest(ctx, http.MethodPost, path, payload)
	if err != nil {
		return nil, err
	}

	var resp submitResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("parsing submit response: %w", err)
	}

	providerID := resp.ID
	if providerID == "" {
		providerID = resp.JobID
	}
	if providerID == "" {
		providerID = simulatedID()
	}
	status := resp.Status
	if status == "" {
		status = "SUBMITTED"
	}

	return &Result{
		ProviderID: providerID,
		Status:     status,
		Mode:       effective,
		Raw:        raw,
	}, nil
}

// QueryStatus fetches the current delivery status for a previously
// submitted job.
func (c *Client) QueryStatus(ctx context.Context, providerID string) (*Result, error) {
	if c.Simulated() {
		// Idealized success path for local testing
		return &Result{
			ProviderID: providerID,
			Status:     "DELIVERED",
			Simulated:  true,
		}, nil
	}

	path := "/status/" + url.PathEscape(providerID)
	raw, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var resp submitResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("parsing status response: %w", err)
	}

	status := resp.Status
	if status == "" {
		status = "UNKNOWN"
	}

	return &Result{
		ProviderID: providerID,
		Status:     status,
		Raw:        raw,
	}, nil
}

// doRequest makes an HTTP request to the PostGrid API and returns the
// raw response body.
func (c *Client) doRequest(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.apiURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("postgrid API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	return respBody, nil
}

func attachmentRefs(req SubmitRequest) []string {
	if len(req.AttachmentDocumentIDs) > 0 {
		return req.AttachmentDocumentIDs
	}
	return req.DocumentIDs
}
