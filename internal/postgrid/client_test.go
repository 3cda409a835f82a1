package postgrid

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/printmechecks/server/internal/config"
)

func newTestClient(server *httptest.Server, supportsRaw bool) *Client {
	return &Client{
		apiKey:      "test-api-key",
		apiURL:      server.URL,
		supportsRaw: supportsRaw,
		httpClient:  &http.Client{Timeout: 5 * time.Second},
	}
}

func TestNewClient(t *testing.T) {
	client := NewClient(config.PostGridConfig{
		APIKey:         "k",
		APIURL:         "https://api.postgrid.example/",
		TimeoutSeconds: 20,
	})

	require.NotNil(t, client)
	assert.Equal(t, "k", client.apiKey)
	// Trailing slash is trimmed so path joins stay clean
	assert.Equal(t, "https://api.postgrid.example", client.apiURL)
	assert.False(t, client.Simulated())
}

func TestResolveMode(t *testing.T) {
	withRaw := &Client{supportsRaw: true}
	withoutRaw := &Client{supportsRaw: false}

	assert.Equal(t, ModeRaw, withRaw.ResolveMode(ModeAuto))
	assert.Equal(t, ModePDF, withoutRaw.ResolveMode(ModeAuto))
	assert.Equal(t, ModePDF, withRaw.ResolveMode(ModePDF))
	assert.Equal(t, ModeRaw, withoutRaw.ResolveMode(ModeRaw))
}

func TestSubmitSimulated(t *testing.T) {
	client := NewClient(config.PostGridConfig{SendMode: "auto", SupportsRaw: true, TimeoutSeconds: 20})
	require.True(t, client.Simulated())

	res, err := client.Submit(context.Background(), SubmitRequest{JobID: "job-1"}, ModeAuto)
	require.NoError(t, err)

	assert.True(t, res.Simulated)
	assert.Equal(t, "QUEUED", res.Status)
	assert.Equal(t, ModeRaw, res.Mode)
	assert.Equal(t, "job-1", res.JobID)
	assert.True(t, strings.HasPrefix(res.ProviderID, "postgrid_"))

	// Simulated provider ids are unique across calls
	res2, err := client.Submit(context.Background(), SubmitRequest{JobID: "job-2"}, ModeAuto)
	require.NoError(t, err)
	assert.NotEqual(t, res.ProviderID, res2.ProviderID)
}

func TestSubmitRawMode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/raw/send", r.URL.Path)
		assert.Equal(t, "Bearer test-api-key", r.Header.Get("Authorization"))

		var payload map[string]json.RawMessage
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Contains(t, payload, "checkData")

		json.NewEncoder(w).Encode(map[string]string{"id": "pg_abc123", "status": "QUEUED"})
	}))
	defer server.Close()

	client := newTestClient(server, true)
	res, err := client.Submit(context.Background(), SubmitRequest{
		JobID:     "job-9",
		CheckData: json.RawMessage(`{"amount":100}`),
	}, ModeAuto)
	require.NoError(t, err)

	assert.Equal(t, "pg_abc123", res.ProviderID)
	assert.Equal(t, "QUEUED", res.Status)
	assert.Equal(t, ModeRaw, res.Mode)
	assert.False(t, res.Simulated)
	assert.NotEmpty(t, res.Raw)
}

func TestSubmitPDFModeDefaults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/send", r.URL.Path)
		// No id and no status in the response: client fills both in
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := newTestClient(server, false)
	res, err := client.Submit(context.Background(), SubmitRequest{
		JobID:       "job-2",
		DocumentIDs: []string{"doc-1", "doc-2"},
	}, ModePDF)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(res.ProviderID, "postgrid_"))
	assert.Equal(t, "SUBMITTED", res.Status)
	assert.Equal(t, ModePDF, res.Mode)
}

func TestSubmitProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"message":"invalid api key"}`))
	}))
	defer server.Close()

	client := newTestClient(server, false)
	_, err := client.Submit(context.Background(), SubmitRequest{JobID: "job-3"}, ModePDF)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 403")
}

func TestQueryStatusSimulated(t *testing.T) {
	client := NewClient(config.PostGridConfig{TimeoutSeconds: 10})

	res, err := client.QueryStatus(context.Background(), "postgrid_xyz")
	require.NoError(t, err)
	assert.Equal(t, "DELIVERED", res.Status)
	assert.Equal(t, "postgrid_xyz", res.ProviderID)
	assert.True(t, res.Simulated)

	// Idempotent: repeated queries report the same terminal status
	res2, err := client.QueryStatus(context.Background(), "postgrid_xyz")
	require.NoError(t, err)
	assert.Equal(t, res.Status, res2.Status)
}

func TestQueryStatusLive(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/status/pg_42", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]string{"status": "IN_TRANSIT"})
	}))
	defer server.Close()

	client := newTestClient(server, false)
	res, err := client.QueryStatus(context.Background(), "pg_42")
	require.NoError(t, err)

	assert.Equal(t, "IN_TRANSIT", res.Status)
	assert.Equal(t, "pg_42", res.ProviderID)
	assert.False(t, res.Simulated)
}
