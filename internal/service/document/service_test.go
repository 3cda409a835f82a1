package document

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/printmechecks/server/internal/domain"
)

// mockRepo is an in-memory repository for testing.
type mockRepo struct {
	mu    sync.RWMutex
	seq   int
	store map[string]*domain.Document
	order []string
}

func newMockRepo() *mockRepo {
	return &mockRepo{store: make(map[string]*domain.Document)}
}

func (m *mockRepo) Create(_ context.Context, d *domain.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	d.ID = fmt.Sprintf("doc-%d", m.seq)
	m.store[d.ID] = d
	m.order = append(m.order, d.ID)
	return nil
}

func (m *mockRepo) Get(_ context.Context, id string) (*domain.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.store[id]
	if !ok {
		return nil, ErrNotFound
	}
	return d, nil
}

func (m *mockRepo) List(_ context.Context) ([]domain.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.Document, 0, len(m.order))
	for i := len(m.order) - 1; i >= 0; i-- {
		out = append(out, *m.store[m.order[i]])
	}
	return out, nil
}

// mockBlobs is an in-memory blob store for testing.
type mockBlobs struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

func newMockBlobs() *mockBlobs {
	return &mockBlobs{blobs: make(map[string][]byte)}
}

func (m *mockBlobs) Put(_ context.Context, name string, data []byte, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[name] = data
	return "mem://" + name, nil
}

func (m *mockBlobs) Get(_ context.Context, name string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.blobs[name]
	if !ok {
		return nil, fmt.Errorf("blob %s not found", name)
	}
	return data, nil
}

var pdfBytes = []byte("%PDF-1.4 test content")

func TestUpload_StoresContentAndMetadata(t *testing.T) {
	blobs := newMockBlobs()
	svc := NewService(newMockRepo(), blobs)
	ctx := context.Background()

	doc, err := svc.Upload(ctx, "check 001.pdf", "application/pdf", pdfBytes, true, nil)
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	if doc.ID == "" {
		t.Error("expected generated document id")
	}
	if doc.SizeBytes != int64(len(pdfBytes)) {
		t.Errorf("size = %d, want %d", doc.SizeBytes, len(pdfBytes))
	}
	if !doc.IsCheck {
		t.Error("expected isCheck to be preserved")
	}
	if strings.Contains(doc.BlobName, " ") {
		t.Errorf("blob name not sanitized: %q", doc.BlobName)
	}
	if !strings.HasSuffix(doc.BlobName, "check_001.pdf") {
		t.Errorf("unexpected blob name: %q", doc.BlobName)
	}
	if doc.StorageURL != "mem://"+doc.BlobName {
		t.Errorf("storage url = %q", doc.StorageURL)
	}

	stored, err := blobs.Get(ctx, doc.BlobName)
	if err != nil {
		t.Fatalf("blob Get: %v", err)
	}
	if string(stored) != string(pdfBytes) {
		t.Error("stored content differs from upload")
	}
}

func TestUpload_RejectsNonPDF(t *testing.T) {
	svc := NewService(newMockRepo(), newMockBlobs())
	ctx := context.Background()

	cases := []struct {
		name     string
		mimeType string
		content  []byte
	}{
		{"wrong mime", "image/png", pdfBytes},
		{"wrong magic", "application/pdf", []byte("not a pdf")},
	}
	for _, tc := range cases {
		_, err := svc.Upload(ctx, "x.pdf", tc.mimeType, tc.content, false, nil)
		if !errors.Is(err, ErrNotPDF) {
			t.Errorf("%s: err = %v, want ErrNotPDF", tc.name, err)
		}
	}
}

func TestUpload_RejectsEmpty(t *testing.T) {
	svc := NewService(newMockRepo(), newMockBlobs())

	_, err := svc.Upload(context.Background(), "x.pdf", "application/pdf", nil, false, nil)
	if err == nil {
		t.Error("expected error for empty upload")
	}
}

func TestUpload_DefaultsFilename(t *testing.T) {
	svc := NewService(newMockRepo(), newMockBlobs())

	doc, err := svc.Upload(context.Background(), "", "application/pdf", pdfBytes, false, nil)
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if doc.Filename != "document.pdf" {
		t.Errorf("filename = %q", doc.Filename)
	}
}

func TestContent_RoundTrip(t *testing.T) {
	svc := NewService(newMockRepo(), newMockBlobs())
	ctx := context.Background()

	doc, err := svc.Upload(ctx, "a.pdf", "application/pdf", pdfBytes, false, nil)
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	got, data, err := svc.Content(ctx, doc.ID)
	if err != nil {
		t.Fatalf("Content: %v", err)
	}
	if got.ID != doc.ID {
		t.Errorf("id = %s, want %s", got.ID, doc.ID)
	}
	if string(data) != string(pdfBytes) {
		t.Error("content differs from upload")
	}
}

func TestContent_NotFound(t *testing.T) {
	svc := NewService(newMockRepo(), newMockBlobs())

	_, _, err := svc.Content(context.Background(), "ghost")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestList_NewestFirst(t *testing.T) {
	svc := NewService(newMockRepo(), newMockBlobs())
	ctx := context.Background()

	first, _ := svc.Upload(ctx, "first.pdf", "application/pdf", pdfBytes, false, nil)
	second, _ := svc.Upload(ctx, "second.pdf", "application/pdf", pdfBytes, false, nil)

	docs, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("len = %d, want 2", len(docs))
	}
	if docs[0].ID != second.ID || docs[1].ID != first.ID {
		t.Error("expected newest-first ordering")
	}
}
