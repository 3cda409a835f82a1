package blob

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore writes document content to a directory on disk. It exists
// so development environments need no S3 bucket.
type LocalStore struct {
	dir string
}

// NewLocalStore creates the directory if needed and returns the store.
func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating blob dir %s: %w", dir, err)
	}
	return &LocalStore{dir: dir}, nil
}

func (s *LocalStore) path(name string) (string, error) {
	// Names are generated by this service, but reject traversal anyway.
	if strings.Contains(name, "..") || strings.ContainsRune(name, os.PathSeparator) {
		return "", fmt.Errorf("invalid blob name %q", name)
	}
	return filepath.Join(s.dir, name), nil
}

// Put writes data to <dir>/<name> and returns a file:// reference.
func (s *LocalStore) Put(_ context.Context, name string, data []byte, _ string) (string, error) {
	p, err := s.path(name)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return "", fmt.Errorf("writing blob %s: %w", name, err)
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		abs = p
	}
	return "file://" + abs, nil
}

// Get reads the content stored under name.
func (s *LocalStore) Get(_ context.Context, name string) ([]byte, error) {
	p, err := s.path(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("reading blob %s: %w", name, err)
	}
	return data, nil
}
