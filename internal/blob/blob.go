// Package blob stores document content bytes under opaque names.
//
// Two implementations exist: an S3-backed store for real deployments and
// a local-directory store used automatically when no bucket is
// configured, so the service runs end to end on a laptop with zero cloud
// credentials.
package blob

import (
	"context"

	"github.com/printmechecks/server/internal/config"
)

// Store is the capability object the rest of the system uses for
// document content. Put returns a location reference (URL) for the
// stored object; Get returns the raw bytes.
type Store interface {
	Put(ctx context.Context, name string, data []byte, contentType string) (string, error)
	Get(ctx context.Context, name string) ([]byte, error)
}

// New selects a store implementation from configuration: S3 when a
// bucket is configured, local directory otherwise.
func New(ctx context.Context, cfg config.BlobConfig) (Store, error) {
	if cfg.S3Bucket != "" {
		return NewS3Store(ctx, cfg)
	}
	return NewLocalStore(cfg.LocalDir)
}
