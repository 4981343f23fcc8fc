package model

import (
	"context"
	"io"
)

// Storage holds cohort source files. Keys are relative to the configured
// bucket and Download of a missing key returns ErrNotFound.
type Storage interface {
	Upload(ctx context.Context, key string, reader io.Reader) error
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	Exists(ctx context.Context, key string) (bool, error)
}

// AuditArchive keeps the full report payload of a run outside the database.
type AuditArchive interface {
	Archive(ctx context.Context, entry AuditEntry) error
}
