// Package source opens cohort source files from local disk or object storage.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dtroode/cohort-migrator/internal/model"
)

// ObjectScheme prefixes source identifiers stored in object storage.
const ObjectScheme = "minio://"

// ErrStorageUnavailable is returned for object sources when no storage is configured.
var ErrStorageUnavailable = errors.New("object storage is not configured")

// Opener resolves a source identifier into a reader.
type Opener struct {
	storage model.Storage
}

// NewOpener creates an Opener. storage may be nil, in which case only local
// paths can be opened.
func NewOpener(storage model.Storage) *Opener {
	return &Opener{storage: storage}
}

// Open returns the content of src. The caller must close it.
func (o *Opener) Open(ctx context.Context, src string) (io.ReadCloser, error) {
	if src == "" {
		return nil, errors.New("cohort source is not set")
	}

	if key, ok := strings.CutPrefix(src, ObjectScheme); ok {
		if o.storage == nil {
			return nil, fmt.Errorf("%w: %s", ErrStorageUnavailable, src)
		}
		rc, err := o.storage.Download(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("failed to open cohort source %s: %w", src, err)
		}
		return rc, nil
	}

	f, err := os.Open(src)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("cohort source %s: %w", src, model.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to open cohort source %s: %w", src, err)
	}
	return f, nil
}
