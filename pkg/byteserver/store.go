// Package byteserver implements the auxiliary byte-server: an HTTP
// endpoint that exposes large buffer payloads by URI. The core
// references such buffers only by the URI this package hands back; it
// never calls into the NOODLES server runtime.
package byteserver

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned when no buffer exists for a URI.
var ErrNotFound = errors.New("byteserver: buffer not found")

// Store is the pluggable backend that owns buffer bytes. Put is called
// once per buffer (typically when a handler creates a Buffer component
// with URI-addressed bytes); Get must return the exact bytes passed to
// Put for the same key thereafter: a GET returns the exact bytes used to
// compute the buffer's declared size.
type Store interface {
	// Put stores data under key and returns the URI clients should use
	// to retrieve it.
	Put(ctx context.Context, key string, data []byte) (uri string, err error)

	// Get returns the bytes stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete removes the bytes stored under key, if present. Deleting a
	// key that does not exist is not an error.
	Delete(ctx context.Context, key string) error
}

// ReadCloserStore is implemented by stores that can stream bytes instead
// of buffering them fully in memory (e.g. S3Store). Server prefers this
// path when available.
type ReadCloserStore interface {
	Store
	GetReader(ctx context.Context, key string) (io.ReadCloser, int64, error)
}
