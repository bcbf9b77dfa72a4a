package storage

import (
	"context"
	"io"
)

// Storage is where generated reports are written.
type Storage interface {
	// Put stores the object at key, replacing any previous version.
	Put(ctx context.Context, key string, reader io.Reader, contentType string) error

	// Exists reports whether an object is stored at key.
	Exists(ctx context.Context, key string) (bool, error)

	// GetURL returns the public URL for an object key.
	GetURL(key string) string
}
