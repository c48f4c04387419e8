// Package storage defines the content stores an upload can be committed to.
// The GitHub backend writes through the repository contents API; the MinIO
// backend works with any S3-compatible provider.
package storage

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned by Ready when required credentials are missing.
var ErrNotConfigured = errors.New("storage credentials not configured")

// Object is a single file to be written to a store.
type Object struct {
	// Path is the store-relative key, e.g. "uploads/1700000000000-a.txt".
	Path string
	// Name is the original filename as sent by the client.
	Name    string
	Content []byte
}

// Storage is the interface for committing uploaded files.
type Storage interface {
	// Label names the store in user-facing messages, e.g. "GitHub".
	Label() string
	// Ready reports ErrNotConfigured when the store cannot accept writes.
	Ready() error
	// Put writes obj and returns its publicly browsable URL.
	Put(ctx context.Context, obj Object) (string, error)
}
