// Package upload turns multipart form submissions into content-store writes.
package upload

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/ghdrop/service/internal/storage"
)

// File is an uploaded file held in memory.
type File struct {
	Name    string
	Content []byte
}

// Service commits uploaded files to a content store.
type Service struct {
	store  storage.Storage
	now    func() time.Time
	logger log.Logger
}

// NewService creates a new upload Service writing to store.
func NewService(store storage.Storage, logger log.Logger) *Service {
	return &Service{store: store, now: time.Now, logger: logger}
}

// StoreLabel names the backing store in user-facing messages.
func (s *Service) StoreLabel() string {
	return s.store.Label()
}

// Upload writes f under a timestamped path and returns its public URL.
// Every returned error is an *Error.
func (s *Service) Upload(ctx context.Context, f File) (string, error) {
	if err := s.store.Ready(); err != nil {
		level.Error(s.logger).Log("method", "Upload", "msg", "missing "+s.store.Label()+" credentials", "err", err)
		return "", fail(KindConfiguration, err)
	}

	path := TargetPath(s.now(), f.Name)
	url, err := s.store.Put(ctx, storage.Object{
		Path:    path,
		Name:    f.Name,
		Content: f.Content,
	})
	if err != nil {
		var upErr *storage.UpstreamError
		if errors.As(err, &upErr) {
			return "", fail(KindUpstream, err)
		}
		if errors.Is(err, storage.ErrNotConfigured) {
			return "", fail(KindConfiguration, err)
		}
		return "", fail(KindUnexpected, fmt.Errorf("store %q: %w", path, err))
	}

	level.Info(s.logger).Log("method", "Upload", "path", path, "bytes", len(f.Content), "url", url)
	return url, nil
}
