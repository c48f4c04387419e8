package upload

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-kit/log"

	"github.com/ghdrop/service/internal/storage"
)

// fakeStorage records every Put and answers with url or err.
type fakeStorage struct {
	mu       sync.Mutex
	ready    error
	url      string
	err      error
	objects  []storage.Object
	putCalls int
}

func (f *fakeStorage) Label() string { return "GitHub" }

func (f *fakeStorage) Ready() error { return f.ready }

func (f *fakeStorage) Put(_ context.Context, obj storage.Object) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.putCalls++
	f.objects = append(f.objects, obj)
	if f.err != nil {
		return "", f.err
	}
	return f.url, nil
}

func (f *fakeStorage) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.putCalls
}

// fixedClock returns a clock advancing by step on every call.
func fixedClock(start time.Time, step time.Duration) func() time.Time {
	var mu sync.Mutex
	next := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now := next
		next = next.Add(step)
		return now
	}
}

func newTestHandler(store storage.Storage, fallback http.Handler) *Handler {
	svc := NewService(store, log.NewNopLogger())
	svc.now = fixedClock(time.UnixMilli(1700000000000), time.Millisecond)
	return NewHandler(svc, fallback, 32<<20, log.NewNopLogger())
}

func multipartRequest(t *testing.T, field, filename string, content []byte) *http.Request {
	t.Helper()
	var b bytes.Buffer
	writer := multipart.NewWriter(&b)
	if field != "" {
		part, err := writer.CreateFormFile(field, filename)
		if err != nil {
			t.Fatalf("Failed to create form file: %v", err)
		}
		if _, err := part.Write(content); err != nil {
			t.Fatalf("Failed to write form file: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Failed to close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/upload", &b)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}
