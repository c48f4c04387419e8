package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioConfig is the immutable configuration of the S3-compatible store.
type MinioConfig struct {
	Endpoint   string
	AccessKey  string
	SecretKey  string
	Bucket     string
	PublicBase string // browser-accessible base URL, e.g. "http://localhost:9000/uploads"
	UseSSL     bool
}

// MinioStorage implements Storage using a MinIO (or any S3-compatible) backend.
type MinioStorage struct {
	client     *minio.Client
	cfg        MinioConfig
	publicBase string
	logger     log.Logger
}

// NewMinioStorage creates a MinIO client, ensures the bucket exists with a
// public-read policy, and returns a ready-to-use MinioStorage.
func NewMinioStorage(ctx context.Context, cfg MinioConfig, logger log.Logger) (*MinioStorage, error) {
	s := &MinioStorage{
		cfg:        cfg,
		publicBase: strings.TrimRight(cfg.PublicBase, "/"),
		logger:     logger,
	}
	if err := s.Ready(); err != nil {
		// Uploads report the configuration error per request.
		level.Warn(logger).Log("method", "NewMinioStorage", "err", err)
		return s, nil
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket existence: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %q: %w", cfg.Bucket, err)
		}
		level.Info(logger).Log("method", "NewMinioStorage", "msg", "created bucket", "bucket", cfg.Bucket)
	}

	if err := client.SetBucketPolicy(ctx, cfg.Bucket, publicReadPolicy(cfg.Bucket)); err != nil {
		return nil, fmt.Errorf("set bucket policy: %w", err)
	}

	s.client = client
	return s, nil
}

// Label implements Storage.
func (s *MinioStorage) Label() string {
	return "object storage"
}

// Ready implements Storage.
func (s *MinioStorage) Ready() error {
	if s.cfg.Endpoint == "" || s.cfg.AccessKey == "" || s.cfg.SecretKey == "" || s.cfg.Bucket == "" {
		return ErrNotConfigured
	}
	return nil
}

// Put uploads obj under its path and returns the public URL.
func (s *MinioStorage) Put(ctx context.Context, obj Object) (string, error) {
	if s.client == nil {
		return "", ErrNotConfigured
	}
	_, err := s.client.PutObject(ctx, s.cfg.Bucket, obj.Path, bytes.NewReader(obj.Content), int64(len(obj.Content)), minio.PutObjectOptions{
		ContentType: contentType(obj),
	})
	if err != nil {
		return "", fmt.Errorf("put object %q: %w", obj.Path, err)
	}
	return s.PublicURL(obj.Path), nil
}

// PublicURL returns the browser-accessible URL for the given key.
func (s *MinioStorage) PublicURL(key string) string {
	return s.publicBase + "/" + key
}

func contentType(obj Object) string {
	if ct := mime.TypeByExtension(filepath.Ext(obj.Name)); ct != "" {
		return ct
	}
	return http.DetectContentType(obj.Content)
}

// publicReadPolicy returns an S3 bucket policy JSON that allows anonymous GET on all objects.
func publicReadPolicy(bucket string) string {
	policy := map[string]interface{}{
		"Version": "2012-10-17",
		"Statement": []map[string]interface{}{
			{
				"Effect":    "Allow",
				"Principal": "*",
				"Action":    "s3:GetObject",
				"Resource":  fmt.Sprintf("arn:aws:s3:::%s/*", bucket),
			},
		},
	}
	b, _ := json.Marshal(policy)
	return string(b)
}
