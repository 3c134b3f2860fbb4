// Package storage provides a domain-agnostic interface for S3-compatible object storage.
package storage

import (
	"context"
	"io"
	"time"
)

// StorageService defines the interface for object storage operations.
// This interface is designed to be domain-agnostic and can be used by any module.
type StorageService interface {
	// EnsureBucketExists creates the bucket if it doesn't exist.
	EnsureBucketExists(ctx context.Context, bucket string) error

	// UploadStream uploads an object directly from an io.Reader.
	// Size may be -1 when unknown. Returns the object key used.
	UploadStream(ctx context.Context, bucket, folder, fileName, contentType string, reader io.Reader, size int64) (string, error)

	// DownloadObject fetches an object; the caller closes the reader.
	DownloadObject(ctx context.Context, bucket, objectKey string) (io.ReadCloser, error)

	// PresignedDownloadURL creates a time-limited download URL for an object.
	PresignedDownloadURL(ctx context.Context, bucket, objectKey string, ttl time.Duration) (string, error)

	// DeleteObject removes an object from storage.
	DeleteObject(ctx context.Context, bucket, objectKey string) error
}

// Config defines the configuration interface for storage.
type Config interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	IsMinIOEnabled() bool
}
