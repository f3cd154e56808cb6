// Package storage is the object-store gateway. The rest of the server only
// sees ObjectStore; S3Gateway implements it on top of aws-sdk-go-v2 and works
// with any S3-compatible backend (MinIO, LocalStack, AWS).
package storage

import (
	"context"
	"io"
	"time"
)

// ObjectInfo is what the store knows about a stored blob.
type ObjectInfo struct {
	Size        int64
	ContentType string
}

// ObjectStore reads and writes blobs by key. Head and Get return
// common.ErrorNotFound for a missing key.
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	Get(ctx context.Context, key string) (io.ReadCloser, *ObjectInfo, error)
	Head(ctx context.Context, key string) (*ObjectInfo, error)
	Delete(ctx context.Context, key string) error
	PresignPut(ctx context.Context, key, contentType string, expires time.Duration) (string, error)
	PresignGet(ctx context.Context, key string, expires time.Duration) (string, error)
}
