package storage

import (
	"context"
	"io"
	"strings"
	"time"
)

// Default expiry duration for presigned URLs
const DefaultPresignedURLExpiry = 15 * time.Minute

// FileStorage defines the object storage operations used for catalog images.
type FileStorage interface {
	// GeneratePresignedDownloadURL creates a temporary URL that allows GET requests
	// for viewing an object directly from the storage provider.
	GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error)

	// PutObject uploads an object, used when mirroring catalog images into the bucket.
	PutObject(ctx context.Context, objectKey, contentType string, body io.Reader) error
}

// IsExternalURL reports whether an image entry is a full URL rather than an object key.
func IsExternalURL(ref string) bool {
	lower := strings.ToLower(ref)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
