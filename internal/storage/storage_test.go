package storage

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"liftcoach/server/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsExternalURL(t *testing.T) {
	assert.True(t, IsExternalURL("https://example.com/a.jpg"))
	assert.True(t, IsExternalURL("HTTP://example.com/a.jpg"))
	assert.False(t, IsExternalURL("exercises/bench/0.jpg"))
	assert.False(t, IsExternalURL(""))
}

func TestS3Storage_PresignOffline(t *testing.T) {
	fs, err := NewS3Storage(context.Background(), config.S3Config{
		Endpoint:        "http://localhost:9000",
		Region:          "us-east-1",
		AccessKeyID:     "minio",
		SecretAccessKey: "minio123",
		BucketName:      "catalog",
	})
	require.NoError(t, err)

	raw, err := fs.GeneratePresignedDownloadURL(context.Background(), "exercises/bench/0.jpg", 5*time.Minute)
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "localhost:9000", u.Host)
	assert.True(t, strings.HasPrefix(u.Path, "/catalog/exercises/bench/0.jpg"), u.Path)
	assert.Equal(t, "300", u.Query().Get("X-Amz-Expires"))
}
