package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecomstack/backend/internal/models"
)

func TestMinioStore(t *testing.T) {
	endpoint := os.Getenv("MINIO_TEST_ENDPOINT")
	if endpoint == "" {
		t.Skip("MINIO_TEST_ENDPOINT not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	bucket := "images-test-" + uuid.NewString()[:8]
	s, err := NewMinioStore(ctx, endpoint, os.Getenv("MINIO_TEST_ACCESS_KEY"), os.Getenv("MINIO_TEST_SECRET_KEY"), bucket, false)
	require.NoError(t, err)

	require.NoError(t, s.Upload(ctx, "product_1.png", []byte("png"), "image/png"))
	data, ct, err := s.Download(ctx, "product_1.png")
	require.NoError(t, err)
	assert.Equal(t, []byte("png"), data)
	assert.Equal(t, "image/png", ct)

	_, _, err = s.Download(ctx, "product_2.png")
	assert.ErrorIs(t, err, models.ErrNotFound)

	require.NoError(t, s.client.RemoveObject(ctx, bucket, "product_1.png", minio.RemoveObjectOptions{}))

	s.client.RemoveBucket(ctx, bucket)
}
