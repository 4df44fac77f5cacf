package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRedisClientFailsFast(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := NewRedisClient(ctx, RedisOptions{Addr: "127.0.0.1:1", DB: 2})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "127.0.0.1:1 db 2")
}

func TestNewRedisClient(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}
	rdb, err := NewRedisClient(context.Background(), RedisOptions{Addr: addr, DB: 1})
	require.NoError(t, err)
	defer rdb.Close()
	assert.Equal(t, 1, rdb.Options().DB)
}
