package auth

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDenylist(t *testing.T) {
	ctx := context.Background()
	d := NewDenylist(0)

	sid, err := d.Create(ctx, "user-1")
	require.NoError(t, err)
	require.NotEmpty(t, sid)

	active, err := d.Active(ctx, sid, "user-1")
	require.NoError(t, err)
	assert.True(t, active)

	active, err = d.Active(ctx, "issued-by-another-process", "user-1")
	require.NoError(t, err)
	assert.True(t, active, "unknown sessions are not revoked")

	require.NoError(t, d.Delete(ctx, sid))
	active, err = d.Active(ctx, sid, "user-1")
	require.NoError(t, err)
	assert.False(t, active)
	assert.Equal(t, 1, d.Len())
}

func TestDenylistOnlyGrowsWithRevocations(t *testing.T) {
	ctx := context.Background()
	d := NewDenylist(0)
	for i := 0; i < 50; i++ {
		_, err := d.Create(ctx, "user-1")
		require.NoError(t, err)
	}
	assert.Equal(t, 0, d.Len())
}

func TestDenylistSweepsExpiredEntries(t *testing.T) {
	ctx := context.Background()
	d := NewDenylist(time.Minute)
	start := time.Now()
	d.now = func() time.Time { return start }

	require.NoError(t, d.Delete(ctx, "old"))
	active, _ := d.Active(ctx, "old", "user-1")
	assert.False(t, active)

	d.now = func() time.Time { return start.Add(time.Minute) }
	require.NoError(t, d.Delete(ctx, "new"))
	assert.Equal(t, 1, d.Len(), "entries past the token ttl are dropped")

	active, _ = d.Active(ctx, "new", "user-1")
	assert.False(t, active)
}

func TestRedisSessions(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}
	ctx := context.Background()
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { rdb.Close() })
	require.NoError(t, rdb.Ping(ctx).Err())

	s := NewSessionStore(rdb, time.Minute)
	sid, err := s.Create(ctx, "user-1")
	require.NoError(t, err)

	active, err := s.Active(ctx, sid, "user-1")
	require.NoError(t, err)
	assert.True(t, active)

	active, err = s.Active(ctx, sid, "user-2")
	require.NoError(t, err)
	assert.False(t, active, "session belongs to another user")

	active, err = s.Active(ctx, "never-issued", "user-1")
	require.NoError(t, err)
	assert.False(t, active)

	require.NoError(t, s.Delete(ctx, sid))
	active, err = s.Active(ctx, sid, "user-1")
	require.NoError(t, err)
	assert.False(t, active)

	t.Run("tokens survive a restart", func(t *testing.T) {
		raw, err := NewTokens("secret", 0, s).Issue(ctx, "user-1")
		require.NoError(t, err)
		_, err = NewTokens("secret", 0, NewSessionStore(rdb, time.Minute)).Verify(ctx, raw)
		assert.NoError(t, err)
	})
}
