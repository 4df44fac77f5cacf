package store

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisOptions selects the Redis server holding token sessions.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisClient connects and pings before returning, so a bad address fails
// startup instead of the first login.
func NewRedisClient(ctx context.Context, o RedisOptions) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     o.Addr,
		Password: o.Password,
		DB:       o.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping %s db %d: %w", o.Addr, o.DB, err)
	}
	return rdb, nil
}
