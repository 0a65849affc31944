package infra

import (
	"context"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// NewRedis creates and validates a go-redis client connection.
func NewRedis(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(opts)

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}

	return rdb, nil
}

// RedisCounter is the Redis sequence store. All keys of one call are
// incremented inside a single MULTI/EXEC, and INCR creates missing keys at 1.
// It cannot join a database transaction, so tx is ignored.
type RedisCounter struct {
	rdb    redis.Cmdable
	prefix string
}

func NewRedisCounter(rdb redis.Cmdable) *RedisCounter {
	return &RedisCounter{rdb: rdb, prefix: "seq:"}
}

func (c *RedisCounter) Increment(ctx context.Context, _ *gorm.DB, keys ...string) ([]int64, error) {
	cmds := make([]*redis.IntCmd, len(keys))
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, key := range keys {
			cmds[i] = pipe.Incr(ctx, c.prefix+key)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	out := make([]int64, len(keys))
	for i, cmd := range cmds {
		out[i] = cmd.Val()
	}
	return out, nil
}
