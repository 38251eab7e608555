package redisx

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// opTimeout bounds every command; set in Options because WithTimeout
// returns a derived client rather than mutating the receiver.
const opTimeout = 2 * time.Second

func New(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		ReadTimeout:  opTimeout,
		WriteTimeout: opTimeout,
	})
}

func Exists(ctx context.Context, rdb *redis.Client, key string) (bool, error) {
	n, err := rdb.Exists(ctx, key).Result()
	return n > 0, err
}
