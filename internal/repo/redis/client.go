// Package redis holds the Redis-backed counters used for swipe throttling.
package redis

import (
	"context"
	"fmt"
	"strings"

	goredis "github.com/redis/go-redis/v9"
)

// NewClient returns nil when addr is empty; callers treat that as "rate
// limiting disabled".
func NewClient(addr, password string, db int) *goredis.Client {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

func Ping(ctx context.Context, client *goredis.Client) error {
	if client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	return nil
}
