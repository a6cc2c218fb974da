// Package cache connects to the Redis instance holding portal sessions.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/course-enrollment-portal/pkg/config"
)

const dialTimeout = 5 * time.Second

// Options converts the portal Redis settings into client options.
func Options(cfg config.RedisConfig) *redis.Options {
	port := cfg.Port
	if port == 0 {
		port = 6379
	}
	return &redis.Options{
		Addr:        fmt.Sprintf("%s:%d", cfg.Host, port),
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: dialTimeout,
	}
}

// NewRedis opens a client and verifies the server answers before returning it.
func NewRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(Options(cfg))
	if err := Ping(ctx, client); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis %s: %w", client.Options().Addr, err)
	}
	return client, nil
}

// Ping checks the connection within dialTimeout. It doubles as a readiness
// probe.
func Ping(ctx context.Context, client redis.UniversalClient) error {
	ctx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()
	return client.Ping(ctx).Err()
}
