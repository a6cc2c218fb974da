package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/course-enrollment-portal/internal/models"
	appErrors "github.com/noah-isme/course-enrollment-portal/pkg/errors"
)

const sessionKeyPrefix = "portal:session:"

// RedisSessionRepository stores UI sessions as JSON documents in Redis.
type RedisSessionRepository struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisSessionRepository constructs a Redis-backed session store.
func NewRedisSessionRepository(client *redis.Client, logger *zap.Logger) *RedisSessionRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisSessionRepository{client: client, logger: logger}
}

// Get loads session id. A missing key yields appErrors.ErrCacheMiss.
func (r *RedisSessionRepository) Get(ctx context.Context, id string) (*models.Session, error) {
	if r.client == nil {
		return nil, appErrors.ErrCacheMiss
	}

	key := sessionKeyPrefix + id
	raw, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, appErrors.ErrCacheMiss
		}
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}

	var session models.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("unmarshal session %s: %w", key, err)
	}
	return &session, nil
}

// Save writes the session and refreshes its TTL.
func (r *RedisSessionRepository) Save(ctx context.Context, session *models.Session, ttl time.Duration) error {
	if r.client == nil {
		return nil
	}

	key := sessionKeyPrefix + session.ID
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session %s: %w", key, err)
	}
	if err := r.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Close releases the underlying Redis connection if present.
func (r *RedisSessionRepository) Close() error {
	if r.client == nil {
		return nil
	}
	return r.client.Close()
}
