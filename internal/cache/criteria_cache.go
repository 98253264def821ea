package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/GTDGit/gtd_catalog/internal/utils"
)

// CriteriaCache stores catalog sessions in Redis under
// catalog:session:{id}. Both saves and loads reset the TTL.
type CriteriaCache struct {
	redis *RedisClient
	ttl   time.Duration
}

// NewCriteriaCache creates a new CriteriaCache.
func NewCriteriaCache(redis *RedisClient, ttl time.Duration) *CriteriaCache {
	return &CriteriaCache{redis: redis, ttl: ttl}
}

func (c *CriteriaCache) key(id string) string {
	return "catalog:session:" + id
}

// Save stores the session and resets its TTL.
func (c *CriteriaCache) Save(ctx context.Context, s *Session) error {
	s.UpdatedAt = time.Now()
	if err := c.redis.SetJSON(ctx, c.key(s.ID), s, c.ttl); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Load returns the session or utils.ErrSessionNotFound.
func (c *CriteriaCache) Load(ctx context.Context, id string) (*Session, error) {
	var s Session
	err := c.redis.GetJSON(ctx, c.key(id), &s, c.ttl)
	if errors.Is(err, redis.Nil) {
		return nil, utils.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return &s, nil
}

// Delete removes the session.
func (c *CriteriaCache) Delete(ctx context.Context, id string) error {
	return c.redis.Delete(ctx, c.key(id))
}
