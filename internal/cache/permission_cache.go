package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"admin-service/internal/models"
)

// PermissionCache keeps admins' effective permissions in Redis so the
// authorization middleware does not hit the database on every request.
type PermissionCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPermissionCache creates a new permission cache instance. When Redis is
// unreachable the cache degrades to a no-op rather than failing startup.
func NewPermissionCache(host string, port int, password string, db int, ttlSeconds int) (*PermissionCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return &PermissionCache{client: nil, ttl: time.Duration(ttlSeconds) * time.Second}, nil
	}

	return &PermissionCache{client: client, ttl: time.Duration(ttlSeconds) * time.Second}, nil
}

func (c *PermissionCache) cacheKey(adminID uuid.UUID) string {
	return fmt.Sprintf("perms:admin:%s", adminID.String())
}

// Get retrieves cached effective permissions. A nil result with nil error is
// a cache miss (or an unavailable cache).
func (c *PermissionCache) Get(ctx context.Context, adminID uuid.UUID) (*models.EffectivePermissions, error) {
	if c.client == nil {
		return nil, nil
	}

	data, err := c.client.Get(ctx, c.cacheKey(adminID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var perms models.EffectivePermissions
	if err := json.Unmarshal(data, &perms); err != nil {
		return nil, err
	}
	return &perms, nil
}

// Set caches effective permissions for an admin.
func (c *PermissionCache) Set(ctx context.Context, adminID uuid.UUID, perms *models.EffectivePermissions) error {
	if c.client == nil {
		return nil
	}

	data, err := json.Marshal(perms)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.cacheKey(adminID), data, c.ttl).Err()
}

// Invalidate removes one admin's cached permissions.
func (c *PermissionCache) Invalidate(ctx context.Context, adminID uuid.UUID) error {
	if c.client == nil {
		return nil
	}
	return c.client.Del(ctx, c.cacheKey(adminID)).Err()
}

// InvalidateAll removes every cached permission set. Role and permission
// mutations affect an unknown set of admins, so the whole space is flushed.
func (c *PermissionCache) InvalidateAll(ctx context.Context) error {
	if c.client == nil {
		return nil
	}

	iter := c.client.Scan(ctx, 0, "perms:admin:*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) > 0 {
		return c.client.Del(ctx, keys...).Err()
	}
	return nil
}

// IsAvailable returns true if the cache is backed by a live connection.
func (c *PermissionCache) IsAvailable() bool {
	return c.client != nil
}

// Close closes the Redis connection.
func (c *PermissionCache) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}
