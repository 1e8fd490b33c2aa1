package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrSessionNotFound is returned when a token does not resolve to a live session.
var ErrSessionNotFound = errors.New("session not found")

// SessionStore keeps admin sessions in Redis. The token handed to the client
// is an opaque uuid; the session payload lives server-side only.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionStore connects to Redis and verifies the connection. Unlike the
// permission cache, sessions cannot degrade gracefully: without Redis nobody
// can log in, so a failed ping is an error.
func NewSessionStore(host string, port int, password string, db int, ttlSeconds int) (*SessionStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("session store unavailable: %w", err)
	}

	return &SessionStore{
		client: client,
		ttl:    time.Duration(ttlSeconds) * time.Second,
	}, nil
}

func (s *SessionStore) sessionKey(token string) string {
	return "session:" + token
}

func (s *SessionStore) indexKey(adminID uuid.UUID) string {
	return "admin_sessions:" + adminID.String()
}

// Create opens a new session for adminID and returns its token.
func (s *SessionStore) Create(ctx context.Context, adminID uuid.UUID) (string, error) {
	token := uuid.NewString()
	if err := s.client.Set(ctx, s.sessionKey(token), adminID.String(), s.ttl).Err(); err != nil {
		return "", err
	}
	// Track tokens per admin so logout-all can revoke them in one sweep.
	if err := s.client.SAdd(ctx, s.indexKey(adminID), token).Err(); err != nil {
		return "", err
	}
	_ = s.client.Expire(ctx, s.indexKey(adminID), s.ttl).Err()
	return token, nil
}

// Get resolves a token to the admin id it belongs to.
func (s *SessionStore) Get(ctx context.Context, token string) (uuid.UUID, error) {
	val, err := s.client.Get(ctx, s.sessionKey(token)).Result()
	if err == redis.Nil {
		return uuid.Nil, ErrSessionNotFound
	}
	if err != nil {
		return uuid.Nil, err
	}
	adminID, err := uuid.Parse(val)
	if err != nil {
		return uuid.Nil, ErrSessionNotFound
	}
	return adminID, nil
}

// Delete revokes a single session.
func (s *SessionStore) Delete(ctx context.Context, token string) error {
	adminID, err := s.Get(ctx, token)
	if err == nil {
		_ = s.client.SRem(ctx, s.indexKey(adminID), token).Err()
	}
	return s.client.Del(ctx, s.sessionKey(token)).Err()
}

// DeleteAll revokes every session belonging to adminID.
func (s *SessionStore) DeleteAll(ctx context.Context, adminID uuid.UUID) error {
	tokens, err := s.client.SMembers(ctx, s.indexKey(adminID)).Result()
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(tokens)+1)
	for _, token := range tokens {
		keys = append(keys, s.sessionKey(token))
	}
	keys = append(keys, s.indexKey(adminID))
	return s.client.Del(ctx, keys...).Err()
}

// Close closes the Redis connection.
func (s *SessionStore) Close() error {
	return s.client.Close()
}
