package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis-backed implementations of AttemptStore and RevocationStore for
// deployments running more than one instance of the service. Wiring is
// selected in main from the redis config section.

const (
	attemptKeyPrefix = "login_attempts:"
	revokedKeyPrefix = "revoked_tokens:"
)

type redisAttemptStore struct {
	client *redis.Client
	window time.Duration
}

func NewRedisAttemptStore(client *redis.Client, window time.Duration) AttemptStore {
	return &redisAttemptStore{client: client, window: window}
}

func (s *redisAttemptStore) Get(email string) (*LoginAttempt, error) {
	ctx := context.Background()
	vals, err := s.client.HGetAll(ctx, attemptKeyPrefix+email).Result()
	if err != nil {
		return nil, err
	}
	if len(vals) == 0 {
		return nil, nil
	}

	count, err := strconv.Atoi(vals["count"])
	if err != nil {
		return nil, fmt.Errorf("corrupt attempt record for %s: %w", email, err)
	}
	lastFailedUnix, err := strconv.ParseInt(vals["last_failed"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("corrupt attempt record for %s: %w", email, err)
	}

	return &LoginAttempt{Count: count, LastFailed: time.Unix(lastFailedUnix, 0)}, nil
}

func (s *redisAttemptStore) Increment(email string, now time.Time) (LoginAttempt, error) {
	ctx := context.Background()
	key := attemptKeyPrefix + email

	pipe := s.client.TxPipeline()
	incr := pipe.HIncrBy(ctx, key, "count", 1)
	pipe.HSet(ctx, key, "last_failed", now.Unix())
	pipe.Expire(ctx, key, s.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return LoginAttempt{}, err
	}

	return LoginAttempt{Count: int(incr.Val()), LastFailed: now}, nil
}

func (s *redisAttemptStore) Delete(email string) error {
	return s.client.Del(context.Background(), attemptKeyPrefix+email).Err()
}

type redisRevocationStore struct {
	client *redis.Client
}

func NewRedisRevocationStore(client *redis.Client) RevocationStore {
	return &redisRevocationStore{client: client}
}

func (s *redisRevocationStore) Revoke(token string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		// Already past its natural expiry, nothing to blacklist.
		return nil
	}
	return s.client.Set(context.Background(), revokedKeyPrefix+token, "1", ttl).Err()
}

func (s *redisRevocationStore) IsRevoked(token string) (bool, error) {
	n, err := s.client.Exists(context.Background(), revokedKeyPrefix+token).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
