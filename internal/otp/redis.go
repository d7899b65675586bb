package otp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type redisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) Store {
	return &redisStore{
		client: client,
		ttl:    ttl,
	}
}

func otpKey(email string) string {
	return fmt.Sprintf("otp:%s", email)
}

// Issue ignores tx; a key left behind by a rolled-back signup expires with
// its TTL.
func (s *redisStore) Issue(ctx context.Context, _ *gorm.DB, email string) (string, error) {
	code, err := NewCode()
	if err != nil {
		return "", err
	}

	if err := s.client.Set(ctx, otpKey(email), code, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("store otp: %w", err)
	}

	return code, nil
}

func (s *redisStore) Verify(ctx context.Context, email, code string) (bool, error) {
	stored, err := s.client.Get(ctx, otpKey(email)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read otp: %w", err)
	}

	if !codesEqual(stored, code) {
		return false, nil
	}

	if err := s.client.Del(ctx, otpKey(email)).Err(); err != nil {
		return false, fmt.Errorf("consume otp: %w", err)
	}

	return true, nil
}
