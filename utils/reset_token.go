package utils

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ResetTokenStore keeps single-use password reset tokens in Redis with a TTL.
// Tokens expire on their own; consuming a token deletes it atomically so it
// can only be used once.
type ResetTokenStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewResetTokenStore creates a store backed by the given Redis client
func NewResetTokenStore(client *redis.Client, ttl time.Duration) *ResetTokenStore {
	return &ResetTokenStore{client: client, ttl: ttl}
}

func resetKey(token string) string {
	return fmt.Sprintf("reset_token:%s", token)
}

// Issue creates a new reset token for the user and stores it with a TTL
func (s *ResetTokenStore) Issue(ctx context.Context, userID uint) (string, error) {
	token := uuid.New().String()
	if err := s.client.Set(ctx, resetKey(token), strconv.FormatUint(uint64(userID), 10), s.ttl).Err(); err != nil {
		return "", fmt.Errorf("failed to store reset token: %w", err)
	}
	return token, nil
}

// Consume validates a token and deletes it in one round trip.
// Returns the user id it was issued for, or an error if the token is
// unknown or already used.
func (s *ResetTokenStore) Consume(ctx context.Context, token string) (uint, error) {
	val, err := s.client.GetDel(ctx, resetKey(token)).Result()
	if err == redis.Nil {
		return 0, fmt.Errorf("invalid or expired reset token")
	}
	if err != nil {
		return 0, fmt.Errorf("failed to consume reset token: %w", err)
	}
	userID, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt reset token payload: %w", err)
	}
	return uint(userID), nil
}
