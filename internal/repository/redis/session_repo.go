package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrTokenNotFound    = errors.New("token not found")
	ErrRedisUnavailable = errors.New("redis unavailable")
	ErrExtendFailed     = errors.New("token extend failed")
	ErrTokenDeleted     = errors.New("token delete failed")
)

const (
	sessionPrefix = "login:user:token"
	sessionExpire = 30 * time.Minute
)

// SessionRepository keeps the single active access token per account; a new
// login displaces any previous session.
type SessionRepository struct{}

func sessionKey(userID uint64) string {
	return fmt.Sprintf("%s:%d", sessionPrefix, userID)
}

func (r *SessionRepository) Add(userID uint64, token string) error {
	if err := Client.Set(context.Background(), sessionKey(userID), token, sessionExpire).Err(); err != nil {
		return ErrRedisUnavailable
	}
	return nil
}

func (r *SessionRepository) Get(userID uint64) (string, error) {
	token, err := Client.Get(context.Background(), sessionKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrTokenNotFound
	}
	if err != nil {
		return "", ErrRedisUnavailable
	}
	return token, nil
}

// Extend refreshes the session TTL on every authenticated request.
func (r *SessionRepository) Extend(userID uint64) error {
	if _, err := Client.Expire(context.Background(), sessionKey(userID), sessionExpire).Result(); err != nil {
		return ErrExtendFailed
	}
	return nil
}

func (r *SessionRepository) Delete(userID uint64) error {
	if err := Client.Del(context.Background(), sessionKey(userID)).Err(); err != nil {
		return ErrTokenDeleted
	}
	return nil
}
