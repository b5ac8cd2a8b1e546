package redisad

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"tourbot/internal/domain"
)

// Sessions keeps dialogue state in Redis, one JSON value per
// (user, chat) pair. TTL 0 means sessions never expire; there is no
// dialogue timeout unless one is configured.
type Sessions struct {
	c   *redis.Client
	ttl time.Duration
}

func New(addr, pass string, db int, ttl time.Duration) *Sessions {
	return &Sessions{
		c:   redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db}),
		ttl: ttl,
	}
}

// NewWithClient is used by tests that run against miniredis.
func NewWithClient(c *redis.Client, ttl time.Duration) *Sessions {
	return &Sessions{c: c, ttl: ttl}
}

func sessionKey(k domain.SessionKey) string {
	return fmt.Sprintf("session:%d:%d", k.UserID, k.ChatID)
}

func (s *Sessions) Get(ctx context.Context, key domain.SessionKey) (*domain.Session, bool, error) {
	v, err := s.c.Get(ctx, sessionKey(key)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var sess domain.Session
	if err := json.Unmarshal(v, &sess); err != nil {
		return nil, false, err
	}
	return &sess, true, nil
}

func (s *Sessions) Put(ctx context.Context, sess *domain.Session) error {
	b, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return s.c.Set(ctx, sessionKey(sess.Key), b, s.ttl).Err()
}

// Clear is a no-op for an absent key.
func (s *Sessions) Clear(ctx context.Context, key domain.SessionKey) error {
	return s.c.Del(ctx, sessionKey(key)).Err()
}
