package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"steamvault/internal/guard/entity"
	"steamvault/internal/pkg/clock"
	"steamvault/internal/pkg/goerror"
)

type redisSession struct {
	SessionID    string    `json:"session_id"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	LastUsed     time.Time `json:"last_used"`
}

// Redis is a SessionStore backed by Redis, for deployments where the vault
// process restarts must not drop sessions.
type Redis struct {
	client redis.Cmdable
	prefix string
	clock  clock.Clocker
}

// NewRedis builds a Redis-backed store. Keys are namespaced under prefix.
func NewRedis(client redis.Cmdable, prefix string, clk clock.Clocker) *Redis {
	return &Redis{client: client, prefix: prefix, clock: clk}
}

func (r *Redis) key(accountID string) string {
	return r.prefix + ":session:" + accountID
}

// Get implements the SessionStore interface.
func (r *Redis) Get(ctx context.Context, accountID string) (*entity.Session, error) {
	raw, err := r.client.Get(ctx, r.key(accountID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, goerror.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var rec redisSession
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, err
	}

	return &entity.Session{
		SessionID:    rec.SessionID,
		AccessToken:  rec.AccessToken,
		RefreshToken: rec.RefreshToken,
		CreatedAt:    rec.CreatedAt,
		LastUsed:     rec.LastUsed,
	}, nil
}

// Set implements the SessionStore interface.
func (r *Redis) Set(ctx context.Context, accountID string, sess entity.Session) error {
	now := r.clock.Now()

	createdAt := now
	if prev, err := r.Get(ctx, accountID); err == nil && !prev.CreatedAt.IsZero() {
		createdAt = prev.CreatedAt
	}

	return r.write(ctx, accountID, redisSession{
		SessionID:    sess.SessionID,
		AccessToken:  sess.AccessToken,
		RefreshToken: sess.RefreshToken,
		CreatedAt:    createdAt,
		LastUsed:     now,
	})
}

// Touch implements the SessionStore interface.
func (r *Redis) Touch(ctx context.Context, accountID string) error {
	prev, err := r.Get(ctx, accountID)
	if errors.Is(err, goerror.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	return r.write(ctx, accountID, redisSession{
		SessionID:    prev.SessionID,
		AccessToken:  prev.AccessToken,
		RefreshToken: prev.RefreshToken,
		CreatedAt:    prev.CreatedAt,
		LastUsed:     r.clock.Now(),
	})
}

// Clear implements the SessionStore interface.
func (r *Redis) Clear(ctx context.Context, accountID string) error {
	return r.client.Del(ctx, r.key(accountID)).Err()
}

func (r *Redis) write(ctx context.Context, accountID string, rec redisSession) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	return r.client.Set(ctx, r.key(accountID), raw, 0).Err()
}
