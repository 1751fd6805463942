package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/lf9/taskdesk/internal/core/domain"
	"github.com/lf9/taskdesk/internal/core/ports"
)

// SessionRepository keeps the persisted session pair in two Redis keys.
// Key format: <prefix>todo_token, <prefix>todo_user
type SessionRepository struct {
	client *redis.Client
	prefix string
}

// NewSessionRepository creates a SessionRepository wrapping the given Redis client.
func NewSessionRepository(client *redis.Client, prefix string) *SessionRepository {
	return &SessionRepository{client: client, prefix: prefix}
}

var _ ports.SessionRepository = (*SessionRepository)(nil)

// Load returns domain.ErrNoSession unless both keys are present.
func (r *SessionRepository) Load(ctx context.Context) (*domain.PersistedSession, error) {
	vals, err := r.client.MGet(ctx, r.tokenKey(), r.userKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("session load: %w", err)
	}
	token, _ := vals[0].(string)
	rawUser, _ := vals[1].(string)
	if token == "" || rawUser == "" {
		return nil, domain.ErrNoSession
	}

	rec := &domain.PersistedSession{Token: token}
	if err := json.Unmarshal([]byte(rawUser), &rec.User); err != nil {
		return nil, fmt.Errorf("session load: decode user: %w", err)
	}
	if !rec.Complete() {
		return nil, domain.ErrNoSession
	}
	return rec, nil
}

// Save writes both keys in one transaction.
func (r *SessionRepository) Save(ctx context.Context, rec domain.PersistedSession) error {
	rawUser, err := json.Marshal(rec.User)
	if err != nil {
		return fmt.Errorf("session save: encode user: %w", err)
	}
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.tokenKey(), rec.Token, 0)
		pipe.Set(ctx, r.userKey(), rawUser, 0)
		return nil
	})
	if err != nil {
		return fmt.Errorf("session save: %w", err)
	}
	return nil
}

// Clear deletes both keys. Missing keys are not an error.
func (r *SessionRepository) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, r.tokenKey(), r.userKey()).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("session clear: %w", err)
	}
	return nil
}

// Ping reports whether Redis is reachable.
func (r *SessionRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *SessionRepository) tokenKey() string { return r.prefix + domain.KeyToken }
func (r *SessionRepository) userKey() string  { return r.prefix + domain.KeyUser }
