package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jemaristudio/eshop-go/core"
)

// RedisStore persists the session in Redis. Intended for server-side
// embedders (a BFF or gateway wrapping the storefront API) where the
// session must survive process restarts and be shared across replicas.
type RedisStore struct {
	client *core.RedisClient
	ttl    time.Duration
}

// NewRedisStore creates a redis-backed session store.
func NewRedisStore(redisURL string, cfg core.SessionConfig, logger core.Logger) (*RedisStore, error) {
	client, err := core.NewRedisClient(core.RedisClientOptions{
		RedisURL:  redisURL,
		Namespace: cfg.Namespace,
		Logger:    logger,
	})
	if err != nil {
		return nil, fmt.Errorf("session store: %w", err)
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisStore{client: client, ttl: ttl}, nil
}

func (r *RedisStore) Token(ctx context.Context) (string, error) {
	return r.client.Get(ctx, core.SessionKeyToken)
}

func (r *RedisStore) User(ctx context.Context) (*User, error) {
	raw, err := r.client.Get(ctx, core.SessionKeyUser)
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return nil, nil
	}
	var u User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return nil, fmt.Errorf("corrupt session user: %w", err)
	}
	return &u, nil
}

func (r *RedisStore) SetCredentials(ctx context.Context, token string, user *User) error {
	if err := r.client.Set(ctx, core.SessionKeyToken, token, r.ttl); err != nil {
		return err
	}
	if user == nil {
		return r.client.Delete(ctx, core.SessionKeyUser)
	}
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("marshal session user: %w", err)
	}
	return r.client.Set(ctx, core.SessionKeyUser, string(data), r.ttl)
}

func (r *RedisStore) Clear(ctx context.Context) error {
	return r.client.Delete(ctx, core.SessionKeyToken, core.SessionKeyUser)
}

func (r *RedisStore) Authenticated(ctx context.Context) (bool, error) {
	token, err := r.client.Get(ctx, core.SessionKeyToken)
	if err != nil {
		return false, err
	}
	return token != "", nil
}

// Close releases the underlying Redis connection pool.
func (r *RedisStore) Close() error {
	return r.client.Close()
}
