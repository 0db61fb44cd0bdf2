package revocation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	rdb "github.com/redis/go-redis/v9"

	"github.com/hushh-labs/consentcore/internal/metrics"
)

// Redis es el backend distribuido: varios procesos validadores comparten el
// mismo registro. SET NX da la idempotencia (la primera revocación gana) y
// Redis mismo da la visibilidad inmediata entre callers.
type Redis struct {
	c         *rdb.Client
	prefix    string
	retention time.Duration
}

// RedisConfig configura el backend Redis.
type RedisConfig struct {
	Addr   string
	DB     int
	Prefix string
	// Retention >= TTL máximo de tokens; 0 = sin expiración.
	Retention time.Duration
}

// NewRedis conecta y verifica con un Ping.
func NewRedis(ctx context.Context, cfg RedisConfig) (*Redis, error) {
	c := rdb.NewClient(&rdb.Options{Addr: cfg.Addr, DB: cfg.DB})
	if err := c.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("revocation redis: ping: %w", err)
	}
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "consent:revoked:"
	}
	return &Redis{c: c, prefix: prefix, retention: cfg.Retention}, nil
}

func (r *Redis) key(tokenID string) string { return r.prefix + tokenID }

func (r *Redis) Revoke(ctx context.Context, tokenID, reason string) error {
	e := Entry{TokenID: tokenID, RevokedAt: time.Now().UTC(), Reason: reason}
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	ok, err := r.c.SetNX(ctx, r.key(tokenID), b, r.retention).Result()
	if err != nil {
		return fmt.Errorf("revocation redis: setnx: %w", err)
	}
	if ok {
		metrics.TokensRevoked.Inc()
	}
	return nil
}

func (r *Redis) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := r.c.Exists(ctx, r.key(tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("revocation redis: exists: %w", err)
	}
	return n > 0, nil
}

func (r *Redis) Get(ctx context.Context, tokenID string) (*Entry, error) {
	b, err := r.c.Get(ctx, r.key(tokenID)).Bytes()
	if err == rdb.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("revocation redis: get: %w", err)
	}
	var e Entry
	if err := json.Unmarshal(b, &e); err != nil {
		return nil, fmt.Errorf("revocation redis: decode: %w", err)
	}
	return &e, nil
}

func (r *Redis) Close() error { return r.c.Close() }
