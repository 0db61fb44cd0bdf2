package revocation

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/hushh-labs/consentcore/internal/metrics"
)

// Memory es el backend in-process (desarrollo/testing y procesos single-node).
//
// retention define cuánto vive una entrada antes de ser recolectada; debe ser
// >= al TTL máximo de los tokens emitidos para respetar la invariante de que
// ninguna entrada expira antes que su token. 0 = nunca expira.
type Memory struct {
	c *gocache.Cache
}

// NewMemory construye el backend en memoria.
func NewMemory(retention time.Duration) *Memory {
	ttl := gocache.NoExpiration
	cleanup := time.Duration(0)
	if retention > 0 {
		ttl = retention
		cleanup = time.Minute
	}
	return &Memory{c: gocache.New(ttl, cleanup)}
}

func (m *Memory) Revoke(ctx context.Context, tokenID, reason string) error {
	e := &Entry{TokenID: tokenID, RevokedAt: time.Now().UTC(), Reason: reason}
	// Add falla si la key ya existe: la primera revocación gana.
	if err := m.c.Add(tokenID, e, gocache.DefaultExpiration); err != nil {
		return nil
	}
	metrics.TokensRevoked.Inc()
	return nil
}

func (m *Memory) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	_, ok := m.c.Get(tokenID)
	return ok, nil
}

func (m *Memory) Get(ctx context.Context, tokenID string) (*Entry, error) {
	v, ok := m.c.Get(tokenID)
	if !ok {
		return nil, ErrNotFound
	}
	e := v.(*Entry)
	cp := *e
	return &cp, nil
}

func (m *Memory) Close() error { return nil }
