package revocation

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Cached envuelve un Store remoto (redis/pg) con un cache local de positivos.
//
// Solo cachea revocado=true: una revocación es permanente, así que el positivo
// nunca se vuelve stale. Los negativos NUNCA se cachean — hacerlo rompería la
// garantía de que toda IsRevoked posterior a un Revoke ve true.
// singleflight colapsa lookups concurrentes del mismo token hacia el backend.
type Cached struct {
	inner Store

	mu        sync.RWMutex
	positives map[string]struct{}
	group     singleflight.Group
}

// NewCached envuelve inner.
func NewCached(inner Store) *Cached {
	return &Cached{inner: inner, positives: make(map[string]struct{})}
}

func (c *Cached) Revoke(ctx context.Context, tokenID, reason string) error {
	if err := c.inner.Revoke(ctx, tokenID, reason); err != nil {
		return err
	}
	// Solo después de que el backend confirmó: el cache local nunca va
	// adelante del estado durable.
	c.mu.Lock()
	c.positives[tokenID] = struct{}{}
	c.mu.Unlock()
	return nil
}

func (c *Cached) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	c.mu.RLock()
	_, hit := c.positives[tokenID]
	c.mu.RUnlock()
	if hit {
		return true, nil
	}

	v, err, _ := c.group.Do(tokenID, func() (any, error) {
		return c.inner.IsRevoked(ctx, tokenID)
	})
	if err != nil {
		return false, err
	}
	revoked := v.(bool)
	if revoked {
		c.mu.Lock()
		c.positives[tokenID] = struct{}{}
		c.mu.Unlock()
	}
	return revoked, nil
}

func (c *Cached) Get(ctx context.Context, tokenID string) (*Entry, error) {
	return c.inner.Get(ctx, tokenID)
}

func (c *Cached) Close() error { return c.inner.Close() }
