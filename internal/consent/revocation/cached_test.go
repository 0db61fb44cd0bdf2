package revocation

import (
	"context"
	"sync/atomic"
	"testing"
)

// countingStore instrumenta un Memory para contar lookups al backend.
type countingStore struct {
	*Memory
	lookups atomic.Int64
}

func (s *countingStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	s.lookups.Add(1)
	return s.Memory.IsRevoked(ctx, tokenID)
}

func TestCached_PositivesStick(t *testing.T) {
	t.Parallel()
	inner := &countingStore{Memory: NewMemory(0)}
	c := NewCached(inner)
	ctx := context.Background()

	if err := c.Revoke(ctx, "t1", "x"); err != nil {
		t.Fatal(err)
	}
	// Dos checks: ambos true, cero lookups al backend (positivo cacheado
	// por el propio Revoke).
	for i := 0; i < 2; i++ {
		ok, err := c.IsRevoked(ctx, "t1")
		if err != nil || !ok {
			t.Fatalf("ok=%v err=%v", ok, err)
		}
	}
	if n := inner.lookups.Load(); n != 0 {
		t.Fatalf("expected 0 backend lookups, got %d", n)
	}
}

// Los negativos no se cachean: una revocación hecha por otro proceso
// (directo al backend) se ve en el próximo check.
func TestCached_NegativesNotCached(t *testing.T) {
	t.Parallel()
	inner := &countingStore{Memory: NewMemory(0)}
	c := NewCached(inner)
	ctx := context.Background()

	ok, err := c.IsRevoked(ctx, "t1")
	if err != nil || ok {
		t.Fatalf("ok=%v err=%v", ok, err)
	}

	// Revocación "externa": no pasa por el wrapper
	if err := inner.Memory.Revoke(ctx, "t1", "external"); err != nil {
		t.Fatal(err)
	}

	ok, err = c.IsRevoked(ctx, "t1")
	if err != nil || !ok {
		t.Fatalf("external revocation invisible: ok=%v err=%v", ok, err)
	}
}
