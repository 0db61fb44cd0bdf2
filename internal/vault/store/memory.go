package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/hushh-labs/consentcore/internal/vault"
)

// Memory es el backend in-process (desarrollo/testing).
type Memory struct {
	mu   sync.RWMutex
	recs map[string]*vault.Record
}

// NewMemory construye el backend en memoria.
func NewMemory() *Memory {
	return &Memory{recs: make(map[string]*vault.Record)}
}

func recKey(ownerID, keyID string) string { return ownerID + "\x00" + keyID }

// clone copia el registro incluyendo los slices: ni el caller ni el store
// pueden mutarse bytes mutuamente.
func clone(r *vault.Record) *vault.Record {
	cp := *r
	cp.Nonce = append([]byte(nil), r.Nonce...)
	cp.Ciphertext = append([]byte(nil), r.Ciphertext...)
	cp.Tag = append([]byte(nil), r.Tag...)
	return &cp
}

func (m *Memory) Put(ctx context.Context, rec *vault.Record) error {
	if !ValidRecordID(rec.OwnerID) || !ValidRecordID(rec.KeyID) {
		return fmt.Errorf("vault store: id inválido (%q, %q)", rec.OwnerID, rec.KeyID)
	}
	m.mu.Lock()
	m.recs[recKey(rec.OwnerID, rec.KeyID)] = clone(rec)
	m.mu.Unlock()
	return nil
}

func (m *Memory) Get(ctx context.Context, ownerID, keyID string) (*vault.Record, error) {
	m.mu.RLock()
	rec, ok := m.recs[recKey(ownerID, keyID)]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return clone(rec), nil
}

func (m *Memory) Delete(ctx context.Context, ownerID, keyID string) error {
	m.mu.Lock()
	delete(m.recs, recKey(ownerID, keyID))
	m.mu.Unlock()
	return nil
}

func (m *Memory) Close() error { return nil }
