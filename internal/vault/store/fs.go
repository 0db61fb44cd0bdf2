package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/hushh-labs/consentcore/internal/util/atomicwrite"
	"github.com/hushh-labs/consentcore/internal/vault"
)

// FS persiste cada registro como JSON en root/<owner_id>/<key_id>.json.
// Las escrituras por (owner, key) se serializan con un lock por registro;
// el archivo se escribe de forma atómica, así un Get nunca ve un registro
// a medio escribir.
type FS struct {
	root string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewFS crea el directorio raíz si no existe.
func NewFS(root string) (*FS, error) {
	if root == "" {
		root = "data/vault"
	}
	if err := os.MkdirAll(root, 0o700); err != nil {
		return nil, fmt.Errorf("vault fs: mkdir %s: %w", root, err)
	}
	return &FS{root: root, locks: make(map[string]*sync.Mutex)}, nil
}

func (f *FS) path(ownerID, keyID string) string {
	return filepath.Join(f.root, ownerID, keyID+".json")
}

// lockFor retorna el mutex del registro, creándolo si hace falta.
func (f *FS) lockFor(ownerID, keyID string) *sync.Mutex {
	k := recKey(ownerID, keyID)
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.locks[k]
	if !ok {
		l = &sync.Mutex{}
		f.locks[k] = l
	}
	return l
}

func (f *FS) Put(ctx context.Context, rec *vault.Record) error {
	if !ValidRecordID(rec.OwnerID) || !ValidRecordID(rec.KeyID) {
		return fmt.Errorf("vault fs: id inválido (%q, %q)", rec.OwnerID, rec.KeyID)
	}
	l := f.lockFor(rec.OwnerID, rec.KeyID)
	l.Lock()
	defer l.Unlock()

	b, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}
	if err := atomicwrite.AtomicWriteFile(f.path(rec.OwnerID, rec.KeyID), b, 0o600); err != nil {
		return fmt.Errorf("vault fs: write: %w", err)
	}
	return nil
}

func (f *FS) Get(ctx context.Context, ownerID, keyID string) (*vault.Record, error) {
	if !ValidRecordID(ownerID) || !ValidRecordID(keyID) {
		return nil, ErrNotFound
	}
	b, err := os.ReadFile(f.path(ownerID, keyID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("vault fs: read: %w", err)
	}
	var rec vault.Record
	if err := json.Unmarshal(b, &rec); err != nil {
		// Registro corrupto => tratado como ausente (falla cerrado).
		return nil, ErrNotFound
	}
	return &rec, nil
}

func (f *FS) Delete(ctx context.Context, ownerID, keyID string) error {
	if !ValidRecordID(ownerID) || !ValidRecordID(keyID) {
		return nil
	}
	l := f.lockFor(ownerID, keyID)
	l.Lock()
	defer l.Unlock()

	err := os.Remove(f.path(ownerID, keyID))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("vault fs: delete: %w", err)
	}
	return nil
}

func (f *FS) Close() error { return nil }
