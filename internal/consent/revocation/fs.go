package revocation

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/hushh-labs/consentcore/internal/metrics"
	"github.com/hushh-labs/consentcore/internal/util/atomicwrite"
)

// FS es el backend durable sobre filesystem: un archivo JSON con el log
// completo de revocaciones. Cada Revoke reescribe el archivo de forma atómica
// antes de retornar, así la garantía de visibilidad sobrevive reinicios.
type FS struct {
	path string

	mu      sync.RWMutex
	entries map[string]*Entry
}

// NewFS abre (o crea) el log en path y lo carga a memoria.
func NewFS(path string) (*FS, error) {
	f := &FS{path: path, entries: make(map[string]*Entry)}
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return f, nil
		}
		return nil, fmt.Errorf("revocation fs: read %s: %w", path, err)
	}
	var list []*Entry
	if err := json.Unmarshal(b, &list); err != nil {
		return nil, fmt.Errorf("revocation fs: parse %s: %w", path, err)
	}
	for _, e := range list {
		f.entries[e.TokenID] = e
	}
	return f, nil
}

func (f *FS) Revoke(ctx context.Context, tokenID, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.entries[tokenID]; ok {
		// Ya revocado: no-op, se preserva la entrada original.
		return nil
	}
	f.entries[tokenID] = &Entry{
		TokenID:   tokenID,
		RevokedAt: time.Now().UTC(),
		Reason:    reason,
	}
	if err := f.flushLocked(); err != nil {
		// Rollback en memoria: si no quedó durable, no podemos prometer
		// visibilidad tras un reinicio.
		delete(f.entries, tokenID)
		return err
	}
	metrics.TokensRevoked.Inc()
	return nil
}

func (f *FS) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, ok := f.entries[tokenID]
	return ok, nil
}

func (f *FS) Get(ctx context.Context, tokenID string) (*Entry, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	e, ok := f.entries[tokenID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (f *FS) Close() error { return nil }

// flushLocked serializa el log completo y lo escribe atómicamente.
// Caller debe tener f.mu tomado en escritura.
func (f *FS) flushLocked() error {
	list := make([]*Entry, 0, len(f.entries))
	for _, e := range f.entries {
		list = append(list, e)
	}
	b, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return err
	}
	if err := atomicwrite.AtomicWriteFile(f.path, b, 0o600); err != nil {
		return fmt.Errorf("revocation fs: write %s: %w", f.path, err)
	}
	return nil
}
