// Package store persiste registros del vault, keyed por (owner_id, key_id).
//
// Contrato de concurrencia: las escrituras sobre un mismo (owner, key) se
// serializan entre sí (protege la invariante de nonce fresco contra
// lost-updates); las lecturas pueden proceder en paralelo con escrituras no
// relacionadas.
package store

import (
	"context"
	"errors"
	"regexp"

	"github.com/hushh-labs/consentcore/internal/vault"
)

var ErrNotFound = errors.New("vault store: not found")

// Store define la persistencia de registros cifrados.
type Store interface {
	// Put guarda o sobreescribe el registro bajo (rec.OwnerID, rec.KeyID).
	Put(ctx context.Context, rec *vault.Record) error

	// Get retorna el registro, o ErrNotFound.
	Get(ctx context.Context, ownerID, keyID string) (*vault.Record, error)

	// Delete destruye el registro (pedido de borrado del usuario).
	// Borrar un registro inexistente es no-op.
	Delete(ctx context.Context, ownerID, keyID string) error

	Close() error
}

// Los identificadores de registro se usan como componentes de path en el
// backend fs; la regla conservadora evita traversal y nombres raros en
// cualquier backend.
var recordIDRe = regexp.MustCompile(`^[a-z0-9][a-z0-9:_\.-]{0,127}$`)

// ValidRecordID valida owner_id y key_id.
func ValidRecordID(id string) bool {
	return recordIDRe.MatchString(id)
}
