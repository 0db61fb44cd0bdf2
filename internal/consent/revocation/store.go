// Package revocation mantiene el registro durable de tokens revocados.
//
// El registro es append-only: una entrada, una vez presente, es permanente
// durante la vida del token. Revocar un token ya revocado es no-op, no error.
// Garantía de orden: cuando Revoke retorna, todo IsRevoked posterior para ese
// token (desde cualquier caller) ve true.
package revocation

import (
	"context"
	"errors"
	"time"
)

// Entry es una revocación registrada. Nunca se borra antes de la expiración
// natural del token; después puede recolectarse como optimización.
type Entry struct {
	TokenID   string    `json:"token_id"`
	RevokedAt time.Time `json:"revoked_at"`
	Reason    string    `json:"reason"`
}

var ErrNotFound = errors.New("revocation: not found")

// Store define las operaciones del registro de revocación.
// Las implementaciones son seguras para uso concurrente. Revocaciones de
// tokens distintos nunca conflictúan; del mismo token, son idempotentes.
type Store interface {
	// Revoke agrega una entrada. Idempotente: la primera revocación gana
	// (revoked_at y reason originales se preservan).
	Revoke(ctx context.Context, tokenID, reason string) error

	// IsRevoked chequea membresía. O(1) en los backends locales.
	IsRevoked(ctx context.Context, tokenID string) (bool, error)

	// Get retorna la entrada de un token revocado, o ErrNotFound.
	Get(ctx context.Context, tokenID string) (*Entry, error)

	Close() error
}
