package vault

import (
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// Dominio de derivación. Versionado: si alguna vez cambia el esquema de
// derivación, cambia el salt y los registros viejos quedan distinguibles.
var hkdfSalt = []byte("consentcore/vault/v1")

// deriveKey deriva la clave AES-256 de un usuario desde la clave maestra via
// HKDF-SHA256. Determinística: mismo (master, owner) => misma clave, así que
// ninguna clave por usuario se persiste. Dos owners distintos nunca comparten
// clave.
func deriveKey(master []byte, ownerID string) ([]byte, error) {
	if len(master) != masterKeyLength {
		return nil, fmt.Errorf("%w: clave maestra de %d bytes", ErrKeyDerivation, len(master))
	}
	if ownerID == "" {
		return nil, fmt.Errorf("%w: owner vacío", ErrKeyDerivation)
	}
	r := hkdf.New(sha256.New, master, hkdfSalt, []byte(ownerID))
	key := make([]byte, masterKeyLength)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("%w: hkdf: %v", ErrKeyDerivation, err)
	}
	return key, nil
}
