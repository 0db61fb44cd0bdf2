// Package vault implementa el cifrado autenticado (AEAD) para datos
// personales persistidos, con derivación de claves por usuario.
//
// Esquema: AES-256-GCM, nonce aleatorio de 96 bits por llamada, tag de 128
// bits. La identidad del registro (owner_id, key_id) se liga como associated
// data: un registro re-etiquetado a otro dueño o slot no descifra. Descifrado
// falla cerrado: ante cualquier mismatch no se libera plaintext, ni parcial.
package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/hushh-labs/consentcore/internal/metrics"
)

const (
	// AES-GCM nonce recomendado (96 bits)
	nonceSize = 12
	// Tag GCM estándar (128 bits)
	tagSize = 16
	// 32 bytes => AES-256
	masterKeyLength = 32
)

var (
	// ErrDecryptionFailure: tamper, clave incorrecta, nonce ajeno o registro
	// truncado. Indistinguibles a propósito.
	ErrDecryptionFailure = errors.New("decryption_failure")
	// ErrKeyDerivation: clave maestra malformada.
	ErrKeyDerivation = errors.New("key_derivation_failure")
)

// Vault cifra y descifra registros. Posee la lógica de derivación de claves
// en exclusiva: ningún otro componente ve una clave cruda.
type Vault struct {
	master []byte
}

// New valida la clave maestra (32 bytes) y construye el Vault.
// La clave la provee el entorno; este subsistema no la genera ni persiste.
func New(masterKey []byte) (*Vault, error) {
	if len(masterKey) != masterKeyLength {
		return nil, fmt.Errorf("%w: se requieren %d bytes, llegaron %d",
			ErrKeyDerivation, masterKeyLength, len(masterKey))
	}
	m := make([]byte, masterKeyLength)
	copy(m, masterKey)
	return &Vault{master: m}, nil
}

// Encrypt cifra plaintext para (ownerID, keyID) con nonce fresco.
// Ciphertext y tag salen juntos de la misma llamada; nunca se producen por
// separado.
func (v *Vault) Encrypt(ownerID, keyID string, plaintext []byte) (*Record, error) {
	aesgcm, err := v.aeadFor(ownerID)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, nonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("nonce random: %w", err)
	}

	sealed := aesgcm.Seal(nil, nonce, plaintext, aad(ownerID, keyID))
	ct, tag := sealed[:len(sealed)-tagSize], sealed[len(sealed)-tagSize:]

	metrics.VaultEncrypts.Inc()

	return &Record{
		OwnerID:    ownerID,
		KeyID:      keyID,
		Nonce:      nonce,
		Ciphertext: ct,
		Tag:        tag,
		UpdatedAt:  time.Now().UTC(),
	}, nil
}

// Decrypt recomputa y chequea el tag antes de liberar plaintext.
// Cualquier mismatch => ErrDecryptionFailure, sin plaintext parcial.
func (v *Vault) Decrypt(rec *Record) ([]byte, error) {
	if rec == nil || len(rec.Nonce) != nonceSize || len(rec.Tag) != tagSize {
		metrics.VaultDecryptFailures.Inc()
		return nil, ErrDecryptionFailure
	}

	aesgcm, err := v.aeadFor(rec.OwnerID)
	if err != nil {
		return nil, err
	}

	sealed := make([]byte, 0, len(rec.Ciphertext)+tagSize)
	sealed = append(sealed, rec.Ciphertext...)
	sealed = append(sealed, rec.Tag...)

	pt, err := aesgcm.Open(nil, rec.Nonce, sealed, aad(rec.OwnerID, rec.KeyID))
	if err != nil {
		metrics.VaultDecryptFailures.Inc()
		return nil, ErrDecryptionFailure
	}
	return pt, nil
}

// aeadFor arma el AEAD con la clave derivada del dueño.
func (v *Vault) aeadFor(ownerID string) (cipher.AEAD, error) {
	key, err := deriveKey(v.master, ownerID)
	if err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("aes.NewCipher: %w", err)
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("cipher.NewGCM: %w", err)
	}
	return aesgcm, nil
}

// aad liga la identidad del registro al ciphertext.
func aad(ownerID, keyID string) []byte {
	b := make([]byte, 0, len(ownerID)+len(keyID)+1)
	b = append(b, ownerID...)
	b = append(b, 0)
	b = append(b, keyID...)
	return b
}
