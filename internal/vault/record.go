package vault

import (
	"encoding/base64"
	"errors"
	"strings"
	"time"
)

// Record es un registro cifrado del vault, keyed por (owner_id, key_id).
// Ciphertext y tag se producen juntos en una sola llamada de cifrado; un
// registro parcial o corrupto se trata como ausente (falla cerrado).
// Se sobreescribe en cada update con nonce nuevo; nunca se reusa un nonce
// bajo la misma clave.
type Record struct {
	OwnerID    string    `json:"owner_id"`
	KeyID      string    `json:"key_id"`
	Nonce      []byte    `json:"nonce"`
	Ciphertext []byte    `json:"ciphertext"`
	Tag        []byte    `json:"tag"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Separador del formato compacto: base64(nonce)|base64(ct)|base64(tag).
const compactSep = "|"

// Compact serializa la parte criptográfica para transporte/CLI.
func (r *Record) Compact() string {
	return base64.StdEncoding.EncodeToString(r.Nonce) + compactSep +
		base64.StdEncoding.EncodeToString(r.Ciphertext) + compactSep +
		base64.StdEncoding.EncodeToString(r.Tag)
}

// ParseCompact reconstruye un Record desde el formato compacto.
// No verifica nada criptográfico: eso es trabajo de Decrypt.
func ParseCompact(ownerID, keyID, s string) (*Record, error) {
	parts := strings.Split(s, compactSep)
	if len(parts) != 3 {
		return nil, errors.New("formato inválido: esperado base64(nonce)|base64(ct)|base64(tag)")
	}
	nonce, err := base64.StdEncoding.DecodeString(parts[0])
	if err != nil {
		return nil, errors.New("decode nonce")
	}
	ct, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, errors.New("decode ciphertext")
	}
	tag, err := base64.StdEncoding.DecodeString(parts[2])
	if err != nil {
		return nil, errors.New("decode tag")
	}
	return &Record{
		OwnerID:    ownerID,
		KeyID:      keyID,
		Nonce:      nonce,
		Ciphertext: ct,
		Tag:        tag,
	}, nil
}
