// Package token emite y valida consent tokens: credenciales bearer firmadas,
// acotadas por scope y con expiración.
//
// El formato de wire es un JWT compacto firmado con HMAC-SHA256 (HS256) sobre
// la serialización canónica de los claims. Cualquier mutación de un claim
// invalida la firma. Los tokens son self-contained: la validación no necesita
// estado más allá del chequeo de revocación.
package token

import (
	"errors"
	"time"

	"github.com/hushh-labs/consentcore/internal/consent/scope"
)

// Errores de emisión. Se rechazan de inmediato, nunca se reintentan.
var (
	ErrInvalidScope = errors.New("invalid_scope")
	ErrInvalidTTL   = errors.New("invalid_ttl")
)

// Reason clasifica el resultado de una validación. Son códigos estructurados
// (no excepciones): el caller ramifica sobre la razón. Seguras de mostrar:
// no exponen material de claves ni contenido de claims.
type Reason string

const (
	ReasonValid         Reason = "valid"
	ReasonMalformed     Reason = "malformed"
	ReasonBadSignature  Reason = "bad_signature"
	ReasonExpired       Reason = "expired"
	ReasonRevoked       Reason = "revoked"
	ReasonScopeMismatch Reason = "scope_mismatch"
)

// Claims son los campos firmados de un consent token.
type Claims struct {
	TokenID   string      `json:"token_id"`
	UserID    string      `json:"user_id"`
	AgentID   string      `json:"agent_id"`
	Scope     scope.Scope `json:"scope"`
	IssuedAt  time.Time   `json:"issued_at"`
	ExpiresAt time.Time   `json:"expires_at"`
}

// ConsentToken es la credencial emitida. Inmutable después de creada.
// Raw es la serialización firmada (lo que el caller presenta después).
type ConsentToken struct {
	Claims
	Raw string `json:"raw"`
}

// Result es la decisión de una validación.
// Claims solo se popula cuando Valid es true: ningún campo de un token se
// considera confiable hasta que la autenticidad quedó establecida.
type Result struct {
	Valid  bool    `json:"valid"`
	Reason Reason  `json:"reason"`
	Claims *Claims `json:"claims,omitempty"`
}

// Nombres de claims en el JWT.
// jti=token_id, sub=user_id, aud=agent_id, scope=scope, iat/exp=timestamps.
const (
	claimTokenID = "jti"
	claimUserID  = "sub"
	claimAgentID = "aud"
	claimScope   = "scope"
)
