package logger

import (
	"time"

	"go.uber.org/zap"
)

// =================================================================================
// CAMPOS ESTÁNDAR - CONSENT
// =================================================================================

// TokenID crea un campo para el ID del token de consentimiento.
func TokenID(v string) zap.Field {
	return zap.String("token_id", v)
}

// UserID crea un campo para el ID del usuario.
func UserID(v string) zap.Field {
	return zap.String("user_id", v)
}

// AgentID crea un campo para el ID del agente solicitante.
func AgentID(v string) zap.Field {
	return zap.String("agent_id", v)
}

// Scope crea un campo para el scope del token.
func Scope(v string) zap.Field {
	return zap.String("scope", v)
}

// Reason crea un campo para la razón de una decisión de validación/revocación.
func Reason(v string) zap.Field {
	return zap.String("reason", v)
}

// ExpiresAt crea un campo para la expiración del token.
func ExpiresAt(v time.Time) zap.Field {
	return zap.Time("expires_at", v)
}

// =================================================================================
// CAMPOS ESTÁNDAR - VAULT
// =================================================================================

// OwnerID crea un campo para el dueño de un registro del vault.
func OwnerID(v string) zap.Field {
	return zap.String("owner_id", v)
}

// KeyID crea un campo para el key id de un registro del vault.
func KeyID(v string) zap.Field {
	return zap.String("key_id", v)
}

// =================================================================================
// CAMPOS ESTÁNDAR - SISTEMA
// =================================================================================

// Component crea un campo para el componente/módulo.
func Component(v string) zap.Field {
	return zap.String("component", v)
}

// Op crea un campo para la operación actual.
func Op(v string) zap.Field {
	return zap.String("op", v)
}

// Driver crea un campo para el driver de un store (memory, fs, redis, postgres).
func Driver(v string) zap.Field {
	return zap.String("driver", v)
}

// Err crea un campo para un error.
func Err(err error) zap.Field {
	return zap.Error(err)
}

// Count crea un campo para un conteo.
func Count(v int) zap.Field {
	return zap.Int("count", v)
}
