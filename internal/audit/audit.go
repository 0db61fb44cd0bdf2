// Package audit emite eventos estructurados de auditoría para las operaciones
// del core (issue, validate, revoke, encrypt, decrypt).
//
// Los eventos salen por el logger zap del proceso bajo el namespace "audit".
// Nunca incluyen material de claves ni plaintext: solo identificadores y
// razones (que el caller ya posee).
package audit

import (
	"context"

	"go.uber.org/zap"

	"github.com/hushh-labs/consentcore/internal/observability/logger"
)

// Event escribe un evento de auditoría. En el futuro puede cablearse a un
// sink externo (DB, stream) sin tocar los call sites.
func Event(ctx context.Context, event string, fields ...zap.Field) {
	all := make([]zap.Field, 0, len(fields)+1)
	all = append(all, zap.String("event", event))
	all = append(all, fields...)
	logger.From(ctx).Named("audit").Info(event, all...)
}
