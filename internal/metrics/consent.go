package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Consent/vault Prometheus metrics. Definidas en un package standalone para
// evitar ciclos de import entre token, vault y bootstrap.

var (
	TokensIssued = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "consent_tokens_issued_total",
		Help: "Consent tokens emitidos",
	})

	TokenValidations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "consent_token_validations_total",
		Help: "Validaciones de tokens por razón (valid, bad_signature, expired, revoked, scope_mismatch, malformed)",
	}, []string{"reason"})

	TokensRevoked = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "consent_tokens_revoked_total",
		Help: "Revocaciones efectivas (no cuenta re-revocaciones idempotentes)",
	})

	VaultEncrypts = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "vault_encrypt_total",
		Help: "Operaciones de cifrado del vault",
	})

	VaultDecryptFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "vault_decrypt_failures_total",
		Help: "Descifrados fallidos (tamper, clave incorrecta, registro truncado)",
	})
)

// Register registra las métricas del core en el registry dado (o el default si es nil).
func Register(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	cs := []prometheus.Collector{
		TokensIssued,
		TokenValidations,
		TokensRevoked,
		VaultEncrypts,
		VaultDecryptFailures,
	}
	for _, c := range cs {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return err
			}
		}
	}
	return nil
}
