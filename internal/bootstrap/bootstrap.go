// Package bootstrap arma el core completo desde configuración: registry,
// issuer, validator, store de revocación, vault y store de registros.
//
// Expone la superficie que consumen los colaboradores externos (quiz, scoring,
// búsqueda de productos, supply chain): IssueToken, ValidateToken, RevokeToken,
// EncryptData, DecryptData. Todo lo demás es detalle interno.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hushh-labs/consentcore/internal/audit"
	"github.com/hushh-labs/consentcore/internal/config"
	"github.com/hushh-labs/consentcore/internal/consent/revocation"
	"github.com/hushh-labs/consentcore/internal/consent/scope"
	"github.com/hushh-labs/consentcore/internal/consent/token"
	"github.com/hushh-labs/consentcore/internal/metrics"
	"github.com/hushh-labs/consentcore/internal/observability/logger"
	"github.com/hushh-labs/consentcore/internal/vault"
	vaultstore "github.com/hushh-labs/consentcore/internal/vault/store"
)

// Core agrupa los componentes cableados. Los campos se exponen para tests y
// tooling; los colaboradores normales usan los métodos.
type Core struct {
	Registry    *scope.Registry
	Issuer      *token.Issuer
	Validator   *token.Validator
	Revocations revocation.Store
	Vault       *vault.Vault
	Records     vaultstore.Store

	defaultTTL time.Duration
}

// New construye el Core. Los errores acá son de arranque (config inválida,
// backend inaccesible) y el proceso debe abortar; después del arranque ningún
// fallo por llamada tumba el proceso.
func New(ctx context.Context, cfg *config.Config) (*Core, error) {
	names := make([]string, 0, len(cfg.Scopes))
	for _, s := range cfg.Scopes {
		names = append(names, s.Name)
	}
	var reg *scope.Registry
	var err error
	if len(names) == 0 {
		reg = scope.Default()
	} else {
		reg, err = scope.NewRegistry(names)
		if err != nil {
			return nil, err
		}
	}

	if err := metrics.Register(nil); err != nil {
		return nil, err
	}

	rev, err := buildRevocation(ctx, cfg)
	if err != nil {
		return nil, err
	}

	v, err := vault.New(cfg.Keys.VaultMaster)
	if err != nil {
		rev.Close()
		return nil, err
	}

	recs, err := buildVaultStore(ctx, cfg)
	if err != nil {
		rev.Close()
		return nil, err
	}

	logger.Named("bootstrap").Info("core listo",
		logger.Driver(cfg.Consent.Revocation.Driver),
		zap.String("vault_driver", cfg.Vault.Store.Driver),
		logger.Count(len(reg.List())),
	)

	return &Core{
		Registry:    reg,
		Issuer:      token.NewIssuer(reg, cfg.Keys.Signing),
		Validator:   token.NewValidator(reg, rev, cfg.Keys.Signing),
		Revocations: rev,
		Vault:       v,
		Records:     recs,
		defaultTTL:  cfg.DefaultTTL(),
	}, nil
}

func buildRevocation(ctx context.Context, cfg *config.Config) (revocation.Store, error) {
	rc := cfg.Consent.Revocation
	switch rc.Driver {
	case "memory", "":
		return revocation.NewMemory(0), nil
	case "fs":
		return revocation.NewFS(rc.Path)
	case "redis":
		inner, err := revocation.NewRedis(ctx, revocation.RedisConfig{
			Addr:   rc.Redis.Addr,
			DB:     rc.Redis.DB,
			Prefix: rc.Redis.Prefix,
		})
		if err != nil {
			return nil, err
		}
		return revocation.NewCached(inner), nil
	case "postgres":
		inner, err := revocation.NewPG(ctx, rc.Postgres.DSN)
		if err != nil {
			return nil, err
		}
		return revocation.NewCached(inner), nil
	default:
		return nil, fmt.Errorf("revocation driver desconocido: %q", rc.Driver)
	}
}

func buildVaultStore(ctx context.Context, cfg *config.Config) (vaultstore.Store, error) {
	vc := cfg.Vault.Store
	switch vc.Driver {
	case "memory", "":
		return vaultstore.NewMemory(), nil
	case "fs":
		return vaultstore.NewFS(vc.Path)
	case "postgres":
		return vaultstore.NewPG(ctx, vc.Postgres.DSN)
	default:
		return nil, fmt.Errorf("vault store driver desconocido: %q", vc.Driver)
	}
}

// IssueToken emite un token para (userID, agentID, scope). Un ttl <= 0 es
// error del caller (ErrInvalidTTL); DefaultTTL() está disponible para quien
// quiera el default de config explícitamente.
func (c *Core) IssueToken(ctx context.Context, userID, agentID string, sc scope.Scope, ttl time.Duration) (*token.ConsentToken, error) {
	tk, err := c.Issuer.Issue(userID, agentID, sc, ttl)
	if err != nil {
		return nil, err
	}
	audit.Event(ctx, "consent.token.issued",
		logger.TokenID(tk.TokenID),
		logger.UserID(userID),
		logger.AgentID(agentID),
		logger.Scope(string(sc)),
		logger.ExpiresAt(tk.ExpiresAt),
	)
	return tk, nil
}

// DefaultTTL es el TTL configurado para emisiones sin TTL explícito.
func (c *Core) DefaultTTL() time.Duration { return c.defaultTTL }

// ValidateToken valida raw contra expectedScope.
func (c *Core) ValidateToken(ctx context.Context, raw string, expectedScope scope.Scope) (token.Result, error) {
	res, err := c.Validator.Validate(ctx, raw, expectedScope)
	if err != nil {
		return token.Result{}, err
	}
	fields := []zap.Field{
		logger.Scope(string(expectedScope)),
		logger.Reason(string(res.Reason)),
	}
	if res.Claims != nil {
		fields = append(fields, logger.TokenID(res.Claims.TokenID), logger.UserID(res.Claims.UserID))
	}
	audit.Event(ctx, "consent.token.validated", fields...)
	return res, nil
}

// RevokeToken revoca tokenID. Idempotente.
func (c *Core) RevokeToken(ctx context.Context, tokenID, reason string) error {
	if err := c.Revocations.Revoke(ctx, tokenID, reason); err != nil {
		return err
	}
	audit.Event(ctx, "consent.token.revoked",
		logger.TokenID(tokenID),
		logger.Reason(reason),
	)
	return nil
}

// EncryptData cifra plaintext para (ownerID, keyID) y persiste el registro.
func (c *Core) EncryptData(ctx context.Context, ownerID, keyID string, plaintext []byte) (*vault.Record, error) {
	rec, err := c.Vault.Encrypt(ownerID, keyID, plaintext)
	if err != nil {
		return nil, err
	}
	if err := c.Records.Put(ctx, rec); err != nil {
		return nil, err
	}
	audit.Event(ctx, "vault.record.stored",
		logger.OwnerID(ownerID),
		logger.KeyID(keyID),
	)
	return rec, nil
}

// DecryptData recupera y descifra el registro (ownerID, keyID).
func (c *Core) DecryptData(ctx context.Context, ownerID, keyID string) ([]byte, error) {
	rec, err := c.Records.Get(ctx, ownerID, keyID)
	if err != nil {
		return nil, err
	}
	pt, err := c.Vault.Decrypt(rec)
	if err != nil {
		audit.Event(ctx, "vault.record.decrypt_failed",
			logger.OwnerID(ownerID),
			logger.KeyID(keyID),
		)
		return nil, err
	}
	return pt, nil
}

// DeleteData destruye el registro (ownerID, keyID).
func (c *Core) DeleteData(ctx context.Context, ownerID, keyID string) error {
	if err := c.Records.Delete(ctx, ownerID, keyID); err != nil {
		return err
	}
	audit.Event(ctx, "vault.record.deleted",
		logger.OwnerID(ownerID),
		logger.KeyID(keyID),
	)
	return nil
}

// Close libera los backends.
func (c *Core) Close() error {
	err1 := c.Revocations.Close()
	err2 := c.Records.Close()
	if err1 != nil {
		return err1
	}
	return err2
}
