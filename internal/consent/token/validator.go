package token

import (
	"context"
	"errors"
	"fmt"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"

	"github.com/hushh-labs/consentcore/internal/consent/revocation"
	"github.com/hushh-labs/consentcore/internal/consent/scope"
	"github.com/hushh-labs/consentcore/internal/metrics"
)

// Validator decide si un token presentado es válido para un scope esperado.
//
// Orden de chequeo, cortocircuitando en el primer fallo:
//  1. Firma (nada de un token forjado merece confianza, ni su expiración).
//  2. Expiración.
//  3. Revocación (consulta el Store).
//  4. Scope por igualdad exacta.
//
// La función es pura dado un snapshot del estado de revocación: no muta el
// token ni el store.
type Validator struct {
	registry    *scope.Registry
	revocations revocation.Store
	key         []byte

	// Inyectable en tests para controlar el reloj.
	now func() time.Time
}

// NewValidator construye un Validator con la misma clave de firma del Issuer.
func NewValidator(reg *scope.Registry, rev revocation.Store, signingKey []byte) *Validator {
	return &Validator{
		registry:    reg,
		revocations: rev,
		key:         signingKey,
		now:         time.Now,
	}
}

// Validate verifica raw contra expectedScope y retorna la decisión con razón.
//
// Un expectedScope no registrado es un bug del caller, no un veredicto sobre
// el token: se retorna ErrInvalidScope como error. Un fallo de I/O del store
// de revocación también es error (nunca se degrada a un "valid" silencioso).
func (v *Validator) Validate(ctx context.Context, raw string, expectedScope scope.Scope) (Result, error) {
	if !v.registry.IsRegistered(expectedScope) {
		return Result{}, fmt.Errorf("%w: %q", ErrInvalidScope, expectedScope)
	}

	// 1. Firma. WithoutClaimsValidation: exp/iat se chequean a mano abajo
	// para controlar el orden y la razón exacta.
	parser := jwtv5.NewParser(
		jwtv5.WithValidMethods([]string{"HS256"}),
		jwtv5.WithoutClaimsValidation(),
	)
	tok, err := parser.Parse(raw, func(t *jwtv5.Token) (any, error) {
		return v.key, nil
	})
	if err != nil {
		if errors.Is(err, jwtv5.ErrTokenMalformed) {
			return v.reject(ReasonMalformed), nil
		}
		return v.reject(ReasonBadSignature), nil
	}

	claims, err := parseClaims(tok)
	if err != nil {
		return v.reject(ReasonMalformed), nil
	}

	// 2. Expiración.
	if v.now().After(claims.ExpiresAt) {
		return v.reject(ReasonExpired), nil
	}

	// 3. Revocación.
	revoked, err := v.revocations.IsRevoked(ctx, claims.TokenID)
	if err != nil {
		return Result{}, fmt.Errorf("revocation check: %w", err)
	}
	if revoked {
		return v.reject(ReasonRevoked), nil
	}

	// 4. Scope, igualdad exacta. Sin wildcards ni jerarquías.
	if claims.Scope != expectedScope {
		return v.reject(ReasonScopeMismatch), nil
	}

	metrics.TokenValidations.WithLabelValues(string(ReasonValid)).Inc()
	return Result{Valid: true, Reason: ReasonValid, Claims: claims}, nil
}

func (v *Validator) reject(r Reason) Result {
	metrics.TokenValidations.WithLabelValues(string(r)).Inc()
	return Result{Valid: false, Reason: r}
}

// parseClaims extrae los claims tipados de un token ya verificado.
// Cualquier campo faltante o de tipo incorrecto => malformed.
func parseClaims(tok *jwtv5.Token) (*Claims, error) {
	m, ok := tok.Claims.(jwtv5.MapClaims)
	if !ok {
		return nil, errors.New("claims_type")
	}

	jti, _ := m[claimTokenID].(string)
	sub, _ := m[claimUserID].(string)
	aud, _ := m[claimAgentID].(string)
	sc, _ := m[claimScope].(string)
	if jti == "" || sub == "" || aud == "" || sc == "" {
		return nil, errors.New("missing_claims")
	}

	exp, err := m.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, errors.New("missing_exp")
	}
	iat, err := m.GetIssuedAt()
	if err != nil || iat == nil {
		return nil, errors.New("missing_iat")
	}
	if !exp.Time.After(iat.Time) {
		return nil, errors.New("exp_before_iat")
	}

	return &Claims{
		TokenID:   jti,
		UserID:    sub,
		AgentID:   aud,
		Scope:     scope.Scope(sc),
		IssuedAt:  iat.Time,
		ExpiresAt: exp.Time,
	}, nil
}
