package token

import (
	"fmt"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/hushh-labs/consentcore/internal/consent/scope"
	"github.com/hushh-labs/consentcore/internal/metrics"
)

// Issuer firma consent tokens con la clave de firma del proceso.
// Sin side effects: emitir no persiste nada (la validación es self-contained
// más el chequeo de revocación).
type Issuer struct {
	registry *scope.Registry
	key      []byte

	// Inyectable en tests para controlar el reloj.
	now func() time.Time
}

// NewIssuer construye un Issuer. La clave viene de config (ya validada al
// arranque: 32 bytes); el registry define qué scopes pueden emitirse.
func NewIssuer(reg *scope.Registry, signingKey []byte) *Issuer {
	return &Issuer{
		registry: reg,
		key:      signingKey,
		now:      time.Now,
	}
}

// Issue emite un token para la tripleta (user, agent, scope) con el TTL dado.
//
// Precondiciones: el scope debe estar registrado y ttl > 0.
// Claims firmados: jti (uuid), sub, aud, scope, iat, exp.
func (i *Issuer) Issue(userID, agentID string, sc scope.Scope, ttl time.Duration) (*ConsentToken, error) {
	if !i.registry.IsRegistered(sc) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidScope, sc)
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidTTL, ttl)
	}

	now := i.now().UTC().Truncate(time.Second)
	exp := now.Add(ttl)
	jti := uuid.NewString()

	claims := jwtv5.MapClaims{
		claimTokenID: jti,
		claimUserID:  userID,
		claimAgentID: agentID,
		claimScope:   string(sc),
		"iat":        jwtv5.NewNumericDate(now),
		"exp":        jwtv5.NewNumericDate(exp),
	}
	tk := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	tk.Header["typ"] = "JWT"

	signed, err := tk.SignedString(i.key)
	if err != nil {
		return nil, fmt.Errorf("sign: %w", err)
	}

	metrics.TokensIssued.Inc()

	return &ConsentToken{
		Claims: Claims{
			TokenID:   jti,
			UserID:    userID,
			AgentID:   agentID,
			Scope:     sc,
			IssuedAt:  now,
			ExpiresAt: exp,
		},
		Raw: signed,
	}, nil
}
