package revocation

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hushh-labs/consentcore/internal/metrics"
)

// PG es el backend Postgres. El schema está en migrations/postgres.
// ON CONFLICT DO NOTHING implementa el append idempotente: revocaciones
// concurrentes del mismo token dejan una sola fila, la primera.
type PG struct {
	pool *pgxpool.Pool
}

// NewPG conecta el pool y verifica con un Ping.
func NewPG(ctx context.Context, dsn string) (*PG, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("revocation pg: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("revocation pg: ping: %w", err)
	}
	return &PG{pool: pool}, nil
}

func (p *PG) Revoke(ctx context.Context, tokenID, reason string) error {
	const query = `
		INSERT INTO consent_revocation (token_id, revoked_at, reason)
		VALUES ($1, NOW(), $2)
		ON CONFLICT (token_id) DO NOTHING
	`
	tag, err := p.pool.Exec(ctx, query, tokenID, reason)
	if err != nil {
		return fmt.Errorf("revocation pg: insert: %w", err)
	}
	if tag.RowsAffected() > 0 {
		metrics.TokensRevoked.Inc()
	}
	return nil
}

func (p *PG) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM consent_revocation WHERE token_id = $1)`
	var revoked bool
	if err := p.pool.QueryRow(ctx, query, tokenID).Scan(&revoked); err != nil {
		return false, fmt.Errorf("revocation pg: exists: %w", err)
	}
	return revoked, nil
}

func (p *PG) Get(ctx context.Context, tokenID string) (*Entry, error) {
	const query = `SELECT token_id, revoked_at, reason FROM consent_revocation WHERE token_id = $1`
	var e Entry
	err := p.pool.QueryRow(ctx, query, tokenID).Scan(&e.TokenID, &e.RevokedAt, &e.Reason)
	if err == pgx.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("revocation pg: get: %w", err)
	}
	return &e, nil
}

func (p *PG) Close() error {
	p.pool.Close()
	return nil
}
