package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hushh-labs/consentcore/internal/vault"
)

// PG es el backend Postgres. El schema está en migrations/postgres.
// El UPSERT es atómico por fila, lo que serializa las escrituras sobre un
// mismo (owner, key) del lado del servidor.
type PG struct {
	pool *pgxpool.Pool
}

// NewPG conecta el pool y verifica con un Ping.
func NewPG(ctx context.Context, dsn string) (*PG, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("vault pg: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("vault pg: ping: %w", err)
	}
	return &PG{pool: pool}, nil
}

func (p *PG) Put(ctx context.Context, rec *vault.Record) error {
	if !ValidRecordID(rec.OwnerID) || !ValidRecordID(rec.KeyID) {
		return fmt.Errorf("vault pg: id inválido (%q, %q)", rec.OwnerID, rec.KeyID)
	}
	const query = `
		INSERT INTO vault_record (owner_id, key_id, nonce, ciphertext, tag, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (owner_id, key_id)
		DO UPDATE SET nonce = $3, ciphertext = $4, tag = $5, updated_at = NOW()
	`
	_, err := p.pool.Exec(ctx, query, rec.OwnerID, rec.KeyID, rec.Nonce, rec.Ciphertext, rec.Tag)
	if err != nil {
		return fmt.Errorf("vault pg: upsert: %w", err)
	}
	return nil
}

func (p *PG) Get(ctx context.Context, ownerID, keyID string) (*vault.Record, error) {
	const query = `
		SELECT owner_id, key_id, nonce, ciphertext, tag, updated_at
		FROM vault_record WHERE owner_id = $1 AND key_id = $2
	`
	var rec vault.Record
	err := p.pool.QueryRow(ctx, query, ownerID, keyID).Scan(
		&rec.OwnerID, &rec.KeyID, &rec.Nonce, &rec.Ciphertext, &rec.Tag, &rec.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("vault pg: get: %w", err)
	}
	return &rec, nil
}

func (p *PG) Delete(ctx context.Context, ownerID, keyID string) error {
	const query = `DELETE FROM vault_record WHERE owner_id = $1 AND key_id = $2`
	_, err := p.pool.Exec(ctx, query, ownerID, keyID)
	if err != nil {
		return fmt.Errorf("vault pg: delete: %w", err)
	}
	return nil
}

func (p *PG) Close() error {
	p.pool.Close()
	return nil
}
