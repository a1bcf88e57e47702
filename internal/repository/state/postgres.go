package state

import (
	"context"
	"errors"

	"github.com/HuyGoodBoy/yogalanding-sub000/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) Get(ctx context.Context, clientID, key string) ([]byte, error) {
	const q = `
SELECT value
FROM client_state
WHERE client_id = $1 AND key = $2
`
	var value string
	if err := r.pool.QueryRow(ctx, q, clientID, key).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return []byte(value), nil
}

func (r *postgresRepo) Set(ctx context.Context, clientID, key string, value []byte) error {
	const q = `
INSERT INTO client_state (client_id, key, value, updated_at)
VALUES ($1, $2, $3, now())
ON CONFLICT (client_id, key) DO UPDATE
SET value = EXCLUDED.value,
    updated_at = EXCLUDED.updated_at
`
	_, err := r.pool.Exec(ctx, q, clientID, key, string(value))
	return err
}

func (r *postgresRepo) Delete(ctx context.Context, clientID, key string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM client_state WHERE client_id = $1 AND key = $2`, clientID, key)
	return err
}
