package pgdriver

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `CREATE TABLE IF NOT EXISTS kv (
	key TEXT PRIMARY KEY,
	value JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
)`

type Driver struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

// New ensures the kv table exists before returning.
func New(ctx context.Context, log *slog.Logger, pool *pgxpool.Pool) (*Driver, error) {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return nil, fmt.Errorf("create kv table: %w", err)
	}
	return &Driver{log: log, pool: pool}, nil
}

func (d *Driver) Load(ctx context.Context, keys []string) (map[string][]byte, error) {
	rows, err := d.pool.Query(ctx, `SELECT key, value FROM kv WHERE key = ANY($1)`, keys)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string][]byte, len(keys))
	for rows.Next() {
		var k string
		var v []byte
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, rows.Err()
}

func (d *Driver) Save(ctx context.Context, values map[string][]byte) error {
	if len(values) == 0 {
		return nil
	}
	tx, err := d.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	now := time.Now().UTC()
	batch := &pgx.Batch{}
	for k, v := range values {
		batch.Queue(`INSERT INTO kv (key, value, updated_at) VALUES ($1, $2, $3)
			ON CONFLICT (key) DO UPDATE SET value = $2, updated_at = $3`,
			k, string(v), now)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (d *Driver) Close() error {
	d.pool.Close()
	return nil
}
