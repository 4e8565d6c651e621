package pgdriver

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luciferfruits/storefront/internal/testenv"
)

func TestDriverAgainstPostgres(t *testing.T) {
	url := testenv.Postgres(t)
	ctx := context.Background()

	pool, err := pgxpool.New(ctx, url)
	require.NoError(t, err)
	d, err := New(ctx, slog.New(slog.NewTextHandler(io.Discard, nil)), pool)
	require.NoError(t, err)
	defer d.Close()

	require.NoError(t, d.Save(ctx, map[string][]byte{
		"products": []byte(`[{"id":"p1","name":"Mango"}]`),
		"meta":     []byte(`{"lastOrderId":3}`),
	}))
	require.NoError(t, d.Save(ctx, map[string][]byte{"meta": []byte(`{"lastOrderId":4}`)}))

	got, err := d.Load(ctx, []string{"products", "meta", "orders"})
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"p1","name":"Mango"}]`, string(got["products"]))
	assert.JSONEq(t, `{"lastOrderId":4}`, string(got["meta"]))
	assert.NotContains(t, got, "orders")
}
