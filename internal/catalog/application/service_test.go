package application

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luciferfruits/storefront/internal/catalog/domain"
	"github.com/luciferfruits/storefront/internal/state"
	"github.com/luciferfruits/storefront/internal/storage/memorydriver"
	"github.com/luciferfruits/storefront/pkg/apperr"
)

func newService(t *testing.T) (*Service, *state.Holder) {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := state.NewHolder(log, memorydriver.New())
	require.NoError(t, h.Load(context.Background()))
	return NewService(log, h), h
}

func TestAddEditDelete(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	p, err := svc.AddProduct(ctx, domain.ProductFields{Name: "Mango", Image: "m.png", Price: "2", Quantity: "3"})
	require.NoError(t, err)

	got, err := svc.Get(p.ID)
	require.NoError(t, err)
	assert.Equal(t, p, got)

	edited, err := svc.EditProduct(ctx, p.ID, domain.ProductFields{Name: "Mango XL", Price: "4", Quantity: "8", Description: "big"})
	require.NoError(t, err)
	assert.Equal(t, "Mango XL", edited.Name)
	assert.Equal(t, "m.png", edited.Image)

	require.NoError(t, svc.DeleteProduct(ctx, p.ID))
	_, err = svc.Get(p.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.ErrorIs(t, svc.DeleteProduct(ctx, p.ID), apperr.ErrNotFound)
}

func TestAddProductRejectsMissingFields(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.AddProduct(context.Background(), domain.ProductFields{Name: "Mango"})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.Empty(t, svc.List())
}

func TestSetStock(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	p, err := svc.AddProduct(ctx, domain.ProductFields{Name: "Mango", Image: "m.png", Price: "2"})
	require.NoError(t, err)

	for in, want := range map[string]domain.Stock{"7": 7, "-4": 0, "junk": 0, "12 crates": 12} {
		got, err := svc.SetStock(ctx, p.ID, in)
		require.NoError(t, err)
		assert.Equal(t, want, got.Quantity, in)
	}

	_, err = svc.SetStock(ctx, "missing", "1")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestDuplicateNamesAreDistinctProducts(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	a, err := svc.AddProduct(ctx, domain.ProductFields{Name: "Mango", Image: "a.png", Price: "1"})
	require.NoError(t, err)
	b, err := svc.AddProduct(ctx, domain.ProductFields{Name: "Mango", Image: "b.png", Price: "1"})
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
	require.NoError(t, svc.DeleteProduct(ctx, b.ID))
	_, err = svc.Get(a.ID)
	assert.NoError(t, err)
}

func TestStats(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	for _, q := range []string{"0", "3", "5", "6"} {
		_, err := svc.AddProduct(ctx, domain.ProductFields{Name: "P" + q, Image: "i", Price: "1", Quantity: q})
		require.NoError(t, err)
	}

	st := svc.Stats()
	assert.Equal(t, 4, st.TotalProducts)
	assert.Equal(t, 0, st.TotalOrders)
	assert.Equal(t, 2, st.LowStockCount)
}
