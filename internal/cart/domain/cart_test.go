package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalog "github.com/luciferfruits/storefront/internal/catalog/domain"
	"github.com/luciferfruits/storefront/pkg/apperr"
)

func product(id, name, price string, qty int) catalog.Product {
	return catalog.Product{ID: id, Name: name, Price: decimal.RequireFromString(price), Quantity: catalog.Stock(qty)}
}

func TestAddUpToStock(t *testing.T) {
	p := product("p1", "Mango", "2", 3)

	var items []Item
	for i := 0; i < 3; i++ {
		var err error
		items, err = Add(items, p)
		require.NoError(t, err)
	}
	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Quantity)

	_, err := Add(items, p)
	assert.ErrorIs(t, err, apperr.ErrInsufficientStock)
	assert.Equal(t, 3, items[0].Quantity)
}

func TestAddOutOfStock(t *testing.T) {
	_, err := Add(nil, product("p1", "Mango", "2", 0))
	assert.ErrorIs(t, err, apperr.ErrOutOfStock)
}

func TestAddDoesNotModifyInput(t *testing.T) {
	p := product("p1", "Mango", "2", 5)
	items := []Item{NewItem(p)}

	out, err := Add(items, p)
	require.NoError(t, err)
	assert.Equal(t, 1, items[0].Quantity)
	assert.Equal(t, 2, out[0].Quantity)
}

func TestTotalsAndCount(t *testing.T) {
	items := []Item{
		{ProductID: "a", Name: "A", Price: decimal.RequireFromString("1.10"), Quantity: 3},
		{ProductID: "b", Name: "B", Price: decimal.RequireFromString("0.25"), Quantity: 2},
	}
	assert.True(t, decimal.RequireFromString("3.80").Equal(ComputeTotal(items)))
	assert.Equal(t, 5, Count(items))
	assert.True(t, decimal.Zero.Equal(ComputeTotal(nil)))
}

func TestLegacyItemMatchesByName(t *testing.T) {
	p := product("p1", "Mango", "2", 5)
	assert.True(t, Item{Name: "Mango"}.Matches(p))
	assert.False(t, Item{ProductID: "other", Name: "Mango"}.Matches(p))
}

func TestValidateAgainstStock(t *testing.T) {
	products := []catalog.Product{product("a", "Apple", "1", 2), product("b", "Banana", "1", 10)}
	items := []Item{
		{ProductID: "a", Name: "Apple", Quantity: 3},
		{ProductID: "b", Name: "Banana", Quantity: 1},
		{ProductID: "gone", Name: "Kiwi", Quantity: 1},
	}

	sf := ValidateAgainstStock(items, products)
	require.Len(t, sf, 2)
	assert.Equal(t, "Apple - Only 2 available, but 3 in cart", sf[0].String())
	assert.Equal(t, Shortfall{Name: "Kiwi", ProductID: "gone", Requested: 1, Available: 0}, sf[1])

	err := &ShortfallError{Shortfalls: sf}
	assert.ErrorIs(t, err, apperr.ErrStockShortfall)
	assert.Contains(t, err.Error(), "Apple - Only 2 available")
}
