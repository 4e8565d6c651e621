package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cart "github.com/luciferfruits/storefront/internal/cart/domain"
	"github.com/luciferfruits/storefront/pkg/apperr"
)

func TestParseAdminStatus(t *testing.T) {
	s, err := ParseAdminStatus("completed")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, s)

	s, err = ParseAdminStatus(" Cancelled ")
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, s)

	_, err = ParseAdminStatus("processing")
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = ParseAdminStatus("shipped")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestCustomerValidate(t *testing.T) {
	assert.NoError(t, Customer{Name: "Ann", Email: "ann@x.io"}.Validate())
	assert.ErrorIs(t, Customer{Name: "Ann"}.Validate(), apperr.ErrValidation)
	assert.ErrorIs(t, Customer{Email: "ann@x.io"}.Validate(), apperr.ErrValidation)
}

func TestNewOrderSnapshotsItems(t *testing.T) {
	items := []cart.Item{{ProductID: "a", Name: "Apple", Price: decimal.RequireFromString("1.5"), Quantity: 2}}
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	o := NewOrder(42, Customer{Name: " Ann ", Email: "ann@x.io", GameID: "g1"}, items, now)
	items[0].Quantity = 99

	assert.Equal(t, int64(42), o.ID)
	assert.Equal(t, "Ann", o.CustomerName)
	assert.Equal(t, StatusProcessing, o.Status)
	assert.Equal(t, 2, o.Products[0].Quantity)
	assert.True(t, decimal.RequireFromString("3").Equal(o.Total))
	assert.Equal(t, now, o.CreatedAt)
	assert.Equal(t, now.Local().Format(DateLayout), o.Date)
}

func TestFindByEmailIgnoresCase(t *testing.T) {
	orders := []Order{
		{ID: 1, CustomerEmail: "Ann@Example.com"},
		{ID: 2, CustomerEmail: "bob@example.com"},
		{ID: 3, CustomerEmail: "ann@example.com"},
	}
	got := FindByEmail(orders, "ANN@example.COM")
	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].ID)
	assert.Equal(t, int64(3), got[1].ID)

	assert.Empty(t, FindByEmail(orders, "nobody@example.com"))
	assert.NotNil(t, FindByEmail(nil, "x"))
}

func TestNewOrderPlaced(t *testing.T) {
	o := NewOrder(7, Customer{Name: "Ann", Email: "a@x.io"},
		[]cart.Item{{ProductID: "a", Name: "Apple", Price: decimal.RequireFromString("0.5"), Quantity: 3}},
		time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))

	ev := NewOrderPlaced(o)
	assert.Equal(t, int64(7), ev.OrderID)
	assert.Equal(t, "1.50", ev.Total)
	assert.Equal(t, "2026-01-02T03:04:05.000Z", ev.OccurredAt)
	assert.Equal(t, []PlacedRow{{ProductID: "a", Name: "Apple", Quantity: 3}}, ev.Items)
}
