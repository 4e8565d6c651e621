package application

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalog "github.com/luciferfruits/storefront/internal/catalog/domain"
	message "github.com/luciferfruits/storefront/internal/message/domain"
	order "github.com/luciferfruits/storefront/internal/order/domain"
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

func seed(t *testing.T, h *state.Holder) {
	t.Helper()
	require.NoError(t, h.Update(context.Background(), func(tx *state.Tx) error {
		tx.Products = []catalog.Product{{ID: "p1", Name: "Mango", Image: "m.png", Price: decimal.RequireFromString("2.5"), Quantity: 4, Description: "sweet"}}
		tx.Orders = []order.Order{{ID: 10, CustomerName: "Ann", CustomerEmail: "a@x.io", Total: decimal.NewFromInt(5), Status: order.StatusCompleted, Date: "d"}}
		tx.Messages = []message.Message{{ID: 20, OrderID: 10, Text: "hi", Time: "t"}}
		tx.Touch(state.KeyProducts, state.KeyOrders, state.KeyMessages)
		return nil
	}))
}

// withoutExportDate re-encodes a snapshot minus its timestamp.
func withoutExportDate(t *testing.T, s Snapshot) string {
	t.Helper()
	s.ExportDate = ""
	b, err := json.Marshal(s)
	require.NoError(t, err)
	return string(b)
}

func TestExportFormat(t *testing.T) {
	svc, h := newService(t)
	seed(t, h)
	svc.now = func() time.Time { return time.Date(2026, 2, 3, 4, 5, 6, 789e6, time.FixedZone("X", 3600)) }

	snap := svc.Export()
	assert.Equal(t, "2026-02-03T03:05:06.789Z", snap.ExportDate)
	assert.Len(t, snap.Products, 1)

	empty, _ := newService(t)
	b, err := json.Marshal(empty.Export())
	require.NoError(t, err)
	assert.Contains(t, string(b), `"products":[]`)
}

func TestExportImportRoundTrip(t *testing.T) {
	svc, h := newService(t)
	seed(t, h)
	before := svc.Export()
	doc, err := json.Marshal(before)
	require.NoError(t, err)

	other, _ := newService(t)
	require.NoError(t, other.Import(context.Background(), doc))
	assert.JSONEq(t, withoutExportDate(t, before), withoutExportDate(t, other.Export()))
}

func TestImportMissingAndNullKeysKeepCollections(t *testing.T) {
	svc, h := newService(t)
	seed(t, h)

	err := svc.Import(context.Background(), []byte(`{"products":[{"name":"Kiwi","image":"k.png","price":"1","quantity":"2","description":""}],"orders":null}`))
	require.NoError(t, err)

	h.View(func(d state.Data) {
		require.Len(t, d.Products, 1)
		assert.Equal(t, "Kiwi", d.Products[0].Name)
		assert.NotEmpty(t, d.Products[0].ID)
		assert.Len(t, d.Orders, 1)
		assert.Len(t, d.Messages, 1)
	})
}

func TestImportAdvancesCounters(t *testing.T) {
	svc, h := newService(t)
	err := svc.Import(context.Background(), []byte(`{"orders":[{"id":99999999999999,"customerName":"A","customerEmail":"a","products":[],"total":"1","status":"processing","date":"d"}],"messages":[{"id":77,"orderId":1,"text":"x","time":"t"}]}`))
	require.NoError(t, err)

	h.View(func(d state.Data) {
		assert.Equal(t, int64(99999999999999), d.Meta.LastOrderID)
		assert.Equal(t, int64(77), d.Meta.LastMessageID)
	})
}

func TestImportRejectsMalformedDocuments(t *testing.T) {
	svc, h := newService(t)
	seed(t, h)

	for _, doc := range []string{`[1,2]`, `"text"`, `null`, `{bad`, `{"products":{"a":1}}`, `{"orders":"x"}`} {
		err := svc.Import(context.Background(), []byte(doc))
		assert.ErrorIs(t, err, apperr.ErrFormat, doc)
	}
	h.View(func(d state.Data) {
		assert.Equal(t, "Mango", d.Products[0].Name)
	})
}
