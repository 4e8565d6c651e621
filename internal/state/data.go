package state

import (
	"encoding/json"
	"fmt"
	"time"

	cart "github.com/luciferfruits/storefront/internal/cart/domain"
	catalog "github.com/luciferfruits/storefront/internal/catalog/domain"
	message "github.com/luciferfruits/storefront/internal/message/domain"
	order "github.com/luciferfruits/storefront/internal/order/domain"
	"github.com/luciferfruits/storefront/pkg/outbox"
)

// Storage keys, one JSON document each.
const (
	KeyProducts = "products"
	KeyCart     = "cart"
	KeyOrders   = "orders"
	KeyMessages = "messages"
	KeyOutbox   = "outbox"
	KeyMeta     = "meta"
)

var AllKeys = []string{KeyProducts, KeyCart, KeyOrders, KeyMessages, KeyOutbox, KeyMeta}

// Meta holds the id counters so ids stay monotonic across restarts.
type Meta struct {
	LastOrderID   int64 `json:"lastOrderId"`
	LastMessageID int64 `json:"lastMessageId"`
	LastEventID   int64 `json:"lastEventId"`
	// DroppedEvents counts outbox events given up after MaxDispatchAttempts.
	DroppedEvents int64 `json:"droppedEvents,omitempty"`
}

type Data struct {
	Products []catalog.Product
	Cart     []cart.Item
	Orders   []order.Order
	Messages []message.Message
	Outbox   []outbox.Event
	Meta     Meta
}

// clone copies every collection so a transaction can be discarded. Elements
// are replaced, never mutated through shared pointers, so a shallow element
// copy is enough.
func (d Data) clone() Data {
	return Data{
		Products: append([]catalog.Product(nil), d.Products...),
		Cart:     append([]cart.Item(nil), d.Cart...),
		Orders:   append([]order.Order(nil), d.Orders...),
		Messages: append([]message.Message(nil), d.Messages...),
		Outbox:   append([]outbox.Event(nil), d.Outbox...),
		Meta:     d.Meta,
	}
}

func (d *Data) target(key string) (any, error) {
	switch key {
	case KeyProducts:
		return &d.Products, nil
	case KeyCart:
		return &d.Cart, nil
	case KeyOrders:
		return &d.Orders, nil
	case KeyMessages:
		return &d.Messages, nil
	case KeyOutbox:
		return &d.Outbox, nil
	case KeyMeta:
		return &d.Meta, nil
	}
	return nil, fmt.Errorf("unknown state key %q", key)
}

func (d *Data) encode(key string) ([]byte, error) {
	switch key {
	case KeyProducts:
		return json.Marshal(orEmpty(d.Products))
	case KeyCart:
		return json.Marshal(orEmpty(d.Cart))
	case KeyOrders:
		return json.Marshal(orEmpty(d.Orders))
	case KeyMessages:
		return json.Marshal(orEmpty(d.Messages))
	case KeyOutbox:
		return json.Marshal(orEmpty(d.Outbox))
	case KeyMeta:
		return json.Marshal(d.Meta)
	}
	return nil, fmt.Errorf("unknown state key %q", key)
}

func (d *Data) decode(key string, raw []byte) error {
	t, err := d.target(key)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, t)
}

// BackupKey names where an unreadable document is kept before the cleaned
// version replaces it.
func BackupKey(key string, at time.Time) string {
	return fmt.Sprintf("%s.unreadable.%d", key, at.UnixMilli())
}

// salvage decodes a collection record by record after the whole document
// failed, keeping what is readable. It returns how many records were dropped;
// a document that is not a list at all counts as one and leaves the
// collection empty.
func (d *Data) salvage(key string, raw []byte) int {
	switch key {
	case KeyProducts:
		return salvageList(raw, &d.Products)
	case KeyCart:
		return salvageList(raw, &d.Cart)
	case KeyOrders:
		return salvageList(raw, &d.Orders)
	case KeyMessages:
		return salvageList(raw, &d.Messages)
	case KeyOutbox:
		return salvageList(raw, &d.Outbox)
	}
	d.Meta = Meta{}
	return 1
}

func salvageList[T any](raw []byte, dst *[]T) int {
	*dst = nil
	var records []json.RawMessage
	if err := json.Unmarshal(raw, &records); err != nil {
		return 1
	}
	dropped := 0
	for _, r := range records {
		var v T
		if err := json.Unmarshal(r, &v); err != nil {
			dropped++
			continue
		}
		*dst = append(*dst, v)
	}
	return dropped
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
