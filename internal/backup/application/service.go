package application

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"time"

	catalog "github.com/luciferfruits/storefront/internal/catalog/domain"
	message "github.com/luciferfruits/storefront/internal/message/domain"
	order "github.com/luciferfruits/storefront/internal/order/domain"
	"github.com/luciferfruits/storefront/internal/state"
	"github.com/luciferfruits/storefront/pkg/apperr"
)

// ExportDateLayout is ISO-8601 with milliseconds, always rendered in UTC.
const ExportDateLayout = "2006-01-02T15:04:05.000Z07:00"

type Snapshot struct {
	Products   []catalog.Product `json:"products"`
	Orders     []order.Order     `json:"orders"`
	Messages   []message.Message `json:"messages"`
	ExportDate string            `json:"exportDate"`
}

type Service struct {
	log   *slog.Logger
	store StateStore
	now   func() time.Time
}

func NewService(log *slog.Logger, store StateStore) *Service {
	return &Service{log: log, store: store, now: time.Now}
}

func (s *Service) Export() Snapshot {
	var snap Snapshot
	s.store.View(func(d state.Data) {
		snap = Snapshot{
			Products: nonNil(d.Products),
			Orders:   nonNil(d.Orders),
			Messages: nonNil(d.Messages),
		}
	})
	snap.ExportDate = s.now().UTC().Format(ExportDateLayout)
	return snap
}

// Import replaces every collection present in doc. Absent or null keys keep
// their current contents.
func (s *Service) Import(ctx context.Context, doc []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(doc, &raw); err != nil || raw == nil {
		return fmt.Errorf("%w: backup must be a JSON object", apperr.ErrFormat)
	}

	var (
		products *[]catalog.Product
		orders   *[]order.Order
		messages *[]message.Message
	)
	if err := field(raw, "products", &products); err != nil {
		return err
	}
	if err := field(raw, "orders", &orders); err != nil {
		return err
	}
	if err := field(raw, "messages", &messages); err != nil {
		return err
	}

	var replaced []string
	err := s.store.Update(ctx, func(tx *state.Tx) error {
		if products != nil {
			tx.Products = *products
			replaced = append(replaced, state.KeyProducts)
		}
		if orders != nil {
			tx.Orders = *orders
			replaced = append(replaced, state.KeyOrders)
		}
		if messages != nil {
			tx.Messages = *messages
			replaced = append(replaced, state.KeyMessages)
		}
		tx.Touch(replaced...)
		tx.Reconcile()
		return nil
	})
	if err != nil {
		return err
	}
	s.log.Info("backup imported", "replaced", replaced)
	return nil
}

// field decodes raw[key] into *dst, leaving dst nil when the key is missing
// or null.
func field[T any](raw map[string]json.RawMessage, key string, dst **[]T) error {
	b, ok := raw[key]
	if !ok || string(b) == "null" {
		return nil
	}
	var v []T
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("%w: %s: %v", apperr.ErrFormat, key, err)
	}
	if v == nil {
		v = []T{}
	}
	*dst = &v
	return nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return slices.Clone(s)
}
