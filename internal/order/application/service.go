package application

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strconv"

	cartapp "github.com/luciferfruits/storefront/internal/cart/application"
	cart "github.com/luciferfruits/storefront/internal/cart/domain"
	catalog "github.com/luciferfruits/storefront/internal/catalog/domain"
	"github.com/luciferfruits/storefront/internal/order/domain"
	"github.com/luciferfruits/storefront/internal/state"
	"github.com/luciferfruits/storefront/pkg/apperr"
)

var ErrOrderNotFound = fmt.Errorf("order %w", apperr.ErrNotFound)

const aggregateOrder = "order"

type Service struct {
	log   *slog.Logger
	store StateStore
}

func NewService(log *slog.Logger, store StateStore) *Service {
	return &Service{log: log, store: store}
}

// PlaceOrder turns the current cart into an order. Stock decrement, the new
// order, the emptied cart and the OrderPlaced event are committed together.
func (s *Service) PlaceOrder(ctx context.Context, c domain.Customer) (domain.Order, error) {
	if err := c.Validate(); err != nil {
		return domain.Order{}, err
	}

	var placed domain.Order
	err := s.store.Update(ctx, func(tx *state.Tx) error {
		if _, err := cartapp.Validate(tx.Cart, tx.Products); err != nil {
			return err
		}

		snapshot := slices.Clone(tx.Cart)
		for _, it := range snapshot {
			i, ok := cart.ProductFor(it, tx.Products)
			if !ok {
				continue
			}
			tx.Products[i].Quantity = max(0, tx.Products[i].Quantity-catalog.Stock(it.Quantity))
		}
		tx.Touch(state.KeyProducts)

		o := domain.NewOrder(tx.NextOrderID(), c, snapshot, tx.Now)
		tx.Orders = append(tx.Orders, o)
		tx.Touch(state.KeyOrders)

		cartapp.Clear(tx)

		placed = o
		return tx.Emit(ctx, aggregateOrder, strconv.FormatInt(o.ID, 10), domain.EventOrderPlaced, domain.NewOrderPlaced(o))
	})
	if err != nil {
		return domain.Order{}, err
	}
	s.log.Info("order placed", "order_id", placed.ID, "items", len(placed.Products), "total", placed.Total.StringFixed(2))
	return placed, nil
}

// UpdateStatus overwrites the status with completed or cancelled. There is no
// transition guard: a completed order can still be cancelled.
func (s *Service) UpdateStatus(ctx context.Context, id int64, status string) (domain.Order, error) {
	next, err := domain.ParseAdminStatus(status)
	if err != nil {
		return domain.Order{}, err
	}

	var updated domain.Order
	err = s.store.Update(ctx, func(tx *state.Tx) error {
		i := tx.FindOrder(id)
		if i < 0 {
			return ErrOrderNotFound
		}
		prev := tx.Orders[i].Status
		tx.Orders[i].Status = next
		updated = tx.Orders[i]
		tx.Touch(state.KeyOrders)
		return tx.Emit(ctx, aggregateOrder, strconv.FormatInt(id, 10), domain.EventOrderStatusChanged,
			domain.OrderStatusChanged{OrderID: id, From: prev, To: next})
	})
	if err != nil {
		return domain.Order{}, err
	}
	s.log.Info("order status updated", "order_id", id, "status", next)
	return updated, nil
}

// FindByEmail matches customerEmail case-insensitively.
func (s *Service) FindByEmail(ctx context.Context, email string) ([]domain.Order, error) {
	var out []domain.Order
	s.store.View(func(d state.Data) {
		out = domain.FindByEmail(d.Orders, email)
	})
	return out, nil
}

func (s *Service) List() []domain.Order {
	var out []domain.Order
	s.store.View(func(d state.Data) {
		out = slices.Clone(d.Orders)
	})
	if out == nil {
		out = []domain.Order{}
	}
	return out
}

func (s *Service) Get(id int64) (domain.Order, error) {
	var (
		o  domain.Order
		ok bool
	)
	s.store.View(func(d state.Data) {
		if i := domain.FindIndex(d.Orders, id); i >= 0 {
			o, ok = d.Orders[i], true
		}
	})
	if !ok {
		return domain.Order{}, ErrOrderNotFound
	}
	return o, nil
}
