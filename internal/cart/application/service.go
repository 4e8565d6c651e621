package application

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/luciferfruits/storefront/internal/cart/domain"
	catalog "github.com/luciferfruits/storefront/internal/catalog/domain"
	"github.com/luciferfruits/storefront/internal/state"
	"github.com/luciferfruits/storefront/pkg/apperr"
)

var (
	ErrProductNotFound = fmt.Errorf("product %w", apperr.ErrNotFound)
	ErrItemNotFound    = fmt.Errorf("cart item %w", apperr.ErrNotFound)
	ErrEmptyCart       = fmt.Errorf("%w: your cart is empty", apperr.ErrValidation)
)

type Service struct {
	log   *slog.Logger
	store StateStore
}

func NewService(log *slog.Logger, store StateStore) *Service {
	return &Service{log: log, store: store}
}

// View is what the cart modal renders.
type View struct {
	Items      []domain.Item      `json:"items"`
	Count      int                `json:"count"`
	Total      decimal.Decimal    `json:"total"`
	Shortfalls []domain.Shortfall `json:"shortfalls"`
}

func (s *Service) View() View {
	var v View
	s.store.View(func(d state.Data) {
		v = View{
			Items:      slices.Clone(d.Cart),
			Count:      domain.Count(d.Cart),
			Total:      domain.ComputeTotal(d.Cart),
			Shortfalls: domain.ValidateAgainstStock(d.Cart, d.Products),
		}
	})
	if v.Items == nil {
		v.Items = []domain.Item{}
	}
	if v.Shortfalls == nil {
		v.Shortfalls = []domain.Shortfall{}
	}
	return v
}

// AddToCart adds one unit of the product, refusing to go past its current stock.
func (s *Service) AddToCart(ctx context.Context, productID string) (domain.Item, error) {
	var added domain.Item
	err := s.store.Update(ctx, func(tx *state.Tx) error {
		i := catalog.FindIndex(tx.Products, productID)
		if i < 0 {
			return ErrProductNotFound
		}
		p := tx.Products[i]
		items, err := domain.Add(tx.Cart, p)
		if err != nil {
			return err
		}
		tx.Cart = items
		added = items[domain.FindItem(items, p)]
		tx.Touch(state.KeyCart)
		return nil
	})
	if err != nil {
		return domain.Item{}, err
	}
	s.log.Debug("added to cart", "product_id", productID, "quantity", added.Quantity)
	return added, nil
}

// RemoveItem drops a line. Lines without a product id are addressed by name.
func (s *Service) RemoveItem(ctx context.Context, productID string) error {
	return s.store.Update(ctx, func(tx *state.Tx) error {
		before := len(tx.Cart)
		tx.Cart = slices.DeleteFunc(tx.Cart, func(it domain.Item) bool {
			return it.ProductID == productID || (it.ProductID == "" && it.Name == productID)
		})
		if len(tx.Cart) == before {
			return ErrItemNotFound
		}
		tx.Touch(state.KeyCart)
		return nil
	})
}

// CheckoutPreview is the gate in front of the checkout form: an empty cart or
// any shortfall blocks it.
func (s *Service) CheckoutPreview() (decimal.Decimal, error) {
	var (
		total decimal.Decimal
		err   error
	)
	s.store.View(func(d state.Data) {
		total, err = Validate(d.Cart, d.Products)
	})
	return total, err
}

// Validate checks items against the catalog and returns their total.
func Validate(items []domain.Item, products []catalog.Product) (decimal.Decimal, error) {
	if len(items) == 0 {
		return decimal.Zero, ErrEmptyCart
	}
	if sf := domain.ValidateAgainstStock(items, products); len(sf) > 0 {
		return decimal.Zero, &domain.ShortfallError{Shortfalls: sf}
	}
	return domain.ComputeTotal(items), nil
}

// Clear empties the cart. It is only called from order placement, inside the
// same transaction.
func Clear(tx *state.Tx) {
	tx.Cart = []domain.Item{}
	tx.Touch(state.KeyCart)
}
