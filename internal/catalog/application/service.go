package application

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/luciferfruits/storefront/internal/catalog/domain"
	"github.com/luciferfruits/storefront/internal/state"
	"github.com/luciferfruits/storefront/pkg/apperr"
)

var ErrProductNotFound = fmt.Errorf("product %w", apperr.ErrNotFound)

type Service struct {
	log   *slog.Logger
	store StateStore
}

func NewService(log *slog.Logger, store StateStore) *Service {
	return &Service{log: log, store: store}
}

type Stats struct {
	TotalProducts int `json:"totalProducts"`
	TotalOrders   int `json:"totalOrders"`
	LowStockCount int `json:"lowStockCount"`
}

func (s *Service) List() []domain.Product {
	var out []domain.Product
	s.store.View(func(d state.Data) {
		out = slices.Clone(d.Products)
	})
	return out
}

func (s *Service) Get(id string) (domain.Product, error) {
	var (
		p  domain.Product
		ok bool
	)
	s.store.View(func(d state.Data) {
		if i := domain.FindIndex(d.Products, id); i >= 0 {
			p, ok = d.Products[i], true
		}
	})
	if !ok {
		return domain.Product{}, ErrProductNotFound
	}
	return p, nil
}

func (s *Service) AddProduct(ctx context.Context, f domain.ProductFields) (domain.Product, error) {
	p, err := domain.NewProduct(f)
	if err != nil {
		return domain.Product{}, err
	}
	err = s.store.Update(ctx, func(tx *state.Tx) error {
		tx.Products = append(tx.Products, p)
		tx.Touch(state.KeyProducts)
		return nil
	})
	if err != nil {
		return domain.Product{}, err
	}
	s.log.Info("product added", "product_id", p.ID, "name", p.Name)
	return p, nil
}

func (s *Service) EditProduct(ctx context.Context, id string, f domain.ProductFields) (domain.Product, error) {
	var edited domain.Product
	err := s.store.Update(ctx, func(tx *state.Tx) error {
		i := domain.FindIndex(tx.Products, id)
		if i < 0 {
			return ErrProductNotFound
		}
		p, err := tx.Products[i].Edit(f)
		if err != nil {
			return err
		}
		tx.Products[i] = p
		edited = p
		tx.Touch(state.KeyProducts)
		return nil
	})
	if err != nil {
		return domain.Product{}, err
	}
	s.log.Info("product updated", "product_id", id)
	return edited, nil
}

// DeleteProduct removes the product only. Cart lines and orders that mention
// it are left as they are.
func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	err := s.store.Update(ctx, func(tx *state.Tx) error {
		i := domain.FindIndex(tx.Products, id)
		if i < 0 {
			return ErrProductNotFound
		}
		tx.Products = slices.Delete(tx.Products, i, i+1)
		tx.Touch(state.KeyProducts)
		return nil
	})
	if err != nil {
		return err
	}
	s.log.Info("product deleted", "product_id", id)
	return nil
}

// SetStock stores max(0, leading integer of quantity); junk input becomes 0.
func (s *Service) SetStock(ctx context.Context, id string, quantity string) (domain.Product, error) {
	var updated domain.Product
	err := s.store.Update(ctx, func(tx *state.Tx) error {
		i := domain.FindIndex(tx.Products, id)
		if i < 0 {
			return ErrProductNotFound
		}
		tx.Products[i].Quantity = domain.ParseStock(quantity)
		updated = tx.Products[i]
		tx.Touch(state.KeyProducts)
		return nil
	})
	if err != nil {
		return domain.Product{}, err
	}
	return updated, nil
}

func (s *Service) Stats() Stats {
	var st Stats
	s.store.View(func(d state.Data) {
		st.TotalProducts = len(d.Products)
		st.TotalOrders = len(d.Orders)
		for _, p := range d.Products {
			if p.StockStatus().Level == domain.StockLow {
				st.LowStockCount++
			}
		}
	})
	return st
}
