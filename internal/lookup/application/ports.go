package application

import (
	"context"

	order "github.com/luciferfruits/storefront/internal/order/domain"
)

// Primary is the remote order-tracking endpoint.
type Primary interface {
	Track(ctx context.Context, email string) ([]order.Order, error)
}

// Ledger answers from local state when the primary source cannot.
type Ledger interface {
	FindByEmail(ctx context.Context, email string) ([]order.Order, error)
}
