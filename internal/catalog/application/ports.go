package application

import (
	"context"

	"github.com/luciferfruits/storefront/internal/state"
)

type StateStore interface {
	View(fn func(d state.Data))
	Update(ctx context.Context, fn func(tx *state.Tx) error) error
}
