package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	cart "github.com/luciferfruits/storefront/internal/cart/domain"
	catalog "github.com/luciferfruits/storefront/internal/catalog/domain"
	"github.com/luciferfruits/storefront/pkg/apperr"
)

type OrderStatus string

const (
	StatusProcessing OrderStatus = "processing"
	StatusCompleted  OrderStatus = "completed"
	StatusCancelled  OrderStatus = "cancelled"
)

// ParseAdminStatus accepts only the statuses the admin panel can set.
func ParseAdminStatus(s string) (OrderStatus, error) {
	switch OrderStatus(strings.ToLower(strings.TrimSpace(s))) {
	case StatusCompleted:
		return StatusCompleted, nil
	case StatusCancelled:
		return StatusCancelled, nil
	}
	return "", fmt.Errorf("%w: status must be %q or %q", apperr.ErrValidation, StatusCompleted, StatusCancelled)
}

// DateLayout matches the locale string the storefront has always shown.
const DateLayout = "1/2/2006, 3:04:05 PM"

type Customer struct {
	Name   string `json:"customerName"`
	Email  string `json:"customerEmail"`
	GameID string `json:"customerGameID"`
}

func (c Customer) Validate() error {
	if strings.TrimSpace(c.Name) == "" || strings.TrimSpace(c.Email) == "" {
		return fmt.Errorf("%w: customer name and email are required", apperr.ErrValidation)
	}
	return nil
}

type Order struct {
	ID             int64           `json:"id"`
	CustomerName   string          `json:"customerName"`
	CustomerEmail  string          `json:"customerEmail"`
	CustomerGameID string          `json:"customerGameID"`
	Products       []cart.Item     `json:"products"`
	Total          decimal.Decimal `json:"total"`
	Status         OrderStatus     `json:"status"`
	Date           string          `json:"date"`
	CreatedAt      time.Time       `json:"createdAt,omitzero"`
}

func (o *Order) UnmarshalJSON(b []byte) error {
	type plain Order
	aux := struct {
		*plain
		Total json.RawMessage `json:"total"`
	}{plain: (*plain)(o)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	o.Total = catalog.LenientPrice(aux.Total)
	return nil
}

// NewOrder snapshots items and derives the total from that snapshot.
func NewOrder(id int64, c Customer, items []cart.Item, now time.Time) Order {
	snapshot := append([]cart.Item(nil), items...)
	return Order{
		ID:             id,
		CustomerName:   strings.TrimSpace(c.Name),
		CustomerEmail:  strings.TrimSpace(c.Email),
		CustomerGameID: strings.TrimSpace(c.GameID),
		Products:       snapshot,
		Total:          cart.ComputeTotal(snapshot),
		Status:         StatusProcessing,
		Date:           now.Local().Format(DateLayout),
		CreatedAt:      now.UTC(),
	}
}

func FindByEmail(orders []Order, email string) []Order {
	email = strings.TrimSpace(email)
	out := []Order{}
	for _, o := range orders {
		if strings.EqualFold(o.CustomerEmail, email) {
			out = append(out, o)
		}
	}
	return out
}

func FindIndex(orders []Order, id int64) int {
	for i, o := range orders {
		if o.ID == id {
			return i
		}
	}
	return -1
}
