package domain

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	catalog "github.com/luciferfruits/storefront/internal/catalog/domain"
	"github.com/luciferfruits/storefront/pkg/apperr"
)

// Item is one cart line. Price and image are captured when the product is
// first added and are not re-synced with later catalog edits.
type Item struct {
	ProductID string          `json:"productId,omitempty"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Image     string          `json:"image"`
}

func NewItem(p catalog.Product) Item {
	return Item{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Quantity:  1,
		Image:     p.Image,
	}
}

func (it Item) Subtotal() decimal.Decimal {
	return it.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

// Matches reports whether the line refers to p. Lines written before product
// ids existed carry only a name and are matched by it.
func (it Item) Matches(p catalog.Product) bool {
	if it.ProductID != "" {
		return it.ProductID == p.ID
	}
	return it.Name == p.Name
}

// ProductFor finds the catalog entry an item refers to.
func ProductFor(it Item, products []catalog.Product) (int, bool) {
	for i, p := range products {
		if it.Matches(p) {
			return i, true
		}
	}
	return -1, false
}

func FindItem(items []Item, p catalog.Product) int {
	for i, it := range items {
		if it.Matches(p) {
			return i
		}
	}
	return -1
}

func ComputeTotal(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Subtotal())
	}
	return total
}

func Count(items []Item) int {
	n := 0
	for _, it := range items {
		n += it.Quantity
	}
	return n
}

// Add applies one add-to-cart click against the current stock of p and returns
// the new item list. items is not modified.
func Add(items []Item, p catalog.Product) ([]Item, error) {
	stock := int(p.Quantity)
	if stock <= 0 {
		return nil, fmt.Errorf("%w: %s", apperr.ErrOutOfStock, p.Name)
	}

	out := append([]Item(nil), items...)
	if i := FindItem(out, p); i >= 0 {
		if out[i].Quantity+1 > stock {
			return nil, fmt.Errorf("%w: only %d %s available", apperr.ErrInsufficientStock, stock, p.Name)
		}
		out[i].Quantity++
		return out, nil
	}
	return append(out, NewItem(p)), nil
}

type Shortfall struct {
	Name      string `json:"name"`
	ProductID string `json:"productId,omitempty"`
	Requested int    `json:"requested"`
	Available int    `json:"available"`
}

func (s Shortfall) String() string {
	return fmt.Sprintf("%s - Only %d available, but %d in cart", s.Name, s.Available, s.Requested)
}

// ValidateAgainstStock lists every line asking for more than the catalog
// holds. A line whose product is gone counts as zero available.
func ValidateAgainstStock(items []Item, products []catalog.Product) []Shortfall {
	var out []Shortfall
	for _, it := range items {
		available := 0
		if i, ok := ProductFor(it, products); ok {
			available = int(products[i].Quantity)
		}
		if available < it.Quantity {
			out = append(out, Shortfall{
				Name:      it.Name,
				ProductID: it.ProductID,
				Requested: it.Quantity,
				Available: available,
			})
		}
	}
	return out
}

type ShortfallError struct {
	Shortfalls []Shortfall
}

func (e *ShortfallError) Error() string {
	lines := make([]string, 0, len(e.Shortfalls))
	for _, s := range e.Shortfalls {
		lines = append(lines, s.String())
	}
	return "stock issues detected: " + strings.Join(lines, "; ")
}

func (e *ShortfallError) Unwrap() error {
	return apperr.ErrStockShortfall
}

func (e *ShortfallError) ErrorFields() map[string]any {
	return map[string]any{"shortfalls": e.Shortfalls}
}

func (it *Item) UnmarshalJSON(b []byte) error {
	type plain Item
	aux := struct {
		*plain
		Price json.RawMessage `json:"price"`
	}{plain: (*plain)(it)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	it.Price = catalog.LenientPrice(aux.Price)
	return nil
}
