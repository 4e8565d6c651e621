package domain

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/luciferfruits/storefront/pkg/apperr"
)

const DefaultDescription = "No description"

type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Image       string          `json:"image"`
	Price       decimal.Decimal `json:"price"`
	Quantity    Stock           `json:"quantity"`
	Description string          `json:"description"`
}

// ProductFields is the admin form input. Everything arrives as text, the way
// the product form submits it.
type ProductFields struct {
	Name        string `json:"name"`
	Image       string `json:"image"`
	Price       string `json:"price"`
	Quantity    string `json:"quantity"`
	Description string `json:"description"`
}

func NewProduct(f ProductFields) (Product, error) {
	name := strings.TrimSpace(f.Name)
	image := strings.TrimSpace(f.Image)
	if name == "" || image == "" || strings.TrimSpace(f.Price) == "" {
		return Product{}, fmt.Errorf("%w: name, image and price are required", apperr.ErrValidation)
	}
	price, err := parsePrice(f.Price)
	if err != nil {
		return Product{}, err
	}

	qty := f.Quantity
	if strings.TrimSpace(qty) == "" {
		qty = "0"
	}
	desc := f.Description
	if strings.TrimSpace(desc) == "" {
		desc = DefaultDescription
	}
	return Product{
		ID:          uuid.NewString(),
		Name:        name,
		Image:       image,
		Price:       price,
		Quantity:    ParseStock(qty),
		Description: desc,
	}, nil
}

// Edit replaces everything but the image and the id.
func (p Product) Edit(f ProductFields) (Product, error) {
	name := strings.TrimSpace(f.Name)
	if name == "" || strings.TrimSpace(f.Price) == "" {
		return Product{}, fmt.Errorf("%w: name and price are required", apperr.ErrValidation)
	}
	price, err := parsePrice(f.Price)
	if err != nil {
		return Product{}, err
	}
	return Product{
		ID:          p.ID,
		Name:        name,
		Image:       p.Image,
		Price:       price,
		Quantity:    ParseStock(f.Quantity),
		Description: f.Description,
	}, nil
}

func (p Product) StockStatus() StockStatus {
	return ClassifyStock(p.Quantity)
}

// EnsureID assigns an id to products decoded from data that predates ids.
func (p *Product) EnsureID() {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
}

func parsePrice(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: price %q is not a number", apperr.ErrValidation, s)
	}
	if d.IsNegative() {
		return decimal.Decimal{}, fmt.Errorf("%w: price must not be negative", apperr.ErrValidation)
	}
	return d, nil
}

// FindIndex returns the position of the product with id, or -1.
func FindIndex(products []Product, id string) int {
	for i, p := range products {
		if p.ID == id {
			return i
		}
	}
	return -1
}
