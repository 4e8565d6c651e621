package domain

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var leadingNumber = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// LenientPrice reads a stored price: a JSON number, or the leading number of
// a string ("2.50", "3 each"). Anything else, "$5" included, reads as zero so
// one bad record cannot make a whole collection unreadable.
func LenientPrice(raw []byte) decimal.Decimal {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return decimal.Zero
	}
	var s string
	switch x := v.(type) {
	case json.Number:
		s = x.String()
	case string:
		s = leadingNumber.FindString(strings.TrimSpace(x))
	default:
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func (p *Product) UnmarshalJSON(b []byte) error {
	type plain Product
	aux := struct {
		*plain
		Price json.RawMessage `json:"price"`
	}{plain: (*plain)(p)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	p.Price = LenientPrice(aux.Price)
	return nil
}
