package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Stock is a non-negative unit count. It is stored as a JSON string ("12") and
// decoded leniently: numbers and strings are both accepted, the leading integer
// of a string is used, and anything unparseable or negative becomes zero.
type Stock int

func ParseStock(s string) Stock {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil || n < 0 {
		return 0
	}
	return Stock(n)
}

func (s Stock) String() string {
	return strconv.Itoa(int(s))
}

func (s Stock) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Stock) UnmarshalJSON(b []byte) error {
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case nil:
		*s = 0
	case string:
		*s = ParseStock(v)
	case float64:
		if v < 0 {
			v = 0
		}
		*s = Stock(int(v))
	default:
		return fmt.Errorf("stock: unsupported json type %T", raw)
	}
	return nil
}

type StockLevel string

const (
	StockOut  StockLevel = "out"
	StockLow  StockLevel = "low"
	StockGood StockLevel = "good"
)

// LowStockThreshold is the highest count still reported as low.
const LowStockThreshold = 5

type StockStatus struct {
	Level StockLevel `json:"status"`
	Class string     `json:"class"`
	Text  string     `json:"text"`
}

func ClassifyStock(q Stock) StockStatus {
	switch {
	case q <= 0:
		return StockStatus{Level: StockOut, Class: "stock-out", Text: "Out of Stock"}
	case q <= LowStockThreshold:
		return StockStatus{Level: StockLow, Class: "stock-low", Text: fmt.Sprintf("Low Stock: %d", q)}
	default:
		return StockStatus{Level: StockGood, Class: "stock-good", Text: fmt.Sprintf("In Stock: %d", q)}
	}
}
