package domain

const (
	EventOrderPlaced        = "OrderPlaced"
	EventOrderStatusChanged = "OrderStatusChanged"
)

type OrderPlaced struct {
	OrderID    int64       `json:"orderId"`
	Customer   Customer    `json:"customer"`
	Total      string      `json:"total"`
	Items      []PlacedRow `json:"items"`
	OccurredAt string      `json:"occurredAt"`
}

type PlacedRow struct {
	ProductID string `json:"productId,omitempty"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
}

type OrderStatusChanged struct {
	OrderID int64       `json:"orderId"`
	From    OrderStatus `json:"from"`
	To      OrderStatus `json:"to"`
}

func NewOrderPlaced(o Order) OrderPlaced {
	rows := make([]PlacedRow, 0, len(o.Products))
	for _, it := range o.Products {
		rows = append(rows, PlacedRow{ProductID: it.ProductID, Name: it.Name, Quantity: it.Quantity})
	}
	return OrderPlaced{
		OrderID: o.ID,
		Customer: Customer{
			Name:   o.CustomerName,
			Email:  o.CustomerEmail,
			GameID: o.CustomerGameID,
		},
		Total:      o.Total.StringFixed(2),
		Items:      rows,
		OccurredAt: o.CreatedAt.Format("2006-01-02T15:04:05.000Z07:00"),
	}
}
