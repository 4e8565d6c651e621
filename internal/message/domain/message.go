package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	order "github.com/luciferfruits/storefront/internal/order/domain"
	"github.com/luciferfruits/storefront/pkg/apperr"
)

const EventContactMessageReceived = "ContactMessageReceived"

// OrderRef is a weak reference to an order id. The contact form submits it as
// free text, so strings holding digits are accepted and anything else is 0.
type OrderRef int64

func (r *OrderRef) UnmarshalJSON(b []byte) error {
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case float64:
		*r = OrderRef(int64(v))
	case string:
		n, err := strconv.ParseInt(strings.TrimPrefix(strings.TrimSpace(v), "#"), 10, 64)
		if err != nil {
			n = 0
		}
		*r = OrderRef(n)
	default:
		*r = 0
	}
	return nil
}

type Message struct {
	ID      int64    `json:"id,omitempty"`
	OrderID OrderRef `json:"orderId"`
	Name    string   `json:"name,omitempty"`
	Email   string   `json:"email,omitempty"`
	Text    string   `json:"text"`
	Time    string   `json:"time"`
}

func NewMessage(id int64, orderID int64, name, email, text string, now time.Time) (Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Message{}, fmt.Errorf("%w: message text is required", apperr.ErrValidation)
	}
	return Message{
		ID:      id,
		OrderID: OrderRef(orderID),
		Name:    strings.TrimSpace(name),
		Email:   strings.TrimSpace(email),
		Text:    text,
		Time:    now.Local().Format(order.DateLayout),
	}, nil
}

// ContactMessageReceived is published by the contact endpoint.
type ContactMessageReceived struct {
	Name    string   `json:"name"`
	Email   string   `json:"email"`
	Message string   `json:"message"`
	OrderID OrderRef `json:"orderId"`
}

type Thread struct {
	OrderID      int64             `json:"orderId"`
	CustomerName string            `json:"customerName"`
	Status       order.OrderStatus `json:"status"`
	LastMessage  string            `json:"lastMessage"`
	LastTime     string            `json:"lastTime"`
	Count        int               `json:"count"`
}

// GroupThreads groups messages by order in first-seen order. Messages whose
// order does not exist are left out.
func GroupThreads(messages []Message, orders []order.Order) []Thread {
	var seen []OrderRef
	byOrder := map[OrderRef][]Message{}
	for _, m := range messages {
		if _, ok := byOrder[m.OrderID]; !ok {
			seen = append(seen, m.OrderID)
		}
		byOrder[m.OrderID] = append(byOrder[m.OrderID], m)
	}

	threads := []Thread{}
	for _, id := range seen {
		i := order.FindIndex(orders, int64(id))
		if i < 0 {
			continue
		}
		msgs := byOrder[id]
		last := msgs[len(msgs)-1]
		threads = append(threads, Thread{
			OrderID:      int64(id),
			CustomerName: orders[i].CustomerName,
			Status:       orders[i].Status,
			LastMessage:  last.Text,
			LastTime:     last.Time,
			Count:        len(msgs),
		})
	}
	return threads
}
