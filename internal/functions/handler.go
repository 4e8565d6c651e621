// Package functions serves the two hosted endpoints the storefront calls:
// order tracking and the contact form. Both are stubs that only acknowledge.
package functions

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	message "github.com/luciferfruits/storefront/internal/message/domain"
	"github.com/luciferfruits/storefront/pkg/httpx"
)

const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

const publishTimeout = 5 * time.Second

type ContactPublisher interface {
	PublishContact(ctx context.Context, ev message.ContactMessageReceived) error
}

type Handler struct {
	log       *slog.Logger
	publisher ContactPublisher
	now       func() time.Time
}

// NewHandler builds the stubs. publisher may be nil, in which case contact
// submissions are only logged.
func NewHandler(log *slog.Logger, publisher ContactPublisher) *Handler {
	return &Handler{log: log, publisher: publisher, now: time.Now}
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.HandleFunc("/functions/orders", stub(h.orders))
	r.HandleFunc("/functions/contact", stub(h.contact))
	return r
}

// stub answers the way every hosted function does: CORS headers on every
// response, an empty 200 for preflight, 405 for anything but POST.
func stub(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		hdr := w.Header()
		hdr.Set("Access-Control-Allow-Origin", "*")
		hdr.Set("Access-Control-Allow-Headers", "Content-Type")
		hdr.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")

		switch r.Method {
		case http.MethodOptions:
			w.WriteHeader(http.StatusOK)
		case http.MethodPost:
			next(w, r)
		default:
			httpx.WriteError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
		}
	}
}

type ordersReq struct {
	Email  string `json:"email"`
	Action string `json:"action"`
}

func (h *Handler) orders(w http.ResponseWriter, r *http.Request) {
	var req ordersReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Error("orders function failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "Failed to process request")
		return
	}
	h.log.Info("order lookup", "email", req.Email, "action", req.Action)
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"message":   "Order lookup completed",
		"orders":    []any{},
		"timestamp": h.now().UTC().Format(timestampLayout),
	})
}

func (h *Handler) contact(w http.ResponseWriter, r *http.Request) {
	var ev message.ContactMessageReceived
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		h.log.Error("contact function failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "Failed to send message")
		return
	}
	h.log.Info("contact message received",
		"name", ev.Name,
		"email", ev.Email,
		"message", ev.Message,
		"order_id", int64(ev.OrderID))

	if h.publisher != nil {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), publishTimeout)
		if err := h.publisher.PublishContact(ctx, ev); err != nil {
			h.log.Error("contact publish failed", "err", err)
		}
		cancel()
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"message":   "Message received successfully",
		"messageId": h.now().UnixMilli(),
	})
}
