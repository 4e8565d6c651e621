package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/luciferfruits/storefront/internal/cart/application"
	"github.com/luciferfruits/storefront/pkg/httpx"
)

type Handler struct {
	log     *slog.Logger
	service *application.Service
	tracer  trace.Tracer
}

func NewHandler(log *slog.Logger, service *application.Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
		tracer:  otel.Tracer("cart-http"),
	}
}

type addItemReq struct {
	ProductID string `json:"productId"`
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/cart", h.viewCart)
	r.Post("/cart/items", h.addItem)
	r.Delete("/cart/items/{productId}", h.removeItem)
	r.Get("/cart/checkout", h.checkout)
}

func (h *Handler) viewCart(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, h.service.View())
}

func (h *Handler) addItem(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "AddToCart")
	defer span.End()

	var req addItemReq
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Fail(w, h.log, err)
		return
	}
	span.SetAttributes(attribute.String("product.id", req.ProductID))

	item, err := h.service.AddToCart(ctx, req.ProductID)
	if err != nil {
		span.RecordError(err)
		httpx.Fail(w, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"item":    item,
		"message": item.Name + " added to cart!",
	})
}

func (h *Handler) removeItem(w http.ResponseWriter, r *http.Request) {
	if err := h.service.RemoveItem(r.Context(), chi.URLParam(r, "productId")); err != nil {
		httpx.Fail(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) checkout(w http.ResponseWriter, r *http.Request) {
	total, err := h.service.CheckoutPreview()
	if err != nil {
		httpx.Fail(w, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"total": total})
}
