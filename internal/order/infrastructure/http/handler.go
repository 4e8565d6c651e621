package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/luciferfruits/storefront/internal/order/application"
	"github.com/luciferfruits/storefront/internal/order/domain"
	"github.com/luciferfruits/storefront/pkg/apperr"
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
		tracer:  otel.Tracer("order-http"),
	}
}

type statusReq struct {
	Status string `json:"status"`
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/orders", h.placeOrder)
}

func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/orders", h.listOrders)
	r.Get("/orders/{id}", h.getOrder)
	r.Put("/orders/{id}/status", h.updateStatus)
}

func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "PlaceOrder")
	defer span.End()

	var c domain.Customer
	if err := httpx.Decode(r, &c); err != nil {
		httpx.Fail(w, h.log, err)
		return
	}

	o, err := h.service.PlaceOrder(ctx, c)
	if err != nil {
		span.RecordError(err)
		httpx.Fail(w, h.log, err)
		return
	}
	span.SetAttributes(attribute.Int64("order.id", o.ID))
	httpx.WriteJSON(w, http.StatusCreated, o)
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, h.service.List())
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	id, err := orderID(r)
	if err != nil {
		httpx.Fail(w, h.log, err)
		return
	}
	o, err := h.service.Get(id)
	if err != nil {
		httpx.Fail(w, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, o)
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "UpdateOrderStatus")
	defer span.End()

	id, err := orderID(r)
	if err != nil {
		httpx.Fail(w, h.log, err)
		return
	}
	var req statusReq
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Fail(w, h.log, err)
		return
	}
	o, err := h.service.UpdateStatus(ctx, id, req.Status)
	if err != nil {
		span.RecordError(err)
		httpx.Fail(w, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, o)
}

func orderID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: order id must be a number", apperr.ErrValidation)
	}
	return id, nil
}
