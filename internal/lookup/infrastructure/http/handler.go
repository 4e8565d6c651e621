package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/luciferfruits/storefront/internal/lookup/application"
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
		tracer:  otel.Tracer("lookup-http"),
	}
}

type trackReq struct {
	Email string `json:"email"`
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/orders/track", h.track)
}

func (h *Handler) track(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "TrackOrders")
	defer span.End()

	var req trackReq
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Fail(w, h.log, err)
		return
	}
	res, err := h.service.Lookup(ctx, req.Email)
	if err != nil {
		httpx.Fail(w, h.log, err)
		return
	}
	span.SetAttributes(
		attribute.String("lookup.source", string(res.Source)),
		attribute.String("lookup.fallback", string(res.Fallback)),
	)
	httpx.WriteJSON(w, http.StatusOK, res)
}
