package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/luciferfruits/storefront/internal/catalog/application"
	"github.com/luciferfruits/storefront/internal/catalog/domain"
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
		tracer:  otel.Tracer("catalog-http"),
	}
}

// productView is a product plus the badge the storefront shows for it.
type productView struct {
	domain.Product
	Stock domain.StockStatus `json:"stock"`
}

func view(p domain.Product) productView {
	return productView{Product: p, Stock: p.StockStatus()}
}

// formText accepts a JSON string or number, since the admin form may send
// either for price and quantity.
type formText string

func (t *formText) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*t = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*t = formText(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*t = formText(n.String())
	return nil
}

type productReq struct {
	Name        string   `json:"name"`
	Image       string   `json:"image"`
	Price       formText `json:"price"`
	Quantity    formText `json:"quantity"`
	Description string   `json:"description"`
}

func (r productReq) fields() domain.ProductFields {
	return domain.ProductFields{
		Name:        r.Name,
		Image:       r.Image,
		Price:       string(r.Price),
		Quantity:    string(r.Quantity),
		Description: r.Description,
	}
}

type stockReq struct {
	Quantity formText `json:"quantity"`
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/products", h.listProducts)
	r.Get("/products/{id}", h.getProduct)
}

func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Post("/products", h.addProduct)
	r.Put("/products/{id}", h.editProduct)
	r.Delete("/products/{id}", h.deleteProduct)
	r.Put("/products/{id}/stock", h.setStock)
	r.Get("/stats", h.stats)
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products := h.service.List()
	out := make([]productView, 0, len(products))
	for _, p := range products {
		out = append(out, view(p))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.Get(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Fail(w, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, view(p))
}

func (h *Handler) addProduct(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "AddProduct")
	defer span.End()

	var req productReq
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Fail(w, h.log, err)
		return
	}
	p, err := h.service.AddProduct(ctx, req.fields())
	if err != nil {
		span.RecordError(err)
		httpx.Fail(w, h.log, err)
		return
	}
	span.SetAttributes(attribute.String("product.id", p.ID))
	httpx.WriteJSON(w, http.StatusCreated, view(p))
}

func (h *Handler) editProduct(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "EditProduct")
	defer span.End()

	var req productReq
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Fail(w, h.log, err)
		return
	}
	p, err := h.service.EditProduct(ctx, chi.URLParam(r, "id"), req.fields())
	if err != nil {
		span.RecordError(err)
		httpx.Fail(w, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, view(p))
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	if !httpx.Confirmed(r) {
		httpx.Fail(w, h.log, apperr.ErrConfirmationRequired)
		return
	}
	ctx, span := h.tracer.Start(r.Context(), "DeleteProduct")
	defer span.End()

	if err := h.service.DeleteProduct(ctx, chi.URLParam(r, "id")); err != nil {
		span.RecordError(err)
		httpx.Fail(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) setStock(w http.ResponseWriter, r *http.Request) {
	var req stockReq
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Fail(w, h.log, err)
		return
	}
	p, err := h.service.SetStock(r.Context(), chi.URLParam(r, "id"), strings.TrimSpace(string(req.Quantity)))
	if err != nil {
		httpx.Fail(w, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, view(p))
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, h.service.Stats())
}
