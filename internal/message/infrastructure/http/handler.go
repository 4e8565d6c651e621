package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/luciferfruits/storefront/internal/message/application"
	"github.com/luciferfruits/storefront/internal/message/domain"
	"github.com/luciferfruits/storefront/pkg/httpx"
)

type Handler struct {
	log     *slog.Logger
	service *application.Service
}

func NewHandler(log *slog.Logger, service *application.Service) *Handler {
	return &Handler{log: log, service: service}
}

type messageReq struct {
	OrderID domain.OrderRef `json:"orderId"`
	Name    string          `json:"name"`
	Email   string          `json:"email"`
	Text    string          `json:"text"`
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/messages", h.addMessage)
}

func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/messages", h.threads)
}

func (h *Handler) addMessage(w http.ResponseWriter, r *http.Request) {
	var req messageReq
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Fail(w, h.log, err)
		return
	}
	m, err := h.service.Add(r.Context(), int64(req.OrderID), req.Name, req.Email, req.Text)
	if err != nil {
		httpx.Fail(w, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, m)
}

func (h *Handler) threads(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, h.service.Threads())
}
