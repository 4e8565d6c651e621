package http

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/luciferfruits/storefront/internal/backup/application"
	"github.com/luciferfruits/storefront/pkg/apperr"
	"github.com/luciferfruits/storefront/pkg/httpx"
)

// maxBackupSize caps an uploaded backup document.
const maxBackupSize = 32 << 20

type Handler struct {
	log     *slog.Logger
	service *application.Service
}

func NewHandler(log *slog.Logger, service *application.Service) *Handler {
	return &Handler{log: log, service: service}
}

func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/backup", h.export)
	r.Post("/backup", h.restore)
}

func (h *Handler) export(w http.ResponseWriter, r *http.Request) {
	snap := h.service.Export()
	b, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		httpx.Fail(w, h.log, err)
		return
	}
	name := fmt.Sprintf("luciferfruits-backup-%s.json", snap.ExportDate[:len("2006-01-02")])
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

func (h *Handler) restore(w http.ResponseWriter, r *http.Request) {
	if !httpx.Confirmed(r) {
		httpx.Fail(w, h.log, apperr.ErrConfirmationRequired)
		return
	}
	doc, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBackupSize))
	if err != nil {
		httpx.Fail(w, h.log, fmt.Errorf("%w: %v", apperr.ErrFormat, err))
		return
	}
	if err := h.service.Import(r.Context(), doc); err != nil {
		httpx.Fail(w, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Data imported successfully!"})
}
