package report

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"amdesk/internal/transport/http/shared"
	dErrors "amdesk/pkg/domain-errors"
)

type Handler struct {
	catalogue *Catalogue
}

func NewHandler(catalogue *Catalogue) *Handler {
	return &Handler{catalogue: catalogue}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/", h.handleList)
	r.Get("/{code}", h.handleGenerate)
}

func (h *Handler) handleList(w http.ResponseWriter, _ *http.Request) {
	shared.WriteJSON(w, http.StatusOK, h.catalogue.List())
}

func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	d, ok := h.catalogue.Generate(chi.URLParam(r, "code"), time.Now().UTC())
	if !ok {
		shared.WriteError(w, dErrors.New(dErrors.CodeNotFound, "Report not found"))
		return
	}
	shared.WriteJSON(w, http.StatusOK, d)
}
