package digest

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"amdesk/internal/platform/middleware"
	"amdesk/internal/transport/http/shared"
	dErrors "amdesk/pkg/domain-errors"
	"amdesk/pkg/platform/sentinel"
)

// Handler triggers digest runs and serves the caller's own digests.
type Handler struct {
	service *Service
	store   *InMemoryStore
	logger  *slog.Logger
}

func NewHandler(service *Service, store *InMemoryStore, logger *slog.Logger) *Handler {
	return &Handler{service: service, store: store, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/run", h.handleRun)
	r.Get("/", h.handleList)
	r.Get("/{id}", h.handleGet)
}

func (h *Handler) handleRun(w http.ResponseWriter, r *http.Request) {
	mode := "daily"
	if r.Body != nil {
		var req struct {
			Mode string `json:"mode"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil && req.Mode != "" {
			mode = req.Mode
		}
	}

	res, err := h.service.Run(r.Context(), mode)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	email := middleware.GetUserEmail(r.Context())
	if email == "" {
		shared.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "Not authenticated"))
		return
	}

	list, err := h.store.List(r.Context(), email, 0)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"digests": list})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	email := middleware.GetUserEmail(r.Context())
	if email == "" {
		shared.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "Not authenticated"))
		return
	}

	d, err := h.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	// A digest addressed to someone else looks identical to a missing one.
	if !strings.EqualFold(d.To, email) {
		shared.WriteError(w, sentinel.ErrNotFound)
		return
	}
	shared.WriteJSON(w, http.StatusOK, d)
}
