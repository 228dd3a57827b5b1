package approval

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"amdesk/internal/bus"
	"amdesk/internal/platform/middleware"
	"amdesk/internal/transport/http/shared"
	dErrors "amdesk/pkg/domain-errors"
)

// Handler exposes the approvals queue.
type Handler struct {
	store  *FileStore
	bus    *bus.Bus
	logger *slog.Logger
}

func NewHandler(store *FileStore, b *bus.Bus, logger *slog.Logger) *Handler {
	return &Handler{store: store, bus: b, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/", h.handleList)
	r.Post("/", h.handleCreate)
	r.Post("/{id}/approve", h.handleApprove)
	r.Post("/{id}/audit", h.handleAppendTrail)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.store.List(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, list)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req NewApproval
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "Invalid request body"))
		return
	}

	item, err := h.store.Create(r.Context(), middleware.GetUserEmail(r.Context()), req)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	h.bus.Publish(r.Context(), bus.ApprovalCreated{ID: item.ID, Summary: item.Summary})
	shared.WriteJSON(w, http.StatusCreated, item)
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	item, err := h.store.Approve(r.Context(), chi.URLParam(r, "id"), middleware.GetUserEmail(r.Context()))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, item)
}

type trailRequest struct {
	Action string `json:"action"`
	Meta   string `json:"meta"`
}

func (h *Handler) handleAppendTrail(w http.ResponseWriter, r *http.Request) {
	var req trailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "Invalid request body"))
		return
	}

	event, err := h.store.AppendTrail(r.Context(), chi.URLParam(r, "id"),
		middleware.GetUserEmail(r.Context()), req.Action, req.Meta)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, event)
}
