package notification

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"amdesk/internal/platform/middleware"
	"amdesk/internal/transport/http/shared"
	dErrors "amdesk/pkg/domain-errors"
)

// Handler serves the caller's own notification feed. Ownership comes from
// the authenticated email, never from the request.
type Handler struct {
	store  Store
	logger *slog.Logger
}

func NewHandler(store Store, logger *slog.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/", h.handleList)
	r.Post("/read-all", h.handleReadAll)
	r.Post("/{id}/read", h.handleRead)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	email := middleware.GetUserEmail(r.Context())
	if email == "" {
		shared.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "Not authenticated"))
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "Invalid limit"))
			return
		}
		limit = n
	}

	list, err := h.store.ListForUser(r.Context(), email, limit)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	unread, err := h.store.UnreadCount(r.Context(), email)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{
		"notifications": list,
		"unread":        unread,
	})
}

func (h *Handler) handleRead(w http.ResponseWriter, r *http.Request) {
	email := middleware.GetUserEmail(r.Context())
	if email == "" {
		shared.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "Not authenticated"))
		return
	}

	found, err := h.store.MarkRead(r.Context(), email, chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if !found {
		shared.WriteError(w, dErrors.New(dErrors.CodeNotFound, "Notification not found"))
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *Handler) handleReadAll(w http.ResponseWriter, r *http.Request) {
	email := middleware.GetUserEmail(r.Context())
	if email == "" {
		shared.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "Not authenticated"))
		return
	}

	updated, err := h.store.MarkAllRead(r.Context(), email)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]int{"updated": updated})
}
