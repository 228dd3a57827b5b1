package user

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"amdesk/internal/audit"
	"amdesk/internal/platform/middleware"
	"amdesk/internal/transport/http/shared"
	dErrors "amdesk/pkg/domain-errors"
)

// Handler exposes the authenticated user's profile endpoints.
type Handler struct {
	store  *FileStore
	audit  *audit.Log
	logger *slog.Logger
}

func NewHandler(store *FileStore, auditLog *audit.Log, logger *slog.Logger) *Handler {
	return &Handler{store: store, audit: auditLog, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/me", h.handleGetMe)
	r.Put("/me", h.handleUpdateMe)
	r.Put("/me/password", h.handleChangePassword)
	r.Put("/me/preferences", h.handleUpdatePreferences)
}

func (h *Handler) handleGetMe(w http.ResponseWriter, r *http.Request) {
	me, err := h.store.FindByEmail(r.Context(), middleware.GetUserEmail(r.Context()))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeNotFound, "User not found"))
		return
	}
	shared.WriteJSON(w, http.StatusOK, me.Redacted())
}

func (h *Handler) handleUpdateMe(w http.ResponseWriter, r *http.Request) {
	email := middleware.GetUserEmail(r.Context())

	var patch ProfileUpdate
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "Invalid request body"))
		return
	}

	me, err := h.store.UpdateProfile(r.Context(), email, patch)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	h.audit.Append(r.Context(), email, "profile.update", me.Email)
	shared.WriteJSON(w, http.StatusOK, me.Redacted())
}

type passwordRequest struct {
	Current string `json:"current"`
	Next    string `json:"next"`
}

func (h *Handler) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	email := middleware.GetUserEmail(r.Context())

	var req passwordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "Invalid request body"))
		return
	}

	if err := h.store.ChangePassword(r.Context(), email, req.Current, req.Next); err != nil {
		shared.WriteError(w, err)
		return
	}
	h.audit.Append(r.Context(), email, "profile.password", email)
	shared.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *Handler) handleUpdatePreferences(w http.ResponseWriter, r *http.Request) {
	email := middleware.GetUserEmail(r.Context())

	var patch PreferencesPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "Invalid request body"))
		return
	}

	prefs, err := h.store.MergePreferences(r.Context(), email, patch)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	h.audit.Append(r.Context(), email, "profile.preferences", email)
	shared.WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "preferences": prefs})
}
