package client

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"amdesk/internal/audit"
	"amdesk/internal/platform/middleware"
	"amdesk/internal/transport/http/shared"
	dErrors "amdesk/pkg/domain-errors"
)

type Handler struct {
	store  *InMemoryStore
	audit  *audit.Log
	logger *slog.Logger
}

func NewHandler(store *InMemoryStore, auditLog *audit.Log, logger *slog.Logger) *Handler {
	return &Handler{store: store, audit: auditLog, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/", h.handleList)
	r.Get("/{name}", h.handleGet)
	r.Post("/{name}/notes", h.handleAddNote)
	r.Post("/{name}/docs", h.handleAddDoc)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	shared.WriteJSON(w, http.StatusOK, h.store.List(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	c, err := h.store.Get(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) handleAddNote(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "Invalid request body"))
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "Note text is required"))
		return
	}

	author := middleware.GetUserName(r.Context())
	note, err := h.store.AddNote(r.Context(), name, author, req.Text)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	actor := middleware.GetUserEmail(r.Context())
	h.audit.Append(r.Context(), actor, "client.note", name)
	shared.WriteJSON(w, http.StatusCreated, note)
}

func (h *Handler) handleAddDoc(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var req struct {
		Name string `json:"name"`
		Type string `json:"type"`
		Size string `json:"size"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "Invalid request body"))
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "Document name is required"))
		return
	}

	doc, err := h.store.AddDoc(r.Context(), name, req.Name, req.Type, req.Size)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	actor := middleware.GetUserEmail(r.Context())
	h.audit.Append(r.Context(), actor, "client.doc", name)
	shared.WriteJSON(w, http.StatusCreated, doc)
}
