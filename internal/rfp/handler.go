package rfp

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"amdesk/internal/audit"
	"amdesk/internal/bus"
	"amdesk/internal/platform/middleware"
	"amdesk/internal/transport/http/shared"
	dErrors "amdesk/pkg/domain-errors"
)

// Handler exposes RFP tracking endpoints. Stage changes publish on the bus;
// the notification fan-out is best-effort and never fails the request.
type Handler struct {
	store  *FileStore
	bus    *bus.Bus
	audit  *audit.Log
	logger *slog.Logger
}

func NewHandler(store *FileStore, b *bus.Bus, auditLog *audit.Log, logger *slog.Logger) *Handler {
	return &Handler{store: store, bus: b, audit: auditLog, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/", h.handleList)
	r.Post("/", h.handleCreate)
	r.Get("/{id}", h.handleGet)
	r.Put("/{id}", h.handleUpdate)
	r.Put("/{id}/stage", h.handleSetStage)
	r.Post("/{id}/notes", h.handleAddNote)
	r.Put("/{id}/checklist", h.handleChecklist)
	r.Post("/{id}/attachments", h.handleAddAttachment)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	out, err := h.store.ListFiltered(r.Context(), Filter{
		Stage:  q.Get("stage"),
		Client: q.Get("client"),
		Query:  q.Get("q"),
	})
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"rfps": out, "total": len(out)})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	record, err := h.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeNotFound, "RFP not found"))
		return
	}
	shared.WriteJSON(w, http.StatusOK, record)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req NewRFP
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "Invalid request body"))
		return
	}

	created, err := h.store.Create(r.Context(), req)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	h.audit.Append(r.Context(), middleware.GetUserEmail(r.Context()), "rfp.create",
		fmt.Sprintf("%s - %s - %s", created.ID, created.Client, created.Title))
	shared.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var patch Patch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "Invalid request body"))
		return
	}

	updated, err := h.store.Update(r.Context(), id, patch)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	h.audit.Append(r.Context(), middleware.GetUserEmail(r.Context()), "rfp.update", id)
	shared.WriteJSON(w, http.StatusOK, updated)
}

type stageRequest struct {
	Stage string `json:"stage"`
}

func (h *Handler) handleSetStage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req stageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "Invalid request body"))
		return
	}

	updated, err := h.store.SetStage(r.Context(), id, req.Stage)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	h.audit.Append(r.Context(), middleware.GetUserEmail(r.Context()), "rfp.stage",
		fmt.Sprintf("%s -> %s", updated.ID, updated.Stage))
	h.bus.Publish(r.Context(), bus.RFPStageChanged{ID: updated.ID, Stage: updated.Stage})

	shared.WriteJSON(w, http.StatusOK, updated)
}

type noteRequest struct {
	Text string `json:"text"`
}

func (h *Handler) handleAddNote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req noteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "Invalid request body"))
		return
	}

	actor := middleware.GetUserEmail(r.Context())
	note, err := h.store.AddNote(r.Context(), id, actor, req.Text)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	h.audit.Append(r.Context(), actor, "rfp.note", fmt.Sprintf("%s (%s)", id, clipDetail(note.Text)))
	shared.WriteJSON(w, http.StatusCreated, note)
}

type checklistRequest struct {
	Key  string `json:"key"`
	Done *bool  `json:"done"`
}

func (h *Handler) handleChecklist(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req checklistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Key == "" || req.Done == nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "Missing key or done"))
		return
	}

	checklist, err := h.store.SetChecklistItem(r.Context(), id, req.Key, *req.Done)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	h.audit.Append(r.Context(), middleware.GetUserEmail(r.Context()), "rfp.checklist",
		fmt.Sprintf("%s: %s=%t", id, req.Key, *req.Done))
	shared.WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "checklist": checklist})
}

type attachmentRequest struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Size string `json:"size"`
}

func (h *Handler) handleAddAttachment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req attachmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "Invalid request body"))
		return
	}

	att, err := h.store.AddAttachment(r.Context(), id, req.Name, req.Type, req.Size)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	h.audit.Append(r.Context(), middleware.GetUserEmail(r.Context()), "rfp.attachment",
		fmt.Sprintf("%s: %s", id, att.Name))
	shared.WriteJSON(w, http.StatusCreated, att)
}

func clipDetail(text string) string {
	if len(text) > 60 {
		return text[:60] + "..."
	}
	return text
}
