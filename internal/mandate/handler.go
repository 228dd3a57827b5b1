package mandate

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"amdesk/internal/bus"
	"amdesk/internal/transport/http/shared"
	dErrors "amdesk/pkg/domain-errors"
)

// Handler exposes mandates and their breach lifecycle. Breach creation and
// status changes publish on the bus.
type Handler struct {
	store  *InMemoryStore
	bus    *bus.Bus
	logger *slog.Logger
}

func NewHandler(store *InMemoryStore, b *bus.Bus, logger *slog.Logger) *Handler {
	return &Handler{store: store, bus: b, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/", h.handleList)
	r.Post("/", h.handleCreate)

	// Flat breach views come before the id routes so "breaches" is not
	// swallowed as a mandate id.
	r.Get("/breaches", h.handleAllBreaches)
	r.Get("/breaches/open", h.handleOpenBreaches)

	r.Get("/{id}", h.handleGet)
	r.Put("/{id}", h.handleUpdate)
	r.Delete("/{id}", h.handleDelete)
	r.Get("/{id}/breaches", h.handleMandateBreaches)
	r.Post("/{id}/breaches", h.handleAddBreach)
	r.Patch("/{id}/breaches/{breachId}", h.handlePatchBreach)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	shared.WriteJSON(w, http.StatusOK, h.store.List(r.Context()))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var m Mandate
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "Invalid request body"))
		return
	}
	created, err := h.store.Create(r.Context(), m)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	m, err := h.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, m)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var patch MandatePatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "Invalid request body"))
		return
	}
	m, err := h.store.Update(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, m)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *Handler) handleMandateBreaches(w http.ResponseWriter, r *http.Request) {
	list, err := h.store.BreachesForMandate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"breaches": list})
}

func (h *Handler) handleAddBreach(w http.ResponseWriter, r *http.Request) {
	mandateID := chi.URLParam(r, "id")

	var req NewBreach
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "Invalid request body"))
		return
	}

	b, err := h.store.AddBreach(r.Context(), mandateID, req)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	h.bus.Publish(r.Context(), bus.BreachOpened{
		MandateID: mandateID,
		BreachID:  b.ID,
		Status:    string(b.Status),
	})
	shared.WriteJSON(w, http.StatusCreated, b)
}

func (h *Handler) handlePatchBreach(w http.ResponseWriter, r *http.Request) {
	mandateID := chi.URLParam(r, "id")
	breachID := chi.URLParam(r, "breachId")

	var patch BreachPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "Invalid request body"))
		return
	}

	b, err := h.store.UpdateBreach(r.Context(), mandateID, breachID, patch)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	h.bus.Publish(r.Context(), bus.BreachUpdated{
		MandateID: mandateID,
		BreachID:  b.ID,
		Status:    string(b.Status),
	})
	shared.WriteJSON(w, http.StatusOK, b)
}

func (h *Handler) handleAllBreaches(w http.ResponseWriter, r *http.Request) {
	status := BreachStatus(r.URL.Query().Get("status"))
	if status != "" && !status.Valid() {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "Unknown breach status"))
		return
	}
	shared.WriteJSON(w, http.StatusOK, h.store.Breaches(r.Context(), status))
}

func (h *Handler) handleOpenBreaches(w http.ResponseWriter, r *http.Request) {
	shared.WriteJSON(w, http.StatusOK, h.store.Breaches(r.Context(), StatusOpen))
}
