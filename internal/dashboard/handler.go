package dashboard

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"amdesk/internal/transport/http/shared"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/metrics", h.handleMetrics)
	r.Get("/activity", h.handleActivity)
	r.Get("/alerts", h.handleAlerts)
	r.Get("/deadlines", h.handleDeadlines)
}

func (h *Handler) handleMetrics(w http.ResponseWriter, r *http.Request) {
	m, err := h.service.Metrics(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, m)
}

func (h *Handler) handleActivity(w http.ResponseWriter, r *http.Request) {
	shared.WriteJSON(w, http.StatusOK, map[string]any{
		"feed":        h.service.Activity(r.Context()),
		"lastUpdated": time.Now().UTC(),
	})
}

func (h *Handler) handleAlerts(w http.ResponseWriter, r *http.Request) {
	shared.WriteJSON(w, http.StatusOK, map[string]any{
		"alerts":      h.service.Alerts(r.Context()),
		"lastUpdated": time.Now().UTC(),
	})
}

func (h *Handler) handleDeadlines(w http.ResponseWriter, r *http.Request) {
	shared.WriteJSON(w, http.StatusOK, map[string]any{
		"items":       h.service.Deadlines(r.Context()),
		"lastUpdated": time.Now().UTC(),
	})
}
