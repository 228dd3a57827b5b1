package admin

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"amdesk/internal/audit"
	"amdesk/internal/platform/middleware"
	"amdesk/internal/transport/http/shared"
	"amdesk/internal/user"
	dErrors "amdesk/pkg/domain-errors"
)

const version = "1.0.0-admin"

// Handler exposes the admin console. Every route re-reads the caller's role
// from the user store so a demotion takes effect on the next request, not at
// the next login.
type Handler struct {
	users    *user.FileStore
	flags    *Flags
	audit    *audit.Log
	logger   *slog.Logger
	bootedAt time.Time
}

func NewHandler(users *user.FileStore, flags *Flags, auditLog *audit.Log, logger *slog.Logger) *Handler {
	return &Handler{
		users:    users,
		flags:    flags,
		audit:    auditLog,
		logger:   logger,
		bootedAt: time.Now().UTC(),
	}
}

func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.requireAdmin)
		r.Get("/health", h.handleHealth)
		r.Get("/users", h.handleListUsers)
		r.Put("/users/{email}/role", h.handleSetRole)
		r.Get("/flags", h.handleGetFlags)
		r.Put("/flags", h.handleSetFlags)
		r.Get("/audit", h.handleAudit)
	})
}

func (h *Handler) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		email := middleware.GetUserEmail(r.Context())
		if email == "" {
			shared.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "Not authenticated"))
			return
		}
		u, err := h.users.FindByEmail(r.Context(), email)
		if err != nil || u.Role != "Admin" {
			shared.WriteError(w, dErrors.New(dErrors.CodeForbidden, "Admins only"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	now := time.Now().UTC()
	shared.WriteJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"bootedAt":    h.bootedAt,
		"uptimeSec":   int(now.Sub(h.bootedAt).Seconds()),
		"version":     version,
		"runtime":     runtime.Version(),
		"lastUpdated": now,
	})
}

func (h *Handler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	redacted := make([]user.User, 0, len(users))
	for _, u := range users {
		redacted = append(redacted, u.Redacted())
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{
		"users":       redacted,
		"lastUpdated": time.Now().UTC(),
	})
}

func (h *Handler) handleSetRole(w http.ResponseWriter, r *http.Request) {
	email := strings.ToLower(chi.URLParam(r, "email"))

	var req struct {
		Role string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Role) == "" {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "Missing 'role' in body"))
		return
	}

	updated, err := h.users.SetRole(r.Context(), email, req.Role)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	actor := middleware.GetUserEmail(r.Context())
	h.audit.Append(r.Context(), actor, "user.role.update", fmt.Sprintf("%s -> %s", email, req.Role))
	shared.WriteJSON(w, http.StatusOK, map[string]any{"user": updated.Redacted(), "ok": true})
}

func (h *Handler) handleGetFlags(w http.ResponseWriter, _ *http.Request) {
	shared.WriteJSON(w, http.StatusOK, map[string]any{
		"flags":       h.flags.Snapshot(),
		"lastUpdated": time.Now().UTC(),
	})
}

func (h *Handler) handleSetFlags(w http.ResponseWriter, r *http.Request) {
	var updates map[string]bool
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "Invalid request body"))
		return
	}

	actor := middleware.GetUserEmail(r.Context())
	for _, key := range h.flags.Apply(updates) {
		h.audit.Append(r.Context(), actor, "flag.update", fmt.Sprintf("%s=%t", key, h.flags.Get(key)))
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"flags": h.flags.Snapshot()})
}

func (h *Handler) handleAudit(w http.ResponseWriter, r *http.Request) {
	shared.WriteJSON(w, http.StatusOK, map[string]any{
		"audit":       h.audit.List(r.Context(), 0),
		"lastUpdated": time.Now().UTC(),
	})
}
