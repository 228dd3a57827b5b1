// Package auth exposes login and identity endpoints. Tokens are JWTs whose
// subject is the user's email; everything else in the API keys off that.
package auth

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"amdesk/internal/jwttoken"
	"amdesk/internal/platform/middleware"
	"amdesk/internal/transport/http/shared"
	"amdesk/internal/user"
	dErrors "amdesk/pkg/domain-errors"
)

// Handler handles authentication endpoints.
type Handler struct {
	users  *user.FileStore
	tokens *jwttoken.Service
	logger *slog.Logger
}

func NewHandler(users *user.FileStore, tokens *jwttoken.Service, logger *slog.Logger) *Handler {
	return &Handler{users: users, tokens: tokens, logger: logger}
}

// Register mounts the public auth routes. /me additionally requires a valid
// token.
func (h *Handler) Register(r chi.Router) {
	r.Post("/identify", h.handleIdentify)
	r.Post("/login", h.handleLogin)
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.tokens, h.logger))
		r.Get("/me", h.handleMe)
	})
}

type identifyRequest struct {
	SID string `json:"sid"`
}

func (h *Handler) handleIdentify(w http.ResponseWriter, r *http.Request) {
	var req identifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SID == "" {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "SID is required."))
		return
	}

	u, err := h.users.FindByIdentifier(r.Context(), req.SID)
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeNotFound, "SID not found."))
		return
	}

	sid := u.SID
	if sid == "" {
		sid = u.Username
	}
	if sid == "" {
		sid, _, _ = strings.Cut(u.Email, "@")
	}

	shared.WriteJSON(w, http.StatusOK, map[string]any{
		"ok":          true,
		"sid":         sid,
		"displayName": u.Name,
		"hint":        maskEmail(u.Email),
	})
}

type loginRequest struct {
	SID      string `json:"sid"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "Invalid request body"))
		return
	}

	identifier := req.SID
	if identifier == "" {
		identifier = req.Email
	}
	if identifier == "" || req.Password == "" {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "SID/email and password are required."))
		return
	}

	u, err := h.users.FindByIdentifier(r.Context(), identifier)
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "Invalid credentials."))
		return
	}
	if _, err := h.users.VerifyPassword(r.Context(), u.Email, req.Password); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "Invalid credentials."))
		return
	}

	token, err := h.tokens.Issue(u.Email, u.Name, u.Role)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to issue token", "error", err)
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to issue token"))
		return
	}

	shared.WriteJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"user": map[string]string{
			"email":      u.Email,
			"name":       u.Name,
			"role":       u.Role,
			"department": u.Department,
		},
	})
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	email := middleware.GetUserEmail(r.Context())
	u, err := h.users.FindByEmail(r.Context(), email)
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeNotFound, "User not found"))
		return
	}
	shared.WriteJSON(w, http.StatusOK, u.Redacted())
}

// maskEmail hides most of the local part: "kara.james@x" -> "k*******s@x".
func maskEmail(email string) string {
	local, domain, found := strings.Cut(email, "@")
	if !found {
		return email
	}
	var masked string
	switch {
	case len(local) <= 2:
		masked = local[:1] + "*"
	default:
		masked = local[:1] + strings.Repeat("*", len(local)-2) + local[len(local)-1:]
	}
	return masked + "@" + domain
}
