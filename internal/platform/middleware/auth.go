package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
)

// TokenValidator defines the interface for validating bearer tokens.
type TokenValidator interface {
	ValidateToken(tokenString string) (*TokenClaims, error)
}

// TokenClaims represents the claims we expect from the token validator.
type TokenClaims struct {
	Email string
	Name  string
	Role  string
}

// Context keys for storing authenticated user information
type contextKeyUserEmail struct{}
type contextKeyUserName struct{}
type contextKeyUserRole struct{}

var (
	ContextKeyUserEmail = contextKeyUserEmail{}
	ContextKeyUserName  = contextKeyUserName{}
	ContextKeyUserRole  = contextKeyUserRole{}
)

// GetUserEmail retrieves the authenticated user's email from the context.
func GetUserEmail(ctx context.Context) string {
	email, ok := ctx.Value(ContextKeyUserEmail).(string)
	if !ok {
		return ""
	}
	return email
}

// GetUserName retrieves the authenticated user's display name from the context.
func GetUserName(ctx context.Context) string {
	name, ok := ctx.Value(ContextKeyUserName).(string)
	if !ok {
		return ""
	}
	return name
}

// GetUserRole retrieves the authenticated user's role from the context.
func GetUserRole(ctx context.Context) string {
	role, ok := ctx.Value(ContextKeyUserRole).(string)
	if !ok {
		return ""
	}
	return role
}

// RequireAuth rejects requests without a valid bearer token and stores the
// token claims in the request context for handlers.
func RequireAuth(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || token == "" {
				unauthorized(w, "Missing token")
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				ctx := r.Context()
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", GetRequestID(ctx),
				)
				unauthorized(w, "Invalid token")
				return
			}

			ctx := r.Context()
			ctx = context.WithValue(ctx, ContextKeyUserEmail, claims.Email)
			ctx = context.WithValue(ctx, ContextKeyUserName, claims.Name)
			ctx = context.WithValue(ctx, ContextKeyUserRole, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"` + msg + `"}`))
}
