// Package httptransport assembles the HTTP surface. Feature handlers stay in
// their own packages and register themselves on sub-routers; this package only
// decides mounting, middleware order and which routes sit behind auth.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"amdesk/internal/admin"
	"amdesk/internal/approval"
	"amdesk/internal/auth"
	"amdesk/internal/client"
	"amdesk/internal/dashboard"
	"amdesk/internal/digest"
	"amdesk/internal/mandate"
	"amdesk/internal/notification"
	"amdesk/internal/platform/metrics"
	"amdesk/internal/platform/middleware"
	"amdesk/internal/report"
	"amdesk/internal/rfp"
	"amdesk/internal/transport/http/shared"
	"amdesk/internal/user"
)

const requestTimeout = 30 * time.Second

// Deps carries everything the router mounts.
type Deps struct {
	Logger    *slog.Logger
	Metrics   *metrics.Metrics
	Validator middleware.TokenValidator

	Auth          *auth.Handler
	Users         *user.Handler
	RFPs          *rfp.Handler
	Approvals     *approval.Handler
	Mandates      *mandate.Handler
	Clients       *client.Handler
	Reports       *report.Handler
	Dashboard     *dashboard.Handler
	Notifications *notification.Handler
	Digests       *digest.Handler
	Admin         *admin.Handler
}

// NewRouter wires the full API. /api/health, /metrics and the auth endpoints
// are public; everything else requires a bearer token.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(d.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(d.Logger))
	r.Use(metrics.LatencyMiddleware(d.Metrics))

	r.Get("/api/health", func(w http.ResponseWriter, _ *http.Request) {
		shared.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/auth", d.Auth.Register)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(d.Validator, d.Logger))
		r.Use(middleware.Timeout(requestTimeout))

		r.Route("/api/users", d.Users.Register)
		r.Route("/api/rfps", d.RFPs.Register)
		r.Route("/api/approvals", d.Approvals.Register)
		r.Route("/api/mandates", d.Mandates.Register)
		r.Route("/api/clients", d.Clients.Register)
		r.Route("/api/reports", d.Reports.Register)
		r.Route("/api/dashboard", d.Dashboard.Register)
		r.Route("/api/notifications", d.Notifications.Register)
		r.Route("/api/digests", d.Digests.Register)
		r.Route("/api/admin", d.Admin.Register)
	})

	return r
}
