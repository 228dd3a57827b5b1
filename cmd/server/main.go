package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"amdesk/internal/admin"
	"amdesk/internal/approval"
	"amdesk/internal/audit"
	"amdesk/internal/auth"
	"amdesk/internal/bus"
	"amdesk/internal/client"
	"amdesk/internal/dashboard"
	"amdesk/internal/digest"
	"amdesk/internal/jwttoken"
	"amdesk/internal/mandate"
	"amdesk/internal/notification"
	"amdesk/internal/notifier"
	"amdesk/internal/platform/config"
	"amdesk/internal/platform/httpserver"
	"amdesk/internal/platform/logger"
	"amdesk/internal/platform/metrics"
	"amdesk/internal/platform/redis"
	"amdesk/internal/report"
	"amdesk/internal/rfp"
	httptransport "amdesk/internal/transport/http"
	"amdesk/internal/user"
)

// main wires dependencies and owns the process lifecycle. Business logic
// lives in the internal feature packages.
func main() {
	log := logger.New()

	cfg, err := config.FromEnv()
	if err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	m := metrics.New()
	auditLog := audit.NewLog(m)

	userStore, err := user.NewFileStore(filepath.Join(cfg.DataDir, "users.json"))
	if err != nil {
		log.Error("opening user store", "error", err)
		os.Exit(1)
	}
	rfpStore, err := rfp.NewFileStore(filepath.Join(cfg.DataDir, "rfps.json"))
	if err != nil {
		log.Error("opening rfp store", "error", err)
		os.Exit(1)
	}
	approvalStore, err := approval.NewFileStore(filepath.Join(cfg.DataDir, "approvals.json"))
	if err != nil {
		log.Error("opening approval store", "error", err)
		os.Exit(1)
	}
	mandateStore := mandate.NewInMemoryStore()
	clientStore := client.NewInMemoryStore()
	digestStore := digest.NewInMemoryStore()

	var notifStore notification.Store = notification.NewInMemoryStore()
	redisClient, err := redis.New(cfg.RedisURL)
	if err != nil {
		log.Error("connecting to redis", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		notifStore = notification.NewRedisStore(redisClient.Client)
		defer redisClient.Close()
		log.Info("notification store backed by redis")
	}

	eventBus := bus.New(log, m)
	unsubscribe := notifier.New(userStore, notifStore, log, m).Start(eventBus)
	defer unsubscribe()

	digestService := digest.NewService(userStore, rfpStore, approvalStore, mandateStore, digestStore, log, m)
	dashboardService := dashboard.NewService(approvalStore, clientStore, mandateStore)

	tokens := jwttoken.New(cfg.JWTSigningKey, "amdesk", cfg.TokenTTL)

	router := httptransport.NewRouter(httptransport.Deps{
		Logger:    log,
		Metrics:   m,
		Validator: tokens,

		Auth:          auth.NewHandler(userStore, tokens, log),
		Users:         user.NewHandler(userStore, auditLog, log),
		RFPs:          rfp.NewHandler(rfpStore, eventBus, auditLog, log),
		Approvals:     approval.NewHandler(approvalStore, eventBus, log),
		Mandates:      mandate.NewHandler(mandateStore, eventBus, log),
		Clients:       client.NewHandler(clientStore, auditLog, log),
		Reports:       report.NewHandler(report.NewCatalogue()),
		Dashboard:     dashboard.NewHandler(dashboardService),
		Notifications: notification.NewHandler(notifStore, log),
		Digests:       digest.NewHandler(digestService, digestStore, log),
		Admin:         admin.NewHandler(userStore, admin.NewFlags(), auditLog, log),
	})

	srv := httpserver.New(cfg.Addr, router)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting amdesk", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
	log.Info("shutdown complete")
}
