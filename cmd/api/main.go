package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Spok95/clinic-stock/internal/auth"
	"github.com/Spok95/clinic-stock/internal/config"
	"github.com/Spok95/clinic-stock/internal/domain/dashboard"
	"github.com/Spok95/clinic-stock/internal/domain/inventory"
	"github.com/Spok95/clinic-stock/internal/domain/materials"
	"github.com/Spok95/clinic-stock/internal/domain/requests"
	"github.com/Spok95/clinic-stock/internal/domain/users"
	"github.com/Spok95/clinic-stock/internal/infra/db"
	httpx "github.com/Spok95/clinic-stock/internal/infra/http"
	"github.com/Spok95/clinic-stock/internal/infra/logger"
	"github.com/Spok95/clinic-stock/internal/infra/metrics"
)

func main() {
	cfg, err := config.Load("config/example.yaml")
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg.App.Env, "api")
	if cfg.Auth.Secret == "" {
		log.Error("auth.secret is empty, set APP_AUTH_SECRET")
		return
	}

	if err := db.Migrate(cfg.Postgres.DSN); err != nil {
		log.Error("migrations failed", "err", err)
		return
	}
	log.Info("migrations applied")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg.Postgres.DSN)
	if err != nil {
		log.Error("db connect failed", "err", err)
		return
	}
	defer pool.Close()
	log.Info("db connected")

	usersRepo := users.NewRepo(pool)
	admin, err := users.EnsureAdmin(ctx, usersRepo, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword, auth.HashPassword)
	if err != nil {
		log.Error("bootstrap admin failed", "err", err)
		return
	}
	if admin != nil {
		log.Info("bootstrap admin created", "user_id", admin.ID, "email", admin.Email)
	}

	srv := httpx.New(cfg.HTTP.Addr, httpx.Deps{
		Log:           log,
		Tokens:        auth.NewIssuer(cfg.Auth.Secret, cfg.Auth.TokenTTL),
		Users:         usersRepo,
		Materials:     materials.NewRepo(pool),
		Inventory:     inventory.NewRepo(pool),
		Requests:      requests.NewRepo(pool),
		Dashboard:     dashboard.NewRepo(pool),
		Metrics:       metrics.New(prometheus.DefaultRegisterer),
		ExposeMetrics: cfg.Metrics.Enabled,
	})
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server error", "err", err)
			stop()
		}
	}()
	log.Info("HTTP server started", "addr", cfg.HTTP.Addr)

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	log.Info("graceful shutdown complete")
}
