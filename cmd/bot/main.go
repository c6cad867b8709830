package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/clinic-stock/internal/bot"
	"github.com/Spok95/clinic-stock/internal/client"
	"github.com/Spok95/clinic-stock/internal/config"
	"github.com/Spok95/clinic-stock/internal/dialog"
	"github.com/Spok95/clinic-stock/internal/infra/db"
	"github.com/Spok95/clinic-stock/internal/infra/logger"
)

func main() {
	cfg, err := config.Load("config/example.yaml")
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg.App.Env, "bot")
	log.Info("using API", "base_url", cfg.API.BaseURL)

	// диалоги и токены чатов живут в той же БД
	if err := db.Migrate(cfg.Postgres.DSN); err != nil {
		log.Error("migrations failed", "err", err)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg.Postgres.DSN)
	if err != nil {
		log.Error("db connect failed", "err", err)
		return
	}
	defer pool.Close()

	api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		log.Error("telegram init failed", "err", err)
		return
	}
	api.Debug = cfg.App.Env == "dev"
	log.Info("bot authorized", "username", api.Self.UserName)

	rest := client.New(cfg.API.BaseURL, &http.Client{Timeout: cfg.API.Timeout})
	b := bot.New(api, log, dialog.NewRepo(pool), rest, cfg.Location())

	if err := b.Run(ctx, cfg.Telegram.TimeoutSec); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("bot stopped", "err", err)
		return
	}
	api.StopReceivingUpdates()
	log.Info("graceful shutdown complete")
}
