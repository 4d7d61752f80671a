package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/iurnickita/repairdesk/internal/config"
	"github.com/iurnickita/repairdesk/internal/conversation"
	"github.com/iurnickita/repairdesk/internal/handler"
	"github.com/iurnickita/repairdesk/internal/logger"
	"github.com/iurnickita/repairdesk/internal/router"
	"github.com/iurnickita/repairdesk/internal/service"
	"github.com/iurnickita/repairdesk/internal/session"
	"github.com/iurnickita/repairdesk/internal/store"
	"github.com/iurnickita/repairdesk/internal/telegram"
	"github.com/iurnickita/repairdesk/internal/texts"
)

var errNothingToServe = errors.New("neither RUN_ADDRESS nor BOT_TOKEN is set")

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.GetConfig()
	if err != nil {
		return err
	}
	if cfg.Handler.ServerAddr == "" && cfg.Telegram.BotToken == "" {
		return errNothingToServe
	}

	zaplog, err := logger.NewZapLog(cfg.Logger)
	if err != nil {
		return err
	}
	defer zaplog.Sync()

	catalog, err := texts.Load(cfg.Texts)
	if err != nil {
		return err
	}

	store, err := store.NewStore(cfg.Store)
	if err != nil {
		return err
	}
	defer store.Close()

	service := service.NewService(cfg.Service, store)
	sessions := session.NewStore(cfg.Session, zaplog)
	machine := conversation.NewMachine(service, catalog, zaplog)
	router := router.NewRouter(sessions, machine, service, catalog, zaplog)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return sessions.Run(ctx)
	})
	if cfg.Handler.ServerAddr != "" {
		g.Go(func() error {
			return handler.Serve(ctx, cfg.Handler, router, store, zaplog)
		})
	}
	if cfg.Telegram.BotToken != "" {
		client, err := telegram.NewClient(cfg.Telegram)
		if err != nil {
			return err
		}
		poller := telegram.NewPoller(client, router, cfg.Telegram.PollTimeout, zaplog)
		g.Go(func() error {
			return poller.Run(ctx)
		})
	}

	zaplog.Info("repairdesk started",
		zap.String("driver", cfg.Store.Driver),
		zap.Bool("http", cfg.Handler.ServerAddr != ""),
		zap.Bool("telegram", cfg.Telegram.BotToken != ""))

	err = g.Wait()
	zaplog.Info("repairdesk stopped", zap.Error(err))
	return err
}
