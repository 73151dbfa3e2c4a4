package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/park285/playpad-server/internal/app"
	appcfg "github.com/park285/playpad-server/internal/config"
	"github.com/park285/playpad-server/internal/obslog"
	"go.uber.org/zap"
)

func main() {
	cfg, err := appcfg.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	logger := obslog.L()
	defer obslog.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("init_failed", zap.Error(err))
	}
	defer func() {
		if err := deps.Close(); err != nil {
			logger.Warn("close_failed", zap.Error(err))
		}
	}()

	logger.Info("server_starting", zap.String("addr", cfg.HTTPAddr))
	if err := deps.Server.Run(ctx); err != nil {
		logger.Error("server_stopped", zap.Error(err))
		return
	}
	logger.Info("server_stopped")
}
