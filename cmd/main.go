package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"plushbot/internal/catalog"
	"plushbot/internal/config"
	httpapi "plushbot/internal/http"
	"plushbot/internal/llm"
	"plushbot/internal/session"

	_ "plushbot/docs"
)

// @title Плюшевый Рай chat API
// @version 1.0
// @description Simulated messaging-app storefront: chat sessions, catalog and cart.
// @BasePath /api/v1
func main() {
	cfg := config.Load()

	zcfg := zap.NewProductionConfig()
	if cfg.Debug {
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := zcfg.Build()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		logger.Fatal("catalog load failed", zap.Error(err))
	}
	logger.Info("catalog loaded", zap.Int("products", cat.Len()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	completer := llm.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cat.Products(), logger)
	sessions := session.NewManager(cat, completer, logger)
	sessions.StartSweeper(ctx)

	srv := httpapi.NewServer(sessions, cat)
	httpServer := &http.Server{
		Addr:    cfg.Addr,
		Handler: srv.Engine(),
	}

	go func() {
		logger.Info("HTTP server listening", zap.String("addr", cfg.Addr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown error", zap.Error(err))
	}
}
