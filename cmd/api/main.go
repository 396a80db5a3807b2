package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/vbugueno/pixbank/internal/api"
	"github.com/vbugueno/pixbank/internal/config"
	"github.com/vbugueno/pixbank/internal/ledger"
	"github.com/vbugueno/pixbank/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := newLogger(cfg.Env)
	defer logger.Sync()

	st, err := store.Open(cfg.DataFile)
	if err != nil {
		logger.Fatal("unable to open data file", zap.String("path", cfg.DataFile), zap.Error(err))
	}

	service := ledger.NewService(st, logger, cfg.CashOverdraft)
	engine := ledger.NewEngine(st, logger, cfg.YieldHourlyRate, cfg.YieldTickInterval)
	handler := api.NewHandler(st, service, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The accrual engine is the only autonomous background activity.
	go engine.Run(ctx)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: api.NewRouter(handler),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", zap.Error(err))
		}
	}()

	logger.Info("server starting",
		zap.String("port", cfg.Port),
		zap.String("data_file", cfg.DataFile))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server failed", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger(env string) *zap.Logger {
	if env == "development" {
		logger, _ := zap.NewDevelopment()
		return logger
	}
	logger, _ := zap.NewProduction()
	return logger
}
