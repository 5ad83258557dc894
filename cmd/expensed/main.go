package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/nlavoie/expensed/internal/common"
	"github.com/nlavoie/expensed/internal/export"
	"github.com/nlavoie/expensed/internal/fx"
	"github.com/nlavoie/expensed/internal/ingest"
	"github.com/nlavoie/expensed/internal/recognizer"
	"github.com/nlavoie/expensed/internal/repository"
	"github.com/nlavoie/expensed/internal/server"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	peoplePool, err := repository.Open(ctx, cfg.PeopleDB, "expensed-people", logger)
	if err != nil {
		logger.Error("people store unavailable", "error", err)
		os.Exit(1)
	}
	receiptsPool, err := repository.Open(ctx, cfg.ReceiptsDB, "expensed-receipts", logger)
	if err != nil {
		peoplePool.Close()
		logger.Error("receipts store unavailable", "error", err)
		os.Exit(1)
	}
	defer repository.Close(peoplePool, receiptsPool, logger)

	if err := repository.HealthCheck(ctx, peoplePool, cfg.PeopleDB.DialTimeout, logger); err != nil {
		logger.Error("people store health check failed", "error", err)
		os.Exit(1)
	}
	if err := repository.HealthCheck(ctx, receiptsPool, cfg.ReceiptsDB.DialTimeout, logger); err != nil {
		logger.Error("receipts store health check failed", "error", err)
		os.Exit(1)
	}

	peopleRepo := repository.NewPersonRepository(peoplePool, logger)
	receiptsRepo := repository.NewReceiptRepository(receiptsPool, logger)
	if err := receiptsRepo.EnsureSchema(ctx); err != nil {
		logger.Error("receipts schema bootstrap failed", "error", err)
		os.Exit(1)
	}

	rates := fx.NewClient(fx.Config{
		BaseURL:      cfg.FX.BaseURL,
		HomeCurrency: cfg.FX.HomeCurrency,
		MaxBackDays:  cfg.FX.MaxBackDays,
		Timeout:      cfg.FX.Timeout,
	}, logger)

	scanner, err := recognizer.NewClient(ctx, cfg.Recognizer, logger)
	if err != nil {
		logger.Error("recognizer client init failed", "error", err)
		os.Exit(1)
	}

	coordinator := ingest.NewService(peopleRepo, receiptsRepo, rates, logger)
	exporter := export.NewService(receiptsRepo, logger)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           server.New(peopleRepo, receiptsRepo, scanner, coordinator, exporter, logger).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("http server listening", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", "error", err)
	}
	logger.Info("stopped")
}
