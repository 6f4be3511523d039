package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pixbridge/inter-gateway/internal/application/services"
	"github.com/pixbridge/inter-gateway/internal/config"
	"github.com/pixbridge/inter-gateway/internal/infrastructure/bank"
	"github.com/pixbridge/inter-gateway/internal/infrastructure/notify"
	"github.com/pixbridge/inter-gateway/internal/infrastructure/persistence/postgres"
	"github.com/pixbridge/inter-gateway/internal/interfaces/rest/handlers"
	"github.com/pixbridge/inter-gateway/internal/interfaces/rest/middleware"
	"github.com/pixbridge/inter-gateway/internal/secrets"
	"github.com/pixbridge/inter-gateway/internal/worker"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := cfg.Logger.NewLogger()
	slog.SetDefault(logger)

	logger.Info("starting inter gateway",
		"port", cfg.Server.Port,
		"log_level", cfg.Logger.Level,
	)

	ctx := context.Background()
	db, err := postgres.Connect(ctx, &cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	cipher, err := secrets.NewCipher(cfg.Secrets.EncryptionKey)
	if err != nil {
		logger.Error("failed to load encryption key", "error", err)
		os.Exit(1)
	}

	chargeRepo := postgres.NewChargeRepository(db)
	credentialRepo := postgres.NewCredentialRepository(db, cipher)

	bankClient := bank.NewInterClient(credentialRepo, cfg.Bank)
	retryBankClient := bank.NewRetryBankClient(bankClient, cfg.Retry)

	notifier := notify.NewOdooNotifier(logger)

	chargeService := services.NewChargeService(
		chargeRepo, credentialRepo, retryBankClient, logger,
		cfg.Charge.DefaultDueHours, cfg.Charge.ListLimit,
	)
	configService := services.NewConfigService(credentialRepo, logger)
	webhookService := services.NewWebhookService(chargeRepo, notifier, cfg.Webhook.Secret, logger)

	mux := http.NewServeMux()
	handlers.NewHandlers(chargeService, configService, webhookService, logger).Register(mux)

	handler := http.Handler(mux)
	handler = middleware.Recovery(logger)(handler)
	handler = middleware.Logging(logger)(handler)
	handler = middleware.Timeout(cfg.Server.ReadTimeout)(handler)

	server := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	workerCtx, stopWorkers := context.WithCancel(ctx)
	defer stopWorkers()

	expiryWorker := worker.NewExpiryWorker(chargeRepo, cfg.Worker.Interval, cfg.Worker.BatchSize, logger)
	go expiryWorker.Start(workerCtx)

	reconciler := worker.NewReconciler(
		chargeRepo, retryBankClient,
		cfg.Worker.ReconcileInterval, cfg.Worker.ReconcileMinAge, cfg.Worker.BatchSize,
		logger,
	)
	go reconciler.Start(workerCtx)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", server.Addr)
		errCh <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		logger.Error("http server failed", "error", err)
	case sig := <-quit:
		logger.Info("shutdown signal received", "signal", sig.String())
	}

	stopWorkers()

	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}

	logger.Info("gateway stopped")
}
