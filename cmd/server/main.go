package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"stellarcade-backend-go/internal/api"
	"stellarcade-backend-go/internal/auth"
	"stellarcade-backend-go/internal/common"
	"stellarcade-backend-go/internal/config"
	"stellarcade-backend-go/internal/controllers"
	"stellarcade-backend-go/internal/server"
	"stellarcade-backend-go/internal/stellar"

	"go.uber.org/zap"
)

func main() {
	logger, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}
	if cfg.Auth.JWTSecret == "" {
		logger.Fatal("JWT_SECRET is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger.Info("Starting stellarcade wallet backend")

	services, err := common.InitializeServices(ctx, logger, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	contracts := stellar.MockFactory(logger)
	prizePool := contracts(cfg.Stellar.PrizePoolContractId)

	ledger := api.NewLedgerService(services.DbService, prizePool, services.Assets, logger)

	srv := server.New(cfg.Server, server.Dependencies{
		Network: services.Network,
		Health:  ledger,
		Wallet:  controllers.NewWalletController(ledger, logger),
		Auth:    auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiration),
		Logger:  logger,
	})

	errChan := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
		close(errChan)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", zap.String("signal", sig.String()))
	case err, ok := <-errChan:
		if ok {
			logger.Error("HTTP server failed", zap.Error(err))
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("Forced shutdown after timeout", zap.Error(err))
		return
	}
	logger.Info("Server stopped gracefully")
}
