package common

import (
	"context"
	"log"
	"strings"

	"stellarcade-backend-go/internal/config"
	"stellarcade-backend-go/internal/database"
	"stellarcade-backend-go/internal/stellar"

	"go.uber.org/zap"
)

type Services struct {
	Logger    *zap.Logger
	DbService *database.Service
	Network   *stellar.Network
	Assets    []AssetConfig
}

func InitializeLogger() (*zap.Logger, func()) {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	zap.ReplaceGlobals(logger)

	cleanup := func() {
		if err := logger.Sync(); err != nil {
			if !isIgnorableSyncError(err) {
				log.Printf("Failed to sync logger: %v\n", err)
			}
		}
	}

	return logger, cleanup
}

func InitializeDatabaseOnly(ctx context.Context, logger *zap.Logger, cfg *config.Config) (*database.Service, error) {
	return database.NewService(ctx, logger, cfg.Database)
}

func InitializeServices(ctx context.Context, logger *zap.Logger, cfg *config.Config) (*Services, error) {
	dbService, err := database.NewService(ctx, logger, cfg.Database)
	if err != nil {
		return nil, err
	}

	logger.Info("Loading asset configuration", zap.String("file", cfg.Assets.File))
	assets, err := LoadAssetConfig(cfg.Assets.File)
	if err != nil {
		dbService.Close()
		return nil, err
	}
	logger.Info("Asset configuration loaded", zap.Strings("symbols", AssetSymbols(assets)))

	network := stellar.NewNetwork(cfg.Stellar, logger)
	network.CheckPassphrase()

	return &Services{
		Logger:    logger,
		DbService: dbService,
		Network:   network,
		Assets:    assets,
	}, nil
}

func (cs *Services) Close() {
	if cs.DbService != nil {
		cs.DbService.Close()
	}
}

func isIgnorableSyncError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "sync /dev/stderr: inappropriate ioctl for device") ||
		strings.Contains(msg, "sync /dev/stdout: inappropriate ioctl for device")
}
