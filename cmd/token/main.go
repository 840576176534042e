package main

import (
	"context"
	"flag"
	"fmt"

	"stellarcade-backend-go/internal/auth"
	"stellarcade-backend-go/internal/common"
	"stellarcade-backend-go/internal/config"

	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	logger, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	emailFlag := flag.String("email", "", "Email of the user to issue a token for (required)")
	flag.Parse()

	if *emailFlag == "" {
		logger.Fatal("The --email flag is required")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}
	if cfg.Auth.JWTSecret == "" {
		logger.Fatal("JWT_SECRET is required")
	}

	dbService, err := common.InitializeDatabaseOnly(ctx, logger, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer dbService.Close()

	user, err := dbService.GetUserByEmail(ctx, *emailFlag)
	if err != nil {
		logger.Fatal("User not found", zap.String("email", *emailFlag), zap.Error(err))
	}

	token, err := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiration).GenerateToken(user.Id)
	if err != nil {
		logger.Fatal("Failed to generate token", zap.Error(err))
	}

	logger.Info("Issued token", zap.String("user_id", user.Id), zap.Duration("expires_in", cfg.Auth.JWTExpiration))
	fmt.Println(token)
}
