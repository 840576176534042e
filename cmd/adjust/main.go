package main

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"stellarcade-backend-go/internal/common"
	"stellarcade-backend-go/internal/config"
	"stellarcade-backend-go/internal/database"
	"stellarcade-backend-go/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Operator tool: applies a confirmed balance adjustment, e.g. crediting testnet play funds.
func main() {
	ctx := context.Background()

	logger, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	emailFlag := flag.String("email", "", "User email (required)")
	assetFlag := flag.String("asset", "XLM", "Asset symbol")
	amountFlag := flag.String("amount", "", "Signed amount, e.g. 100 or -2.5 (required)")
	referenceFlag := flag.String("reference", "", "Idempotency reference (defaults to a new UUID)")
	flag.Parse()

	if *emailFlag == "" || *amountFlag == "" {
		logger.Fatal("Both flags are required: --email and --amount")
	}

	amount, err := decimal.NewFromString(*amountFlag)
	if err != nil || amount.IsZero() {
		logger.Fatal("Invalid amount", zap.String("amount", *amountFlag), zap.Error(err))
	}

	reference := *referenceFlag
	if reference == "" {
		reference = "adjust-" + uuid.New().String()
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	assets, err := common.LoadAssetConfig(cfg.Assets.File)
	if err != nil {
		logger.Fatal("Failed to load asset config", zap.Error(err))
	}
	asset := strings.ToUpper(*assetFlag)
	supported := false
	for _, a := range assets {
		if a.Symbol == asset {
			supported = true
			break
		}
	}
	if !supported {
		logger.Fatal("Unsupported asset", zap.String("asset", asset), zap.Strings("supported", common.AssetSymbols(assets)))
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

	tx, err := dbService.ProcessTransaction(ctx, database.ProcessTransactionParams{
		UserId:          user.Id,
		Asset:           asset,
		TransactionType: models.TransactionTypeAdjustment,
		Amount:          amount,
		ExternalTxId:    reference,
		Reference:       reference,
	})
	if err != nil {
		logger.Fatal("Adjustment failed", zap.Error(err))
	}

	if err := dbService.ReconcileBalance(ctx, user.Id, asset); err != nil {
		logger.Error("Reconciliation failed after adjustment", zap.Error(err))
	}

	fmt.Printf("%s %s: %s -> %s (tx %s)\n", user.Email, asset, tx.BalanceBefore, tx.BalanceAfter, tx.Id)
}
