package main

import (
	"context"
	"flag"
	"fmt"

	"stellarcade-backend-go/internal/common"
	"stellarcade-backend-go/internal/config"
	"stellarcade-backend-go/internal/models"
	"stellarcade-backend-go/internal/stellar"

	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	logger, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	emailFlag := flag.String("email", "", "Filter by specific user email (optional)")
	onchainFlag := flag.Bool("onchain", false, "Also show the balances Horizon reports for each user's Stellar account")
	flag.Parse()

	logger.Info("Starting balance query")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	logger.Info("Connecting to database", zap.String("path", cfg.Database.Path))
	dbService, err := common.InitializeDatabaseOnly(ctx, logger, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer dbService.Close()

	var network *stellar.Network
	if *onchainFlag {
		network = stellar.NewNetwork(cfg.Stellar, logger)
	}

	var users []models.User
	if *emailFlag != "" {
		user, err := dbService.GetUserByEmail(ctx, *emailFlag)
		if err != nil {
			logger.Fatal("User not found", zap.String("email", *emailFlag), zap.Error(err))
		}
		users = append(users, *user)
	} else {
		users, err = dbService.GetUsers(ctx)
		if err != nil {
			logger.Fatal("Failed to get users", zap.Error(err))
		}
	}

	totalBalances := 0
	usersWithBalances := 0

	common.PrintHeader("USER BALANCE REPORT", common.DefaultWidth)

	for _, user := range users {
		balances, err := dbService.GetAllBalances(ctx, user.Id)
		if err != nil {
			logger.Error("Failed to get balances for user",
				zap.String("user_id", user.Id),
				zap.String("user_name", user.Name),
				zap.Error(err))
			continue
		}

		if len(balances) == 0 && network == nil {
			continue
		}
		if len(balances) > 0 {
			usersWithBalances++
			totalBalances += len(balances)
		}

		fmt.Printf("\n┌─ User: %s (%s)\n", user.Name, user.Email)
		fmt.Printf("│  ID: %s\n", user.Id)
		fmt.Printf("│  Address: %s\n", user.StellarAddress)
		common.PrintBoxSeparator(78)

		for i, balance := range balances {
			lastTx := balance.LastTransactionId
			if lastTx == "" {
				lastTx = "none"
			} else if len(lastTx) > 8 {
				lastTx = lastTx[:8] + "..."
			}

			isLast := i == len(balances)-1 && network == nil
			fmt.Printf("%s %-15s: %20s (v%d, last_tx: %s, updated: %s)\n",
				common.BoxPrefix(isLast),
				balance.Asset,
				balance.Balance.String(),
				balance.Version,
				lastTx,
				balance.UpdatedAt.Format("2006-01-02 15:04:05"))
		}

		if network != nil {
			printOnchain(ctx, logger, network, user)
		}
	}

	summary := fmt.Sprintf("SUMMARY: %d users with balances (%d total balances across %d users queried)",
		usersWithBalances, totalBalances, len(users))
	common.PrintFooter(summary, common.DefaultWidth)

	logger.Info("Balance query completed",
		zap.Int("users_queried", len(users)),
		zap.Int("users_with_balances", usersWithBalances),
		zap.Int("total_balances", totalBalances))
}

func printOnchain(ctx context.Context, logger *zap.Logger, network *stellar.Network, user models.User) {
	onchain, err := network.AccountBalances(ctx, user.StellarAddress)
	if err != nil {
		logger.Warn("Failed to fetch on-chain balances",
			zap.String("user_id", user.Id),
			zap.String("address", user.StellarAddress),
			zap.Error(err))
		fmt.Printf("└─ on-chain: unavailable\n")
		return
	}

	for i, b := range onchain {
		fmt.Printf("%s on-chain %-6s: %20s\n", common.BoxPrefix(i == len(onchain)-1), b.Asset, b.Balance.String())
	}
}
