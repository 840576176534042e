package api

import (
	"context"
	"fmt"

	"stellarcade-backend-go/internal/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// UserBalance is a confirmed balance alongside what is reserved by pending withdrawals
type UserBalance struct {
	Asset     string          `json:"asset"`
	Balance   decimal.Decimal `json:"balance"`
	Pending   decimal.Decimal `json:"pending_withdrawals"`
	Available decimal.Decimal `json:"available"`
}

// GetUserBalances returns all non-zero balances for a user
func (s *LedgerService) GetUserBalances(ctx context.Context, userId string) ([]UserBalance, error) {
	if userId == "" {
		return nil, fmt.Errorf("%w: user_id is required", ErrInvalidRequest)
	}

	balances, err := s.db.GetAllBalances(ctx, userId)
	if err != nil {
		s.logger.Error("Failed to get user balances", zap.String("user_id", userId), zap.Error(err))
		return nil, fmt.Errorf("failed to retrieve balances: %w", err)
	}

	result := make([]UserBalance, 0, len(balances))
	for _, balance := range balances {
		pending, err := s.db.PendingWithdrawalTotal(ctx, userId, balance.Asset)
		if err != nil {
			return nil, fmt.Errorf("failed to retrieve pending withdrawals: %w", err)
		}
		result = append(result, UserBalance{
			Asset:     balance.Asset,
			Balance:   balance.Balance,
			Pending:   pending,
			Available: balance.Balance.Sub(pending),
		})
	}

	return result, nil
}

// GetTransactionHistory returns paginated transaction history for a user and asset
func (s *LedgerService) GetTransactionHistory(ctx context.Context, userId, asset string, limit, offset int) ([]models.Transaction, error) {
	if userId == "" {
		return nil, fmt.Errorf("%w: user_id is required", ErrInvalidRequest)
	}
	symbol, err := s.normalizeAsset(asset)
	if err != nil {
		return nil, err
	}

	if limit <= 0 || limit > maxHistoryLimit {
		limit = defaultHistoryLimit
	}
	if offset < 0 {
		offset = 0
	}

	transactions, err := s.db.GetTransactionHistory(ctx, userId, symbol, limit, offset)
	if err != nil {
		s.logger.Error("Failed to get transaction history",
			zap.String("user_id", userId),
			zap.String("asset", symbol),
			zap.Error(err))
		return nil, fmt.Errorf("failed to retrieve transaction history: %w", err)
	}

	return transactions, nil
}
