package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"stellarcade-backend-go/internal/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// queryer is satisfied by both *sql.DB and *sql.Tx
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// GetBalance returns the confirmed balance for user/asset
func (s *Service) GetBalance(ctx context.Context, userId, asset string) (decimal.Decimal, error) {
	return s.getBalance(ctx, s.db, userId, asset)
}

func (s *Service) getBalance(ctx context.Context, q queryer, userId, asset string) (decimal.Decimal, error) {
	var balanceStr string
	err := q.QueryRowContext(ctx, queryGetBalance, userId, asset).Scan(&balanceStr)
	if errors.Is(err, sql.ErrNoRows) {
		// No balance record means zero balance
		return decimal.Zero, nil
	}
	if err != nil {
		s.logger.Error("Failed to get balance", zap.String("user_id", userId), zap.String("asset", asset), zap.Error(err))
		return decimal.Zero, fmt.Errorf("failed to get balance: %w", err)
	}

	balance, err := decimal.NewFromString(balanceStr)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse balance '%s': %w", balanceStr, err)
	}
	return balance, nil
}

// GetAllBalances returns all non-zero balances for a user
func (s *Service) GetAllBalances(ctx context.Context, userId string) ([]models.AccountBalance, error) {
	rows, err := s.db.QueryContext(ctx, queryGetAllBalances, userId)
	if err != nil {
		s.logger.Error("Failed to get all balances", zap.String("user_id", userId), zap.Error(err))
		return nil, fmt.Errorf("failed to get all balances: %w", err)
	}
	defer rows.Close()

	var balances []models.AccountBalance
	for rows.Next() {
		var balance models.AccountBalance
		var balanceStr string
		err := rows.Scan(&balance.Id, &balance.UserId, &balance.Asset, &balanceStr,
			&balance.LastTransactionId, &balance.Version, &balance.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan balance: %w", err)
		}
		if balance.Balance, err = decimal.NewFromString(balanceStr); err != nil {
			return nil, fmt.Errorf("failed to parse balance '%s': %w", balanceStr, err)
		}
		if balance.Balance.IsZero() {
			continue
		}
		balances = append(balances, balance)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating balance rows: %w", err)
	}

	s.logger.Debug("Retrieved all balances", zap.String("user_id", userId), zap.Int("count", len(balances)))
	return balances, nil
}

func (s *Service) sumAmounts(ctx context.Context, q queryer, query string, args ...any) (decimal.Decimal, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return decimal.Zero, err
	}
	defer rows.Close()

	total := decimal.Zero
	for rows.Next() {
		var amountStr string
		if err := rows.Scan(&amountStr); err != nil {
			return decimal.Zero, err
		}
		amount, err := decimal.NewFromString(amountStr)
		if err != nil {
			return decimal.Zero, fmt.Errorf("failed to parse amount '%s': %w", amountStr, err)
		}
		total = total.Add(amount)
	}
	return total, rows.Err()
}

// PendingWithdrawalTotal returns the absolute sum of withdrawals still awaiting settlement
func (s *Service) PendingWithdrawalTotal(ctx context.Context, userId, asset string) (decimal.Decimal, error) {
	return s.pendingWithdrawalTotal(ctx, s.db, userId, asset)
}

func (s *Service) pendingWithdrawalTotal(ctx context.Context, q queryer, userId, asset string) (decimal.Decimal, error) {
	total, err := s.sumAmounts(ctx, q, queryGetPendingAmountsByType, userId, asset, models.TransactionTypeWithdrawal)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum pending withdrawals: %w", err)
	}
	return total.Abs(), nil
}

// ReconcileBalance verifies that current balance matches sum of all confirmed transactions
func (s *Service) ReconcileBalance(ctx context.Context, userId, asset string) error {
	s.logger.Info("Reconciling balance", zap.String("user_id", userId), zap.String("asset", asset))

	currentBalance, err := s.GetBalance(ctx, userId, asset)
	if err != nil {
		return fmt.Errorf("failed to get current balance: %w", err)
	}

	calculatedBalance, err := s.sumAmounts(ctx, s.db, queryGetTransactionAmounts, userId, asset, models.TransactionStatusConfirmed)
	if err != nil {
		return fmt.Errorf("failed to calculate balance from transactions: %w", err)
	}

	if !currentBalance.Equal(calculatedBalance) {
		s.logger.Error("Balance reconciliation failed",
			zap.String("user_id", userId),
			zap.String("asset", asset),
			zap.String("current_balance", currentBalance.String()),
			zap.String("calculated_balance", calculatedBalance.String()))
		return fmt.Errorf("balance mismatch: current=%s, calculated=%s", currentBalance, calculatedBalance)
	}

	s.logger.Info("Balance reconciliation successful",
		zap.String("user_id", userId),
		zap.String("asset", asset),
		zap.String("balance", currentBalance.String()))
	return nil
}
