package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"stellarcade-backend-go/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProcessTransactionParams contains the parameters for processing a transaction
type ProcessTransactionParams struct {
	UserId          string
	Asset           string
	TransactionType string
	Amount          decimal.Decimal
	ExternalTxId    string
	Address         string
	Reference       string
}

// checkDuplicate returns ErrDuplicateTransaction when externalTxId is held by a live transaction
func (s *Service) checkDuplicate(ctx context.Context, q queryer, externalTxId string) error {
	if externalTxId == "" {
		return nil
	}

	var existingTxId string
	err := q.QueryRowContext(ctx, queryCheckDuplicateTransaction, externalTxId).Scan(&existingTxId)
	if err == nil {
		s.logger.Warn("Duplicate external transaction Id detected, skipping",
			zap.String("external_tx_id", externalTxId),
			zap.String("existing_internal_tx_id", existingTxId))
		return fmt.Errorf("%w: external_transaction_id %s already exists", ErrDuplicateTransaction, externalTxId)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to check for duplicate transaction: %w", err)
	}
	return nil
}

// RecordWalletRequest stores a pending deposit or withdrawal. Balances are left untouched.
func (s *Service) RecordWalletRequest(ctx context.Context, params ProcessTransactionParams) (*models.Transaction, error) {
	return s.recordPending(ctx, params, false)
}

// RecordWithdrawalRequest stores a pending withdrawal only when the confirmed balance,
// less withdrawals already pending, covers it. The check and the insert share one
// write transaction so concurrent requests cannot reserve the same funds.
func (s *Service) RecordWithdrawalRequest(ctx context.Context, params ProcessTransactionParams) (*models.Transaction, error) {
	params.TransactionType = models.TransactionTypeWithdrawal
	params.Amount = params.Amount.Abs().Neg()
	return s.recordPending(ctx, params, true)
}

func (s *Service) recordPending(ctx context.Context, params ProcessTransactionParams, reserve bool) (*models.Transaction, error) {
	s.logger.Info("Recording wallet request",
		zap.String("user_id", params.UserId),
		zap.String("asset", params.Asset),
		zap.String("type", params.TransactionType),
		zap.String("amount", params.Amount.String()),
		zap.String("external_tx_id", params.ExternalTxId))

	// _txlock=immediate takes the write lock here, serializing writers
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.checkDuplicate(ctx, tx, params.ExternalTxId); err != nil {
		return nil, err
	}

	currentBalance, err := s.getBalance(ctx, tx, params.UserId, params.Asset)
	if err != nil {
		return nil, err
	}

	if reserve {
		pending, err := s.pendingWithdrawalTotal(ctx, tx, params.UserId, params.Asset)
		if err != nil {
			return nil, err
		}
		available := currentBalance.Sub(pending)
		requested := params.Amount.Abs()
		if available.LessThan(requested) {
			s.logger.Warn("Withdrawal exceeds available balance",
				zap.String("user_id", params.UserId),
				zap.String("asset", params.Asset),
				zap.String("available", available.String()),
				zap.String("amount", requested.String()))
			return nil, fmt.Errorf("%w: available %s, requested %s", ErrInsufficientFunds, available, requested)
		}
	}

	now := time.Now().UTC()
	transaction := &models.Transaction{
		Id:                    uuid.New().String(),
		UserId:                params.UserId,
		Asset:                 params.Asset,
		TransactionType:       params.TransactionType,
		Amount:                params.Amount,
		BalanceBefore:         currentBalance,
		BalanceAfter:          currentBalance,
		ExternalTransactionId: params.ExternalTxId,
		Address:               params.Address,
		Reference:             params.Reference,
		Status:                models.TransactionStatusPending,
		CreatedAt:             now,
		ProcessedAt:           now,
	}

	if err := s.insertTransaction(ctx, tx, transaction); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Info("Wallet request recorded",
		zap.String("transaction_id", transaction.Id),
		zap.String("user_id", params.UserId),
		zap.String("status", transaction.Status))

	return transaction, nil
}

// MarkWalletRequestFailed moves a pending request to failed. A failed request no longer
// reserves funds and its external id may be reused.
func (s *Service) MarkWalletRequestFailed(ctx context.Context, transactionId string) error {
	result, err := s.db.ExecContext(ctx, queryMarkTransactionFailed, time.Now().UTC(), transactionId)
	if err != nil {
		return fmt.Errorf("failed to mark transaction failed: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("transaction %s is not pending", transactionId)
	}

	s.logger.Info("Wallet request marked failed", zap.String("transaction_id", transactionId))
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Service) insertTransaction(ctx context.Context, db execer, t *models.Transaction) error {
	_, err := db.ExecContext(ctx, queryInsertTransaction,
		t.Id, t.UserId, t.Asset, t.TransactionType,
		t.Amount.String(), t.BalanceBefore.String(), t.BalanceAfter.String(),
		t.ExternalTransactionId, t.Address, t.Reference, t.Status, t.CreatedAt, t.ProcessedAt)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("%w: external_transaction_id %s already exists", ErrDuplicateTransaction, t.ExternalTransactionId)
		}
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}

// ProcessTransaction atomically updates balance and records a confirmed transaction
func (s *Service) ProcessTransaction(ctx context.Context, params ProcessTransactionParams) (*models.Transaction, error) {
	s.logger.Info("Processing transaction",
		zap.String("user_id", params.UserId),
		zap.String("asset", params.Asset),
		zap.String("type", params.TransactionType),
		zap.String("amount", params.Amount.String()),
		zap.String("external_tx_id", params.ExternalTxId))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.checkDuplicate(ctx, tx, params.ExternalTxId); err != nil {
		return nil, err
	}

	var currentBalanceStr string
	var accountId string
	var version int64

	err = tx.QueryRowContext(ctx, queryGetAccountBalance, params.UserId, params.Asset).Scan(&accountId, &currentBalanceStr, &version)

	var currentBalance decimal.Decimal
	switch {
	case errors.Is(err, sql.ErrNoRows):
		accountId = uuid.New().String()
		currentBalance = decimal.Zero
		version = 1

		_, err = tx.ExecContext(ctx, queryInsertAccountBalance, accountId, params.UserId, params.Asset, "0", version)
		if err != nil {
			return nil, fmt.Errorf("failed to create account balance: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("failed to get current balance: %w", err)
	default:
		currentBalance, err = decimal.NewFromString(currentBalanceStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse current balance '%s': %w", currentBalanceStr, err)
		}
	}

	newBalance := currentBalance.Add(params.Amount)

	now := time.Now().UTC()
	transaction := &models.Transaction{
		Id:                    uuid.New().String(),
		UserId:                params.UserId,
		Asset:                 params.Asset,
		TransactionType:       params.TransactionType,
		Amount:                params.Amount,
		BalanceBefore:         currentBalance,
		BalanceAfter:          newBalance,
		ExternalTransactionId: params.ExternalTxId,
		Address:               params.Address,
		Reference:             params.Reference,
		Status:                models.TransactionStatusConfirmed,
		CreatedAt:             now,
		ProcessedAt:           now,
	}

	if err := s.insertTransaction(ctx, tx, transaction); err != nil {
		return nil, err
	}

	// optimistic lock on version
	result, err := tx.ExecContext(ctx, queryUpdateAccountBalance, newBalance.String(), transaction.Id, params.UserId, params.Asset, version)
	if err != nil {
		return nil, fmt.Errorf("failed to update balance: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, ErrConcurrentUpdate
	}

	if err := s.addJournalEntries(ctx, tx, transaction); err != nil {
		return nil, fmt.Errorf("failed to add journal entries: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Info("Transaction processed successfully",
		zap.String("transaction_id", transaction.Id),
		zap.String("user_id", params.UserId),
		zap.String("asset", params.Asset),
		zap.String("old_balance", currentBalance.String()),
		zap.String("new_balance", newBalance.String()))

	return transaction, nil
}

type journalEntry struct {
	accountType  string
	accountId    string
	debitAmount  decimal.Decimal
	creditAmount decimal.Decimal
}

// addJournalEntries creates double-entry bookkeeping entries.
// Credits to the user debit their asset account and credit the system liability; debits mirror that.
func (s *Service) addJournalEntries(ctx context.Context, tx *sql.Tx, transaction *models.Transaction) error {
	userAccount := fmt.Sprintf("%s_%s", transaction.UserId, transaction.Asset)
	liabilityAccount := fmt.Sprintf("user_deposits_%s", transaction.Asset)
	amount := transaction.Amount.Abs()

	var entries []journalEntry
	if transaction.Amount.IsPositive() {
		entries = []journalEntry{
			{"user_asset", userAccount, amount, decimal.Zero},
			{"system_liability", liabilityAccount, decimal.Zero, amount},
		}
	} else {
		entries = []journalEntry{
			{"user_asset", userAccount, decimal.Zero, amount},
			{"system_liability", liabilityAccount, amount, decimal.Zero},
		}
	}

	for _, entry := range entries {
		_, err := tx.ExecContext(ctx, queryInsertJournalEntry,
			uuid.New().String(), transaction.Id, entry.accountType, entry.accountId,
			entry.debitAmount.String(), entry.creditAmount.String())
		if err != nil {
			return err
		}
	}

	return nil
}

// GetTransactionHistory returns paginated transaction history for a user, newest first
func (s *Service) GetTransactionHistory(ctx context.Context, userId, asset string, limit, offset int) ([]models.Transaction, error) {
	s.logger.Debug("Getting transaction history",
		zap.String("user_id", userId),
		zap.String("asset", asset),
		zap.Int("limit", limit),
		zap.Int("offset", offset))

	rows, err := s.db.QueryContext(ctx, queryGetTransactionHistory, userId, asset, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction history: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			s.logger.Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	var transactions []models.Transaction
	for rows.Next() {
		var tx models.Transaction
		var amountStr, balanceBeforeStr, balanceAfterStr string
		err := rows.Scan(&tx.Id, &tx.UserId, &tx.Asset, &tx.TransactionType,
			&amountStr, &balanceBeforeStr, &balanceAfterStr,
			&tx.ExternalTransactionId, &tx.Address, &tx.Reference,
			&tx.Status, &tx.CreatedAt, &tx.ProcessedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}

		if tx.Amount, err = decimal.NewFromString(amountStr); err != nil {
			return nil, fmt.Errorf("failed to parse amount '%s': %w", amountStr, err)
		}
		if tx.BalanceBefore, err = decimal.NewFromString(balanceBeforeStr); err != nil {
			return nil, fmt.Errorf("failed to parse balance before '%s': %w", balanceBeforeStr, err)
		}
		if tx.BalanceAfter, err = decimal.NewFromString(balanceAfterStr); err != nil {
			return nil, fmt.Errorf("failed to parse balance after '%s': %w", balanceAfterStr, err)
		}

		transactions = append(transactions, tx)
	}

	if err := rows.Err(); err != nil {
		s.logger.Error("Error during transaction row iteration", zap.Error(err))
		return nil, fmt.Errorf("error iterating transaction rows: %w", err)
	}

	return transactions, nil
}
