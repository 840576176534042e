package api

import (
	"context"
	"fmt"

	"stellarcade-backend-go/internal/database"
	"stellarcade-backend-go/internal/models"
	"stellarcade-backend-go/internal/stellar"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	contractMethodDeposit  = "deposit"
	contractMethodWithdraw = "withdraw"
)

// DepositRequest asks for funds sent from the user's Stellar account to be credited
type DepositRequest struct {
	UserId    string
	Asset     string
	Amount    decimal.Decimal
	Reference string
}

// WithdrawalRequest asks for funds to be paid out to Destination, or the user's own address when empty
type WithdrawalRequest struct {
	UserId      string
	Asset       string
	Amount      decimal.Decimal
	Reference   string
	Destination string
}

func validateBase(userId string, amount decimal.Decimal, reference string) error {
	if userId == "" {
		return fmt.Errorf("%w: user_id is required", ErrInvalidRequest)
	}
	if !amount.IsPositive() {
		return fmt.Errorf("%w: amount must be greater than zero", ErrInvalidRequest)
	}
	if reference == "" {
		return fmt.Errorf("%w: reference is required", ErrInvalidRequest)
	}
	return nil
}

// RequestDeposit records a pending deposit and submits it to the prize pool contract
func (s *LedgerService) RequestDeposit(ctx context.Context, req DepositRequest) (*models.WalletResult, error) {
	if err := validateBase(req.UserId, req.Amount, req.Reference); err != nil {
		return nil, err
	}
	asset, err := s.normalizeAsset(req.Asset)
	if err != nil {
		return nil, err
	}

	user, err := s.db.GetUserById(ctx, req.UserId)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Processing deposit request",
		zap.String("user_id", user.Id),
		zap.String("asset", asset),
		zap.String("amount", req.Amount.String()),
		zap.String("reference", req.Reference))

	tx, err := s.db.RecordWalletRequest(ctx, database.ProcessTransactionParams{
		UserId:          user.Id,
		Asset:           asset,
		TransactionType: models.TransactionTypeDeposit,
		Amount:          req.Amount,
		ExternalTxId:    req.Reference,
		Address:         user.StellarAddress,
		Reference:       req.Reference,
	})
	if err != nil {
		return nil, err
	}

	return s.submit(ctx, contractMethodDeposit, tx, user.StellarAddress)
}

// RequestWithdrawal records a pending withdrawal when the available balance covers it.
// The balance check happens in the same database transaction as the insert.
func (s *LedgerService) RequestWithdrawal(ctx context.Context, req WithdrawalRequest) (*models.WalletResult, error) {
	if err := validateBase(req.UserId, req.Amount, req.Reference); err != nil {
		return nil, err
	}
	asset, err := s.normalizeAsset(req.Asset)
	if err != nil {
		return nil, err
	}

	user, err := s.db.GetUserById(ctx, req.UserId)
	if err != nil {
		return nil, err
	}

	destination := req.Destination
	if destination == "" {
		destination = user.StellarAddress
	}
	if err := stellar.ValidateAccountAddress(destination); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	s.logger.Info("Processing withdrawal request",
		zap.String("user_id", user.Id),
		zap.String("asset", asset),
		zap.String("amount", req.Amount.String()),
		zap.String("destination", destination),
		zap.String("reference", req.Reference))

	tx, err := s.db.RecordWithdrawalRequest(ctx, database.ProcessTransactionParams{
		UserId:       user.Id,
		Asset:        asset,
		Amount:       req.Amount,
		ExternalTxId: req.Reference,
		Address:      destination,
		Reference:    req.Reference,
	})
	if err != nil {
		return nil, err
	}

	return s.submit(ctx, contractMethodWithdraw, tx, destination)
}

func (s *LedgerService) submit(ctx context.Context, method string, tx *models.Transaction, address string) (*models.WalletResult, error) {
	result, err := s.prizePool.Invoke(ctx, method, address, tx.Asset, tx.Amount.Abs().String(), tx.Id)
	if err != nil {
		s.logger.Error("Contract invocation failed",
			zap.String("method", method),
			zap.String("contract_id", s.prizePool.ContractID()),
			zap.String("transaction_id", tx.Id),
			zap.Error(err))
		// release the reservation and the reference so the caller can retry
		if markErr := s.db.MarkWalletRequestFailed(context.WithoutCancel(ctx), tx.Id); markErr != nil {
			s.logger.Error("Failed to release wallet request",
				zap.String("transaction_id", tx.Id),
				zap.Error(markErr))
		}
		return nil, fmt.Errorf("contract invocation failed: %w", err)
	}

	s.logger.Info("Wallet request submitted",
		zap.String("method", method),
		zap.String("transaction_id", tx.Id),
		zap.String("status", result.Status))

	return &models.WalletResult{
		TransactionId: tx.Id,
		UserId:        tx.UserId,
		Asset:         tx.Asset,
		Amount:        tx.Amount.Abs(),
		Status:        result.Status,
		ContractId:    s.prizePool.ContractID(),
	}, nil
}
