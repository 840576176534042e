package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	TransactionTypeDeposit    = "deposit"
	TransactionTypeWithdrawal = "withdrawal"
	TransactionTypeAdjustment = "adjustment"

	TransactionStatusPending   = "pending"
	TransactionStatusConfirmed = "confirmed"
	TransactionStatusFailed    = "failed"
)

// User is a registered player with the Stellar account they play from
type User struct {
	Id             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	StellarAddress string    `json:"stellar_address"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// AccountBalance represents current balance state (hot data)
type AccountBalance struct {
	Id                string          `json:"id"`
	UserId            string          `json:"user_id"`
	Asset             string          `json:"asset"`
	Balance           decimal.Decimal `json:"balance"`
	LastTransactionId string          `json:"last_transaction_id"`
	Version           int64           `json:"version"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// Transaction represents immutable transaction history (cold data)
type Transaction struct {
	Id                    string          `json:"id"`
	UserId                string          `json:"user_id"`
	Asset                 string          `json:"asset"`
	TransactionType       string          `json:"type"`
	Amount                decimal.Decimal `json:"amount"`
	BalanceBefore         decimal.Decimal `json:"balance_before"`
	BalanceAfter          decimal.Decimal `json:"balance_after"`
	ExternalTransactionId string          `json:"external_transaction_id"`
	Address               string          `json:"address"`
	Reference             string          `json:"reference"`
	Status                string          `json:"status"`
	CreatedAt             time.Time       `json:"created_at"`
	ProcessedAt           time.Time       `json:"processed_at"`
}

// WalletResult is returned to callers of the deposit and withdraw endpoints
type WalletResult struct {
	TransactionId string          `json:"transaction_id"`
	UserId        string          `json:"user_id"`
	Asset         string          `json:"asset"`
	Amount        decimal.Decimal `json:"amount"`
	Status        string          `json:"status"`
	ContractId    string          `json:"contract_id,omitempty"`
}
