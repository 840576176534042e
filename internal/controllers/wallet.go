package controllers

import (
	"context"
	"errors"
	"net/http"

	"stellarcade-backend-go/internal/api"
	"stellarcade-backend-go/internal/database"
	"stellarcade-backend-go/internal/middleware"
	"stellarcade-backend-go/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// WalletService is the ledger behaviour the wallet endpoints need
type WalletService interface {
	RequestDeposit(ctx context.Context, req api.DepositRequest) (*models.WalletResult, error)
	RequestWithdrawal(ctx context.Context, req api.WithdrawalRequest) (*models.WalletResult, error)
	GetUserBalances(ctx context.Context, userId string) ([]api.UserBalance, error)
	GetTransactionHistory(ctx context.Context, userId, asset string, limit, offset int) ([]models.Transaction, error)
}

type WalletController struct {
	ledger WalletService
	logger *zap.Logger
}

func NewWalletController(ledger WalletService, logger *zap.Logger) *WalletController {
	return &WalletController{ledger: ledger, logger: logger}
}

type walletRequest struct {
	Asset       string          `json:"asset" binding:"required"`
	Amount      decimal.Decimal `json:"amount"`
	Reference   string          `json:"reference" binding:"required"`
	Destination string          `json:"destination"`
}

type historyQuery struct {
	Asset  string `form:"asset"`
	Limit  int    `form:"limit" binding:"omitempty,min=0"`
	Offset int    `form:"offset" binding:"omitempty,min=0"`
}

func (w *WalletController) Deposit(c *gin.Context) {
	userId, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	var req walletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	result, err := w.ledger.RequestDeposit(c.Request.Context(), api.DepositRequest{
		UserId:    userId,
		Asset:     req.Asset,
		Amount:    req.Amount,
		Reference: req.Reference,
	})
	if err != nil {
		w.respondError(c, "deposit", err)
		return
	}

	c.JSON(http.StatusAccepted, result)
}

func (w *WalletController) Withdraw(c *gin.Context) {
	userId, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	var req walletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	result, err := w.ledger.RequestWithdrawal(c.Request.Context(), api.WithdrawalRequest{
		UserId:      userId,
		Asset:       req.Asset,
		Amount:      req.Amount,
		Reference:   req.Reference,
		Destination: req.Destination,
	})
	if err != nil {
		w.respondError(c, "withdraw", err)
		return
	}

	c.JSON(http.StatusAccepted, result)
}

func (w *WalletController) Balances(c *gin.Context) {
	userId, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	balances, err := w.ledger.GetUserBalances(c.Request.Context(), userId)
	if err != nil {
		w.respondError(c, "balances", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"balances": balances})
}

func (w *WalletController) History(c *gin.Context) {
	userId, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	var query historyQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query", "details": err.Error()})
		return
	}

	transactions, err := w.ledger.GetTransactionHistory(c.Request.Context(), userId, query.Asset, query.Limit, query.Offset)
	if err != nil {
		w.respondError(c, "history", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transactions": transactions})
}

func (w *WalletController) respondError(c *gin.Context, operation string, err error) {
	status := http.StatusInternalServerError
	message := "internal error"

	switch {
	case errors.Is(err, api.ErrInvalidRequest):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, database.ErrUserNotFound):
		status, message = http.StatusNotFound, "user not found"
	case errors.Is(err, database.ErrDuplicateTransaction):
		status, message = http.StatusConflict, "duplicate reference"
	case errors.Is(err, api.ErrInsufficientFunds):
		status, message = http.StatusUnprocessableEntity, err.Error()
	default:
		w.logger.Error("Wallet operation failed", zap.String("operation", operation), zap.Error(err))
	}

	_ = c.Error(err)
	c.JSON(status, gin.H{"error": message})
}
