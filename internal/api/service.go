package api

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"stellarcade-backend-go/internal/common"
	"stellarcade-backend-go/internal/database"
	"stellarcade-backend-go/internal/stellar"

	"go.uber.org/zap"
)

var (
	ErrInvalidRequest    = errors.New("invalid request")
	ErrInsufficientFunds = database.ErrInsufficientFunds
)

// LedgerService records wallet requests and forwards them to the prize pool contract
type LedgerService struct {
	db        *database.Service
	prizePool stellar.ContractClient
	assets    map[string]common.AssetConfig
	logger    *zap.Logger
}

func NewLedgerService(db *database.Service, prizePool stellar.ContractClient, assets []common.AssetConfig, logger *zap.Logger) *LedgerService {
	supported := make(map[string]common.AssetConfig, len(assets))
	for _, a := range assets {
		supported[a.Symbol] = a
	}

	return &LedgerService{
		db:        db,
		prizePool: prizePool,
		assets:    supported,
		logger:    logger,
	}
}

func (s *LedgerService) HealthCheck(ctx context.Context) error {
	if err := s.db.Ping(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	return nil
}

func (s *LedgerService) normalizeAsset(asset string) (string, error) {
	symbol := strings.ToUpper(strings.TrimSpace(asset))
	if symbol == "" {
		return "", fmt.Errorf("%w: asset is required", ErrInvalidRequest)
	}
	if _, ok := s.assets[symbol]; !ok {
		return "", fmt.Errorf("%w: unsupported asset %s", ErrInvalidRequest, symbol)
	}
	return symbol, nil
}
