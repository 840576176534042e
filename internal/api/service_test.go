package api

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"stellarcade-backend-go/internal/common"
	"stellarcade-backend-go/internal/config"
	"stellarcade-backend-go/internal/database"
	"stellarcade-backend-go/internal/models"
	"stellarcade-backend-go/internal/stellar"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	userAddress  = "GAAZI4TCR3TY5OJHCTJC2A4QSY6CJWJH5IAJTGKIN2ER7LBNVKOCCWN7"
	otherAddress = "GADQOBYHA4DQOBYHA4DQOBYHA4DQOBYHA4DQOBYHA4DQOBYHA4DQOZPI"
)

// flakyContract fails the first `failures` invocations, then behaves like the mock
type flakyContract struct {
	failures atomic.Int32
}

func (*flakyContract) ContractID() string { return "flaky" }

func (f *flakyContract) Invoke(context.Context, string, ...any) (*stellar.InvokeResult, error) {
	if f.failures.Add(-1) >= 0 {
		return nil, errors.New("rpc unavailable")
	}
	return &stellar.InvokeResult{Status: stellar.StatusPending}, nil
}

func setupLedger(t *testing.T, contract stellar.ContractClient) (*LedgerService, *database.Service) {
	t.Helper()

	db, err := database.NewService(context.Background(), zap.NewNop(), config.DatabaseConfig{
		Path:         filepath.Join(t.TempDir(), "ledger.db"),
		MaxOpenConns: 4,
	})
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(db.Close)

	if _, err := db.CreateUser(context.Background(), "user1", "Test User", "test@example.com", userAddress); err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}

	if contract == nil {
		contract = stellar.NewMockContractClient("prize-pool", zap.NewNop())
	}
	assets := []common.AssetConfig{{Symbol: "XLM"}, {Symbol: "USDC", Issuer: otherAddress}}
	return NewLedgerService(db, contract, assets, zap.NewNop()), db
}

func TestRequestDeposit_Pending(t *testing.T) {
	ledger, _ := setupLedger(t, nil)

	result, err := ledger.RequestDeposit(context.Background(), DepositRequest{
		UserId: "user1", Asset: "xlm", Amount: decimal.NewFromInt(25), Reference: "dep-1",
	})
	if err != nil {
		t.Fatalf("RequestDeposit failed: %v", err)
	}

	if result.Status != stellar.StatusPending {
		t.Errorf("Expected pending status, got %s", result.Status)
	}
	if result.Asset != "XLM" || result.ContractId != "prize-pool" || result.TransactionId == "" {
		t.Errorf("Unexpected result: %+v", result)
	}
}

func TestRequestDeposit_Validation(t *testing.T) {
	ledger, _ := setupLedger(t, nil)
	ctx := context.Background()

	tests := []struct {
		name    string
		req     DepositRequest
		wantErr error
	}{
		{"zero amount", DepositRequest{UserId: "user1", Asset: "XLM", Amount: decimal.Zero, Reference: "r"}, ErrInvalidRequest},
		{"negative amount", DepositRequest{UserId: "user1", Asset: "XLM", Amount: decimal.NewFromInt(-1), Reference: "r"}, ErrInvalidRequest},
		{"missing reference", DepositRequest{UserId: "user1", Asset: "XLM", Amount: decimal.NewFromInt(1)}, ErrInvalidRequest},
		{"unsupported asset", DepositRequest{UserId: "user1", Asset: "BTC", Amount: decimal.NewFromInt(1), Reference: "r"}, ErrInvalidRequest},
		{"unknown user", DepositRequest{UserId: "nobody", Asset: "XLM", Amount: decimal.NewFromInt(1), Reference: "r"}, database.ErrUserNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ledger.RequestDeposit(ctx, tt.req); !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestRequestDeposit_DuplicateReference(t *testing.T) {
	ledger, _ := setupLedger(t, nil)
	ctx := context.Background()
	req := DepositRequest{UserId: "user1", Asset: "XLM", Amount: decimal.NewFromInt(1), Reference: "same"}

	if _, err := ledger.RequestDeposit(ctx, req); err != nil {
		t.Fatalf("First deposit failed: %v", err)
	}
	if _, err := ledger.RequestDeposit(ctx, req); !errors.Is(err, database.ErrDuplicateTransaction) {
		t.Errorf("Expected duplicate error, got %v", err)
	}
}

func TestRequestWithdrawal_InsufficientFunds(t *testing.T) {
	ledger, _ := setupLedger(t, nil)

	_, err := ledger.RequestWithdrawal(context.Background(), WithdrawalRequest{
		UserId: "user1", Asset: "XLM", Amount: decimal.NewFromInt(1), Reference: "wd-1",
	})
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Errorf("Expected ErrInsufficientFunds, got %v", err)
	}
}

func TestRequestWithdrawal_ReservesPendingAmount(t *testing.T) {
	ledger, db := setupLedger(t, nil)
	ctx := context.Background()

	_, err := db.ProcessTransaction(ctx, database.ProcessTransactionParams{
		UserId: "user1", Asset: "XLM", TransactionType: models.TransactionTypeAdjustment,
		Amount: decimal.NewFromInt(10), ExternalTxId: "credit-1",
	})
	if err != nil {
		t.Fatalf("Failed to credit user: %v", err)
	}

	result, err := ledger.RequestWithdrawal(ctx, WithdrawalRequest{
		UserId: "user1", Asset: "XLM", Amount: decimal.NewFromInt(7), Reference: "wd-1", Destination: otherAddress,
	})
	if err != nil {
		t.Fatalf("RequestWithdrawal failed: %v", err)
	}
	if result.Status != stellar.StatusPending || !result.Amount.Equal(decimal.NewFromInt(7)) {
		t.Errorf("Unexpected result: %+v", result)
	}

	_, err = ledger.RequestWithdrawal(ctx, WithdrawalRequest{
		UserId: "user1", Asset: "XLM", Amount: decimal.NewFromInt(4), Reference: "wd-2",
	})
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Errorf("Expected second withdrawal to exceed available balance, got %v", err)
	}

	balances, err := ledger.GetUserBalances(ctx, "user1")
	if err != nil {
		t.Fatalf("GetUserBalances failed: %v", err)
	}
	if len(balances) != 1 || !balances[0].Available.Equal(decimal.NewFromInt(3)) {
		t.Errorf("Expected 3 available, got %+v", balances)
	}
}

func TestRequestWithdrawal_InvalidDestination(t *testing.T) {
	ledger, _ := setupLedger(t, nil)

	_, err := ledger.RequestWithdrawal(context.Background(), WithdrawalRequest{
		UserId: "user1", Asset: "XLM", Amount: decimal.NewFromInt(1), Reference: "wd-1", Destination: "nowhere",
	})
	if !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("Expected ErrInvalidRequest, got %v", err)
	}
}

func TestRequestDeposit_ContractFailure(t *testing.T) {
	contract := &flakyContract{}
	contract.failures.Store(1)
	ledger, db := setupLedger(t, contract)
	ctx := context.Background()
	req := DepositRequest{UserId: "user1", Asset: "XLM", Amount: decimal.NewFromInt(1), Reference: "dep-1"}

	if _, err := ledger.RequestDeposit(ctx, req); err == nil {
		t.Fatal("Expected contract failure to surface")
	}

	history, err := db.GetTransactionHistory(ctx, "user1", "XLM", 10, 0)
	if err != nil {
		t.Fatalf("GetTransactionHistory failed: %v", err)
	}
	if len(history) != 1 || history[0].Status != models.TransactionStatusFailed {
		t.Fatalf("Expected one failed transaction, got %+v", history)
	}

	result, err := ledger.RequestDeposit(ctx, req)
	if err != nil {
		t.Fatalf("Retry with the same reference failed: %v", err)
	}
	if result.Status != stellar.StatusPending {
		t.Errorf("Expected pending status on retry, got %s", result.Status)
	}
}

func TestRequestWithdrawal_ContractFailureReleasesFunds(t *testing.T) {
	contract := &flakyContract{}
	contract.failures.Store(1)
	ledger, db := setupLedger(t, contract)
	ctx := context.Background()

	_, err := db.ProcessTransaction(ctx, database.ProcessTransactionParams{
		UserId: "user1", Asset: "XLM", TransactionType: models.TransactionTypeAdjustment,
		Amount: decimal.NewFromInt(10), ExternalTxId: "credit-1",
	})
	if err != nil {
		t.Fatalf("Failed to credit user: %v", err)
	}

	req := WithdrawalRequest{UserId: "user1", Asset: "XLM", Amount: decimal.NewFromInt(10), Reference: "wd-1"}
	if _, err := ledger.RequestWithdrawal(ctx, req); err == nil {
		t.Fatal("Expected contract failure to surface")
	}

	pending, err := db.PendingWithdrawalTotal(ctx, "user1", "XLM")
	if err != nil {
		t.Fatalf("PendingWithdrawalTotal failed: %v", err)
	}
	if !pending.IsZero() {
		t.Errorf("Expected failed withdrawal to release funds, %s still pending", pending)
	}

	if _, err := ledger.RequestWithdrawal(ctx, req); err != nil {
		t.Errorf("Retry with the same reference failed: %v", err)
	}
}

func TestRequestWithdrawal_ConcurrentRequestsCannotOverdraw(t *testing.T) {
	ledger, db := setupLedger(t, nil)
	ctx := context.Background()

	_, err := db.ProcessTransaction(ctx, database.ProcessTransactionParams{
		UserId: "user1", Asset: "XLM", TransactionType: models.TransactionTypeAdjustment,
		Amount: decimal.NewFromInt(10), ExternalTxId: "credit-1",
	})
	if err != nil {
		t.Fatalf("Failed to credit user: %v", err)
	}

	const workers = 20
	var (
		wg       sync.WaitGroup
		accepted atomic.Int32
		errs     = make(chan error, workers)
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := ledger.RequestWithdrawal(ctx, WithdrawalRequest{
				UserId: "user1", Asset: "XLM", Amount: decimal.NewFromInt(10), Reference: fmt.Sprintf("wd-%d", i),
			})
			switch {
			case err == nil:
				accepted.Add(1)
			case !errors.Is(err, ErrInsufficientFunds):
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Unexpected withdrawal error: %v", err)
	}
	if got := accepted.Load(); got != 1 {
		t.Errorf("Expected exactly 1 withdrawal accepted against balance 10, got %d", got)
	}

	pending, err := db.PendingWithdrawalTotal(ctx, "user1", "XLM")
	if err != nil {
		t.Fatalf("PendingWithdrawalTotal failed: %v", err)
	}
	if !pending.Equal(decimal.NewFromInt(10)) {
		t.Errorf("Expected 10 pending, got %s", pending)
	}
}

func TestGetTransactionHistory_ClampsLimit(t *testing.T) {
	ledger, _ := setupLedger(t, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := ledger.RequestDeposit(ctx, DepositRequest{
			UserId: "user1", Asset: "XLM", Amount: decimal.NewFromInt(1), Reference: string(rune('a' + i)),
		})
		if err != nil {
			t.Fatalf("RequestDeposit failed: %v", err)
		}
	}

	history, err := ledger.GetTransactionHistory(ctx, "user1", "XLM", 1000, -5)
	if err != nil {
		t.Fatalf("GetTransactionHistory failed: %v", err)
	}
	if len(history) != 3 {
		t.Errorf("Expected 3 transactions, got %d", len(history))
	}
}
