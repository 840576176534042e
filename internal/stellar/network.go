package stellar

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"stellarcade-backend-go/internal/config"

	"github.com/shopspring/decimal"
	"github.com/stellar/go/clients/horizonclient"
	"github.com/stellar/go/network"
	hProtocol "github.com/stellar/go/protocols/horizon"
	"go.uber.org/zap"
)

const (
	NativeAsset = "XLM"

	defaultHorizonTimeout = 10 * time.Second
)

// Network is the process-wide handle to the selected ledger network and its Horizon server.
type Network struct {
	Name       string
	HorizonURL string
	Passphrase string
	Client     *horizonclient.Client
	logger     *zap.Logger
}

// AccountBalance is one trustline (or the native balance) of a ledger account
type AccountBalance struct {
	Asset   string
	Issuer  string
	Balance decimal.Decimal
}

// NewNetwork builds the Horizon client for the configured endpoint. Values are used as given.
func NewNetwork(cfg config.StellarConfig, logger *zap.Logger) *Network {
	timeout := cfg.HorizonTimeout
	if timeout <= 0 {
		timeout = defaultHorizonTimeout
	}

	client := &horizonclient.Client{
		HorizonURL: cfg.HorizonURL,
		HTTP:       &http.Client{Timeout: timeout},
	}
	client.SetHorizonTimeout(timeout)

	logger.Info("Stellar SDK initialized",
		zap.String("network", cfg.Network),
		zap.String("horizon_url", cfg.HorizonURL))

	return &Network{
		Name:       cfg.Network,
		HorizonURL: cfg.HorizonURL,
		Passphrase: cfg.Passphrase,
		Client:     client,
		logger:     logger,
	}
}

// KnownPassphrase returns the SDK passphrase for well-known network names.
func KnownPassphrase(name string) (string, bool) {
	switch name {
	case "testnet":
		return network.TestNetworkPassphrase, true
	case "mainnet", "public", "pubnet":
		return network.PublicNetworkPassphrase, true
	}
	return "", false
}

// CheckPassphrase warns when the configured passphrase does not belong to the selected network.
// The configured value is never replaced.
func (n *Network) CheckPassphrase() {
	expected, ok := KnownPassphrase(n.Name)
	if !ok || n.Passphrase == "" || n.Passphrase == expected {
		return
	}
	n.logger.Warn("Network passphrase does not match selected network",
		zap.String("network", n.Name),
		zap.String("passphrase", n.Passphrase),
		zap.String("expected_passphrase", expected))
}

// Ping fetches the Horizon root document
func (n *Network) Ping(ctx context.Context) (*hProtocol.Root, error) {
	type result struct {
		root hProtocol.Root
		err  error
	}

	done := make(chan result, 1)
	go func() {
		root, err := n.Client.Root()
		done <- result{root: root, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-done:
		if r.err != nil {
			return nil, fmt.Errorf("horizon root request failed: %w", r.err)
		}
		return &r.root, nil
	}
}

// AccountBalances returns the balances Horizon reports for a ledger account
func (n *Network) AccountBalances(ctx context.Context, address string) ([]AccountBalance, error) {
	if err := ValidateAccountAddress(address); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	n.logger.Debug("Fetching account from Horizon", zap.String("address", address))

	account, err := n.Client.AccountDetail(horizonclient.AccountRequest{AccountID: address})
	if err != nil {
		return nil, fmt.Errorf("horizon account request failed: %w", err)
	}

	balances := make([]AccountBalance, 0, len(account.Balances))
	for _, b := range account.Balances {
		amount, err := decimal.NewFromString(b.Balance)
		if err != nil {
			return nil, fmt.Errorf("failed to parse balance '%s': %w", b.Balance, err)
		}

		asset := b.Code
		if b.Type == "native" {
			asset = NativeAsset
		}
		balances = append(balances, AccountBalance{
			Asset:   asset,
			Issuer:  b.Issuer,
			Balance: amount,
		})
	}

	return balances, nil
}
