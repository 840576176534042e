package stellar

import (
	"context"

	"go.uber.org/zap"
)

const StatusPending = "pending"

// InvokeResult is what a contract invocation reports back to the caller
type InvokeResult struct {
	Status string `json:"status"`
}

// ContractClient invokes methods on a deployed contract.
type ContractClient interface {
	ContractID() string
	Invoke(ctx context.Context, method string, args ...any) (*InvokeResult, error)
}

// ContractClientFactory returns a client bound to contractID
type ContractClientFactory func(contractID string) ContractClient

// MockContractClient logs the call and reports it as pending without contacting the network.
type MockContractClient struct {
	contractId string
	logger     *zap.Logger
}

func NewMockContractClient(contractId string, logger *zap.Logger) *MockContractClient {
	return &MockContractClient{
		contractId: contractId,
		logger:     logger,
	}
}

func (m *MockContractClient) ContractID() string {
	return m.contractId
}

// Invoke never fails and never blocks
func (m *MockContractClient) Invoke(_ context.Context, method string, args ...any) (*InvokeResult, error) {
	m.logger.Info("Invoking contract method",
		zap.String("method", method),
		zap.String("contract_id", m.contractId),
		zap.Int("arg_count", len(args)))

	return &InvokeResult{Status: StatusPending}, nil
}

func MockFactory(logger *zap.Logger) ContractClientFactory {
	return func(contractID string) ContractClient {
		return NewMockContractClient(contractID, logger)
	}
}
