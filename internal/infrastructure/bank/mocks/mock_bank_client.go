// Package mocks provides an in-memory BankClient for tests.
package mocks

import (
	"context"
	"sync"

	"github.com/pixbridge/inter-gateway/internal/application"
)

// MockBankClient records calls and delegates to overridable Fn fields.
type MockBankClient struct {
	mu sync.Mutex

	CreateChargeFn func(ctx context.Context, req application.BankCreateChargeRequest) (*application.BankChargeResponse, error)
	LookupChargeFn func(ctx context.Context, txid string) (*application.BankChargeResponse, error)

	CreateChargeCalls []application.BankCreateChargeRequest
	LookupChargeCalls []string
}

func NewMockBankClient() *MockBankClient {
	return &MockBankClient{}
}

func (m *MockBankClient) CreateCharge(ctx context.Context, req application.BankCreateChargeRequest) (*application.BankChargeResponse, error) {
	m.mu.Lock()
	m.CreateChargeCalls = append(m.CreateChargeCalls, req)
	fn := m.CreateChargeFn
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, req)
	}
	return &application.BankChargeResponse{
		TxID:     req.TxID,
		Status:   "ATIVA",
		Location: "pix.example.com/qr/" + req.TxID,
	}, nil
}

func (m *MockBankClient) LookupCharge(ctx context.Context, txid string) (*application.BankChargeResponse, error) {
	m.mu.Lock()
	m.LookupChargeCalls = append(m.LookupChargeCalls, txid)
	fn := m.LookupChargeFn
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, txid)
	}
	return &application.BankChargeResponse{TxID: txid, Status: "ATIVA"}, nil
}

// Calls returns how many CreateCharge invocations were made.
func (m *MockBankClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.CreateChargeCalls)
}
