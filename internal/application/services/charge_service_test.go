package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/pixbridge/inter-gateway/internal/application"
	"github.com/pixbridge/inter-gateway/internal/domain"
	"github.com/pixbridge/inter-gateway/internal/infrastructure/bank/mocks"
	"github.com/pixbridge/inter-gateway/internal/pixcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func configuredCreds() *MockCredentialRepository {
	creds := NewMockCredentialRepository()
	creds.ActiveFn = func(ctx context.Context) (*domain.CredentialSet, error) {
		return &domain.CredentialSet{
			Version:      1,
			Environment:  domain.EnvSandbox,
			ClientID:     "client-id",
			PixKey:       "gateway@example.com",
			Account:      "12345678",
			MerchantName: "LOJA EXEMPLO",
			MerchantCity: "SAO PAULO",
		}, nil
	}
	return creds
}

func newChargeService(repo *MockChargeRepository, creds *MockCredentialRepository, bankClient *mocks.MockBankClient) *ChargeService {
	return NewChargeService(repo, creds, bankClient, testLogger(), 24, 100)
}

func TestChargeService_CreateCharge_Success(t *testing.T) {
	repo := NewMockChargeRepository()
	bankClient := mocks.NewMockBankClient()
	svc := newChargeService(repo, configuredCreds(), bankClient)

	result, err := svc.CreateCharge(context.Background(), CreateChargeRequest{
		Amount:      "10.50",
		Description: "Pedido 42",
		PayerName:   "Joao Silva",
	})
	require.NoError(t, err)

	charge := result.Charge
	assert.Equal(t, domain.StatusPending, charge.Status)
	assert.EqualValues(t, 1050, charge.AmountCents)
	assert.True(t, domain.ValidTxID(charge.TxID))
	assert.NotEmpty(t, result.QRCodeBase64)

	payload, err := pixcode.Parse(charge.PixCode)
	require.NoError(t, err)
	assert.Equal(t, "10.50", payload.AmountDecimal)
	assert.Equal(t, charge.TxID, payload.TxID)

	require.Equal(t, 1, bankClient.Calls())
	sent := bankClient.CreateChargeCalls[0]
	assert.Equal(t, charge.TxID, sent.TxID)
	assert.Equal(t, "10.50", sent.AmountDecimal)
	assert.EqualValues(t, 24*3600, sent.ExpirationSeconds)

	stored, err := repo.FindByTxID(context.Background(), charge.TxID)
	require.NoError(t, err)
	assert.Equal(t, charge.PixCode, stored.PixCode)
}

func TestChargeService_CreateCharge_NotConfigured(t *testing.T) {
	repo := NewMockChargeRepository()
	bankClient := mocks.NewMockBankClient()
	svc := newChargeService(repo, NewMockCredentialRepository(), bankClient)

	_, err := svc.CreateCharge(context.Background(), CreateChargeRequest{
		Amount:      "10.00",
		Description: "Pedido 42",
	})

	svcErr, ok := application.IsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, application.ErrCodeNotConfigured, svcErr.Code)
	assert.Equal(t, 0, bankClient.Calls())
	assert.Empty(t, repo.charges)
}

func TestChargeService_CreateCharge_InvalidAmount(t *testing.T) {
	bankClient := mocks.NewMockBankClient()
	svc := newChargeService(NewMockChargeRepository(), configuredCreds(), bankClient)

	for _, amount := range []string{"", "0.00", "-5.00", "10.555", "abc"} {
		_, err := svc.CreateCharge(context.Background(), CreateChargeRequest{
			Amount:      amount,
			Description: "Pedido 42",
		})
		svcErr, ok := application.IsServiceError(err)
		require.True(t, ok, "amount %q", amount)
		assert.Equal(t, application.ErrCodeValidation, svcErr.Code, "amount %q", amount)
	}
	assert.Equal(t, 0, bankClient.Calls())
}

func TestChargeService_CreateCharge_ProviderRejected(t *testing.T) {
	repo := NewMockChargeRepository()
	bankClient := mocks.NewMockBankClient()
	bankClient.CreateChargeFn = func(ctx context.Context, req application.BankCreateChargeRequest) (*application.BankChargeResponse, error) {
		return nil, &application.BankError{Code: "cobranca-invalida", Message: "chave invalida", StatusCode: http.StatusBadRequest}
	}
	svc := newChargeService(repo, configuredCreds(), bankClient)

	_, err := svc.CreateCharge(context.Background(), CreateChargeRequest{
		Amount:      "10.00",
		Description: "Pedido 42",
	})

	svcErr, ok := application.IsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, application.ErrCodeRejectedByProvider, svcErr.Code)
	// provider failure must leave no local record
	assert.Empty(t, repo.charges)
}

func TestChargeService_CreateCharge_ProviderUnavailable(t *testing.T) {
	bankClient := mocks.NewMockBankClient()
	bankClient.CreateChargeFn = func(ctx context.Context, req application.BankCreateChargeRequest) (*application.BankChargeResponse, error) {
		return nil, errors.New("dial tcp: connection refused")
	}
	svc := newChargeService(NewMockChargeRepository(), configuredCreds(), bankClient)

	_, err := svc.CreateCharge(context.Background(), CreateChargeRequest{
		Amount:      "10.00",
		Description: "Pedido 42",
	})

	svcErr, ok := application.IsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, application.ErrCodeProviderUnavailable, svcErr.Code)
}

func TestChargeService_CreateCharge_AuthFailure(t *testing.T) {
	bankClient := mocks.NewMockBankClient()
	bankClient.CreateChargeFn = func(ctx context.Context, req application.BankCreateChargeRequest) (*application.BankChargeResponse, error) {
		return nil, &application.BankError{Code: "unauthorized", StatusCode: http.StatusUnauthorized}
	}
	svc := newChargeService(NewMockChargeRepository(), configuredCreds(), bankClient)

	_, err := svc.CreateCharge(context.Background(), CreateChargeRequest{
		Amount:      "10.00",
		Description: "Pedido 42",
	})

	svcErr, ok := application.IsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, application.ErrCodeAuthenticationFailed, svcErr.Code)
}

func TestChargeService_CreateCharge_ReusesOpenOrderCharge(t *testing.T) {
	repo := NewMockChargeRepository()
	bankClient := mocks.NewMockBankClient()
	svc := newChargeService(repo, configuredCreds(), bankClient)

	first, err := svc.CreateCharge(context.Background(), CreateChargeRequest{
		Amount:      "99.90",
		Description: "Pedido 77",
		OdooOrderID: "SO0077",
	})
	require.NoError(t, err)

	second, err := svc.CreateCharge(context.Background(), CreateChargeRequest{
		Amount:      "99.90",
		Description: "Pedido 77",
		OdooOrderID: "SO0077",
	})
	require.NoError(t, err)

	assert.Equal(t, first.Charge.TxID, second.Charge.TxID)
	assert.Equal(t, 1, bankClient.Calls())
}

func TestChargeService_GetCharge_NotFound(t *testing.T) {
	svc := newChargeService(NewMockChargeRepository(), configuredCreds(), mocks.NewMockBankClient())

	_, err := svc.GetCharge(context.Background(), "TX000000000000000000000000")

	svcErr, ok := application.IsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, application.ErrCodeNotFound, svcErr.Code)
}

func TestChargeService_PaymentByOrderID(t *testing.T) {
	repo := NewMockChargeRepository()
	svc := newChargeService(repo, configuredCreds(), mocks.NewMockBankClient())

	created, err := svc.CreateCharge(context.Background(), CreateChargeRequest{
		Amount:      "15.00",
		Description: "Pedido 12",
		OdooOrderID: "SO0012",
	})
	require.NoError(t, err)

	found, err := svc.PaymentByOrderID(context.Background(), "SO0012")
	require.NoError(t, err)
	assert.Equal(t, created.Charge.TxID, found.TxID)

	_, err = svc.PaymentByOrderID(context.Background(), "SO9999")
	svcErr, ok := application.IsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, application.ErrCodeNotFound, svcErr.Code)
}

func TestChargeService_ListCharges_NewestFirst(t *testing.T) {
	repo := NewMockChargeRepository()
	svc := newChargeService(repo, configuredCreds(), mocks.NewMockBankClient())

	base := time.Now().UTC()
	for i := 0; i < 3; i++ {
		charge := &domain.Charge{
			TxID:        domain.NewTxID(),
			AmountCents: 1000,
			Status:      domain.StatusPending,
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, repo.Create(context.Background(), charge))
	}

	charges, err := svc.ListCharges(context.Background(), 2, 0)
	require.NoError(t, err)
	require.Len(t, charges, 2)
	assert.True(t, charges[0].CreatedAt.After(charges[1].CreatedAt))
}
