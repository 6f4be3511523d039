package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pixbridge/inter-gateway/internal/application/services"
	"github.com/pixbridge/inter-gateway/internal/domain"
	"github.com/pixbridge/inter-gateway/internal/infrastructure/bank/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "handler-test-secret"

type fixture struct {
	repo  *services.MockChargeRepository
	creds *services.MockCredentialRepository
	bank  *mocks.MockBankClient
	mux   *http.ServeMux
}

func newFixture(t *testing.T, configured bool) *fixture {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := services.NewMockChargeRepository()
	creds := services.NewMockCredentialRepository()
	if configured {
		creds.ActiveFn = func(ctx context.Context) (*domain.CredentialSet, error) {
			return &domain.CredentialSet{
				Version:      1,
				Environment:  domain.EnvSandbox,
				ClientID:     "client-id-1234",
				PixKey:       "gateway@example.com",
				Account:      "12345678",
				MerchantName: "LOJA EXEMPLO",
				MerchantCity: "SAO PAULO",
				UpdatedAt:    time.Now().UTC(),
			}, nil
		}
	}
	bankClient := mocks.NewMockBankClient()

	chargeService := services.NewChargeService(repo, creds, bankClient, logger, 24, 100)
	configService := services.NewConfigService(creds, logger)
	webhookService := services.NewWebhookService(repo, services.NewMockOrderNotifier(), testSecret, logger)

	mux := http.NewServeMux()
	NewHandlers(chargeService, configService, webhookService, logger).Register(mux)

	return &fixture{repo: repo, creds: creds, bank: bankClient, mux: mux}
}

func (f *fixture) do(t *testing.T, method, path string, body any, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case []byte:
		reader = bytes.NewReader(b)
	default:
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestCreateCharge(t *testing.T) {
	f := newFixture(t, true)

	rec := f.do(t, http.MethodPost, "/api/pix/charge", map[string]any{
		"amount":      "10.50",
		"description": "Pedido 42",
		"payer_name":  "Joao Silva",
	}, nil)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Equal(t, true, body["success"])

	data := body["data"].(map[string]any)
	assert.Equal(t, "10.50", data["amount"])
	assert.Equal(t, "pending", data["status"])
	assert.NotEmpty(t, data["txid"])
	assert.NotEmpty(t, data["pix_code"])
	assert.NotEmpty(t, data["qr_code_base64"])
}

func TestCreateCharge_ValidationFailure(t *testing.T) {
	f := newFixture(t, true)

	rec := f.do(t, http.MethodPost, "/api/pix/charge", map[string]any{
		"amount":      "10.505",
		"description": "Pedido 42",
	}, nil)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, false, body["success"])
	errDetail := body["error"].(map[string]any)
	assert.Equal(t, "VALIDATION_ERROR", errDetail["code"])
	assert.Equal(t, 0, f.bank.Calls())
}

func TestCreateCharge_NotConfigured(t *testing.T) {
	f := newFixture(t, false)

	rec := f.do(t, http.MethodPost, "/api/pix/charge", map[string]any{
		"amount":      "10.50",
		"description": "Pedido 42",
	}, nil)

	require.Equal(t, http.StatusConflict, rec.Code)
	errDetail := decode(t, rec)["error"].(map[string]any)
	assert.Equal(t, "NOT_CONFIGURED", errDetail["code"])
}

func TestGetCharge_NotFound(t *testing.T) {
	f := newFixture(t, true)

	rec := f.do(t, http.MethodGet, "/api/pix/charge/TX000000000000000000000000", nil, nil)

	require.Equal(t, http.StatusNotFound, rec.Code)
	errDetail := decode(t, rec)["error"].(map[string]any)
	assert.Equal(t, "NOT_FOUND", errDetail["code"])
}

func TestListCharges(t *testing.T) {
	f := newFixture(t, true)

	for i := 0; i < 2; i++ {
		rec := f.do(t, http.MethodPost, "/api/pix/charge", map[string]any{
			"amount":      "5.00",
			"description": "Pedido",
		}, nil)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := f.do(t, http.MethodGet, "/api/pix/charges", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	data := decode(t, rec)["data"].([]any)
	assert.Len(t, data, 2)
}

func TestOrderChargeAndPaymentLookup(t *testing.T) {
	f := newFixture(t, true)

	rec := f.do(t, http.MethodPost, "/api/odoo/order", map[string]any{
		"order_id": "SO0042",
		"amount":   "99.90",
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode(t, rec)["data"].(map[string]any)
	assert.Equal(t, "SO0042", created["odoo_order_id"])

	rec = f.do(t, http.MethodGet, "/api/odoo/payment/SO0042", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	found := decode(t, rec)["data"].(map[string]any)
	assert.Equal(t, created["txid"], found["txid"])

	rec = f.do(t, http.MethodGet, "/api/odoo/payment/SO9999", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWebhook(t *testing.T) {
	f := newFixture(t, true)

	created := decode(t, f.do(t, http.MethodPost, "/api/pix/charge", map[string]any{
		"amount":      "10.50",
		"description": "Pedido 42",
	}, nil))["data"].(map[string]any)
	txid := created["txid"].(string)

	raw, err := json.Marshal(map[string]string{
		"event_id":     "evt-1",
		"txid":         txid,
		"status":       "paid",
		"payment_date": "2026-09-01T12:00:00Z",
		"amount_paid":  "10.50",
	})
	require.NoError(t, err)

	rec := f.do(t, http.MethodPost, "/api/pix/webhook", raw, map[string]string{
		"X-Webhook-Signature": services.Sign(testSecret, raw),
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"status":"received"}`, rec.Body.String())

	rec = f.do(t, http.MethodGet, "/api/pix/charge/"+txid, nil, nil)
	data := decode(t, rec)["data"].(map[string]any)
	assert.Equal(t, "confirmed", data["status"])
	assert.Equal(t, "10.50", data["amount_paid"])
}

func TestWebhook_BadSignature(t *testing.T) {
	f := newFixture(t, true)

	raw := []byte(`{"event_id":"evt-1","txid":"TX000000000000000000000000","status":"paid"}`)
	rec := f.do(t, http.MethodPost, "/api/pix/webhook", raw, map[string]string{
		"X-Webhook-Signature": "deadbeef",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestConfigEndpoints_Masking(t *testing.T) {
	f := newFixture(t, true)

	rec := f.do(t, http.MethodGet, "/api/config/inter", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	data := decode(t, rec)["data"].(map[string]any)
	assert.Equal(t, "clie**********", data["client_id"])
	_, hasSecret := data["client_secret"]
	assert.False(t, hasSecret)
}

func TestHealth(t *testing.T) {
	f := newFixture(t, true)

	rec := f.do(t, http.MethodGet, "/api/health", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}
