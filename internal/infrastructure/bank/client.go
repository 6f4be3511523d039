package bank

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/pixbridge/inter-gateway/internal/application"
	"github.com/pixbridge/inter-gateway/internal/config"
	"github.com/pixbridge/inter-gateway/internal/domain"
)

// InterClient talks to the provider's PIX charge API. Every call resolves the
// active credential set, authenticates over mutual TLS and retries exactly
// once after a 401 with a freshly minted token.
type InterClient struct {
	source CredentialSource
	tokens *tokenManager
}

func NewInterClient(source CredentialSource, cfg config.BankConfig) application.BankClient {
	return &InterClient{
		source: source,
		tokens: newTokenManager(cfg.ConnTimeout, cfg.BaseURL),
	}
}

func (c *InterClient) CreateCharge(ctx context.Context, req application.BankCreateChargeRequest) (*application.BankChargeResponse, error) {
	body := cobRequest{
		Calendar: cobCalendar{Expiration: req.ExpirationSeconds},
		Value:    cobValue{Original: req.AmountDecimal},
		PixKey:   req.PixKey,
		Request:  req.Description,
	}
	if req.PayerName != "" || req.PayerCPF != "" {
		body.Debtor = &cobDebtor{Name: req.PayerName, CPF: req.PayerCPF}
	}

	path := fmt.Sprintf("/pix/v2/cob/%s", req.TxID)
	return c.send(ctx, http.MethodPut, path, &body)
}

func (c *InterClient) LookupCharge(ctx context.Context, txid string) (*application.BankChargeResponse, error) {
	path := fmt.Sprintf("/pix/v2/cob/%s", txid)
	return c.send(ctx, http.MethodGet, path, nil)
}

func (c *InterClient) send(ctx context.Context, method, path string, reqBody *cobRequest) (*application.BankChargeResponse, error) {
	creds, err := c.source.Active(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := c.do(ctx, creds, method, path, reqBody)
	if bankErr, ok := application.IsBankError(err); ok && bankErr.StatusCode == http.StatusUnauthorized {
		// token may have been revoked mid-lifetime: refresh and retry once
		c.tokens.invalidate()
		resp, err = c.do(ctx, creds, method, path, reqBody)
	}
	return resp, err
}

func (c *InterClient) do(ctx context.Context, creds *domain.CredentialSet, method, path string, reqBody *cobRequest) (*application.BankChargeResponse, error) {
	token, httpClient, err := c.tokens.bearer(ctx, creds)
	if err != nil {
		return nil, err
	}

	var bodyReader io.Reader
	if reqBody != nil {
		jsonData, err := json.Marshal(reqBody)
		if err != nil {
			return nil, fmt.Errorf("error marshalling json: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.tokens.base(creds)+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+token)
	if reqBody != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		var provErr providerErrorResponse
		if err := json.Unmarshal(body, &provErr); err != nil || provErr.Title == "" {
			return nil, &application.BankError{
				Code:       "provider_error",
				Message:    fmt.Sprintf("provider returned status %d: %s", resp.StatusCode, string(body)),
				StatusCode: resp.StatusCode,
			}
		}
		return nil, &application.BankError{
			Code:       provErr.Title,
			Message:    provErr.Detail,
			StatusCode: resp.StatusCode,
		}
	}

	var cobResp cobResponse
	if err := json.NewDecoder(resp.Body).Decode(&cobResp); err != nil {
		return nil, fmt.Errorf("error decoding json response: %w", err)
	}

	return &application.BankChargeResponse{
		TxID:     cobResp.TxID,
		Status:   cobResp.Status,
		Location: cobResp.Location,
	}, nil
}
