// Package notify pushes payment confirmations to the order system that
// registered a callback URL with its charge.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/pixbridge/inter-gateway/internal/domain"
)

const requestTimeout = 5 * time.Second

// paymentNotification is the body posted to the charge's webhook URL.
type paymentNotification struct {
	TxID        string `json:"txid"`
	Amount      string `json:"amount"`
	Status      string `json:"status"`
	PaymentDate string `json:"payment_date"`
	OdooOrderID string `json:"odoo_order_id,omitempty"`
}

// OdooNotifier delivers confirmations over plain HTTP. One attempt per
// confirmation; the order system reconciles missed deliveries by polling
// the payment endpoint.
type OdooNotifier struct {
	client *http.Client
	logger *slog.Logger
}

func NewOdooNotifier(logger *slog.Logger) *OdooNotifier {
	return &OdooNotifier{
		client: &http.Client{Timeout: requestTimeout},
		logger: logger,
	}
}

func (n *OdooNotifier) PaymentConfirmed(ctx context.Context, charge *domain.Charge) error {
	amount, err := domain.MoneyFromCents(charge.AmountCents)
	if err != nil {
		return fmt.Errorf("invalid charge amount: %w", err)
	}

	paymentDate := ""
	if charge.PaidAt != nil {
		paymentDate = charge.PaidAt.UTC().Format(time.RFC3339)
	}

	body, err := json.Marshal(paymentNotification{
		TxID:        charge.TxID,
		Amount:      amount.Decimal(),
		Status:      string(charge.Status),
		PaymentDate: paymentDate,
		OdooOrderID: charge.OdooOrderID,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, charge.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "InterGateway-Webhook/1.0")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to deliver notification: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("order system returned status %d", resp.StatusCode)
	}

	n.logger.InfoContext(ctx, "payment confirmation delivered",
		"txid", charge.TxID,
		"odoo_order_id", charge.OdooOrderID,
	)
	return nil
}
