package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/pixbridge/inter-gateway/internal/application"
	"github.com/pixbridge/inter-gateway/internal/domain"
)

var (
	errBadSignature    = errors.New("webhook signature mismatch")
	errMalformedEvent  = errors.New("malformed webhook event")
	errUnknownOutcome  = errors.New("unknown webhook status")
	errMissingEventIDs = errors.New("event_id and txid are required")
)

// webhookPayload is the notification body the bank signs and delivers.
type webhookPayload struct {
	EventID     string `json:"event_id"`
	TxID        string `json:"txid"`
	Status      string `json:"status"`
	PaymentDate string `json:"payment_date"`
	AmountPaid  string `json:"amount_paid"`
}

type WebhookService struct {
	repo     application.ChargeRepository
	notifier application.OrderNotifier
	secret   []byte
	logger   *slog.Logger
}

func NewWebhookService(
	repo application.ChargeRepository,
	notifier application.OrderNotifier,
	secret string,
	logger *slog.Logger,
) *WebhookService {
	return &WebhookService{
		repo:     repo,
		notifier: notifier,
		secret:   []byte(secret),
		logger:   logger,
	}
}

// Handle verifies, deduplicates and applies one bank notification. A nil
// return means accepted: the delivery must not be retried, even when it was a
// duplicate or arrived after the charge reached a terminal state. Any error
// is a rejection the bank's retry policy will redeliver.
func (s *WebhookService) Handle(ctx context.Context, raw []byte, signature string) error {
	if !s.verifySignature(raw, signature) {
		return application.NewValidationError(errBadSignature)
	}

	var payload webhookPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return application.NewValidationError(errMalformedEvent)
	}
	if payload.EventID == "" || payload.TxID == "" {
		return application.NewValidationError(errMissingEventIDs)
	}

	outcome, ok := normalizeOutcome(payload.Status)
	if !ok {
		return application.NewValidationError(errUnknownOutcome)
	}
	target, _ := outcome.TargetStatus()

	event := &domain.WebhookEvent{
		EventID:    payload.EventID,
		TxID:       payload.TxID,
		Outcome:    outcome,
		RawPayload: raw,
		ReceivedAt: time.Now().UTC(),
	}

	charge, err := s.repo.Transition(ctx, payload.TxID, event, func(c *domain.Charge) error {
		if target == domain.StatusConfirmed {
			return c.Confirm(parsePaymentDate(payload.PaymentDate), paidCents(payload.AmountPaid, c.AmountCents))
		}
		return c.Transition(target)
	})
	switch {
	case err == nil:
	case errors.Is(err, application.ErrDuplicateEvent):
		s.logger.InfoContext(ctx, "duplicate webhook event ignored",
			"event_id", payload.EventID, "txid", payload.TxID)
		return nil
	case errors.Is(err, domain.ErrAlreadyTerminal):
		s.logger.InfoContext(ctx, "webhook event for terminal charge ignored",
			"event_id", payload.EventID, "txid", payload.TxID, "status", charge.Status)
		return nil
	case errors.Is(err, application.ErrChargeNotFound):
		return application.NewNotFoundError("charge")
	default:
		return application.NewInternalError(err)
	}

	s.logger.InfoContext(ctx, "charge transitioned",
		"event_id", payload.EventID, "txid", payload.TxID, "status", charge.Status)

	if target == domain.StatusConfirmed && charge.WebhookURL != "" {
		s.notifyConfirmed(ctx, charge)
	}
	return nil
}

// notifyConfirmed pushes the confirmation downstream without holding up the
// bank's delivery. The notifier owns its own timeout; failures are logged and
// dropped, matching the no-retry contract of the order system.
func (s *WebhookService) notifyConfirmed(ctx context.Context, charge *domain.Charge) {
	notifyCtx := context.WithoutCancel(ctx)
	go func() {
		if err := s.notifier.PaymentConfirmed(notifyCtx, charge); err != nil {
			s.logger.ErrorContext(notifyCtx, "order notification failed",
				"txid", charge.TxID, "webhook_url", charge.WebhookURL, "error", err)
		}
	}()
}

func (s *WebhookService) verifySignature(raw []byte, signature string) bool {
	sig, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, s.secret)
	mac.Write(raw)
	return hmac.Equal(sig, mac.Sum(nil))
}

// Sign computes the hex HMAC-SHA256 the bank is expected to send. Exported
// for tests and for local delivery tooling.
func Sign(secret string, raw []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(raw)
	return hex.EncodeToString(mac.Sum(nil))
}

func normalizeOutcome(status string) (domain.WebhookOutcome, bool) {
	switch status {
	case "paid", "confirmed", "CONCLUIDA":
		return domain.OutcomePaid, true
	case "cancelled", "canceled", "REMOVIDA_PELO_USUARIO_RECEBEDOR":
		return domain.OutcomeCancelled, true
	case "expired", "REMOVIDA_PELO_PSP":
		return domain.OutcomeExpired, true
	default:
		return "", false
	}
}

func parsePaymentDate(s string) time.Time {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC()
	}
	return time.Now().UTC()
}

// paidCents falls back to the charged amount when the notification omits or
// mangles the paid value.
func paidCents(decimal string, fallback int64) int64 {
	m, err := domain.ParseMoney(decimal)
	if err != nil {
		return fallback
	}
	return m.Cents
}
