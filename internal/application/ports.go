package application

import (
	"context"
	"errors"
	"time"

	"github.com/pixbridge/inter-gateway/internal/domain"
)

var (
	ErrChargeNotFound = errors.New("charge not found")
	ErrNotConfigured  = errors.New("provider credentials not configured")

	// ErrDuplicateEvent marks a webhook event id that was already applied.
	// At-least-once delivery makes this an expected, successful outcome.
	ErrDuplicateEvent = errors.New("webhook event already applied")
)

// BankCreateChargeRequest registers a charge with the provider under a
// client-generated txid.
type BankCreateChargeRequest struct {
	TxID              string
	AmountDecimal     string
	PixKey            string
	ExpirationSeconds int64
	PayerName         string
	PayerCPF          string
	Description       string
}

// BankChargeResponse is the provider's view of a charge.
type BankChargeResponse struct {
	TxID     string
	Status   string
	Location string
}

// BankClient is the port for the external provider infrastructure.
type BankClient interface {
	CreateCharge(ctx context.Context, req BankCreateChargeRequest) (*BankChargeResponse, error)
	LookupCharge(ctx context.Context, txid string) (*BankChargeResponse, error)
}

// ChargeRepository is the port for charge persistence. Transition serializes
// concurrent requests per txid: the mutation runs under a row-level lock and
// the applied state-machine check makes retries idempotent. When event is
// non-nil it is recorded in the same transaction as the state change, so a
// transition and its audit row commit or roll back together; a previously
// seen event id yields ErrDuplicateEvent without touching the charge.
type ChargeRepository interface {
	Create(ctx context.Context, charge *domain.Charge) error
	FindByTxID(ctx context.Context, txid string) (*domain.Charge, error)
	FindByOrderID(ctx context.Context, orderID string) (*domain.Charge, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Charge, error)
	FindExpiredPending(ctx context.Context, cutoff time.Time, limit int) ([]*domain.Charge, error)
	Transition(ctx context.Context, txid string, event *domain.WebhookEvent, apply func(*domain.Charge) error) (*domain.Charge, error)
}

// CredentialRepository owns the single active credential set.
type CredentialRepository interface {
	Replace(ctx context.Context, set *domain.CredentialSet) error
	Active(ctx context.Context) (*domain.CredentialSet, error)
}

// OrderNotifier pushes payment confirmations to the external order system.
type OrderNotifier interface {
	PaymentConfirmed(ctx context.Context, charge *domain.Charge) error
}
