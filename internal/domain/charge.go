// Package domain encodes the PIX charge entity, its lifecycle and the
// credential material the gateway authenticates with.
package domain

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ChargeStatus represents the current state of a charge in its lifecycle.
type ChargeStatus string

const (
	StatusPending   ChargeStatus = "pending"
	StatusConfirmed ChargeStatus = "confirmed"
	StatusCancelled ChargeStatus = "cancelled"
	StatusExpired   ChargeStatus = "expired"
)

// Charge is the authoritative record of a PIX charge. TxID and amount are
// immutable once assigned; only Status (and the payment audit fields) move,
// and only through Transition.
type Charge struct {
	TxID        string
	AmountCents int64
	Description string
	PayerName   string
	PayerCPF    string
	PayerEmail  string
	Status      ChargeStatus

	PixCode          string
	ProviderLocation string

	OdooOrderID string
	WebhookURL  string

	DueDate         time.Time
	PaidAt          *time.Time
	AmountPaidCents *int64
	LastEventID     *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewTxID generates a client-side transaction id per the provider convention:
// a fixed prefix plus 24 uppercase hex characters, 26 characters total,
// inside the 26-35 alphanumeric window the EMV reference label allows.
func NewTxID() string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))
	return "TX" + raw[:24]
}

// ValidTxID reports whether s satisfies the provider's txid grammar.
func ValidTxID(s string) bool {
	if len(s) < 26 || len(s) > 35 {
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		default:
			return false
		}
	}
	return true
}

func NewCharge(txid string, amount Money, description string, dueDate time.Time) (*Charge, error) {
	if !ValidTxID(txid) {
		return nil, ErrInvalidTxID
	}
	if description == "" {
		return nil, ErrMissingRequiredField
	}

	now := time.Now().UTC()
	return &Charge{
		TxID:        txid,
		AmountCents: amount.Cents,
		Description: description,
		Status:      StatusPending,
		DueDate:     dueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Transition moves the charge to target. A terminal charge never moves again:
// the attempt reports ErrAlreadyTerminal so retried webhook deliveries are
// no-ops rather than failures.
func (c *Charge) Transition(target ChargeStatus) error {
	if c.IsTerminal() {
		return ErrAlreadyTerminal
	}
	if err := c.canTransitionTo(target); err != nil {
		return err
	}
	c.Status = target
	c.UpdatedAt = time.Now().UTC()
	return nil
}

// Confirm records payment receipt alongside the status change.
func (c *Charge) Confirm(paidAt time.Time, amountPaidCents int64) error {
	if err := c.Transition(StatusConfirmed); err != nil {
		return err
	}
	c.PaidAt = &paidAt
	c.AmountPaidCents = &amountPaidCents
	return nil
}

func (c *Charge) Cancel() error {
	return c.Transition(StatusCancelled)
}

func (c *Charge) MarkExpired() error {
	return c.Transition(StatusExpired)
}

func (c *Charge) canTransitionTo(target ChargeStatus) error {
	switch c.Status {
	case StatusPending:
		return c.allow(target, StatusConfirmed, StatusCancelled, StatusExpired)
	}
	return ErrInvalidTransition
}

func (c *Charge) allow(target ChargeStatus, allowed ...ChargeStatus) error {
	if slices.Contains(allowed, target) {
		return nil
	}
	return ErrInvalidTransition
}

// IsTerminal reports whether the charge has reached a final state.
func (c *Charge) IsTerminal() bool {
	switch c.Status {
	case StatusConfirmed, StatusCancelled, StatusExpired:
		return true
	default:
		return false
	}
}

// Expired reports whether the due date has passed for a still-pending charge.
func (c *Charge) Expired(now time.Time) bool {
	return c.Status == StatusPending && now.After(c.DueDate)
}
