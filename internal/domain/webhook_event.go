package domain

import "time"

// WebhookOutcome is the provider-reported result carried by a notification.
type WebhookOutcome string

const (
	OutcomePaid      WebhookOutcome = "paid"
	OutcomeCancelled WebhookOutcome = "cancelled"
	OutcomeExpired   WebhookOutcome = "expired"
)

// TargetStatus maps a reported outcome onto the charge state machine.
func (o WebhookOutcome) TargetStatus() (ChargeStatus, bool) {
	switch o {
	case OutcomePaid:
		return StatusConfirmed, true
	case OutcomeCancelled:
		return StatusCancelled, true
	case OutcomeExpired:
		return StatusExpired, true
	default:
		return "", false
	}
}

// WebhookEvent is the audit record of one bank notification. The event id is
// the idempotency key: many events may reference one charge, but only the
// first legal one advances it.
type WebhookEvent struct {
	EventID    string
	TxID       string
	Outcome    WebhookOutcome
	RawPayload []byte
	ReceivedAt time.Time
}
