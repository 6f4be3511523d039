package postgres

import "time"

type ChargeModel struct {
	TxID             string
	AmountCents      int64
	Description      string
	PayerName        *string
	PayerCPF         *string
	PayerEmail       *string
	Status           string
	PixCode          string
	ProviderLocation *string
	OdooOrderID      *string
	WebhookURL       *string
	DueDate          time.Time
	PaidAt           *time.Time
	AmountPaidCents  *int64
	LastEventID      *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// CredentialModel stores one credential version. ClientSecret and PrivateKey
// are AES-GCM ciphertext; the certificate is public material.
type CredentialModel struct {
	Version      int64
	Environment  string
	ClientID     string
	ClientSecret []byte
	Certificate  []byte
	PrivateKey   []byte
	Account      string
	PixKey       string
	MerchantName string
	MerchantCity string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// WebhookEventModel is the audit row for one provider notification; event_id
// carries a unique constraint that doubles as the idempotency seen-set.
type WebhookEventModel struct {
	EventID    string
	TxID       string
	Outcome    string
	RawPayload []byte
	ReceivedAt time.Time
}
