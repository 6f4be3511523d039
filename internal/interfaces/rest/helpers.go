package rest

import (
	"time"

	"github.com/pixbridge/inter-gateway/internal/domain"
)

// ChargeView is the external representation of a charge. Amounts are decimal
// strings, timestamps RFC 3339 UTC.
type ChargeView struct {
	TxID             string  `json:"txid"`
	Amount           string  `json:"amount"`
	Description      string  `json:"description"`
	PayerName        string  `json:"payer_name,omitempty"`
	PayerCPF         string  `json:"payer_cpf,omitempty"`
	PayerEmail       string  `json:"payer_email,omitempty"`
	Status           string  `json:"status"`
	PixCode          string  `json:"pix_code"`
	QRCodeBase64     string  `json:"qr_code_base64,omitempty"`
	ProviderLocation string  `json:"provider_location,omitempty"`
	OdooOrderID      string  `json:"odoo_order_id,omitempty"`
	DueDate          string  `json:"due_date"`
	PaidAt           *string `json:"paid_at,omitempty"`
	AmountPaid       *string `json:"amount_paid,omitempty"`
	CreatedAt        string  `json:"created_at"`
}

func ToChargeView(c *domain.Charge, qrCodeBase64 string) ChargeView {
	view := ChargeView{
		TxID:             c.TxID,
		Amount:           domain.Money{Cents: c.AmountCents}.Decimal(),
		Description:      c.Description,
		PayerName:        c.PayerName,
		PayerCPF:         c.PayerCPF,
		PayerEmail:       c.PayerEmail,
		Status:           string(c.Status),
		PixCode:          c.PixCode,
		QRCodeBase64:     qrCodeBase64,
		ProviderLocation: c.ProviderLocation,
		OdooOrderID:      c.OdooOrderID,
		DueDate:          c.DueDate.UTC().Format(time.RFC3339),
		CreatedAt:        c.CreatedAt.UTC().Format(time.RFC3339),
	}
	if c.PaidAt != nil {
		paidAt := c.PaidAt.UTC().Format(time.RFC3339)
		view.PaidAt = &paidAt
	}
	if c.AmountPaidCents != nil {
		paid := domain.Money{Cents: *c.AmountPaidCents}.Decimal()
		view.AmountPaid = &paid
	}
	return view
}

func ToChargeViews(charges []*domain.Charge) []ChargeView {
	views := make([]ChargeView, 0, len(charges))
	for _, c := range charges {
		views = append(views, ToChargeView(c, ""))
	}
	return views
}
