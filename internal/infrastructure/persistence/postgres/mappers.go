package postgres

import (
	"github.com/pixbridge/inter-gateway/internal/domain"
)

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func strVal(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// toChargeModel: maps domain entity to db model
func toChargeModel(c *domain.Charge) *ChargeModel {
	return &ChargeModel{
		TxID:             c.TxID,
		AmountCents:      c.AmountCents,
		Description:      c.Description,
		PayerName:        strPtr(c.PayerName),
		PayerCPF:         strPtr(c.PayerCPF),
		PayerEmail:       strPtr(c.PayerEmail),
		Status:           string(c.Status),
		PixCode:          c.PixCode,
		ProviderLocation: strPtr(c.ProviderLocation),
		OdooOrderID:      strPtr(c.OdooOrderID),
		WebhookURL:       strPtr(c.WebhookURL),
		DueDate:          c.DueDate,
		PaidAt:           c.PaidAt,
		AmountPaidCents:  c.AmountPaidCents,
		LastEventID:      c.LastEventID,
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
	}
}

// toDomainCharge: maps db model to domain entity
func toDomainCharge(m *ChargeModel) *domain.Charge {
	return &domain.Charge{
		TxID:             m.TxID,
		AmountCents:      m.AmountCents,
		Description:      m.Description,
		PayerName:        strVal(m.PayerName),
		PayerCPF:         strVal(m.PayerCPF),
		PayerEmail:       strVal(m.PayerEmail),
		Status:           domain.ChargeStatus(m.Status),
		PixCode:          m.PixCode,
		ProviderLocation: strVal(m.ProviderLocation),
		OdooOrderID:      strVal(m.OdooOrderID),
		WebhookURL:       strVal(m.WebhookURL),
		DueDate:          m.DueDate,
		PaidAt:           m.PaidAt,
		AmountPaidCents:  m.AmountPaidCents,
		LastEventID:      m.LastEventID,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}
