// Package services orchestrates charge creation, credential management and
// webhook processing on top of the persistence and bank ports.
package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/pixbridge/inter-gateway/internal/application"
	"github.com/pixbridge/inter-gateway/internal/domain"
	"github.com/pixbridge/inter-gateway/internal/pixcode"
)

// CreateChargeRequest carries caller input for a new charge. Amount is the
// decimal string form ("10.50"); OdooOrderID and WebhookURL are set by the
// order-linked path only.
type CreateChargeRequest struct {
	Amount      string
	Description string
	PayerName   string
	PayerCPF    string
	PayerEmail  string
	ExpireHours int
	OdooOrderID string
	WebhookURL  string
}

// ChargeResult is the creation response: the stored charge plus the QR bitmap
// rendered from its payload.
type ChargeResult struct {
	Charge       *domain.Charge
	QRCodeBase64 string
}

type ChargeService struct {
	repo       application.ChargeRepository
	creds      application.CredentialRepository
	bankClient application.BankClient
	logger     *slog.Logger

	defaultDueHours int
	listLimit       int
}

func NewChargeService(
	repo application.ChargeRepository,
	creds application.CredentialRepository,
	bankClient application.BankClient,
	logger *slog.Logger,
	defaultDueHours, listLimit int,
) *ChargeService {
	return &ChargeService{
		repo:            repo,
		creds:           creds,
		bankClient:      bankClient,
		logger:          logger,
		defaultDueHours: defaultDueHours,
		listLimit:       listLimit,
	}
}

// CreateCharge registers a charge with the bank, encodes the PIX payload and
// persists the record. Nothing is stored until the bank accepts the charge,
// so a timed-out creation leaves no local state and the caller retries whole.
func (s *ChargeService) CreateCharge(ctx context.Context, req CreateChargeRequest) (*ChargeResult, error) {
	amount, err := domain.ParseMoney(req.Amount)
	if err != nil {
		return nil, application.NewValidationError(err)
	}
	if req.Description == "" {
		return nil, application.NewValidationError(domain.ErrMissingRequiredField)
	}
	if req.OdooOrderID != "" {
		existing, err := s.repo.FindByOrderID(ctx, req.OdooOrderID)
		if err != nil && !errors.Is(err, application.ErrChargeNotFound) {
			return nil, application.NewInternalError(err)
		}
		// an open charge for the order is reused instead of double-billing
		if existing != nil && !existing.IsTerminal() {
			return buildResult(existing)
		}
	}

	creds, err := s.creds.Active(ctx)
	if err != nil {
		if errors.Is(err, application.ErrNotConfigured) {
			return nil, application.NewNotConfiguredError()
		}
		return nil, application.NewInternalError(err)
	}

	txid := domain.NewTxID()
	dueHours := req.ExpireHours
	if dueHours <= 0 {
		dueHours = s.defaultDueHours
	}
	dueDate := time.Now().UTC().Add(time.Duration(dueHours) * time.Hour)

	resp, err := s.bankClient.CreateCharge(ctx, application.BankCreateChargeRequest{
		TxID:              txid,
		AmountDecimal:     amount.Decimal(),
		PixKey:            creds.PixKey,
		ExpirationSeconds: int64(dueHours) * 3600,
		PayerName:         req.PayerName,
		PayerCPF:          req.PayerCPF,
		Description:       req.Description,
	})
	if err != nil {
		return nil, mapBankError(err)
	}

	pixCode, err := pixcode.Encode(pixcode.Params{
		MerchantName:  creds.MerchantName,
		MerchantCity:  creds.MerchantCity,
		PixKey:        creds.PixKey,
		AmountDecimal: amount.Decimal(),
		TxID:          txid,
		Description:   req.Description,
	})
	if err != nil {
		return nil, application.NewValidationError(err)
	}

	charge, err := domain.NewCharge(txid, amount, req.Description, dueDate)
	if err != nil {
		return nil, application.NewValidationError(err)
	}
	charge.PayerName = req.PayerName
	charge.PayerCPF = req.PayerCPF
	charge.PayerEmail = req.PayerEmail
	charge.PixCode = pixCode
	charge.ProviderLocation = resp.Location
	charge.OdooOrderID = req.OdooOrderID
	charge.WebhookURL = req.WebhookURL

	if err := s.repo.Create(ctx, charge); err != nil {
		return nil, application.NewInternalError(err)
	}

	s.logger.InfoContext(ctx, "charge created",
		"txid", txid,
		"amount", amount.Decimal(),
		"odoo_order_id", req.OdooOrderID,
	)

	return buildResult(charge)
}

// GetCharge returns the stored record. The database is authoritative: status
// advances via webhooks, never by polling the bank on reads.
func (s *ChargeService) GetCharge(ctx context.Context, txid string) (*domain.Charge, error) {
	charge, err := s.repo.FindByTxID(ctx, txid)
	if err != nil {
		if errors.Is(err, application.ErrChargeNotFound) {
			return nil, application.NewNotFoundError("charge")
		}
		return nil, application.NewInternalError(err)
	}
	return charge, nil
}

// PaymentByOrderID resolves the charge linked to an external order reference.
func (s *ChargeService) PaymentByOrderID(ctx context.Context, orderID string) (*domain.Charge, error) {
	if orderID == "" {
		return nil, application.NewValidationError(errors.New("order_id is required"))
	}
	charge, err := s.repo.FindByOrderID(ctx, orderID)
	if err != nil {
		if errors.Is(err, application.ErrChargeNotFound) {
			return nil, application.NewNotFoundError("order")
		}
		return nil, application.NewInternalError(err)
	}
	return charge, nil
}

// ListCharges pages through charges newest first. limit is clamped to the
// configured maximum; offset below zero reads from the start.
func (s *ChargeService) ListCharges(ctx context.Context, limit, offset int) ([]*domain.Charge, error) {
	if limit <= 0 || limit > s.listLimit {
		limit = s.listLimit
	}
	if offset < 0 {
		offset = 0
	}
	charges, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, application.NewInternalError(err)
	}
	return charges, nil
}

func buildResult(charge *domain.Charge) (*ChargeResult, error) {
	qr, err := pixcode.QRCodeBase64(charge.PixCode, 256)
	if err != nil {
		return nil, application.NewInternalError(err)
	}
	return &ChargeResult{Charge: charge, QRCodeBase64: qr}, nil
}

func mapBankError(err error) error {
	if bankErr, ok := application.IsBankError(err); ok {
		switch {
		case bankErr.IsAuthFailure():
			return application.NewAuthenticationFailedError(err)
		case bankErr.IsRetryable():
			return application.NewProviderUnavailableError(err)
		default:
			return application.NewRejectedByProviderError(err)
		}
	}
	if errors.Is(err, application.ErrNotConfigured) {
		return application.NewNotConfiguredError()
	}
	return application.NewProviderUnavailableError(err)
}
