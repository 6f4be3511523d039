package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/pixbridge/inter-gateway/internal/application"
	"github.com/pixbridge/inter-gateway/internal/domain"
)

// SetCredentialsRequest carries a full replacement credential set. Certificate
// and PrivateKey are PEM blocks as uploaded by the operator.
type SetCredentialsRequest struct {
	Environment  string
	ClientID     string
	ClientSecret string
	Certificate  []byte
	PrivateKey   []byte
	Account      string
	PixKey       string
	MerchantName string
	MerchantCity string
}

// MaskedCredentials is the external read model: enough for an operator to
// recognize the active configuration without exposing any secret material.
type MaskedCredentials struct {
	Version      int64     `json:"version"`
	Environment  string    `json:"environment"`
	ClientID     string    `json:"client_id"`
	Account      string    `json:"account"`
	PixKey       string    `json:"pix_key"`
	MerchantName string    `json:"merchant_name"`
	MerchantCity string    `json:"merchant_city"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type ConfigService struct {
	creds  application.CredentialRepository
	logger *slog.Logger
}

func NewConfigService(creds application.CredentialRepository, logger *slog.Logger) *ConfigService {
	return &ConfigService{creds: creds, logger: logger}
}

// SetCredentials validates and atomically replaces the active credential set.
// In-flight requests keep the set they resolved; new requests see the new one.
func (s *ConfigService) SetCredentials(ctx context.Context, req SetCredentialsRequest) error {
	set, err := domain.NewCredentialSet(
		domain.Environment(req.Environment),
		req.ClientID,
		req.ClientSecret,
		req.Certificate,
		req.PrivateKey,
		req.Account,
		req.PixKey,
		req.MerchantName,
		req.MerchantCity,
	)
	if err != nil {
		return application.NewValidationError(err)
	}

	if err := s.creds.Replace(ctx, set); err != nil {
		return application.NewInternalError(err)
	}

	s.logger.InfoContext(ctx, "provider credentials replaced",
		"environment", req.Environment,
		"client_id", maskID(req.ClientID),
	)
	return nil
}

// GetCredentials returns the masked view of the active set.
func (s *ConfigService) GetCredentials(ctx context.Context) (*MaskedCredentials, error) {
	set, err := s.creds.Active(ctx)
	if err != nil {
		if errors.Is(err, application.ErrNotConfigured) {
			return nil, application.NewNotConfiguredError()
		}
		return nil, application.NewInternalError(err)
	}

	return &MaskedCredentials{
		Version:      set.Version,
		Environment:  string(set.Environment),
		ClientID:     maskID(set.ClientID),
		Account:      set.Account,
		PixKey:       set.PixKey,
		MerchantName: set.MerchantName,
		MerchantCity: set.MerchantCity,
		UpdatedAt:    set.UpdatedAt,
	}, nil
}

// maskID keeps the leading four characters for recognition.
func maskID(id string) string {
	if len(id) <= 4 {
		return strings.Repeat("*", len(id))
	}
	return id[:4] + strings.Repeat("*", len(id)-4)
}
