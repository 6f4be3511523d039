package domain

import (
	"crypto/tls"
	"time"
)

type Environment string

const (
	EnvSandbox    Environment = "sandbox"
	EnvProduction Environment = "production"
)

// PIX payload field-length limits for the merchant identity carried in every
// BR Code this credential set signs for.
const (
	MaxMerchantNameLen = 25
	MaxMerchantCityLen = 15
)

// CredentialSet is the single active set of provider credentials. Secret
// fields are encrypted at rest; only the repository ever sees ciphertext.
type CredentialSet struct {
	Version      int64
	Environment  Environment
	ClientID     string
	ClientSecret string
	Certificate  []byte
	PrivateKey   []byte
	Account      string
	PixKey       string
	MerchantName string
	MerchantCity string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewCredentialSet validates field lengths, the environment enum and that the
// certificate/key bytes form a loadable pair.
func NewCredentialSet(
	env Environment,
	clientID, clientSecret string,
	certificate, privateKey []byte,
	account, pixKey, merchantName, merchantCity string,
) (*CredentialSet, error) {
	if env != EnvSandbox && env != EnvProduction {
		return nil, ErrInvalidEnvironment
	}
	if clientID == "" || clientSecret == "" || account == "" || pixKey == "" ||
		merchantName == "" || merchantCity == "" {
		return nil, ErrMissingRequiredField
	}
	if len(merchantName) > MaxMerchantNameLen || len(merchantCity) > MaxMerchantCityLen {
		return nil, ErrFieldTooLong
	}
	if _, err := tls.X509KeyPair(certificate, privateKey); err != nil {
		return nil, ErrInvalidKeyPair
	}

	now := time.Now().UTC()
	return &CredentialSet{
		Environment:  env,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Certificate:  certificate,
		PrivateKey:   privateKey,
		Account:      account,
		PixKey:       pixKey,
		MerchantName: merchantName,
		MerchantCity: merchantCity,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// KeyPair loads the mTLS client certificate for provider calls.
func (c *CredentialSet) KeyPair() (tls.Certificate, error) {
	return tls.X509KeyPair(c.Certificate, c.PrivateKey)
}

// BaseURL resolves the provider endpoint for the configured environment.
func (c *CredentialSet) BaseURL() string {
	if c.Environment == EnvProduction {
		return "https://cdpj.partners.bancointer.com.br"
	}
	return "https://cdpj-sandbox.partners.bancointer.com.br"
}
