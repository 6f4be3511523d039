package domain_test

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/pixbridge/inter-gateway/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testKeyPair generates a self-signed certificate and key in PEM form.
func testKeyPair(t *testing.T) (cert, key []byte) {
	t.Helper()

	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	tmpl := x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "gateway-test"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
	}
	der, err := x509.CreateCertificate(rand.Reader, &tmpl, &tmpl, &priv.PublicKey, priv)
	require.NoError(t, err)

	keyDER, err := x509.MarshalECPrivateKey(priv)
	require.NoError(t, err)

	cert = pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	key = pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER})
	return cert, key
}

func TestNewCredentialSet(t *testing.T) {
	cert, key := testKeyPair(t)

	t.Run("creates credential set", func(t *testing.T) {
		set, err := domain.NewCredentialSet(
			domain.EnvSandbox,
			"client-id", "client-secret",
			cert, key,
			"12345678", "gateway@example.com",
			"LOJA EXEMPLO", "SAO PAULO",
		)
		require.NoError(t, err)
		assert.Equal(t, domain.EnvSandbox, set.Environment)
		assert.Contains(t, set.BaseURL(), "sandbox")

		_, err = set.KeyPair()
		assert.NoError(t, err)
	})

	t.Run("production base url", func(t *testing.T) {
		set, err := domain.NewCredentialSet(
			domain.EnvProduction,
			"client-id", "client-secret",
			cert, key,
			"12345678", "gateway@example.com",
			"LOJA EXEMPLO", "SAO PAULO",
		)
		require.NoError(t, err)
		assert.NotContains(t, set.BaseURL(), "sandbox")
	})

	t.Run("rejects bad environment", func(t *testing.T) {
		_, err := domain.NewCredentialSet(
			"staging",
			"client-id", "client-secret",
			cert, key,
			"12345678", "gateway@example.com",
			"LOJA EXEMPLO", "SAO PAULO",
		)
		assert.ErrorIs(t, err, domain.ErrInvalidEnvironment)
	})

	t.Run("rejects over-length merchant fields", func(t *testing.T) {
		_, err := domain.NewCredentialSet(
			domain.EnvSandbox,
			"client-id", "client-secret",
			cert, key,
			"12345678", "gateway@example.com",
			strings.Repeat("A", 26), "SAO PAULO",
		)
		assert.ErrorIs(t, err, domain.ErrFieldTooLong)

		_, err = domain.NewCredentialSet(
			domain.EnvSandbox,
			"client-id", "client-secret",
			cert, key,
			"12345678", "gateway@example.com",
			"LOJA EXEMPLO", strings.Repeat("B", 16),
		)
		assert.ErrorIs(t, err, domain.ErrFieldTooLong)
	})

	t.Run("rejects mismatched key pair", func(t *testing.T) {
		otherCert, _ := testKeyPair(t)
		_, err := domain.NewCredentialSet(
			domain.EnvSandbox,
			"client-id", "client-secret",
			otherCert, key,
			"12345678", "gateway@example.com",
			"LOJA EXEMPLO", "SAO PAULO",
		)
		assert.ErrorIs(t, err, domain.ErrInvalidKeyPair)
	})

	t.Run("rejects missing fields", func(t *testing.T) {
		_, err := domain.NewCredentialSet(
			domain.EnvSandbox,
			"", "client-secret",
			cert, key,
			"12345678", "gateway@example.com",
			"LOJA EXEMPLO", "SAO PAULO",
		)
		assert.ErrorIs(t, err, domain.ErrMissingRequiredField)
	})
}
