package postgres_test

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"testing"
	"time"

	"github.com/pixbridge/inter-gateway/internal/application"
	"github.com/pixbridge/inter-gateway/internal/domain"
	"github.com/pixbridge/inter-gateway/internal/infrastructure/persistence/postgres"
	"github.com/pixbridge/inter-gateway/internal/infrastructure/persistence/postgres/testhelpers"
	"github.com/pixbridge/inter-gateway/internal/secrets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const testCipherKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

type CredentialRepositoryTestSuite struct {
	suite.Suite
	testDB *testhelpers.TestDatabase
	repo   *postgres.CredentialRepository
}

func TestCredentialRepositorySuite(t *testing.T) {
	suite.Run(t, new(CredentialRepositoryTestSuite))
}

func (s *CredentialRepositoryTestSuite) SetupSuite() {
	s.testDB = testhelpers.SetupTestDatabase(s.T())

	cipher, err := secrets.NewCipher(testCipherKey)
	require.NoError(s.T(), err)
	s.repo = postgres.NewCredentialRepository(s.testDB.DB, cipher)
}

func (s *CredentialRepositoryTestSuite) TearDownSuite() {
	s.testDB.Cleanup(s.T())
}

func (s *CredentialRepositoryTestSuite) SetupTest() {
	s.testDB.CleanTables(s.T())
}

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

func (s *CredentialRepositoryTestSuite) newSet(clientID string) *domain.CredentialSet {
	t := s.T()
	t.Helper()

	cert, key := testKeyPair(t)
	set, err := domain.NewCredentialSet(
		domain.EnvSandbox,
		clientID, "super-secret-"+clientID,
		cert, key,
		"12345678", "gateway@example.com",
		"LOJA EXEMPLO", "SAO PAULO",
	)
	require.NoError(t, err)
	return set
}

func (s *CredentialRepositoryTestSuite) Test_Active_NotConfigured() {
	_, err := s.repo.Active(context.Background())
	assert.ErrorIs(s.T(), err, application.ErrNotConfigured)
}

func (s *CredentialRepositoryTestSuite) Test_ReplaceAndActive_RoundTrip() {
	ctx := context.Background()
	t := s.T()

	set := s.newSet("client-one")
	require.NoError(t, s.repo.Replace(ctx, set))
	assert.Equal(t, int64(1), set.Version)

	active, err := s.repo.Active(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), active.Version)
	assert.Equal(t, domain.EnvSandbox, active.Environment)
	assert.Equal(t, "client-one", active.ClientID)
	assert.Equal(t, set.ClientSecret, active.ClientSecret)
	assert.Equal(t, set.Certificate, active.Certificate)
	assert.Equal(t, set.PrivateKey, active.PrivateKey)
	assert.Equal(t, set.PixKey, active.PixKey)

	// the decrypted pair must still load as an mTLS identity
	_, err = active.KeyPair()
	require.NoError(t, err)
}

func (s *CredentialRepositoryTestSuite) Test_Replace_BumpsVersionAndRetiresPrevious() {
	ctx := context.Background()
	t := s.T()

	first := s.newSet("client-one")
	require.NoError(t, s.repo.Replace(ctx, first))

	second := s.newSet("client-two")
	require.NoError(t, s.repo.Replace(ctx, second))
	assert.Equal(t, int64(2), second.Version)

	active, err := s.repo.Active(ctx)
	require.NoError(t, err)
	assert.Equal(t, "client-two", active.ClientID)

	var activeRows, totalRows int
	require.NoError(t, s.testDB.DB.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM credentials WHERE active`).Scan(&activeRows))
	require.NoError(t, s.testDB.DB.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM credentials`).Scan(&totalRows))
	assert.Equal(t, 1, activeRows)
	assert.Equal(t, 2, totalRows)
}

func (s *CredentialRepositoryTestSuite) Test_Replace_SecretsEncryptedAtRest() {
	ctx := context.Background()
	t := s.T()

	set := s.newSet("client-one")
	require.NoError(t, s.repo.Replace(ctx, set))

	var storedSecret, storedKey []byte
	require.NoError(t, s.testDB.DB.Pool.QueryRow(ctx,
		`SELECT client_secret, private_key FROM credentials WHERE active`).
		Scan(&storedSecret, &storedKey))

	assert.NotEqual(t, []byte(set.ClientSecret), storedSecret)
	assert.NotEqual(t, set.PrivateKey, storedKey)
	assert.NotContains(t, string(storedKey), "EC PRIVATE KEY")
}
