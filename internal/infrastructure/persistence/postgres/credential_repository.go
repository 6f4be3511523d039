package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/pixbridge/inter-gateway/internal/application"
	"github.com/pixbridge/inter-gateway/internal/domain"
	"github.com/pixbridge/inter-gateway/internal/secrets"
)

// CredentialRepository owns the single active credential set. Secret fields
// pass through the cipher on every write/read; plaintext never hits disk.
type CredentialRepository struct {
	db     *DB
	cipher *secrets.Cipher
}

func NewCredentialRepository(db *DB, cipher *secrets.Cipher) *CredentialRepository {
	return &CredentialRepository{db: db, cipher: cipher}
}

// Replace atomically installs a new credential version: the previous active
// row is retired and the new one inserted in a single transaction, so readers
// never observe a half-written set.
func (r *CredentialRepository) Replace(ctx context.Context, set *domain.CredentialSet) error {
	sealedSecret, err := r.cipher.Encrypt([]byte(set.ClientSecret))
	if err != nil {
		return fmt.Errorf("failed to encrypt client secret: %w", err)
	}
	sealedKey, err := r.cipher.Encrypt(set.PrivateKey)
	if err != nil {
		return fmt.Errorf("failed to encrypt private key: %w", err)
	}

	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `UPDATE credentials SET active = FALSE WHERE active`); err != nil {
		return fmt.Errorf("failed to retire previous credentials: %w", err)
	}

	insert := `
		INSERT INTO credentials (
			version, environment, client_id, client_secret, certificate, private_key,
			account, pix_key, merchant_name, merchant_city, active, created_at, updated_at
		)
		VALUES (
			(SELECT COALESCE(MAX(version), 0) + 1 FROM credentials),
			$1, $2, $3, $4, $5, $6, $7, $8, $9, TRUE, $10, $11
		)
		RETURNING version
	`
	err = tx.QueryRow(ctx, insert,
		string(set.Environment),
		set.ClientID,
		sealedSecret,
		set.Certificate,
		sealedKey,
		set.Account,
		set.PixKey,
		set.MerchantName,
		set.MerchantCity,
		set.CreatedAt,
		set.UpdatedAt,
	).Scan(&set.Version)
	if err != nil {
		return fmt.Errorf("failed to insert credentials: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Active loads and decrypts the current credential set.
func (r *CredentialRepository) Active(ctx context.Context) (*domain.CredentialSet, error) {
	query := `
		SELECT version, environment, client_id, client_secret, certificate, private_key,
		       account, pix_key, merchant_name, merchant_city, created_at, updated_at
		FROM credentials
		WHERE active
	`

	var m CredentialModel
	err := r.db.Pool.QueryRow(ctx, query).Scan(
		&m.Version,
		&m.Environment,
		&m.ClientID,
		&m.ClientSecret,
		&m.Certificate,
		&m.PrivateKey,
		&m.Account,
		&m.PixKey,
		&m.MerchantName,
		&m.MerchantCity,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, application.ErrNotConfigured
		}
		return nil, fmt.Errorf("failed to load credentials: %w", err)
	}

	secret, err := r.cipher.Decrypt(m.ClientSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt client secret: %w", err)
	}
	key, err := r.cipher.Decrypt(m.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt private key: %w", err)
	}

	return &domain.CredentialSet{
		Version:      m.Version,
		Environment:  domain.Environment(m.Environment),
		ClientID:     m.ClientID,
		ClientSecret: string(secret),
		Certificate:  m.Certificate,
		PrivateKey:   key,
		Account:      m.Account,
		PixKey:       m.PixKey,
		MerchantName: m.MerchantName,
		MerchantCity: m.MerchantCity,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}, nil
}
