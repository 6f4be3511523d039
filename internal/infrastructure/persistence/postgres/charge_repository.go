package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pixbridge/inter-gateway/internal/application"
	"github.com/pixbridge/inter-gateway/internal/domain"
)

const chargeColumns = `
	txid, amount_cents, description, payer_name, payer_cpf, payer_email,
	status, pix_code, provider_location, odoo_order_id, webhook_url,
	due_date, paid_at, amount_paid_cents, last_event_id, created_at, updated_at
`

type ChargeRepository struct {
	db *DB
}

func NewChargeRepository(db *DB) *ChargeRepository {
	return &ChargeRepository{db: db}
}

func (r *ChargeRepository) Create(ctx context.Context, charge *domain.Charge) error {
	query := `
		INSERT INTO charges (` + chargeColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`

	m := toChargeModel(charge)
	_, err := r.db.Pool.Exec(ctx, query,
		m.TxID,
		m.AmountCents,
		m.Description,
		m.PayerName,
		m.PayerCPF,
		m.PayerEmail,
		m.Status,
		m.PixCode,
		m.ProviderLocation,
		m.OdooOrderID,
		m.WebhookURL,
		m.DueDate,
		m.PaidAt,
		m.AmountPaidCents,
		m.LastEventID,
		m.CreatedAt,
		m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create charge: %w", err)
	}

	return nil
}

// FindByTxID retrieves a charge
func (r *ChargeRepository) FindByTxID(ctx context.Context, txid string) (*domain.Charge, error) {
	query := `SELECT ` + chargeColumns + ` FROM charges WHERE txid = $1`

	row := r.db.Pool.QueryRow(ctx, query, txid)
	return scanCharge(row)
}

// FindByOrderID retrieves the charge linked to an external order
func (r *ChargeRepository) FindByOrderID(ctx context.Context, orderID string) (*domain.Charge, error) {
	query := `
		SELECT ` + chargeColumns + ` FROM charges
		WHERE odoo_order_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	row := r.db.Pool.QueryRow(ctx, query, orderID)
	return scanCharge(row)
}

// List retrieves charges newest first
func (r *ChargeRepository) List(ctx context.Context, limit, offset int) ([]*domain.Charge, error) {
	query := `
		SELECT ` + chargeColumns + ` FROM charges
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.Pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list charges: %w", err)
	}
	defer rows.Close()

	return scanCharges(rows)
}

// FindExpiredPending retrieves pending charges whose due date has passed.
func (r *ChargeRepository) FindExpiredPending(ctx context.Context, cutoff time.Time, limit int) ([]*domain.Charge, error) {
	query := `
		SELECT ` + chargeColumns + ` FROM charges
		WHERE status = $1 AND due_date < $2
		ORDER BY due_date ASC
		LIMIT $3
	`

	rows, err := r.db.Pool.Query(ctx, query, string(domain.StatusPending), cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to find expired charges: %w", err)
	}
	defer rows.Close()

	return scanCharges(rows)
}

// Transition applies a state change under a row-level lock so concurrent
// requests for the same txid are serialized. The webhook event, when present,
// is recorded inside the same transaction; a duplicate event id aborts with
// ErrDuplicateEvent and the charge untouched. A transition against a terminal
// charge keeps the audit row but reports domain.ErrAlreadyTerminal.
func (r *ChargeRepository) Transition(ctx context.Context, txid string, event *domain.WebhookEvent, apply func(*domain.Charge) error) (*domain.Charge, error) {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `SELECT ` + chargeColumns + ` FROM charges WHERE txid = $1 FOR UPDATE`
	charge, err := scanCharge(tx.QueryRow(ctx, query, txid))
	if err != nil {
		return nil, err
	}

	if event != nil {
		inserted, err := insertWebhookEvent(ctx, tx, event)
		if err != nil {
			return nil, err
		}
		if !inserted {
			return charge, application.ErrDuplicateEvent
		}
	}

	applyErr := apply(charge)
	if applyErr != nil {
		if errors.Is(applyErr, domain.ErrAlreadyTerminal) {
			// keep the audit row for the late event
			if err := tx.Commit(ctx); err != nil {
				return nil, fmt.Errorf("failed to commit transaction: %w", err)
			}
			return charge, applyErr
		}
		return nil, applyErr
	}

	if event != nil {
		charge.LastEventID = &event.EventID
	}

	update := `
		UPDATE charges
		SET status = $2, paid_at = $3, amount_paid_cents = $4, last_event_id = $5, updated_at = $6
		WHERE txid = $1
	`
	_, err = tx.Exec(ctx, update,
		charge.TxID,
		string(charge.Status),
		charge.PaidAt,
		charge.AmountPaidCents,
		charge.LastEventID,
		charge.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update charge: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return charge, nil
}

func scanCharge(row pgx.Row) (*domain.Charge, error) {
	var m ChargeModel
	err := row.Scan(
		&m.TxID,
		&m.AmountCents,
		&m.Description,
		&m.PayerName,
		&m.PayerCPF,
		&m.PayerEmail,
		&m.Status,
		&m.PixCode,
		&m.ProviderLocation,
		&m.OdooOrderID,
		&m.WebhookURL,
		&m.DueDate,
		&m.PaidAt,
		&m.AmountPaidCents,
		&m.LastEventID,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, application.ErrChargeNotFound
		}
		return nil, fmt.Errorf("failed to scan charge: %w", err)
	}

	return toDomainCharge(&m), nil
}

func scanCharges(rows pgx.Rows) ([]*domain.Charge, error) {
	var charges []*domain.Charge
	for rows.Next() {
		charge, err := scanCharge(rows)
		if err != nil {
			return nil, err
		}
		charges = append(charges, charge)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading charge rows: %w", err)
	}
	return charges, nil
}
