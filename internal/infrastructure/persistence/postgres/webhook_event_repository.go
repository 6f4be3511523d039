package postgres

import (
	"context"
	"fmt"

	"github.com/pixbridge/inter-gateway/internal/domain"
)

// insertWebhookEvent appends the event to the audit log inside the caller's
// transaction. The unique constraint on event_id doubles as the idempotency
// seen-set: a re-delivery inserts nothing and returns false.
func insertWebhookEvent(ctx context.Context, tx Executor, event *domain.WebhookEvent) (bool, error) {
	query := `
		INSERT INTO webhook_events (event_id, txid, outcome, raw_payload, received_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (event_id) DO NOTHING
	`

	tag, err := tx.Exec(ctx, query,
		event.EventID,
		event.TxID,
		string(event.Outcome),
		event.RawPayload,
		event.ReceivedAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to record webhook event: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}
