// Package worker runs the background sweeps: charge expiry and pending-charge
// reconciliation against the bank.
package worker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/pixbridge/inter-gateway/internal/application"
	"github.com/pixbridge/inter-gateway/internal/domain"
)

// ExpiryWorker periodically moves pending charges whose due date has passed
// to expired. It shares the guarded transition path with the webhook
// processor, so a payment webhook racing the sweep wins or loses cleanly.
type ExpiryWorker struct {
	repo      application.ChargeRepository
	interval  time.Duration
	batchSize int
	logger    *slog.Logger
}

func NewExpiryWorker(
	repo application.ChargeRepository,
	interval time.Duration,
	batchSize int,
	logger *slog.Logger,
) *ExpiryWorker {
	return &ExpiryWorker{
		repo:      repo,
		interval:  interval,
		batchSize: batchSize,
		logger:    logger,
	}
}

func (w *ExpiryWorker) Start(ctx context.Context) {
	w.logger.Info("expiry worker started", "interval", w.interval, "batch_size", w.batchSize)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("expiry worker stopping")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

// RunOnce executes a single sweep. Exposed for tests and manual runs.
func (w *ExpiryWorker) RunOnce(ctx context.Context) {
	w.sweep(ctx)
}

func (w *ExpiryWorker) sweep(ctx context.Context) {
	now := time.Now().UTC()

	charges, err := w.repo.FindExpiredPending(ctx, now, w.batchSize)
	if err != nil {
		w.logger.Error("failed to fetch overdue charges", "error", err)
		return
	}
	if len(charges) == 0 {
		return
	}

	var expired int
	for _, charge := range charges {
		_, err := w.repo.Transition(ctx, charge.TxID, nil, func(c *domain.Charge) error {
			// the state machine re-checks under the lock, a webhook
			// may have settled the charge since the query
			return c.MarkExpired()
		})
		switch {
		case err == nil:
			expired++
		case errors.Is(err, domain.ErrAlreadyTerminal):
			// settled by a webhook between the query and the lock
		case errors.Is(err, application.ErrChargeNotFound):
		default:
			w.logger.Error("failed to expire charge", "txid", charge.TxID, "error", err)
		}
	}

	w.logger.Info("expiry sweep finished", "checked", len(charges), "expired", expired)
}
