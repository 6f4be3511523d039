package worker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/pixbridge/inter-gateway/internal/application"
	"github.com/pixbridge/inter-gateway/internal/domain"
)

// Reconciler backfills charges whose webhooks never arrived. Long-pending
// charges are checked against the bank directly; a settled provider state is
// applied through the same transition path webhooks use. Webhooks stay the
// primary status source, the reconciler only covers lost deliveries.
type Reconciler struct {
	repo       application.ChargeRepository
	bankClient application.BankClient
	interval   time.Duration
	minAge     time.Duration
	batchSize  int
	logger     *slog.Logger
}

func NewReconciler(
	repo application.ChargeRepository,
	bankClient application.BankClient,
	interval, minAge time.Duration,
	batchSize int,
	logger *slog.Logger,
) *Reconciler {
	return &Reconciler{
		repo:       repo,
		bankClient: bankClient,
		interval:   interval,
		minAge:     minAge,
		batchSize:  batchSize,
		logger:     logger,
	}
}

func (r *Reconciler) Start(ctx context.Context) {
	r.logger.Info("reconciler started", "interval", r.interval, "batch_size", r.batchSize)
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("reconciler stopping")
			return
		case <-ticker.C:
			r.run(ctx)
		}
	}
}

// RunOnce executes a single reconciliation cycle.
func (r *Reconciler) RunOnce(ctx context.Context) {
	r.run(ctx)
}

func (r *Reconciler) run(ctx context.Context) {
	// overdue pending charges are the ones a lost webhook would strand
	cutoff := time.Now().UTC().Add(-r.minAge)

	charges, err := r.repo.FindExpiredPending(ctx, cutoff, r.batchSize)
	if err != nil {
		r.logger.Error("failed to fetch charges for reconciliation", "error", err)
		return
	}

	for _, charge := range charges {
		if err := r.reconcile(ctx, charge); err != nil {
			r.logger.Error("reconciliation failed", "txid", charge.TxID, "error", err)
		}
	}
}

func (r *Reconciler) reconcile(ctx context.Context, charge *domain.Charge) error {
	state, err := r.bankClient.LookupCharge(ctx, charge.TxID)
	if err != nil {
		return err
	}

	target, ok := providerStatusTarget(state.Status)
	if !ok {
		// still open at the provider, leave it to the expiry sweep
		return nil
	}

	_, err = r.repo.Transition(ctx, charge.TxID, nil, func(c *domain.Charge) error {
		if target == domain.StatusConfirmed {
			return c.Confirm(time.Now().UTC(), c.AmountCents)
		}
		return c.Transition(target)
	})
	if errors.Is(err, domain.ErrAlreadyTerminal) {
		return nil
	}
	if err != nil {
		return err
	}

	r.logger.Info("charge reconciled from provider state",
		"txid", charge.TxID, "provider_status", state.Status, "status", target)
	return nil
}

// providerStatusTarget maps the bank's cob status onto the local state
// machine. ATIVA means still payable and maps to nothing.
func providerStatusTarget(status string) (domain.ChargeStatus, bool) {
	switch status {
	case "CONCLUIDA":
		return domain.StatusConfirmed, true
	case "REMOVIDA_PELO_USUARIO_RECEBEDOR":
		return domain.StatusCancelled, true
	case "REMOVIDA_PELO_PSP":
		return domain.StatusExpired, true
	default:
		return "", false
	}
}
