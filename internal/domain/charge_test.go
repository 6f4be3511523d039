package domain_test

import (
	"testing"
	"time"

	"github.com/pixbridge/inter-gateway/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validCharge(t *testing.T) *domain.Charge {
	t.Helper()
	amount, err := domain.ParseMoney("10.50")
	require.NoError(t, err)

	charge, err := domain.NewCharge(domain.NewTxID(), amount, "Order #42", time.Now().Add(24*time.Hour))
	require.NoError(t, err)
	return charge
}

func TestNewCharge(t *testing.T) {
	t.Run("creates charge successfully", func(t *testing.T) {
		charge := validCharge(t)

		assert.Equal(t, domain.StatusPending, charge.Status)
		assert.Equal(t, int64(1050), charge.AmountCents)
		assert.Equal(t, "Order #42", charge.Description)
		assert.NotZero(t, charge.CreatedAt)
		assert.True(t, domain.ValidTxID(charge.TxID))
	})

	t.Run("rejects invalid txid", func(t *testing.T) {
		amount, _ := domain.ParseMoney("10.50")

		_, err := domain.NewCharge("short", amount, "Order #42", time.Now())
		assert.ErrorIs(t, err, domain.ErrInvalidTxID)

		_, err = domain.NewCharge("TX-WITH-DASHES-0123456789012345", amount, "Order #42", time.Now())
		assert.ErrorIs(t, err, domain.ErrInvalidTxID)
	})

	t.Run("rejects empty description", func(t *testing.T) {
		amount, _ := domain.ParseMoney("10.50")

		_, err := domain.NewCharge(domain.NewTxID(), amount, "", time.Now())
		assert.ErrorIs(t, err, domain.ErrMissingRequiredField)
	})
}

func TestNewTxID(t *testing.T) {
	seen := make(map[string]bool)
	for range 100 {
		txid := domain.NewTxID()
		assert.True(t, domain.ValidTxID(txid))
		assert.False(t, seen[txid], "txid collision")
		seen[txid] = true
	}
}

func TestChargeTransitions(t *testing.T) {
	t.Run("pending can reach every terminal state", func(t *testing.T) {
		for _, target := range []domain.ChargeStatus{
			domain.StatusConfirmed,
			domain.StatusCancelled,
			domain.StatusExpired,
		} {
			charge := validCharge(t)
			require.NoError(t, charge.Transition(target))
			assert.Equal(t, target, charge.Status)
			assert.True(t, charge.IsTerminal())
		}
	})

	t.Run("terminal states never move again", func(t *testing.T) {
		for _, terminal := range []domain.ChargeStatus{
			domain.StatusConfirmed,
			domain.StatusCancelled,
			domain.StatusExpired,
		} {
			charge := validCharge(t)
			require.NoError(t, charge.Transition(terminal))

			for _, target := range []domain.ChargeStatus{
				domain.StatusPending,
				domain.StatusConfirmed,
				domain.StatusCancelled,
				domain.StatusExpired,
			} {
				err := charge.Transition(target)
				assert.ErrorIs(t, err, domain.ErrAlreadyTerminal)
				assert.Equal(t, terminal, charge.Status, "status changed after terminal")
			}
		}
	})

	t.Run("pending cannot transition to pending", func(t *testing.T) {
		charge := validCharge(t)
		assert.ErrorIs(t, charge.Transition(domain.StatusPending), domain.ErrInvalidTransition)
	})
}

func TestChargeConfirm(t *testing.T) {
	charge := validCharge(t)
	paidAt := time.Now().UTC()

	require.NoError(t, charge.Confirm(paidAt, 1050))

	assert.Equal(t, domain.StatusConfirmed, charge.Status)
	require.NotNil(t, charge.PaidAt)
	assert.Equal(t, paidAt, *charge.PaidAt)
	require.NotNil(t, charge.AmountPaidCents)
	assert.Equal(t, int64(1050), *charge.AmountPaidCents)

	// second confirmation is a no-op
	err := charge.Confirm(paidAt.Add(time.Minute), 9999)
	assert.ErrorIs(t, err, domain.ErrAlreadyTerminal)
	assert.Equal(t, int64(1050), *charge.AmountPaidCents)
}

func TestChargeExpired(t *testing.T) {
	charge := validCharge(t)
	charge.DueDate = time.Now().Add(-time.Hour)

	assert.True(t, charge.Expired(time.Now()))

	require.NoError(t, charge.MarkExpired())
	assert.False(t, charge.Expired(time.Now()), "terminal charge is not sweep-eligible")
}
