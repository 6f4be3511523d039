package bank

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/pixbridge/inter-gateway/internal/application"
	"github.com/pixbridge/inter-gateway/internal/config"
)

type RetryBankClient struct {
	inner      application.BankClient
	baseDelay  time.Duration
	maxRetries int
}

func NewRetryBankClient(inner application.BankClient, cfg config.RetryConfig) application.BankClient {
	return &RetryBankClient{
		inner:      inner,
		baseDelay:  time.Duration(cfg.BaseDelay) * time.Second,
		maxRetries: int(cfg.MaxRetries),
	}
}

// CreateCharge with retry logic
func (r *RetryBankClient) CreateCharge(ctx context.Context, req application.BankCreateChargeRequest) (*application.BankChargeResponse, error) {
	return retry(
		r,
		ctx,
		func(ctx context.Context) (*application.BankChargeResponse, error) {
			return r.inner.CreateCharge(ctx, req)
		},
	)
}

// LookupCharge with retry logic
func (r *RetryBankClient) LookupCharge(ctx context.Context, txid string) (*application.BankChargeResponse, error) {
	return retry(
		r,
		ctx,
		func(ctx context.Context) (*application.BankChargeResponse, error) {
			return r.inner.LookupCharge(ctx, txid)
		},
	)
}

// Generic retry helper
func retry[T any](r *RetryBankClient, ctx context.Context, operation func(ctx context.Context) (*T, error)) (*T, error) {
	var lastErr error

	for attempt := 0; attempt < r.maxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		resp, err := operation(ctx)
		if err == nil {
			return resp, nil
		}

		lastErr = err

		if !isRetryable(err) {
			return nil, err
		}

		if attempt < r.maxRetries-1 {
			time.Sleep(r.backoff(attempt))
		}
	}

	return nil, fmt.Errorf("maximum retries exceeded: %w", lastErr)
}

// Helper: to check retryable errors
func isRetryable(err error) bool {
	var bankErr *application.BankError
	if errors.As(err, &bankErr) {
		// credential rejection and business 4xx never resolve on their own
		if bankErr.IsAuthFailure() {
			return false
		}
		return bankErr.StatusCode >= 500
	}

	if errors.Is(err, application.ErrNotConfigured) {
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	return true
}

// Backoff calculation with exponential delay and jitter
func (r *RetryBankClient) backoff(attempt int) time.Duration {
	base := r.baseDelay * time.Duration(1<<attempt)

	jitter := time.Duration(rand.Intn(1000)) * time.Millisecond

	return base + jitter
}
