package domain

import "errors"

var (
	// ErrInvalidTransition is returned when a charge is asked to move to a
	// state unreachable from its current one.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrAlreadyTerminal is returned when a transition targets a charge that
	// has already reached a terminal state. Callers treat it as a no-op, not
	// a failure, so duplicate or out-of-order webhook deliveries are harmless.
	ErrAlreadyTerminal = errors.New("charge already in terminal state")

	ErrInvalidAmount        = errors.New("amount must be a positive value with at most 2 decimal places")
	ErrInvalidTxID          = errors.New("txid must be 26-35 alphanumeric characters")
	ErrMissingRequiredField = errors.New("missing required field")
	ErrFieldTooLong         = errors.New("field exceeds maximum length")
	ErrInvalidEnvironment   = errors.New("environment must be sandbox or production")
	ErrInvalidKeyPair       = errors.New("certificate and private key do not form a valid pair")
)
