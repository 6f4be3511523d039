package application

import (
	"errors"
	"fmt"
	"net/http"
)

// APPLICATION-LEVEL ERRORS (Orchestration)

type ServiceError struct {
	Code       string
	Message    string
	HTTPStatus int
	Err        error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

const (
	ErrCodeValidation           = "VALIDATION_ERROR"
	ErrCodeNotConfigured        = "NOT_CONFIGURED"
	ErrCodeAuthenticationFailed = "AUTHENTICATION_FAILED"
	ErrCodeProviderUnavailable  = "PROVIDER_UNAVAILABLE"
	ErrCodeRejectedByProvider   = "REJECTED_BY_PROVIDER"
	ErrCodeNotFound             = "NOT_FOUND"
	ErrCodeInternal             = "INTERNAL_ERROR"
)

func NewValidationError(err error) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeValidation,
		Message:    "Invalid input",
		HTTPStatus: http.StatusBadRequest,
		Err:        err,
	}
}

func NewNotConfiguredError() *ServiceError {
	return &ServiceError{
		Code:       ErrCodeNotConfigured,
		Message:    "Provider credentials are not configured",
		HTTPStatus: http.StatusConflict,
	}
}

func NewAuthenticationFailedError(err error) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeAuthenticationFailed,
		Message:    "Provider rejected the configured credentials",
		HTTPStatus: http.StatusBadGateway,
		Err:        err,
	}
}

func NewProviderUnavailableError(err error) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeProviderUnavailable,
		Message:    "Provider is unavailable, retries exhausted",
		HTTPStatus: http.StatusBadGateway,
		Err:        err,
	}
}

func NewRejectedByProviderError(err error) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeRejectedByProvider,
		Message:    "Provider rejected the charge",
		HTTPStatus: http.StatusUnprocessableEntity,
		Err:        err,
	}
}

func NewNotFoundError(what string) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeNotFound,
		Message:    fmt.Sprintf("%s not found", what),
		HTTPStatus: http.StatusNotFound,
	}
}

func NewInternalError(err error) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeInternal,
		Message:    "An internal error occurred",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func IsServiceError(err error) (*ServiceError, bool) {
	var svcErr *ServiceError
	ok := errors.As(err, &svcErr)
	return svcErr, ok
}

// BANK ERRORS (External API)

// BankError carries the provider's own failure detail. StatusCode decides
// retryability: 5xx is transient, 4xx is a business rejection.
type BankError struct {
	Code       string
	Message    string
	StatusCode int
}

func (e *BankError) Error() string {
	return fmt.Sprintf("bank error [%s]: %s (status: %d)", e.Code, e.Message, e.StatusCode)
}

func (e *BankError) IsRetryable() bool {
	return e.StatusCode >= 500
}

// IsAuthFailure reports credential or certificate rejection. Never retried:
// operator action is required.
func (e *BankError) IsAuthFailure() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

func IsBankError(err error) (*BankError, bool) {
	var bankErr *BankError
	ok := errors.As(err, &bankErr)
	return bankErr, ok
}
