package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
// Retryable tells callers whether repeating the same operation later can succeed.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Retryable  bool   `json:"retryable"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

func retryable(e *AppError) *AppError {
	e.Retryable = true
	return e
}

// Code returns the code of the first AppError in err's chain, or "".
func Code(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// IsRetryable reports whether err is an AppError that may succeed when retried.
// Unknown errors are treated as not retryable.
func IsRetryable(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Retryable
	}
	return false
}

// ---- Lookups (NF) ----

func ErrNotFound(entity string) *AppError {
	return New("NF_001", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

// ---- Pricing (RATE) ----

func ErrRateUnavailable(fiatCurrency, cryptoCurrency string) *AppError {
	return retryable(New("RATE_001",
		fmt.Sprintf("Exchange rate not available for %s/%s", fiatCurrency, cryptoCurrency),
		http.StatusUnprocessableEntity))
}

// ---- Wallets (WAL) ----

func ErrProvisioningFailed(err error) *AppError {
	return retryable(Wrap("WAL_001", "Wallet provisioning failed", http.StatusBadGateway, err))
}

// ---- Networks (NET) ----

func ErrUnsupportedNetwork(network string) *AppError {
	return New("NET_001", fmt.Sprintf("Unsupported network: %s", network), http.StatusBadRequest)
}

// ---- Key material & transfers (SEC / TRF) ----

func ErrDecryptionFailed(err error) *AppError {
	return Wrap("SEC_001", "Private key decryption failed", http.StatusInternalServerError, err)
}

func ErrTransferFailed(err error) *AppError {
	return Wrap("TRF_001", "Transfer failed, do not retry without checking the chain", http.StatusBadGateway, err)
}

// ---- Authentication (AUTH) ----

func ErrInvalidToken() *AppError {
	return New("AUTH_001", "Invalid or expired token", http.StatusUnauthorized)
}

// ---- Rate limiting (LIM) ----

func ErrRateLimitExceeded() *AppError {
	return retryable(New("LIM_001", "Rate limit exceeded", http.StatusTooManyRequests))
}

// ---- System & Infrastructure (SYS) ----

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

func ErrCollaboratorUnavailable(name string, err error) *AppError {
	return retryable(Wrap("SYS_002", fmt.Sprintf("%s unavailable", name), http.StatusServiceUnavailable, err))
}

// Validation returns a REQ_001 validation error.
func Validation(message string) *AppError {
	return New("REQ_001", message, http.StatusBadRequest)
}
