package model

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// =====================================================
// PREDEFINED ERRORS
// =====================================================

var (
	ErrValidation          = errors.New("validation failed")
	ErrOrderNotFound       = errors.New("order not found")
	ErrGatewayFailure      = errors.New("payment gateway failure")
	ErrMethodUnavailable   = errors.New("payment method unavailable")
	ErrAmountExceeded      = errors.New("order amount exceeds the maximum")
	ErrRequestInProgress   = errors.New("payment request creation already in progress")
	ErrInvalidToken        = errors.New("invalid poll token")
	ErrUnsupportedCurrency = errors.New("unsupported currency")
	ErrOrderNotPayable     = errors.New("order cannot be paid")
	ErrInvalidAPIKey       = errors.New("invalid merchant api key")
)

// =====================================================
// CUSTOM PAYMENT ERROR
// =====================================================

type PaymentError struct {
	Code    string
	Message string
	Err     error
}

func (e *PaymentError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *PaymentError) Unwrap() error {
	return e.Err
}

// NewPaymentError creates a new payment error
func NewPaymentError(code, message string, err error) *PaymentError {
	return &PaymentError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// =====================================================
// ERROR CONSTRUCTORS
// =====================================================

func NewValidationError(message string) *PaymentError {
	return NewPaymentError(ErrCodeValidation, message, ErrValidation)
}

func NewOrderNotFoundError(orderID string) *PaymentError {
	return NewPaymentError(
		ErrCodeOrderNotFound,
		fmt.Sprintf("Order not found: %s", orderID),
		ErrOrderNotFound,
	)
}

// NewGatewayFailureError keeps the underlying gateway error reachable through errors.As
func NewGatewayFailureError(op string, cause error) *PaymentError {
	return NewPaymentError(
		ErrCodeGatewayFailure,
		fmt.Sprintf("Payment gateway call failed: %s", op),
		errors.Join(ErrGatewayFailure, cause),
	)
}

func NewMethodUnavailableError(reason string) *PaymentError {
	return NewPaymentError(
		ErrCodeMethodUnavailable,
		fmt.Sprintf("EURD payments are unavailable: %s", reason),
		ErrMethodUnavailable,
	)
}

func NewAmountExceededError(total, max decimal.Decimal) *PaymentError {
	return NewPaymentError(
		ErrCodeAmountExceeded,
		fmt.Sprintf("Order total %s exceeds the maximum of %s", total.StringFixed(2), max.StringFixed(2)),
		ErrAmountExceeded,
	)
}

func NewRequestInProgressError(orderID string) *PaymentError {
	return NewPaymentError(
		ErrCodeRequestInProgress,
		fmt.Sprintf("A payment request for order %s is being prepared, retry shortly", orderID),
		ErrRequestInProgress,
	)
}

func NewInvalidTokenError() *PaymentError {
	return NewPaymentError(ErrCodeInvalidToken, "Invalid or expired token", ErrInvalidToken)
}

func NewUnsupportedCurrencyError(currency string) *PaymentError {
	return NewPaymentError(
		ErrCodeUnsupportedCurrency,
		fmt.Sprintf("Currency %s is not supported, only %s", currency, SupportedCurrency),
		ErrUnsupportedCurrency,
	)
}

func NewOrderNotPayableError(status string) *PaymentError {
	return NewPaymentError(
		ErrCodeOrderNotPayable,
		fmt.Sprintf("Order cannot be paid in status: %s", status),
		ErrOrderNotPayable,
	)
}

func NewInvalidAPIKeyError() *PaymentError {
	return NewPaymentError(
		ErrCodeInvalidAPIKey,
		"The merchant API key was rejected by Quantoz Pay, the payment method has been disabled",
		ErrInvalidAPIKey,
	)
}
