package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// =====================================================
// GATEWAY INTERFACE
// =====================================================

// Client is the Quantoz Pay (EURD) payment-request API.
// Calls are synchronous, bounded by a fixed timeout and never retried;
// callers own the retry policy.
type Client interface {
	// CreateRequest opens a one-off payment request and returns its code
	CreateRequest(ctx context.Context, req CreateRequestInput) (string, error)

	// GetRequest returns ErrRequestNotFound when the code is unknown to the gateway
	GetRequest(ctx context.Context, code string) (*PaymentRequest, error)

	DeleteRequest(ctx context.Context, code string) error

	ListAccounts(ctx context.Context) ([]Account, error)

	// AccountEnabled reports the enabled flag from the account balance endpoint
	AccountEnabled(ctx context.Context, accountCode string) (bool, error)

	// ValidateKey never fails: an invalid key, a 403 or a transport error all yield false
	ValidateKey(ctx context.Context, apiKey string) bool

	// PayURL is the customer-facing pay page for a request code
	PayURL(code string) string
}

// =====================================================
// REQUEST/RESPONSE TYPES
// =====================================================

// Payment request statuses reported by the gateway
const (
	RequestStatusOpen    = "Open"
	RequestStatusPaid    = "Paid"
	RequestStatusExpired = "Expired"
)

type CreateRequestInput struct {
	AccountCode string
	Amount      decimal.Decimal
	ExpiresOn   time.Time
	Message     string // free text shown to the payer, carries the order reference
	CallbackURL string
}

type PaymentRequest struct {
	Code            string
	Status          string
	RequestedAmount decimal.NullDecimal
	ExpiresOn       *time.Time
	Payments        []Payment
}

func (p *PaymentRequest) IsPaid() bool { return p.Status == RequestStatusPaid }
func (p *PaymentRequest) IsOpen() bool { return p.Status == RequestStatusOpen }

// Payment is a single settlement against a payment request
type Payment struct {
	TransactionCode string
	Amount          decimal.NullDecimal
}

type Account struct {
	AccountCode string `json:"account_code"`
	CustomName  string `json:"custom_name"`
	AccountType string `json:"account_type,omitempty"`
}

// =====================================================
// ERRORS
// =====================================================

var ErrRequestNotFound = errors.New("payment request not found")

// Error is a non-2xx response or transport failure from the gateway
type Error struct {
	Op         string
	StatusCode int // 0 for transport failures
	Message    string
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode == 0 && e.Err != nil {
		return fmt.Sprintf("quantoz %s: %s: %v", e.Op, e.Message, e.Err)
	}
	if e.StatusCode == 0 {
		return fmt.Sprintf("quantoz %s: %s", e.Op, e.Message)
	}
	return fmt.Sprintf("quantoz %s: status %d: %s", e.Op, e.StatusCode, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}
