package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =====================================================
// ENTITY: Settings (table payment_settings, single row)
// =====================================================

type Settings struct {
	Enabled     bool      `json:"enabled"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	APIKey      string    `json:"api_key"` // encrypted, or legacy plaintext
	AccountCode string    `json:"account_code"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// =====================================================
// RECONCILIATION RESULTS
// =====================================================

// RequestResult is the outcome of GetOrCreateRequest. Paid=true means the
// existing request is already settled and the order must go through Confirm.
type RequestResult struct {
	Code    string
	Paid    bool
	Reused  bool
	Created bool
}

// PaymentSession is what the pay page needs to render and poll
type PaymentSession struct {
	OrderID             uuid.UUID       `json:"order_id"`
	OrderNumber         string          `json:"order_number"`
	Amount              decimal.Decimal `json:"amount"`
	Currency            string          `json:"currency"`
	PaymentRequestCode  string          `json:"payment_request_code,omitempty"`
	PaymentURL          string          `json:"payment_url,omitempty"`
	ConfirmURL          string          `json:"confirm_url,omitempty"`
	PollToken           string          `json:"poll_token,omitempty"`
	PollIntervalSeconds int             `json:"poll_interval_seconds,omitempty"`
	Status              string          `json:"status"`
	Paid                bool            `json:"paid"`
}
