package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =====================================================
// ORDER STATUS CONSTANTS
// =====================================================
const (
	OrderStatusPending    = "pending"
	OrderStatusOnHold     = "on-hold"
	OrderStatusProcessing = "processing"
	OrderStatusCompleted  = "completed"
	OrderStatusCancelled  = "cancelled"
)

// =====================================================
// PAYMENT STATUS CONSTANTS
// =====================================================
const (
	PaymentStatusUnpaid          = "unpaid"
	PaymentStatusAwaitingGateway = "awaiting_gateway"
	PaymentStatusPaid            = "paid"
)

const PaymentMethodEURD = "eurd"

// =====================================================
// ENTITY: Order
// =====================================================

// Order is the host order record. This service only reads the totals and
// writes payment metadata and payment status.
type Order struct {
	ID                 uuid.UUID       `json:"id"`
	OrderNumber        string          `json:"order_number"`
	Total              decimal.Decimal `json:"total"`
	Currency           string          `json:"currency"`
	PaymentMethod      string          `json:"payment_method"`
	PaymentStatus      string          `json:"payment_status"`
	Status             string          `json:"status"`
	PaymentRequestCode *string         `json:"payment_request_code,omitempty"`
	PaymentReference   *string         `json:"payment_reference,omitempty"`
	PaidAt             *time.Time      `json:"paid_at,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
	Version            int             `json:"version"`
}

func (o *Order) IsPaid() bool {
	return o.PaymentStatus == PaymentStatusPaid
}

// NeedsPayment mirrors the host rule: unpaid, not cancelled
func (o *Order) NeedsPayment() bool {
	return !o.IsPaid() && o.Status != OrderStatusCancelled
}

// RequestCode returns the stored gateway request code or ""
func (o *Order) RequestCode() string {
	if o.PaymentRequestCode == nil {
		return ""
	}
	return *o.PaymentRequestCode
}

// =====================================================
// ENTITY: OrderNote
// =====================================================
type OrderNote struct {
	ID        uuid.UUID `json:"id"`
	OrderID   uuid.UUID `json:"order_id"`
	Note      string    `json:"note"`
	CreatedAt time.Time `json:"created_at"`
}
