package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

// =====================================================
// WEBHOOK PAYLOAD
// =====================================================

// WebhookPayload is the Quantoz Pay callback body
type WebhookPayload struct {
	Code    string         `json:"code"`
	Type    string         `json:"type"`
	Content WebhookContent `json:"content"`
}

type WebhookContent struct {
	PaymentRequestCode string            `json:"PaymentRequestCode"`
	Payment            WebhookPaymentRef `json:"Payment"`
}

type WebhookPaymentRef struct {
	TransactionCode string `json:"TransactionCode"`
}

func (p WebhookPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Code, validation.Required.Error("code is required")),
		validation.Field(&p.Type, validation.Required.Error("type is required")),
		validation.Field(&p.Content),
	)
}

func (c WebhookContent) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.PaymentRequestCode, validation.Required.Error("PaymentRequestCode is required")),
		validation.Field(&c.Payment),
	)
}

func (r WebhookPaymentRef) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.TransactionCode, validation.Required.Error("TransactionCode is required")),
	)
}

// =====================================================
// POLL / CONFIRM
// =====================================================

// CheckOrderStatusRequest accepts form or JSON, matching the pay page script
type CheckOrderStatusRequest struct {
	OrderID string `json:"order_id" form:"order_id"`
	Token   string `json:"token" form:"token"`
}

func (r CheckOrderStatusRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.OrderID, validation.Required.Error("order_id is required")),
		validation.Field(&r.Token, validation.Required.Error("token is required")),
	)
}

type CheckOrderStatusResponse struct {
	Status string `json:"status"`
}

type ConfirmPaymentRequest struct {
	PaymentRequestCode string `json:"payment_request_code" form:"payment_request_code"`
}

type ConfirmPaymentResponse struct {
	OrderID uuid.UUID     `json:"order_id"`
	Result  ConfirmResult `json:"result"`
	Paid    bool          `json:"paid"`
	Status  string        `json:"status"`
}

// =====================================================
// ADMIN SETTINGS
// =====================================================

type UpdateSettingsRequest struct {
	Enabled     *bool   `json:"enabled"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
	APIKey      *string `json:"api_key"`
	AccountCode *string `json:"account_code"`
}

func (r UpdateSettingsRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.NilOrNotEmpty, validation.Length(1, 100)),
		validation.Field(&r.Description, validation.Length(0, 500)),
		validation.Field(&r.APIKey, validation.Length(0, 256)),
		validation.Field(&r.AccountCode, validation.Length(0, 64)),
	)
}

type SettingsResponse struct {
	Enabled           bool      `json:"enabled"`
	Title             string    `json:"title"`
	Description       string    `json:"description"`
	APIKeyConfigured  bool      `json:"api_key_configured"`
	APIKeyHint        string    `json:"api_key_hint,omitempty"`
	AccountCode       string    `json:"account_code"`
	Available         bool      `json:"available"`
	UnavailableReason string    `json:"unavailable_reason,omitempty"`
	UpdatedAt         time.Time `json:"updated_at"`
}
