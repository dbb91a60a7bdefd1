package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	ordermodel "eurd-payments/internal/domains/order/model"
	"eurd-payments/internal/domains/payment/gateway"
	"eurd-payments/internal/domains/payment/model"
	"eurd-payments/internal/shared"
)

// =====================================================
// SERVICE INTERFACES
// =====================================================

// ReconciliationService maps orders to gateway payment requests and marks
// them paid exactly once, whichever trigger gets there first.
type ReconciliationService interface {
	// GetOrCreateRequest returns a usable request code for order, reusing,
	// replacing or creating as needed. Paid=true means the existing request
	// is already settled and the caller must run Confirm.
	GetOrCreateRequest(ctx context.Context, order *ordermodel.Order, accountCode string) (*model.RequestResult, error)

	// Confirm validates a reported payment against the gateway and marks the
	// order paid. Safe to call repeatedly and concurrently for one order.
	Confirm(ctx context.Context, trigger model.Trigger, orderID uuid.UUID, reportedRequestCode, reportedTransactionCode string) (model.ConfirmResult, error)

	StartPayment(ctx context.Context, orderID uuid.UUID) (*model.PaymentSession, error)
	ManualConfirm(ctx context.Context, orderID uuid.UUID, requestCode string) (model.ConfirmResult, error)

	OrderStatus(ctx context.Context, orderID uuid.UUID) (string, error)
	CheckOrderStatus(ctx context.Context, orderID uuid.UUID, token string) (string, error)

	FindOrderByRequestCode(ctx context.Context, code string) (uuid.UUID, error)

	ScheduleConfirm(ctx context.Context, payload shared.ConfirmOrderPayload, delay time.Duration) error
	ReconcileAwaiting(ctx context.Context, limit int) (int, error)
}

// SettingsService is the admin side of the payment method
type SettingsService interface {
	GetSettings(ctx context.Context) (*model.SettingsResponse, error)
	UpdateSettings(ctx context.Context, req model.UpdateSettingsRequest) (*model.SettingsResponse, error)
	ListAccounts(ctx context.Context) ([]gateway.Account, error)

	MethodSettings
}

// =====================================================
// COLLABORATORS
// =====================================================

// MethodSettings is what checkout needs to know about the configured method
type MethodSettings interface {
	// IsAvailable returns a human readable reason when the method cannot be offered
	IsAvailable(ctx context.Context) (bool, string)
	AccountCode(ctx context.Context) (string, error)
}

// TaskEnqueuer schedules background confirmation runs
type TaskEnqueuer interface {
	EnqueueConfirmOrder(ctx context.Context, payload shared.ConfirmOrderPayload, delay time.Duration) error
}

// PollTokenManager issues and checks the token the pay page polls with
type PollTokenManager interface {
	GeneratePollToken(orderID string) (string, error)
	ValidatePollToken(token, orderID string) error
}
