package repository

import (
	"context"

	"github.com/google/uuid"

	"eurd-payments/internal/domains/payment/model"
)

// PaymentRequestStore keeps the gateway request code on the order record
type PaymentRequestStore interface {
	// GetCode returns "" when the order has no request code
	GetCode(ctx context.Context, orderID uuid.UUID) (string, error)
	SetCode(ctx context.Context, orderID uuid.UUID, code string) error

	// ClearCode removes the code only if the order still carries code
	ClearCode(ctx context.Context, orderID uuid.UUID, code string) error
}

// SettingsRepository persists the single payment_settings row
type SettingsRepository interface {
	// GetSettings returns found=false when no admin has saved settings yet
	GetSettings(ctx context.Context) (settings *model.Settings, found bool, err error)
	SaveSettings(ctx context.Context, settings *model.Settings) error
}
