package service

import (
	"context"

	"github.com/google/uuid"

	"eurd-payments/internal/domains/order/model"
)

// OrderService exposes the read side of orders to admins
type OrderService interface {
	// GetPaymentDetail returns the order with its payment notes, oldest first
	GetPaymentDetail(ctx context.Context, orderID uuid.UUID) (*model.PaymentDetailResponse, error)
}
