package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"eurd-payments/internal/domains/order/model"
)

// OrderRepository is the slice of the host order store the payment flow needs
type OrderRepository interface {
	GetOrderByID(ctx context.Context, orderID uuid.UUID) (*model.Order, error)

	// FindOrderIDByPaymentRequestCode returns ErrOrderNotFound when no order owns code
	FindOrderIDByPaymentRequestCode(ctx context.Context, code string) (uuid.UUID, error)

	// MarkAwaitingPayment moves an unpaid order to on-hold while the customer pays
	MarkAwaitingPayment(ctx context.Context, orderID uuid.UUID) error

	// MarkAsPaid flips the order to paid only if it is not paid yet and still
	// carries requestCode. marked=false means another caller won or the code changed.
	MarkAsPaid(ctx context.Context, orderID uuid.UUID, requestCode, reference, note string) (marked bool, err error)

	AddNote(ctx context.Context, orderID uuid.UUID, note string) error
	ListNotes(ctx context.Context, orderID uuid.UUID) ([]model.OrderNote, error)

	// ListAwaitingPayment returns orders waiting on the gateway whose request
	// code was written after since, oldest first
	ListAwaitingPayment(ctx context.Context, since time.Time, limit int) ([]model.Order, error)
}
