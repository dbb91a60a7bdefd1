package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"eurd-payments/internal/domains/order/model"
	"eurd-payments/internal/domains/order/repository"
)

// =====================================================
// ORDER SERVICE IMPLEMENTATION
// =====================================================
type orderService struct {
	orderRepo repository.OrderRepository
}

func NewOrderService(orderRepo repository.OrderRepository) OrderService {
	return &orderService{
		orderRepo: orderRepo,
	}
}

// GetPaymentDetail loads the order and its notes.
//
// Edge Cases:
// - Unknown order returns model.ErrOrderNotFound
// - Order without notes returns an empty (non-nil) list
func (s *orderService) GetPaymentDetail(ctx context.Context, orderID uuid.UUID) (*model.PaymentDetailResponse, error) {
	order, err := s.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	notes, err := s.orderRepo.ListNotes(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order notes: %w", err)
	}
	if notes == nil {
		notes = []model.OrderNote{}
	}

	return &model.PaymentDetailResponse{
		Order: *order,
		Notes: notes,
	}, nil
}
