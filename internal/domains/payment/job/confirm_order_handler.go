package job

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"eurd-payments/internal/domains/payment/model"
	"eurd-payments/internal/domains/payment/service"
	"eurd-payments/internal/shared"
	"eurd-payments/internal/shared/utils"
	"eurd-payments/pkg/logger"
)

// ConfirmOrderHandler re-runs confirmation for one order, queued by the
// webhook after a gateway failure or by the awaiting-payment sweep
type ConfirmOrderHandler struct {
	reconciliation service.ReconciliationService
}

func NewConfirmOrderHandler(reconciliation service.ReconciliationService) *ConfirmOrderHandler {
	return &ConfirmOrderHandler{
		reconciliation: reconciliation,
	}
}

func (h *ConfirmOrderHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload shared.ConfirmOrderPayload
	if err := utils.UnmarshalTask(t, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	orderID := utils.ParseStringToUUID(payload.OrderID)
	if orderID == uuid.Nil || payload.PaymentRequestCode == "" {
		return fmt.Errorf("invalid confirm payload for order %q: %w", payload.OrderID, asynq.SkipRetry)
	}

	trigger := model.Trigger(payload.Trigger)
	if trigger == "" {
		trigger = model.TriggerRetry
	}

	logger.Info("Processing confirm order task", map[string]interface{}{
		"order_id": payload.OrderID,
		"code":     payload.PaymentRequestCode,
		"trigger":  string(trigger),
	})

	result, err := h.reconciliation.Confirm(ctx, trigger, orderID, payload.PaymentRequestCode, payload.TransactionCode)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrGatewayFailure):
			// asynq retries with backoff
			return fmt.Errorf("confirm order %s: %w", payload.OrderID, err)
		case errors.Is(err, model.ErrOrderNotFound):
			return fmt.Errorf("confirm order %s: %v: %w", payload.OrderID, err, asynq.SkipRetry)
		default:
			return fmt.Errorf("confirm order %s: %w", payload.OrderID, err)
		}
	}

	logger.Info("Confirm order task done", map[string]interface{}{
		"order_id": payload.OrderID,
		"result":   string(result),
	})

	return nil
}
