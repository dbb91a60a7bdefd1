package job

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"

	"eurd-payments/internal/domains/payment/service"
	"eurd-payments/internal/shared"
	"eurd-payments/internal/shared/utils"
	"eurd-payments/pkg/logger"
)

const defaultSweepLimit = 100

// ReconcileAwaitingHandler runs the periodic sweep over orders still waiting on Quantoz
type ReconcileAwaitingHandler struct {
	reconciliation service.ReconciliationService
}

func NewReconcileAwaitingHandler(reconciliation service.ReconciliationService) *ReconcileAwaitingHandler {
	return &ReconcileAwaitingHandler{
		reconciliation: reconciliation,
	}
}

func (h *ReconcileAwaitingHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload shared.ReconcileAwaitingPayload
	if err := utils.UnmarshalTask(t, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	limit := payload.Limit
	if limit <= 0 {
		limit = defaultSweepLimit
	}

	enqueued, err := h.reconciliation.ReconcileAwaiting(ctx, limit)
	if err != nil {
		logger.Error("Reconcile awaiting sweep failed", err)
		return fmt.Errorf("reconcile awaiting: %w", err)
	}

	logger.Info("Reconcile awaiting sweep done", map[string]interface{}{
		"enqueued": enqueued,
		"limit":    limit,
	})

	return nil
}
