package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"eurd-payments/internal/shared"
	"eurd-payments/pkg/logger"
)

// confirmDedupeWindow bounds how long a confirm task ID stays reserved.
// Archived tasks keep their ID, so the ID rolls over each window.
const confirmDedupeWindow = 5 * time.Minute

// Client enqueues payment tasks onto asynq
type Client struct {
	client   *asynq.Client
	maxRetry int
	now      func() time.Time
}

func NewClient(client *asynq.Client, maxRetry int) *Client {
	return &Client{
		client:   client,
		maxRetry: maxRetry,
		now:      time.Now,
	}
}

// EnqueueConfirmOrder schedules a confirm run for one order after delay.
// Tasks for the same order and request code are de-duplicated within one
// dedupe window of their run time.
func (c *Client) EnqueueConfirmOrder(ctx context.Context, payload shared.ConfirmOrderPayload, delay time.Duration) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal confirm payload: %w", err)
	}

	task := asynq.NewTask(shared.TypeConfirmOrderPayment, data)

	opts := []asynq.Option{
		asynq.Queue(shared.QueuePayment),
		asynq.MaxRetry(c.maxRetry),
		asynq.Timeout(2 * time.Minute),
		asynq.TaskID(confirmTaskID(payload, c.now().Add(delay))),
	}
	if delay > 0 {
		opts = append(opts, asynq.ProcessIn(delay))
	}

	info, err := c.client.EnqueueContext(ctx, task, opts...)
	if err != nil {
		// Same order already queued
		if errors.Is(err, asynq.ErrTaskIDConflict) || errors.Is(err, asynq.ErrDuplicateTask) {
			logger.Debug("Confirm task already queued", map[string]interface{}{
				"order_id": payload.OrderID,
			})
			return nil
		}
		return fmt.Errorf("enqueue confirm task: %w", err)
	}

	logger.Info("Confirm task enqueued", map[string]interface{}{
		"task_id":  info.ID,
		"order_id": payload.OrderID,
		"trigger":  payload.Trigger,
		"delay":    delay.String(),
	})

	return nil
}

func confirmTaskID(p shared.ConfirmOrderPayload, runAt time.Time) string {
	bucket := runAt.UTC().Truncate(confirmDedupeWindow).Unix()
	return fmt.Sprintf("confirm:%s:%s:%d", p.OrderID, p.PaymentRequestCode, bucket)
}
