package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"eurd-payments/internal/domains/payment/model"
	"eurd-payments/internal/domains/payment/service"
	"eurd-payments/internal/infrastructure/metrics"
	"eurd-payments/internal/shared"
	"eurd-payments/pkg/logger"
)

const maxWebhookBody = 64 << 10

type WebhookHandler struct {
	reconciliation service.ReconciliationService
	metrics        *metrics.Metrics
	retryDelay     time.Duration
	logPayloads    bool
}

// NewWebhookHandler: logPayloads dumps raw bodies at debug level, never enable in production
func NewWebhookHandler(
	reconciliation service.ReconciliationService,
	m *metrics.Metrics,
	retryDelay time.Duration,
	logPayloads bool,
) *WebhookHandler {
	return &WebhookHandler{
		reconciliation: reconciliation,
		metrics:        m,
		retryDelay:     retryDelay,
		logPayloads:    logPayloads,
	}
}

// =====================================================
// QUANTOZ WEBHOOK
// =====================================================

// HandleQuantozWebhook receives payment request notifications
// POST|GET /api/v1/webhooks/quantoz
//
// Responses:
// - 400 invalid or empty JSON
// - 422 missing code, type, content.PaymentRequestCode or content.Payment.TransactionCode
// - 404 no order owns the payment request
// - 200 everything else, dispatch failures are logged only
func (h *WebhookHandler) HandleQuantozWebhook(c *gin.Context) {
	eventType := "unparsed"

	// Step 1: Read body
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil || len(bytes.TrimSpace(body)) == 0 {
		h.reply(c, eventType, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	if h.logPayloads {
		logger.Debug("Quantoz webhook payload", map[string]interface{}{
			"request_id": c.GetString("request_id"),
			"body":       string(body),
		})
	}

	// null and {} carry nothing to validate
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil || len(fields) == 0 {
		h.reply(c, eventType, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	var payload model.WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		h.reply(c, eventType, http.StatusBadRequest, "Invalid JSON payload")
		return
	}
	eventType = metricType(payload.Type)

	// Step 2: Validate fields
	if err := payload.Validate(); err != nil {
		logger.Warn("Quantoz webhook missing fields", map[string]interface{}{
			"request_id": c.GetString("request_id"),
			"error":      err.Error(),
		})
		h.reply(c, eventType, http.StatusUnprocessableEntity, "Missing required fields: "+err.Error())
		return
	}

	code := payload.Content.PaymentRequestCode
	txCode := payload.Content.Payment.TransactionCode

	// Step 3: Find the order
	orderID, err := h.reconciliation.FindOrderByRequestCode(c.Request.Context(), code)
	if err != nil {
		if errors.Is(err, model.ErrOrderNotFound) {
			logger.Warn("Quantoz webhook for unknown payment request", map[string]interface{}{
				"code": code,
			})
			h.reply(c, eventType, http.StatusNotFound, "Order not found")
			return
		}
		logger.ErrorWithFields("Quantoz webhook order lookup failed", err, map[string]interface{}{
			"code": code,
		})
		h.reply(c, eventType, http.StatusInternalServerError, "Internal server error")
		return
	}

	// Step 4: Dispatch
	switch payload.Type {
	case model.WebhookTypePaymentRequestPaid:
		h.confirm(c.Request.Context(), orderID, code, txCode)
	default:
		logger.Info("Unknown Quantoz webhook type, ignoring", map[string]interface{}{
			"type":     payload.Type,
			"order_id": orderID.String(),
			"code":     code,
		})
	}

	// Step 5: Acknowledge
	h.reply(c, eventType, http.StatusOK, model.WebhookAckMessage)
}

func (h *WebhookHandler) confirm(ctx context.Context, orderID uuid.UUID, code, txCode string) {
	result, err := h.reconciliation.Confirm(ctx, model.TriggerWebhook, orderID, code, txCode)
	if err == nil {
		logger.Info("Quantoz webhook processed", map[string]interface{}{
			"order_id": orderID.String(),
			"result":   string(result),
		})
		return
	}

	if !errors.Is(err, model.ErrGatewayFailure) {
		return
	}

	// Gateway unreachable: try again from the worker
	retry := shared.ConfirmOrderPayload{
		OrderID:            orderID.String(),
		PaymentRequestCode: code,
		TransactionCode:    txCode,
		Trigger:            string(model.TriggerRetry),
	}
	if err := h.reconciliation.ScheduleConfirm(ctx, retry, h.retryDelay); err != nil {
		logger.ErrorWithFields("Failed to schedule confirm retry", err, map[string]interface{}{
			"order_id": orderID.String(),
		})
	}
}

func (h *WebhookHandler) reply(c *gin.Context, eventType string, status int, message string) {
	h.metrics.ObserveWebhook(eventType, strconv.Itoa(status))
	c.JSON(status, gin.H{"message": message})
}

// metricType keeps the label set bounded
func metricType(t string) string {
	if t == model.WebhookTypePaymentRequestPaid {
		return t
	}
	return "other"
}
