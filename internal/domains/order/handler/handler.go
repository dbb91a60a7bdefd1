package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"eurd-payments/internal/domains/order/model"
	"eurd-payments/internal/domains/order/service"
	"eurd-payments/internal/shared/response"
	"eurd-payments/pkg/logger"
)

// =====================================================
// ORDER HANDLER
// =====================================================
type OrderHandler struct {
	orderService service.OrderService
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderService service.OrderService) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
	}
}

// =====================================================
// GET ORDER PAYMENT DETAIL
// =====================================================

// GetPaymentDetail godoc
// @Summary Get EURD payment detail of an order
// @Description Order payment state plus every payment note, for support and audits
// @Tags Admin Orders
// @Produce json
// @Param order_id path string true "Order ID"
// @Success 200 {object} response.Response{data=model.PaymentDetailResponse}
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /v1/admin/orders/{order_id}/payment [get]
func (h *OrderHandler) GetPaymentDetail(c *gin.Context) {
	// Parse order ID from URL parameter
	orderID, err := uuid.Parse(c.Param("order_id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Order ID must be a valid UUID")
		return
	}

	// Call service
	result, err := h.orderService.GetPaymentDetail(c.Request.Context(), orderID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "OK", result)
}

// handleServiceError maps service layer errors to HTTP responses
func (h *OrderHandler) handleServiceError(c *gin.Context, err error) {
	if errors.Is(err, model.ErrOrderNotFound) {
		response.Error(c, http.StatusNotFound, model.ErrCodeOrderNotFound, "Order not found")
		return
	}

	logger.ErrorWithFields("Order request failed", err, map[string]interface{}{
		"request_id": c.GetString("request_id"),
		"path":       c.FullPath(),
	})
	response.Error(c, http.StatusInternalServerError, model.ErrCodeInternal, "Internal server error")
}
