package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"eurd-payments/internal/domains/payment/model"
	"eurd-payments/internal/domains/payment/service"
	res "eurd-payments/internal/shared/response"
)

type PaymentHandler struct {
	reconciliation service.ReconciliationService
}

func NewPaymentHandler(reconciliation service.ReconciliationService) *PaymentHandler {
	return &PaymentHandler{reconciliation: reconciliation}
}

// =====================================================
// CHECKOUT ENDPOINTS
// =====================================================

// StartPayment prepares the pay page for an order
// POST /api/v1/orders/:order_id/eurd/pay
func (h *PaymentHandler) StartPayment(c *gin.Context) {
	// Step 1: Get order ID from URL
	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}

	// Step 2: Call service
	session, err := h.reconciliation.StartPayment(c.Request.Context(), orderID)
	if err != nil {
		respondError(c, err)
		return
	}

	// Step 3: Return response
	res.Success(c, http.StatusOK, "Success", session)
}

// ConfirmPayment handles the "I have paid" link on the pay page
// POST /api/v1/orders/:order_id/eurd/confirm?payment_request_code=...
func (h *PaymentHandler) ConfirmPayment(c *gin.Context) {
	// Step 1: Get order ID from URL
	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}

	// Step 2: Request code from query, falling back to the body
	var req model.ConfirmPaymentRequest
	req.PaymentRequestCode = c.Query("payment_request_code")
	if req.PaymentRequestCode == "" {
		_ = c.ShouldBind(&req)
	}

	// Step 3: Call service
	result, err := h.reconciliation.ManualConfirm(c.Request.Context(), orderID, req.PaymentRequestCode)
	if err != nil {
		respondError(c, err)
		return
	}

	status, err := h.reconciliation.OrderStatus(c.Request.Context(), orderID)
	if err != nil {
		respondError(c, err)
		return
	}

	// Step 4: Return response
	res.Success(c, http.StatusOK, "Success", model.ConfirmPaymentResponse{
		OrderID: orderID,
		Result:  result,
		Paid:    result == model.ConfirmPaid || result == model.ConfirmAlreadyPaid,
		Status:  status,
	})
}

// CheckOrderStatus is polled by the pay page until the order is paid
// POST /api/v1/payments/eurd/check-order-status
func (h *PaymentHandler) CheckOrderStatus(c *gin.Context) {
	// Step 1: Bind form or JSON
	var req model.CheckOrderStatusRequest
	if err := c.ShouldBind(&req); err != nil {
		res.Error(c, http.StatusBadRequest, model.ErrCodeValidation, "Invalid request")
		return
	}

	// Step 2: Validate
	if err := req.Validate(); err != nil {
		code := model.ErrCodeValidation
		if errs, ok := err.(validation.Errors); ok {
			if _, missingOrder := errs["order_id"]; !missingOrder {
				code = model.ErrCodeInvalidToken
			}
		}
		res.Error(c, http.StatusBadRequest, code, err.Error())
		return
	}

	orderID, err := uuid.Parse(req.OrderID)
	if err != nil {
		res.Error(c, http.StatusBadRequest, model.ErrCodeValidation, "Invalid order ID")
		return
	}

	// Step 3: Call service
	status, err := h.reconciliation.CheckOrderStatus(c.Request.Context(), orderID, req.Token)
	if err != nil {
		respondError(c, err)
		return
	}

	// Step 4: Return response
	res.Success(c, http.StatusOK, "Success", model.CheckOrderStatusResponse{Status: status})
}
