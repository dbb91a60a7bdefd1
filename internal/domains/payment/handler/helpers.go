package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"eurd-payments/internal/domains/payment/model"
	res "eurd-payments/internal/shared/response"
	"eurd-payments/pkg/logger"
)

// =====================================================
// HELPER FUNCTIONS
// =====================================================

func mapPaymentError(err error) (statusCode int, errorCode string) {
	// Default
	statusCode = http.StatusInternalServerError
	errorCode = model.ErrCodeInternalError

	var paymentErr *model.PaymentError
	if !errors.As(err, &paymentErr) {
		return statusCode, errorCode
	}

	errorCode = paymentErr.Code
	switch paymentErr.Code {
	case model.ErrCodeValidation,
		model.ErrCodeAmountExceeded,
		model.ErrCodeInvalidToken,
		model.ErrCodeUnsupportedCurrency,
		model.ErrCodeInvalidAPIKey:
		statusCode = http.StatusBadRequest
	case model.ErrCodeOrderNotFound:
		statusCode = http.StatusNotFound
	case model.ErrCodeRequestInProgress, model.ErrCodeOrderNotPayable:
		statusCode = http.StatusConflict
	case model.ErrCodeGatewayFailure:
		statusCode = http.StatusBadGateway
	case model.ErrCodeMethodUnavailable:
		statusCode = http.StatusServiceUnavailable
	}

	return statusCode, errorCode
}

// respondError writes the mapped error. Messages of unclassified errors stay in the log.
func respondError(c *gin.Context, err error) {
	statusCode, errCode := mapPaymentError(err)

	message := "Internal server error"
	var paymentErr *model.PaymentError
	if errors.As(err, &paymentErr) {
		message = paymentErr.Message
	}

	if statusCode >= http.StatusInternalServerError {
		logger.ErrorWithFields("Payment request failed", err, map[string]interface{}{
			"request_id": c.GetString("request_id"),
			"path":       c.FullPath(),
		})
	}

	res.Error(c, statusCode, errCode, message)
}

func parseOrderID(c *gin.Context) (uuid.UUID, bool) {
	orderID, err := uuid.Parse(c.Param("order_id"))
	if err != nil {
		res.Error(c, http.StatusBadRequest, model.ErrCodeValidation, "Invalid order ID")
		return uuid.Nil, false
	}
	return orderID, true
}
