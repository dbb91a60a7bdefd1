package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"eurd-payments/internal/domains/payment/model"
	"eurd-payments/internal/domains/payment/service"
	res "eurd-payments/internal/shared/response"
)

type AdminHandler struct {
	settings service.SettingsService
}

func NewAdminHandler(settings service.SettingsService) *AdminHandler {
	return &AdminHandler{settings: settings}
}

// =====================================================
// ADMIN SETTINGS ENDPOINTS
// =====================================================

// GetSettings
// GET /api/v1/admin/payments/eurd/settings
func (h *AdminHandler) GetSettings(c *gin.Context) {
	settings, err := h.settings.GetSettings(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	res.Success(c, http.StatusOK, "Success", settings)
}

// UpdateSettings validates a new merchant key against Quantoz before enabling
// PUT /api/v1/admin/payments/eurd/settings
func (h *AdminHandler) UpdateSettings(c *gin.Context) {
	// Step 1: Bind request body
	var req model.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		res.Error(c, http.StatusBadRequest, model.ErrCodeValidation, "Invalid request body")
		return
	}

	// Step 2: Call service (validates)
	settings, err := h.settings.UpdateSettings(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	// Step 3: Return response
	res.Success(c, http.StatusOK, "Settings updated", settings)
}

// ListAccounts lists merchant accounts for the account picker
// GET /api/v1/admin/payments/eurd/accounts
func (h *AdminHandler) ListAccounts(c *gin.Context) {
	accounts, err := h.settings.ListAccounts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	res.Success(c, http.StatusOK, "Success", accounts)
}
