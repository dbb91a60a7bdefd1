package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"eurd-payments/internal/domains/payment/gateway"
	"eurd-payments/internal/domains/payment/model"
)

func setupAdminRouter(settings *mockSettings) *gin.Engine {
	gin.SetMode(gin.TestMode)

	h := NewAdminHandler(settings)
	r := gin.New()
	r.GET("/settings", h.GetSettings)
	r.PUT("/settings", h.UpdateSettings)
	r.GET("/accounts", h.ListAccounts)
	return r
}

func TestUpdateSettings_InvalidKey(t *testing.T) {
	settings := new(mockSettings)
	settings.On("UpdateSettings", mock.Anything, mock.MatchedBy(func(req model.UpdateSettingsRequest) bool {
		return req.APIKey != nil && *req.APIKey == "bad-key"
	})).Return(nil, model.NewInvalidAPIKeyError())

	req := httptest.NewRequest(http.MethodPut, "/settings", strings.NewReader(`{"api_key":"bad-key"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	setupAdminRouter(settings).ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	env := decodeEnvelope(t, w)
	require.NotNil(t, env.Error)
	assert.Equal(t, model.ErrCodeInvalidAPIKey, env.Error.Code)
}

func TestUpdateSettings_MalformedBody(t *testing.T) {
	settings := new(mockSettings)

	req := httptest.NewRequest(http.MethodPut, "/settings", strings.NewReader(`{"enabled":"yes"`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	setupAdminRouter(settings).ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	settings.AssertNotCalled(t, "UpdateSettings", mock.Anything, mock.Anything)
}

func TestGetSettings_Handler(t *testing.T) {
	settings := new(mockSettings)
	settings.On("GetSettings", mock.Anything).Return(&model.SettingsResponse{
		Enabled:          true,
		Title:            model.DefaultTitle,
		APIKeyConfigured: true,
		APIKeyHint:       "****abcd",
		Available:        true,
	}, nil)

	w := httptest.NewRecorder()
	setupAdminRouter(settings).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/settings", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"api_key_hint":"****abcd"`)
	assert.NotContains(t, w.Body.String(), "EURDENC_")
}

func TestListAccounts_GatewayFailure(t *testing.T) {
	settings := new(mockSettings)
	settings.On("ListAccounts", mock.Anything).Return(nil, model.NewGatewayFailureError("list accounts", &gateway.Error{StatusCode: 403}))

	w := httptest.NewRecorder()
	setupAdminRouter(settings).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/accounts", nil))

	assert.Equal(t, http.StatusBadGateway, w.Code)
}
