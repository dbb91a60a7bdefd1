package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"eurd-payments/internal/shared/middleware"
	"eurd-payments/pkg/container"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	// Global middlewares
	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger("/metrics", "/api/v1/health"),
	)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Quantoz gọi về path này (cấu hình qua EURD_WEBHOOK_PATH)
	router.POST(c.Config.Payment.WebhookPath, c.WebhookHandler.HandleQuantozWebhook)
	router.GET(c.Config.Payment.WebhookPath, c.WebhookHandler.HandleQuantozWebhook)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheckHandler(c))

		setupOrderPaymentRoutes(v1, c)
		setupPollRoutes(v1, c)
		setupAdminPaymentRoutes(v1, c)
	}

	return router
}

// ========================================
// ORDER PAYMENT ROUTES
// ========================================
func setupOrderPaymentRoutes(v1 *gin.RouterGroup, c *container.Container) {
	orders := v1.Group("/orders/:order_id/eurd")
	{
		orders.POST("/pay", c.PaymentHandler.StartPayment)
		orders.POST("/confirm", c.PaymentHandler.ConfirmPayment)
		orders.GET("/confirm", c.PaymentHandler.ConfirmPayment)
	}
}

// ========================================
// POLL ROUTES
// ========================================
// Pay page gọi endpoint này với poll token, không cần JWT của user
func setupPollRoutes(v1 *gin.RouterGroup, c *container.Container) {
	payments := v1.Group("/payments/eurd")
	{
		payments.POST("/check-order-status", c.PaymentHandler.CheckOrderStatus)
	}
}

// ========================================
// ADMIN PAYMENT ROUTES
// ========================================
func setupAdminPaymentRoutes(v1 *gin.RouterGroup, c *container.Container) {
	admin := v1.Group("/admin/payments/eurd")
	admin.Use(middleware.AuthMiddleware(c.JWTManager), middleware.AdminMiddleware())
	{
		admin.GET("/settings", c.AdminHandler.GetSettings)
		admin.PUT("/settings", c.AdminHandler.UpdateSettings)
		admin.GET("/accounts", c.AdminHandler.ListAccounts)
	}

	adminOrders := v1.Group("/admin/orders")
	adminOrders.Use(middleware.AuthMiddleware(c.JWTManager), middleware.AdminMiddleware())
	{
		adminOrders.GET("/:order_id/payment", c.OrderHandler.GetPaymentDetail)
	}
}

// ========================================
// HEALTH CHECK HANDLER
// ========================================
func healthCheckHandler(appCtx *container.Container) gin.HandlerFunc {
	return func(c *gin.Context) {
		health := gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
			"version":   appCtx.Config.App.Version,
			"services":  gin.H{},
		}

		// Check database
		dbStatus := "ok"
		if appCtx.DB == nil || appCtx.DB.Pool == nil {
			dbStatus = "disconnected"
			health["status"] = "degraded"
		} else {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()

			if err := appCtx.DB.HealthCheck(ctx); err != nil {
				dbStatus = fmt.Sprintf("error: %v", err)
				health["status"] = "degraded"
			}
		}

		// Check redis (cache + locks + queue)
		redisStatus := "ok"
		if appCtx.Cache == nil {
			redisStatus = "disconnected"
		} else {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()

			if err := appCtx.Cache.Ping(ctx); err != nil {
				redisStatus = fmt.Sprintf("error: %v", err)
			}
		}

		// Payment method
		available, reason := appCtx.SettingsService.IsAvailable(c.Request.Context())
		method := gin.H{"available": available}
		if !available {
			method["reason"] = reason
		}

		dbInfo := gin.H{"status": dbStatus}
		if dbStatus == "ok" {
			if stats, err := appCtx.DB.Stats(); err == nil {
				dbInfo["pool"] = stats
			}
		}

		health["services"] = gin.H{
			"database": dbInfo,
			"redis":    redisStatus,
			"eurd":     method,
		}

		statusCode := http.StatusOK
		if dbStatus != "ok" {
			statusCode = http.StatusServiceUnavailable
		}

		c.JSON(statusCode, health)
	}
}
