package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"eurd-payments/internal/shared/response"
)

const RoleAdmin = "admin"

// AdminMiddleware chỉ cho phép role admin, chạy sau AuthMiddleware
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString("role") != RoleAdmin {
			response.Error(c, http.StatusForbidden, "AUTH_FORBIDDEN", "Access denied: admin role required")
			c.Abort()
			return
		}

		c.Next()
	}
}
