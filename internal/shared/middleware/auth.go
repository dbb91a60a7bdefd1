package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"eurd-payments/pkg/jwt"
	"eurd-payments/pkg/logger"
)

// TokenValidator is the part of jwt.Manager the middleware needs
type TokenValidator interface {
	ValidateAccessToken(tokenString string) (*jwt.Claims, error)
}

// AuthMiddleware - Middleware xác thực JWT bearer token cho admin API
func AuthMiddleware(tokens TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Lấy token từ Authorization header
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "missing authorization header")
			return
		}

		// 2. Extract token từ "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			abortUnauthorized(c, "invalid authorization header format")
			return
		}

		// 3. Verify và parse JWT
		claims, err := tokens.ValidateAccessToken(parts[1])
		if err != nil {
			logger.Debug("Rejected access token", map[string]interface{}{
				"request_id": c.GetString("request_id"),
				"error":      err.Error(),
			})
			abortUnauthorized(c, "invalid token")
			return
		}

		// 4. Set user vào context cho AdminMiddleware
		c.Set("userID", claims.UserID)
		c.Set("role", claims.Role)

		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error":   message,
	})
	c.Abort()
}
