package middleware

import (
	"net/http"

	"premium-api/internal/config"
	"premium-api/internal/response"

	"github.com/gin-gonic/gin"
)

// AdminAuthMiddleware guards the operator endpoints with the admin API key
func AdminAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get API key from header, fall back to query parameter
		apiKey := c.GetHeader("X-API-Key")
		if apiKey == "" {
			apiKey = c.Query("api_key")
		}

		if config.AppConfig.AdminAPIKey == "" {
			c.JSON(http.StatusServiceUnavailable, response.Error(http.StatusServiceUnavailable, "Admin API is not configured"))
			c.Abort()
			return
		}

		if apiKey == "" || apiKey != config.AppConfig.AdminAPIKey {
			c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid or missing api_key"))
			c.Abort()
			return
		}

		c.Next()
	}
}
