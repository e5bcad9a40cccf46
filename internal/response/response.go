package response

import (
	"github.com/gin-gonic/gin"
)

// Response represents a standard API response
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Error returns an error response
func Error(statusCode int, message string) Response {
	return Response{
		Success: false,
		Message: message,
	}
}

// Received acknowledges a webhook delivery. Providers only look at the
// status code, but the body makes manual redelivery testing readable.
func Received(c *gin.Context, statusCode int) {
	c.JSON(statusCode, gin.H{"received": true})
}
