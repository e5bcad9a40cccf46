package api

import (
	"errors"
	"net/http"
	"time"

	"premium-api/internal/config"
	"premium-api/internal/payments"
	"premium-api/pkg/logging"

	"github.com/gin-gonic/gin"
)

// PaystackWebhookHandler handles Paystack webhook deliveries
// POST /api/webhooks/paystack
func PaystackWebhookHandler(c *gin.Context) {
	startTime := time.Now()

	// Read raw body
	body, err := c.GetRawData()
	if err != nil {
		logging.Errorf("Failed to read request body: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Failed to read request body",
		})
		return
	}

	if len(body) == 0 {
		logging.Errorf("Empty request body")
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Empty request body",
		})
		return
	}

	// Verify signature when a secret is configured; signature checks are
	// skipped otherwise, which is a reduced-security mode worth flagging
	// on every delivery.
	secret := config.AppConfig.PaystackSecretKey
	if secret != "" {
		signature := c.GetHeader("x-paystack-signature")
		if !payments.VerifyPaystackSignature(body, signature, secret) {
			logging.Errorf("Paystack signature verification failed - signature present: %v", signature != "")
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Signature verification failed",
			})
			return
		}
	} else {
		logging.Warnf("PAYSTACK_SECRET_KEY not configured, accepting webhook without signature verification")
	}

	event, err := payments.ParsePaystackEvent(body)
	if err != nil {
		if errors.Is(err, payments.ErrMalformedPayload) {
			logging.Errorf("Malformed Paystack payload: %v, body length: %d", err, len(body))
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": "Invalid notification format",
			})
			return
		}
		logging.Errorf("Failed to parse Paystack event: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Invalid notification format",
		})
		return
	}

	processProviderEvent(c, event, body)

	logging.Infof("Paystack webhook processed - kind: %s, external_id: %s, time: %v",
		event.Kind, event.ExternalID, time.Since(startTime))
}
