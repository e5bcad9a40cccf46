package api

import (
	"net/http"
	"time"

	"premium-api/internal/config"
	"premium-api/internal/payments"
	"premium-api/pkg/logging"

	"github.com/gin-gonic/gin"
)

// StripeWebhookHandler handles Stripe webhook deliveries
// POST /api/webhooks/stripe
//
// Signature verification is mandatory for this endpoint: requests that
// fail it are rejected before any processing.
func StripeWebhookHandler(c *gin.Context) {
	startTime := time.Now()

	secret := config.AppConfig.StripeWebhookSecret
	if secret == "" {
		logging.Errorf("STRIPE_WEBHOOK_SECRET not configured, rejecting delivery")
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"message": "Webhook secret not configured",
		})
		return
	}

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

	stripeEvent, err := payments.ConstructStripeEvent(body, c.GetHeader("Stripe-Signature"), secret)
	if err != nil {
		logging.Errorf("Stripe signature verification failed: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Signature verification failed",
		})
		return
	}

	event, err := payments.ClassifyStripeEvent(stripeEvent)
	if err != nil {
		logging.Errorf("Failed to classify Stripe event %s: %v", stripeEvent.ID, err)
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Invalid notification format",
		})
		return
	}

	processProviderEvent(c, event, body)

	logging.Infof("Stripe webhook processed - type: %s, kind: %s, external_id: %s, time: %v",
		stripeEvent.Type, event.Kind, event.ExternalID, time.Since(startTime))
}
