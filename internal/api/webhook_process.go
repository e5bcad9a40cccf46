package api

import (
	"errors"
	"net/http"

	"premium-api/internal/config"
	"premium-api/internal/database"
	"premium-api/internal/models"
	"premium-api/internal/payments"
	"premium-api/internal/response"
	"premium-api/internal/services"
	"premium-api/pkg/logging"

	"github.com/gin-gonic/gin"
)

// Shared fast-path duplicate cache for both webhook endpoints
var eventDedupe = services.NewEventDedupe()

// processProviderEvent applies a classified event to the ledger and
// answers the provider. Response policy: 200 for everything the
// provider should not redeliver (success, duplicates, terminal drops),
// 500 only for transient failures where redelivery can succeed.
func processProviderEvent(c *gin.Context, ev *payments.Event, rawBody []byte) {
	switch ev.Kind {
	case payments.PaymentCompleted:
		handlePaymentCompleted(c, ev, rawBody)
	case payments.SubscriptionCanceled:
		handleSubscriptionCanceled(c, ev, rawBody)
	case payments.PaymentFailed:
		// No ledger effect: a failed payment grants nothing and revokes
		// nothing. Existing grants run out on their own.
		logging.Infof("Payment failed event - provider: %s, external_id: %s, email: %s",
			ev.Provider, ev.ExternalID, ev.CustomerEmail)
		response.Received(c, http.StatusOK)
	default: // payments.Unrecognized
		logging.Infof("Unrecognized %s event dropped - external_id: %s", ev.Provider, ev.ExternalID)
		// Best-effort trace, no alert: unrecognized event types are routine
		// and a lost row gates nothing.
		entry := &models.WebhookEventLog{
			Provider:      ev.Provider,
			EventKind:     string(ev.Kind),
			ExternalID:    ev.ExternalID,
			CustomerEmail: ev.CustomerEmail,
			Reason:        models.ReasonUnrecognizedEvent,
			Payload:       truncatePayload(rawBody, 2000),
		}
		if err := database.RecordEventLog(entry); err != nil {
			logging.Errorf("Failed to record unrecognized event: %v", err)
		}
		response.Received(c, http.StatusOK)
	}
}

// handlePaymentCompleted resolves the subscriber, appends the grant and
// reprojects the premium status, idempotently under redelivery.
func handlePaymentCompleted(c *gin.Context, ev *payments.Event, rawBody []byte) {
	if ev.ExternalID == "" {
		logging.Errorf("Completed payment without a transaction reference - provider: %s", ev.Provider)
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Missing transaction reference",
		})
		return
	}

	if eventDedupe.IsDuplicate(ev.Provider, ev.ExternalID) {
		logging.Infof("Duplicate delivery short-circuited - provider: %s, external_id: %s", ev.Provider, ev.ExternalID)
		response.Received(c, http.StatusOK)
		return
	}

	plan, err := payments.PlanForProduct(ev.ProductID)
	if err != nil {
		logging.Errorf("Unknown product id %q - provider: %s, external_id: %s", ev.ProductID, ev.Provider, ev.ExternalID)
		dropEvent(c, ev, rawBody, models.ReasonUnknownProduct)
		return
	}

	subscriber, err := services.ResolveSubscriber(ev)
	if err != nil {
		if errors.Is(err, services.ErrSubscriberUnresolved) {
			logging.Errorf("Subscriber unresolved - provider: %s, external_id: %s, user_id: %q, email: %q",
				ev.Provider, ev.ExternalID, ev.UserID, ev.CustomerEmail)
			dropEvent(c, ev, rawBody, models.ReasonUnresolvedSubscriber)
			return
		}
		logging.Errorf("Subscriber resolution failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Failed to process notification",
		})
		return
	}

	ledger := services.NewLedgerService()
	grant, err := ledger.RecordPayment(subscriber, ev, plan)
	if err != nil {
		if errors.Is(err, services.ErrDuplicateGrant) {
			logging.Infof("Duplicate grant skipped - provider: %s, external_id: %s", ev.Provider, ev.ExternalID)
			response.Received(c, http.StatusOK)
			return
		}
		logging.Errorf("Failed to record grant: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Failed to process notification",
		})
		return
	}

	eventDedupe.MarkProcessed(ev.Provider, ev.ExternalID)
	notifyPremiumUpdated(subscriber, grant)

	response.Received(c, http.StatusOK)
}

// handleSubscriptionCanceled cancels the referenced grant, falling back
// to subscriber resolution when the correlation id is unknown.
func handleSubscriptionCanceled(c *gin.Context, ev *payments.Event, rawBody []byte) {
	ledger := services.NewLedgerService()

	subscriber, canceled, err := ledger.CancelByExternalID(ev.Provider, ev.ExternalID)
	if errors.Is(err, services.ErrGrantNotFound) {
		resolved, rerr := services.ResolveSubscriber(ev)
		if rerr != nil {
			if errors.Is(rerr, services.ErrSubscriberUnresolved) {
				logging.Errorf("Cancellation for unknown grant and unresolved subscriber - provider: %s, external_id: %s",
					ev.Provider, ev.ExternalID)
				dropEvent(c, ev, rawBody, models.ReasonUnresolvedSubscriber)
				return
			}
			logging.Errorf("Subscriber resolution failed: %v", rerr)
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to process notification",
			})
			return
		}
		subscriber, canceled, err = ledger.CancelForSubscriber(resolved.ID)
	}
	if err != nil {
		logging.Errorf("Failed to cancel grants: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Failed to process notification",
		})
		return
	}

	if canceled == 0 {
		// Already canceled or never active; idempotent no-op.
		logging.Infof("Cancellation no-op - provider: %s, external_id: %s", ev.Provider, ev.ExternalID)
	} else {
		notifyPremiumUpdated(subscriber, nil)
	}

	response.Received(c, http.StatusOK)
}

// dropEvent records a terminal, operator-visible drop and acknowledges
// the delivery. If even the drop record cannot be written the provider
// gets a 500, so redelivery preserves the only durable trace.
func dropEvent(c *gin.Context, ev *payments.Event, rawBody []byte, reason string) {
	entry := &models.WebhookEventLog{
		Provider:      ev.Provider,
		EventKind:     string(ev.Kind),
		ExternalID:    ev.ExternalID,
		CustomerEmail: ev.CustomerEmail,
		Reason:        reason,
		Payload:       truncatePayload(rawBody, 2000),
	}

	if err := database.RecordEventLog(entry); err != nil {
		logging.Errorf("Failed to record dropped event: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Failed to process notification",
		})
		return
	}

	go services.NewAlertService(eventDedupe).NotifyDroppedEvent(entry)

	response.Received(c, http.StatusOK)
}

// notifyPremiumUpdated pushes the projection change to the app backend
// without blocking the webhook response
func notifyPremiumUpdated(subscriber *models.Subscriber, grant *models.SubscriptionGrant) {
	callbackURL := config.AppConfig.CallbackURL
	if callbackURL == "" {
		return
	}
	secret := config.AppConfig.CallbackSecret
	sub := *subscriber
	go func() {
		notifier := services.NewWebhookNotifier()
		notifier.NotifyPremiumUpdated(callbackURL, secret, &sub, grant)
	}()
}

// truncatePayload bounds the stored raw body for the event log
func truncatePayload(body []byte, max int) string {
	if len(body) <= max {
		return string(body)
	}
	return string(body[:max])
}
