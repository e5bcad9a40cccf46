package services

import (
	"errors"
	"fmt"

	"premium-api/internal/database"
	"premium-api/internal/models"
	"premium-api/internal/payments"
	"premium-api/pkg/logging"

	"gorm.io/gorm"
)

// ErrSubscriberUnresolved means neither the metadata user id nor the
// customer email matched an account. Terminal from the receiver's view:
// the event is acknowledged, logged and dropped.
var ErrSubscriberUnresolved = errors.New("services: subscriber unresolved")

// ResolveSubscriber maps a classified event to an account-directory
// entry. Primary path is the internal user id stamped into provider
// metadata at checkout-creation time; fallback is exact-match email.
// The fallback always runs when the primary path misses, so malformed
// or missing metadata never strands an otherwise matchable event.
func ResolveSubscriber(ev *payments.Event) (*models.Subscriber, error) {
	if ev.UserID != "" {
		subscriber, err := database.GetSubscriberByUserID(ev.UserID)
		if err == nil {
			return subscriber, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("resolve by user id: %w", err)
		}
		logging.Warnf("Metadata user_id %q matched no subscriber, falling back to email - provider: %s, external_id: %s",
			ev.UserID, ev.Provider, ev.ExternalID)
	}

	if ev.CustomerEmail != "" {
		subscriber, err := database.GetSubscriberByEmail(ev.CustomerEmail)
		if err == nil {
			return subscriber, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("resolve by email: %w", err)
		}
	}

	return nil, ErrSubscriberUnresolved
}
