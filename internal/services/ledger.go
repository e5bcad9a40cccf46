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

// Ledger write errors that map to no-op acknowledgements at the handler.
var (
	ErrDuplicateGrant = errors.New("services: grant already recorded")
	ErrGrantNotFound  = errors.New("services: no grant for correlation id")
)

// LedgerService appends to and transitions the subscription_grant ledger.
// Every write recomputes the subscriber's premium projection inside the
// same transaction, so the cache can never commit without the ledger row
// it was derived from.
type LedgerService struct {
	db *gorm.DB
}

// NewLedgerService creates a new ledger service
func NewLedgerService() *LedgerService {
	return &LedgerService{db: database.GetDB()}
}

// RecordPayment appends a grant for a completed payment, idempotently.
// A redelivered event is detected by the (provider, external_id) key,
// first with a locked existence check and, as a backstop under
// concurrent deliveries, by the unique index; both report
// ErrDuplicateGrant so the handler can acknowledge without side effects.
func (s *LedgerService) RecordPayment(subscriber *models.Subscriber, ev *payments.Event, plan payments.Plan) (*models.SubscriptionGrant, error) {
	grant := &models.SubscriptionGrant{
		SubscriberID: subscriber.ID,
		Provider:     ev.Provider,
		ExternalID:   ev.ExternalID,
		Status:       models.GrantActive,
		Plan:         plan.Code,
		AmountCents:  ev.AmountCents,
		Currency:     ev.Currency,
	}
	grant.PeriodStart = ev.OccurredAt
	grant.PeriodEnd = plan.PeriodEnd(grant.PeriodStart)

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var existing models.SubscriptionGrant
		lookErr := database.LockForUpdate(tx).
			Where("provider = ? AND external_id = ?", ev.Provider, ev.ExternalID).
			First(&existing).Error
		if lookErr == nil {
			return ErrDuplicateGrant
		}
		if !errors.Is(lookErr, gorm.ErrRecordNotFound) {
			return fmt.Errorf("grant lookup: %w", lookErr)
		}

		if createErr := tx.Create(grant).Error; createErr != nil {
			if errors.Is(createErr, gorm.ErrDuplicatedKey) {
				return ErrDuplicateGrant
			}
			return fmt.Errorf("insert grant: %w", createErr)
		}

		updated, projErr := recomputeProjectionTx(tx, subscriber.ID)
		if projErr != nil {
			return projErr
		}
		*subscriber = *updated
		return nil
	})
	if err != nil {
		return nil, err
	}

	logging.Infof("Grant recorded - user_id: %s, provider: %s, external_id: %s, plan: %s, period_end: %s",
		subscriber.UserID, ev.Provider, ev.ExternalID, plan.Code, grant.PeriodEnd.Format("2006-01-02T15:04:05Z07:00"))
	return grant, nil
}

// CancelByExternalID cancels the ledger line the provider correlation id
// points at, plus any other active grants of the same subscriber, and
// reprojects. Canceling an already-canceled grant is a no-op, not an
// error. Returns ErrGrantNotFound when the correlation id is unknown so
// the caller can fall back to subscriber resolution.
func (s *LedgerService) CancelByExternalID(provider, externalID string) (*models.Subscriber, int64, error) {
	var subscriber *models.Subscriber
	var canceled int64

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var grant models.SubscriptionGrant
		lookErr := database.LockForUpdate(tx).
			Where("provider = ? AND external_id = ?", provider, externalID).
			First(&grant).Error
		if errors.Is(lookErr, gorm.ErrRecordNotFound) {
			return ErrGrantNotFound
		}
		if lookErr != nil {
			return fmt.Errorf("grant lookup: %w", lookErr)
		}

		var txErr error
		canceled, subscriber, txErr = cancelActiveGrantsTx(tx, grant.SubscriberID)
		return txErr
	})
	if err != nil {
		return nil, 0, err
	}
	return subscriber, canceled, nil
}

// CancelForSubscriber cancels all of a subscriber's active grants and
// reprojects. Used when a cancellation event carries no correlation id
// the ledger knows, but the subscriber could still be resolved.
func (s *LedgerService) CancelForSubscriber(subscriberID uint) (*models.Subscriber, int64, error) {
	var subscriber *models.Subscriber
	var canceled int64

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var txErr error
		canceled, subscriber, txErr = cancelActiveGrantsTx(tx, subscriberID)
		return txErr
	})
	if err != nil {
		return nil, 0, err
	}
	return subscriber, canceled, nil
}

// cancelActiveGrantsTx flips the subscriber's active grants to canceled
// and recomputes the projection, all inside the caller's transaction.
func cancelActiveGrantsTx(tx *gorm.DB, subscriberID uint) (int64, *models.Subscriber, error) {
	result := tx.Model(&models.SubscriptionGrant{}).
		Where("subscriber_id = ? AND status = ?", subscriberID, models.GrantActive).
		Update("status", models.GrantCanceled)
	if result.Error != nil {
		return 0, nil, fmt.Errorf("cancel grants: %w", result.Error)
	}

	subscriber, err := recomputeProjectionTx(tx, subscriberID)
	if err != nil {
		return 0, nil, err
	}

	if result.RowsAffected > 0 {
		logging.Infof("Grants canceled - user_id: %s, count: %d", subscriber.UserID, result.RowsAffected)
	}
	return result.RowsAffected, subscriber, nil
}
