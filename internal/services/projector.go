package services

import (
	"fmt"
	"time"

	"premium-api/internal/database"
	"premium-api/internal/models"
	"premium-api/pkg/logging"

	"gorm.io/gorm"
)

// ProjectionService keeps the denormalized premium fields on the
// subscriber row consistent with the grant ledger. The projection is a
// pure function of the ledger; every code path here recomputes it from
// the full ledger state rather than patching it incrementally, so a
// stale-sequence webhook can never leave it silently wrong.
type ProjectionService struct {
	db *gorm.DB
}

// NewProjectionService creates a new projection service
func NewProjectionService() *ProjectionService {
	return &ProjectionService{db: database.GetDB()}
}

// recomputeProjectionTx recomputes one subscriber's projection inside an
// existing transaction. The subscriber row is locked first so concurrent
// webhook deliveries for the same subscriber serialize their writes.
func recomputeProjectionTx(tx *gorm.DB, subscriberID uint) (*models.Subscriber, error) {
	var subscriber models.Subscriber
	if err := database.LockForUpdate(tx).First(&subscriber, subscriberID).Error; err != nil {
		return nil, fmt.Errorf("load subscriber %d: %w", subscriberID, err)
	}

	var current models.SubscriptionGrant
	err := tx.Where("subscriber_id = ? AND status = ? AND period_end > ?",
		subscriberID, models.GrantActive, time.Now()).
		Order("period_end DESC").
		First(&current).Error

	switch {
	case err == nil:
		subscriber.Tier = models.TierPremium
		subscriber.PremiumExpiresAt = current.PeriodEnd
		subscriber.PremiumGrantID = current.ID
	case err == gorm.ErrRecordNotFound:
		subscriber.Tier = models.TierFree
		subscriber.PremiumExpiresAt = time.Time{}
		subscriber.PremiumGrantID = 0
	default:
		return nil, fmt.Errorf("query current grant: %w", err)
	}

	if err := tx.Save(&subscriber).Error; err != nil {
		return nil, fmt.Errorf("save projection: %w", err)
	}
	return &subscriber, nil
}

// Recompute recomputes one subscriber's projection in its own
// transaction. Idempotent; safe to call from operators or on a schedule.
func (s *ProjectionService) Recompute(subscriberID uint) (*models.Subscriber, error) {
	var subscriber *models.Subscriber
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var txErr error
		subscriber, txErr = recomputeProjectionTx(tx, subscriberID)
		return txErr
	})
	return subscriber, err
}

// RecomputeByUserID recomputes the projection for a stable user id
func (s *ProjectionService) RecomputeByUserID(userID string) (*models.Subscriber, error) {
	subscriber, err := database.GetSubscriberByUserID(userID)
	if err != nil {
		return nil, err
	}
	return s.Recompute(subscriber.ID)
}

// RecomputeAll replays the ledger for every subscriber and repairs any
// drifted projection. Returns how many subscribers were checked and how
// many projections actually changed.
func (s *ProjectionService) RecomputeAll() (checked int64, repaired int64, err error) {
	var subscribers []models.Subscriber
	result := s.db.FindInBatches(&subscribers, 200, func(tx *gorm.DB, batch int) error {
		for i := range subscribers {
			before := subscribers[i]
			after, rerr := s.Recompute(before.ID)
			if rerr != nil {
				return rerr
			}
			checked++
			if after.Tier != before.Tier ||
				!after.PremiumExpiresAt.Equal(before.PremiumExpiresAt) ||
				after.PremiumGrantID != before.PremiumGrantID {
				repaired++
				logging.Warnf("Projection drift repaired - user_id: %s, tier: %s -> %s",
					after.UserID, before.Tier, after.Tier)
			}
		}
		return nil
	})
	if result.Error != nil {
		return checked, repaired, fmt.Errorf("projection sweep: %w", result.Error)
	}
	return checked, repaired, nil
}
