package database

import (
	"time"

	"premium-api/internal/models"
)

// GetGrantByProviderExternalID gets a grant by its idempotency key
func GetGrantByProviderExternalID(provider, externalID string) (*models.SubscriptionGrant, error) {
	var grant models.SubscriptionGrant
	err := DB.Where("provider = ? AND external_id = ?", provider, externalID).First(&grant).Error
	if err != nil {
		return nil, err
	}
	return &grant, nil
}

// GetSubscriberGrants gets the full ledger for a subscriber, newest first
func GetSubscriberGrants(subscriberID uint) ([]models.SubscriptionGrant, error) {
	var grants []models.SubscriptionGrant
	err := DB.Where("subscriber_id = ?", subscriberID).Order("created_at DESC").Find(&grants).Error
	return grants, err
}

// GetCurrentGrant gets the subscriber's current grant: active with an
// unexpired period end. The latest period end wins when several overlap.
func GetCurrentGrant(subscriberID uint) (*models.SubscriptionGrant, error) {
	var grant models.SubscriptionGrant
	err := DB.Where("subscriber_id = ? AND status = ? AND period_end > ?",
		subscriberID, models.GrantActive, time.Now()).
		Order("period_end DESC").
		First(&grant).Error
	if err != nil {
		return nil, err
	}
	return &grant, nil
}

// CountActiveGrants counts active, unexpired grants for a subscriber
func CountActiveGrants(subscriberID uint) (int64, error) {
	var count int64
	err := DB.Model(&models.SubscriptionGrant{}).
		Where("subscriber_id = ? AND status = ? AND period_end > ?",
			subscriberID, models.GrantActive, time.Now()).
		Count(&count).Error
	return count, err
}
