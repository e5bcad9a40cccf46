package database

import (
	"premium-api/internal/models"
)

// CreateSubscriber creates an account-directory entry
func CreateSubscriber(subscriber *models.Subscriber) error {
	return DB.Create(subscriber).Error
}

// GetSubscriberByUserID gets a subscriber by the stable user identifier
func GetSubscriberByUserID(userID string) (*models.Subscriber, error) {
	var subscriber models.Subscriber
	err := DB.Where("user_id = ?", userID).First(&subscriber).Error
	if err != nil {
		return nil, err
	}
	return &subscriber, nil
}

// GetSubscriberByEmail gets a subscriber by exact email match
func GetSubscriberByEmail(email string) (*models.Subscriber, error) {
	var subscriber models.Subscriber
	err := DB.Where("email = ?", email).First(&subscriber).Error
	if err != nil {
		return nil, err
	}
	return &subscriber, nil
}

// GetSubscriberByID gets a subscriber by primary key
func GetSubscriberByID(id uint) (*models.Subscriber, error) {
	var subscriber models.Subscriber
	err := DB.First(&subscriber, id).Error
	if err != nil {
		return nil, err
	}
	return &subscriber, nil
}
