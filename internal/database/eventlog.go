package database

import (
	"premium-api/internal/models"
)

// RecordEventLog stores a dropped webhook event for operator review
func RecordEventLog(entry *models.WebhookEventLog) error {
	return DB.Create(entry).Error
}

// GetUnresolvedEvents gets dropped events pending operator attention
func GetUnresolvedEvents(limit int) ([]models.WebhookEventLog, error) {
	var entries []models.WebhookEventLog
	err := DB.Where("resolved = ?", false).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}

// MarkEventResolved marks a dropped event as handled by an operator
func MarkEventResolved(id uint) error {
	return DB.Model(&models.WebhookEventLog{}).
		Where("id = ?", id).
		Update("resolved", true).Error
}
