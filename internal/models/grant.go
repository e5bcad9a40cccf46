package models

import (
	"time"
)

// Grant statuses. A grant is append-only: amount and period never change
// after insert, and the only permitted transition is active -> canceled.
const (
	GrantActive   = "active"
	GrantCanceled = "canceled"
)

// Payment providers delivering webhook events.
const (
	ProviderPaystack = "paystack"
	ProviderStripe   = "stripe"
)

// SubscriptionGrant is one row of the paid-period ledger. The composite
// unique index on (provider, external_id) is what makes duplicate webhook
// deliveries safe to replay.
type SubscriptionGrant struct {
	BaseModel

	SubscriberID uint `json:"subscriber_id" gorm:"not null;index"`

	Provider   string `json:"provider" gorm:"not null;size:20;uniqueIndex:idx_provider_external"`
	ExternalID string `json:"external_id" gorm:"not null;size:100;uniqueIndex:idx_provider_external"` // provider transaction/subscription id

	Status string `json:"status" gorm:"not null;size:20;index"`
	Plan   string `json:"plan" gorm:"not null;size:20"` // weekly, biweekly or monthly

	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end" gorm:"index"`

	AmountCents int64  `json:"amount_cents"`
	Currency    string `json:"currency" gorm:"size:8"`
}

// Covers reports whether the grant confers premium access at t.
func (g *SubscriptionGrant) Covers(t time.Time) bool {
	return g.Status == GrantActive && g.PeriodEnd.After(t)
}
