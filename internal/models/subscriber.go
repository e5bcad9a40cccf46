package models

import (
	"time"
)

// Premium tiers stored on the subscriber projection.
const (
	TierFree    = "free"
	TierPremium = "premium"
)

// Subscriber is an account-directory entry. The premium fields are a
// denormalized projection of the subscription_grant ledger: they are
// recomputed from the ledger on every write and must never be treated
// as a source of truth on their own.
type Subscriber struct {
	BaseModel

	UserID      string `json:"user_id" gorm:"not null;size:64;uniqueIndex"` // stable identifier stamped into checkout metadata
	Email       string `json:"email" gorm:"not null;size:255;uniqueIndex"`
	DisplayName string `json:"display_name" gorm:"size:100"`

	// Premium projection (cache, derived from the grant ledger)
	Tier             string    `json:"tier" gorm:"not null;size:20;default:'free';index"`
	PremiumExpiresAt time.Time `json:"premium_expires_at"`
	PremiumGrantID   uint      `json:"premium_grant_id"` // grant that produced the current projection, 0 when free
}

// IsPremium reports whether the projected tier is premium and unexpired at t.
func (s *Subscriber) IsPremium(t time.Time) bool {
	return s.Tier == TierPremium && s.PremiumExpiresAt.After(t)
}
