package models

// Reasons a webhook event was accepted but dropped without a ledger write.
const (
	ReasonUnresolvedSubscriber = "unresolved_subscriber"
	ReasonUnknownProduct       = "unknown_product"
	ReasonUnrecognizedEvent    = "unrecognized_event"
)

// WebhookEventLog records webhook events that were acknowledged to the
// provider but could not be applied to the ledger. Operators review these
// rows; a dropped event is otherwise invisible to the affected user.
type WebhookEventLog struct {
	BaseModel

	Provider      string `json:"provider" gorm:"not null;size:20;index"`
	EventKind     string `json:"event_kind" gorm:"size:40"`
	ExternalID    string `json:"external_id" gorm:"size:100;index"`
	CustomerEmail string `json:"customer_email" gorm:"size:255"`
	Reason        string `json:"reason" gorm:"not null;size:40;index"`
	Payload       string `json:"payload" gorm:"type:text"` // truncated raw body for diagnosis
	Resolved      bool   `json:"resolved" gorm:"default:false;index"`
}
