package payments

import (
	"errors"
	"time"
)

// Kind is the canonical event category a provider payload classifies into.
type Kind string

const (
	PaymentCompleted     Kind = "payment_completed"
	PaymentFailed        Kind = "payment_failed"
	SubscriptionCanceled Kind = "subscription_canceled"
	Unrecognized         Kind = "unrecognized"
)

// ErrMalformedPayload is returned when a provider body is not parseable
// structured data. Handlers answer these with a client error so the
// provider does not endlessly redeliver an unparsable payload.
var ErrMalformedPayload = errors.New("payments: malformed payload")

// Event is the provider-agnostic form of a webhook delivery. Adapters map
// each provider's raw shape into this variant at the boundary; everything
// downstream of the classifier only sees Event.
type Event struct {
	Kind     Kind
	Provider string

	// ExternalID is the provider correlation id (transaction or
	// subscription id). It is the idempotency key for ledger writes.
	ExternalID string

	// Subscriber identity hints, in resolution order.
	UserID        string // internal user id carried in checkout metadata
	CustomerEmail string

	AmountCents int64
	Currency    string
	ProductID   string

	OccurredAt time.Time
}
