package payments

import (
	"encoding/json"
	"fmt"
	"time"

	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"

	"premium-api/internal/models"
)

// ConstructStripeEvent verifies the Stripe-Signature header against the
// webhook secret and decodes the event. Verification is mandatory for
// this provider; there is no reduced-security fallback.
func ConstructStripeEvent(body []byte, signatureHeader, secret string) (stripe.Event, error) {
	return webhook.ConstructEvent(body, signatureHeader, secret)
}

// ClassifyStripeEvent maps a verified Stripe event into the canonical
// Event variant. Stripe event types are explicit, so there is no status
// inference path for this provider.
func ClassifyStripeEvent(event stripe.Event) (*Event, error) {
	ev := &Event{
		Provider:   models.ProviderStripe,
		ExternalID: event.ID,
		OccurredAt: time.Unix(event.Created, 0),
	}

	switch event.Type {
	case "checkout.session.completed":
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return nil, fmt.Errorf("%w: checkout session: %v", ErrMalformedPayload, err)
		}
		ev.Kind = PaymentCompleted
		ev.ExternalID = session.ID
		// Correlate renewals and cancellations through the subscription
		// id when the session created one.
		if session.Subscription != nil && session.Subscription.ID != "" {
			ev.ExternalID = session.Subscription.ID
		}
		ev.UserID = session.ClientReferenceID
		ev.CustomerEmail = session.CustomerEmail
		if session.CustomerDetails != nil && session.CustomerDetails.Email != "" {
			ev.CustomerEmail = session.CustomerDetails.Email
		}
		ev.AmountCents = session.AmountTotal
		ev.Currency = string(session.Currency)
		ev.ProductID = session.Metadata["product_id"]
		if ev.UserID == "" {
			ev.UserID = session.Metadata["user_id"]
		}

	case "invoice.paid":
		var invoice stripe.Invoice
		if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
			return nil, fmt.Errorf("%w: invoice: %v", ErrMalformedPayload, err)
		}
		ev.Kind = PaymentCompleted
		ev.ExternalID = invoice.ID
		ev.CustomerEmail = invoice.CustomerEmail
		ev.AmountCents = invoice.AmountPaid
		ev.Currency = string(invoice.Currency)
		ev.ProductID = invoice.Metadata["product_id"]
		ev.UserID = invoice.Metadata["user_id"]

	case "invoice.payment_failed":
		var invoice stripe.Invoice
		if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
			return nil, fmt.Errorf("%w: invoice: %v", ErrMalformedPayload, err)
		}
		ev.Kind = PaymentFailed
		ev.ExternalID = invoice.ID
		ev.CustomerEmail = invoice.CustomerEmail
		ev.Currency = string(invoice.Currency)
		ev.UserID = invoice.Metadata["user_id"]

	case "customer.subscription.deleted":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return nil, fmt.Errorf("%w: subscription: %v", ErrMalformedPayload, err)
		}
		ev.Kind = SubscriptionCanceled
		ev.ExternalID = sub.ID
		ev.UserID = sub.Metadata["user_id"]

	default:
		ev.Kind = Unrecognized
	}

	return ev, nil
}
