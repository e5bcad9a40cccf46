package payments

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	stripe "github.com/stripe/stripe-go/v82"

	"premium-api/internal/models"
)

func stripeTestEvent(eventType string, raw string) stripe.Event {
	return stripe.Event{
		ID:      "evt_test_1",
		Type:    stripe.EventType(eventType),
		Created: time.Now().Unix(),
		Data:    &stripe.EventData{Raw: json.RawMessage(raw)},
	}
}

func TestClassifyStripeCheckoutSessionCompleted(t *testing.T) {
	raw := `{"id":"cs_test_1","subscription":"sub_123","client_reference_id":"user-1",` +
		`"customer_details":{"email":"ada@example.com"},"amount_total":500,"currency":"usd",` +
		`"metadata":{"product_id":"premium_monthly"}}`

	ev, err := ClassifyStripeEvent(stripeTestEvent("checkout.session.completed", raw))
	if err != nil {
		t.Fatalf("ClassifyStripeEvent() error: %v", err)
	}

	if ev.Kind != PaymentCompleted {
		t.Errorf("Kind = %q, want %q", ev.Kind, PaymentCompleted)
	}
	if ev.Provider != models.ProviderStripe {
		t.Errorf("Provider = %q, want %q", ev.Provider, models.ProviderStripe)
	}
	// Renewals correlate through the subscription id, not the session id.
	if ev.ExternalID != "sub_123" {
		t.Errorf("ExternalID = %q, want %q", ev.ExternalID, "sub_123")
	}
	if ev.UserID != "user-1" {
		t.Errorf("UserID = %q, want %q", ev.UserID, "user-1")
	}
	if ev.CustomerEmail != "ada@example.com" {
		t.Errorf("CustomerEmail = %q, want %q", ev.CustomerEmail, "ada@example.com")
	}
	if ev.AmountCents != 500 {
		t.Errorf("AmountCents = %d, want 500", ev.AmountCents)
	}
	if ev.ProductID != "premium_monthly" {
		t.Errorf("ProductID = %q, want %q", ev.ProductID, "premium_monthly")
	}
}

func TestClassifyStripeCheckoutSessionOneTime(t *testing.T) {
	// One-time checkout: no subscription, session id is the correlation id
	// and the user id comes from metadata.
	raw := `{"id":"cs_test_2","customer_email":"ada@example.com","amount_total":700,"currency":"usd",` +
		`"metadata":{"product_id":"premium_weekly","user_id":"user-2"}}`

	ev, err := ClassifyStripeEvent(stripeTestEvent("checkout.session.completed", raw))
	if err != nil {
		t.Fatalf("ClassifyStripeEvent() error: %v", err)
	}

	if ev.ExternalID != "cs_test_2" {
		t.Errorf("ExternalID = %q, want %q", ev.ExternalID, "cs_test_2")
	}
	if ev.UserID != "user-2" {
		t.Errorf("UserID = %q, want %q", ev.UserID, "user-2")
	}
	if ev.CustomerEmail != "ada@example.com" {
		t.Errorf("CustomerEmail = %q, want %q", ev.CustomerEmail, "ada@example.com")
	}
}

func TestClassifyStripeInvoicePaid(t *testing.T) {
	raw := `{"id":"in_1","customer_email":"ada@example.com","amount_paid":500,"currency":"usd",` +
		`"metadata":{"product_id":"premium_monthly","user_id":"user-1"}}`

	ev, err := ClassifyStripeEvent(stripeTestEvent("invoice.paid", raw))
	if err != nil {
		t.Fatalf("ClassifyStripeEvent() error: %v", err)
	}

	if ev.Kind != PaymentCompleted {
		t.Errorf("Kind = %q, want %q", ev.Kind, PaymentCompleted)
	}
	if ev.ExternalID != "in_1" {
		t.Errorf("ExternalID = %q, want %q", ev.ExternalID, "in_1")
	}
	if ev.AmountCents != 500 {
		t.Errorf("AmountCents = %d, want 500", ev.AmountCents)
	}
	if ev.UserID != "user-1" || ev.ProductID != "premium_monthly" {
		t.Errorf("metadata not extracted: user_id=%q product_id=%q", ev.UserID, ev.ProductID)
	}
}

func TestClassifyStripeInvoicePaymentFailed(t *testing.T) {
	raw := `{"id":"in_2","customer_email":"ada@example.com","currency":"usd","metadata":{"user_id":"user-1"}}`

	ev, err := ClassifyStripeEvent(stripeTestEvent("invoice.payment_failed", raw))
	if err != nil {
		t.Fatalf("ClassifyStripeEvent() error: %v", err)
	}
	if ev.Kind != PaymentFailed {
		t.Errorf("Kind = %q, want %q", ev.Kind, PaymentFailed)
	}
	if ev.ExternalID != "in_2" {
		t.Errorf("ExternalID = %q, want %q", ev.ExternalID, "in_2")
	}
}

func TestClassifyStripeSubscriptionDeleted(t *testing.T) {
	raw := `{"id":"sub_123","metadata":{"user_id":"user-1"}}`

	ev, err := ClassifyStripeEvent(stripeTestEvent("customer.subscription.deleted", raw))
	if err != nil {
		t.Fatalf("ClassifyStripeEvent() error: %v", err)
	}
	if ev.Kind != SubscriptionCanceled {
		t.Errorf("Kind = %q, want %q", ev.Kind, SubscriptionCanceled)
	}
	if ev.ExternalID != "sub_123" {
		t.Errorf("ExternalID = %q, want %q", ev.ExternalID, "sub_123")
	}
	if ev.UserID != "user-1" {
		t.Errorf("UserID = %q, want %q", ev.UserID, "user-1")
	}
}

func TestClassifyStripeUnknownType(t *testing.T) {
	ev, err := ClassifyStripeEvent(stripeTestEvent("charge.refunded", `{"id":"ch_1"}`))
	if err != nil {
		t.Fatalf("ClassifyStripeEvent() error: %v", err)
	}
	if ev.Kind != Unrecognized {
		t.Errorf("Kind = %q, want %q", ev.Kind, Unrecognized)
	}
	// The event id is kept for logging even when unrecognized.
	if ev.ExternalID != "evt_test_1" {
		t.Errorf("ExternalID = %q, want %q", ev.ExternalID, "evt_test_1")
	}
}

func TestClassifyStripeMalformedObject(t *testing.T) {
	for _, eventType := range []string{"checkout.session.completed", "invoice.paid", "customer.subscription.deleted"} {
		_, err := ClassifyStripeEvent(stripeTestEvent(eventType, `{"id":`))
		if !errors.Is(err, ErrMalformedPayload) {
			t.Errorf("ClassifyStripeEvent(%s) error = %v, want ErrMalformedPayload", eventType, err)
		}
	}
}
