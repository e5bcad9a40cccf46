package payments

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"premium-api/internal/models"
)

// VerifyPaystackSignature checks the x-paystack-signature header:
// HMAC-SHA512 of the raw body keyed with the account secret key.
func VerifyPaystackSignature(body []byte, signature, secret string) bool {
	if signature == "" {
		return false
	}
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// paystackPayload mirrors the loosely-typed Paystack webhook body. Only
// the fields the classifier extracts are declared; metadata is kept raw
// because Paystack sends it as an object, a JSON-encoded string, or an
// empty string depending on how the charge was created.
type paystackPayload struct {
	Event string `json:"event"`
	Data  struct {
		ID        json.Number `json:"id"`
		Reference string      `json:"reference"`
		Status    string      `json:"status"`
		Amount    int64       `json:"amount"` // already in subunits (kobo/cents)
		Currency  string      `json:"currency"`
		PaidAt    string      `json:"paid_at"`
		Customer  struct {
			Email string `json:"email"`
		} `json:"customer"`
		Plan struct {
			PlanCode string `json:"plan_code"`
		} `json:"plan"`
		Metadata json.RawMessage `json:"metadata"`
	} `json:"data"`
}

// ParsePaystackEvent classifies a raw Paystack webhook body into the
// canonical Event variant. The explicit event field wins; bodies without
// one fall back to inference from data.status. An unknown event name is
// classified Unrecognized, not an error, so future event types are
// acknowledged instead of amplified by provider retries.
func ParsePaystackEvent(body []byte) (*Event, error) {
	var payload paystackPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	ev := &Event{
		Provider:      models.ProviderPaystack,
		ExternalID:    payload.Data.Reference,
		CustomerEmail: payload.Data.Customer.Email,
		AmountCents:   payload.Data.Amount,
		Currency:      payload.Data.Currency,
		ProductID:     payload.Data.Plan.PlanCode,
		OccurredAt:    time.Now(),
	}
	if ev.ExternalID == "" {
		ev.ExternalID = payload.Data.ID.String()
	}
	if ts, err := time.Parse(time.RFC3339, payload.Data.PaidAt); err == nil {
		ev.OccurredAt = ts
	}
	applyPaystackMetadata(ev, payload.Data.Metadata)

	switch payload.Event {
	case "charge.success", "invoice.payment_succeeded":
		ev.Kind = PaymentCompleted
	case "charge.failed", "invoice.payment_failed":
		ev.Kind = PaymentFailed
	case "subscription.disable", "subscription.not_renew":
		ev.Kind = SubscriptionCanceled
	case "":
		ev.Kind = kindFromStatus(payload.Data.Status)
	default:
		ev.Kind = Unrecognized
	}

	return ev, nil
}

// kindFromStatus infers the event kind from a bare status field for
// payloads that carry no event name.
func kindFromStatus(status string) Kind {
	switch status {
	case "success", "successful", "approved", "paid":
		return PaymentCompleted
	case "failed":
		return PaymentFailed
	case "canceled", "cancelled":
		return SubscriptionCanceled
	default:
		return Unrecognized
	}
}

// applyPaystackMetadata extracts the checkout-stamped user id and product
// id from whatever shape metadata arrived in. Malformed metadata is
// ignored so that email-based resolution still gets its chance.
func applyPaystackMetadata(ev *Event, raw json.RawMessage) {
	if len(raw) == 0 {
		return
	}

	var meta map[string]interface{}
	if err := json.Unmarshal(raw, &meta); err != nil {
		// Metadata may itself be a JSON-encoded string.
		var nested string
		if err := json.Unmarshal(raw, &nested); err != nil || nested == "" {
			return
		}
		if err := json.Unmarshal([]byte(nested), &meta); err != nil {
			return
		}
	}

	if v, ok := meta["user_id"]; ok {
		switch id := v.(type) {
		case string:
			ev.UserID = id
		case float64:
			ev.UserID = strconv.FormatInt(int64(id), 10)
		}
	}
	if ev.ProductID == "" {
		if v, ok := meta["product_id"].(string); ok {
			ev.ProductID = v
		}
	}
}
