package payments

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"testing"
	"time"

	"premium-api/internal/models"
)

func paystackSign(body []byte, secret string) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifyPaystackSignature(t *testing.T) {
	body := []byte(`{"event":"charge.success"}`)
	secret := "sk_test_secret"

	if !VerifyPaystackSignature(body, paystackSign(body, secret), secret) {
		t.Error("valid signature rejected")
	}
	if VerifyPaystackSignature(body, paystackSign(body, "wrong_secret"), secret) {
		t.Error("signature from wrong secret accepted")
	}
	if VerifyPaystackSignature(body, "", secret) {
		t.Error("empty signature accepted")
	}
	if VerifyPaystackSignature(body, "deadbeef", secret) {
		t.Error("garbage signature accepted")
	}
}

func TestParsePaystackEvent(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		wantKind       Kind
		wantExternalID string
		wantUserID     string
		wantEmail      string
		wantProduct    string
		wantAmount     int64
	}{
		{
			name: "charge success with metadata object",
			body: `{"event":"charge.success","data":{"reference":"ref_123","status":"success","amount":50000,"currency":"NGN",` +
				`"customer":{"email":"ada@example.com"},"plan":{"plan_code":"PLN_premium_monthly"},` +
				`"metadata":{"user_id":"user-1","product_id":"premium_weekly"}}}`,
			wantKind:       PaymentCompleted,
			wantExternalID: "ref_123",
			wantUserID:     "user-1",
			wantEmail:      "ada@example.com",
			wantProduct:    "PLN_premium_monthly", // plan code wins over metadata
			wantAmount:     50000,
		},
		{
			name: "metadata as JSON-encoded string",
			body: `{"event":"charge.success","data":{"reference":"ref_124","amount":1000,` +
				`"metadata":"{\"user_id\":\"user-2\",\"product_id\":\"premium_weekly\"}"}}`,
			wantKind:       PaymentCompleted,
			wantExternalID: "ref_124",
			wantUserID:     "user-2",
			wantProduct:    "premium_weekly",
			wantAmount:     1000,
		},
		{
			name:           "numeric metadata user id",
			body:           `{"event":"charge.success","data":{"reference":"ref_125","metadata":{"user_id":42}}}`,
			wantKind:       PaymentCompleted,
			wantExternalID: "ref_125",
			wantUserID:     "42",
		},
		{
			name:           "malformed metadata is ignored",
			body:           `{"event":"charge.success","data":{"reference":"ref_126","customer":{"email":"ada@example.com"},"metadata":"not json"}}`,
			wantKind:       PaymentCompleted,
			wantExternalID: "ref_126",
			wantEmail:      "ada@example.com",
		},
		{
			name:           "no event name falls back to status",
			body:           `{"data":{"reference":"ref_127","status":"success"}}`,
			wantKind:       PaymentCompleted,
			wantExternalID: "ref_127",
		},
		{
			name:           "status failed",
			body:           `{"data":{"reference":"ref_128","status":"failed"}}`,
			wantKind:       PaymentFailed,
			wantExternalID: "ref_128",
		},
		{
			name:           "status cancelled",
			body:           `{"data":{"reference":"ref_129","status":"cancelled"}}`,
			wantKind:       SubscriptionCanceled,
			wantExternalID: "ref_129",
		},
		{
			name:           "missing reference falls back to numeric id",
			body:           `{"event":"charge.success","data":{"id":123456,"status":"success"}}`,
			wantKind:       PaymentCompleted,
			wantExternalID: "123456",
		},
		{
			name:           "charge failed",
			body:           `{"event":"charge.failed","data":{"reference":"ref_130"}}`,
			wantKind:       PaymentFailed,
			wantExternalID: "ref_130",
		},
		{
			name:           "subscription disable",
			body:           `{"event":"subscription.disable","data":{"reference":"sub_ref_1","customer":{"email":"ada@example.com"}}}`,
			wantKind:       SubscriptionCanceled,
			wantExternalID: "sub_ref_1",
			wantEmail:      "ada@example.com",
		},
		{
			name:           "subscription not renew",
			body:           `{"event":"subscription.not_renew","data":{"reference":"sub_ref_2"}}`,
			wantKind:       SubscriptionCanceled,
			wantExternalID: "sub_ref_2",
		},
		{
			name:           "unknown event name is unrecognized",
			body:           `{"event":"transfer.success","data":{"reference":"ref_131"}}`,
			wantKind:       Unrecognized,
			wantExternalID: "ref_131",
		},
		{
			name:     "unknown bare status is unrecognized",
			body:     `{"data":{"reference":"ref_132","status":"pending"}}`,
			wantKind: Unrecognized,
			// reference still extracted
			wantExternalID: "ref_132",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := ParsePaystackEvent([]byte(tt.body))
			if err != nil {
				t.Fatalf("ParsePaystackEvent() error: %v", err)
			}
			if ev.Provider != models.ProviderPaystack {
				t.Errorf("Provider = %q, want %q", ev.Provider, models.ProviderPaystack)
			}
			if ev.Kind != tt.wantKind {
				t.Errorf("Kind = %q, want %q", ev.Kind, tt.wantKind)
			}
			if ev.ExternalID != tt.wantExternalID {
				t.Errorf("ExternalID = %q, want %q", ev.ExternalID, tt.wantExternalID)
			}
			if ev.UserID != tt.wantUserID {
				t.Errorf("UserID = %q, want %q", ev.UserID, tt.wantUserID)
			}
			if ev.CustomerEmail != tt.wantEmail {
				t.Errorf("CustomerEmail = %q, want %q", ev.CustomerEmail, tt.wantEmail)
			}
			if ev.ProductID != tt.wantProduct {
				t.Errorf("ProductID = %q, want %q", ev.ProductID, tt.wantProduct)
			}
			if ev.AmountCents != tt.wantAmount {
				t.Errorf("AmountCents = %d, want %d", ev.AmountCents, tt.wantAmount)
			}
		})
	}
}

func TestParsePaystackEventPaidAt(t *testing.T) {
	body := `{"event":"charge.success","data":{"reference":"ref_ts","paid_at":"2026-03-01T09:30:00Z"}}`
	ev, err := ParsePaystackEvent([]byte(body))
	if err != nil {
		t.Fatalf("ParsePaystackEvent() error: %v", err)
	}
	want := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	if !ev.OccurredAt.Equal(want) {
		t.Errorf("OccurredAt = %v, want %v", ev.OccurredAt, want)
	}
}

func TestParsePaystackEventMalformed(t *testing.T) {
	for _, body := range []string{"", "{not json", `"just a string"`} {
		_, err := ParsePaystackEvent([]byte(body))
		if !errors.Is(err, ErrMalformedPayload) {
			t.Errorf("ParsePaystackEvent(%q) error = %v, want ErrMalformedPayload", body, err)
		}
	}
}
