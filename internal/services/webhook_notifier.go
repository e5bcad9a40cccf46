package services

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"premium-api/internal/models"
	"premium-api/pkg/logging"
)

// WebhookNotifier pushes premium-status changes to the app backend so
// the client-side premium gate refreshes without waiting for a poll.
type WebhookNotifier struct {
	httpClient *http.Client
}

// NewWebhookNotifier creates a new webhook notifier
func NewWebhookNotifier() *WebhookNotifier {
	return &WebhookNotifier{
		httpClient: &http.Client{
			Timeout: 10 * time.Second, // 10 second timeout
		},
	}
}

// PremiumUpdatedPayload is the callback body sent to the app backend
type PremiumUpdatedPayload struct {
	Event     string `json:"event"` // always "premium.updated"
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	Tier      string `json:"tier"`
	ExpiresAt string `json:"expires_at"` // ISO 8601, empty for free tier
	Plan      string `json:"plan,omitempty"`
	Provider  string `json:"provider,omitempty"`
	Timestamp string `json:"timestamp"` // ISO 8601
}

// NotifyPremiumUpdated sends the projection change to the app backend.
// Called in a goroutine so webhook handlers respond within the
// provider's timeout budget regardless of the backend's latency.
func (wn *WebhookNotifier) NotifyPremiumUpdated(callbackURL, secret string, subscriber *models.Subscriber, grant *models.SubscriptionGrant) {
	if callbackURL == "" {
		// No callback configured, skip
		return
	}

	payload := PremiumUpdatedPayload{
		Event:     "premium.updated",
		UserID:    subscriber.UserID,
		Email:     subscriber.Email,
		Tier:      subscriber.Tier,
		Timestamp: time.Now().Format(time.RFC3339),
	}
	if subscriber.Tier == models.TierPremium {
		payload.ExpiresAt = subscriber.PremiumExpiresAt.Format(time.RFC3339)
	}
	if grant != nil {
		payload.Plan = grant.Plan
		payload.Provider = grant.Provider
	}

	wn.sendWithRetry(callbackURL, secret, payload)
}

// sendWithRetry sends the callback with a fixed retry schedule:
// 1s, 5s, 30s (3 attempts total)
func (wn *WebhookNotifier) sendWithRetry(callbackURL, secret string, payload PremiumUpdatedPayload) {
	retryDelays := []time.Duration{1 * time.Second, 5 * time.Second, 30 * time.Second}
	maxRetries := len(retryDelays)

	for attempt := 0; attempt < maxRetries; attempt++ {
		err := wn.sendCallback(callbackURL, secret, payload)
		if err == nil {
			logging.Infof("Premium callback sent - url: %s, user_id: %s, tier: %s, attempt: %d",
				callbackURL, payload.UserID, payload.Tier, attempt+1)
			return
		}

		logging.Errorf("Premium callback failed - url: %s, user_id: %s, attempt: %d, error: %v",
			callbackURL, payload.UserID, attempt+1, err)

		// If not the last attempt, wait before retry
		if attempt < maxRetries-1 {
			time.Sleep(retryDelays[attempt])
		}
	}

	logging.Errorf("Premium callback failed after %d attempts - url: %s, user_id: %s",
		maxRetries, callbackURL, payload.UserID)
}

// sendCallback sends a single callback request
func (wn *WebhookNotifier) sendCallback(callbackURL, secret string, payload PremiumUpdatedPayload) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequest("POST", callbackURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "PremiumAPI-Webhook/1.0")

	// Add signature if secret is provided
	if secret != "" {
		signature := wn.generateSignature(jsonData, secret)
		req.Header.Set("X-Premium-Signature", signature)
	}

	resp, err := wn.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return nil
}

// generateSignature generates HMAC-SHA256 signature for the callback payload
func (wn *WebhookNotifier) generateSignature(payload []byte, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(payload)
	return hex.EncodeToString(h.Sum(nil))
}
