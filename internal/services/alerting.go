package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"premium-api/internal/config"
	"premium-api/internal/models"
	"premium-api/pkg/logging"
)

// AlertService emails operators about webhook events that were
// acknowledged but dropped. A dropped event is invisible to the affected
// user until they complain, so operator detection has to be proactive.
type AlertService struct {
	apiKey     string
	fromEmail  string
	toEmail    string
	httpClient *http.Client
	limiter    *EventDedupe
}

// NewAlertService creates a new alert service
func NewAlertService(limiter *EventDedupe) *AlertService {
	return &AlertService{
		apiKey:    config.AppConfig.BrevoAPIKey,
		fromEmail: config.AppConfig.AlertFromEmail,
		toEmail:   config.AppConfig.AlertToEmail,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		limiter: limiter,
	}
}

// emailRequest mirrors the Brevo transactional email payload
type emailRequest struct {
	Sender      emailAddress   `json:"sender"`
	To          []emailAddress `json:"to"`
	Subject     string         `json:"subject"`
	TextContent string         `json:"textContent"`
}

type emailAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// NotifyDroppedEvent alerts operators about a dropped webhook event.
// Called from a goroutine; failures are logged, never propagated to the
// webhook response. Rate-limited per (reason, email) to one per hour.
func (s *AlertService) NotifyDroppedEvent(entry *models.WebhookEventLog) {
	if s.apiKey == "" || s.toEmail == "" {
		// Alerting not configured; the event log row and error log are
		// the remaining operator surface.
		return
	}

	limiterKey := fmt.Sprintf("alert:%s:%s", entry.Reason, entry.CustomerEmail)
	if !s.limiter.AllowOnce(limiterKey, time.Hour) {
		return
	}

	subject := fmt.Sprintf("[%s] dropped webhook event: %s", config.AppConfig.ServiceName, entry.Reason)
	text := fmt.Sprintf(
		"A webhook event was acknowledged but could not be applied.\n\n"+
			"Provider:       %s\n"+
			"Event kind:     %s\n"+
			"External id:    %s\n"+
			"Customer email: %s\n"+
			"Reason:         %s\n\n"+
			"The event is recorded in webhook_event_log for review.\n",
		entry.Provider, entry.EventKind, entry.ExternalID, entry.CustomerEmail, entry.Reason)

	req := emailRequest{
		Sender:      emailAddress{Email: s.fromEmail, Name: config.AppConfig.ServiceName},
		To:          []emailAddress{{Email: s.toEmail}},
		Subject:     subject,
		TextContent: text,
	}

	if err := s.sendEmail(req); err != nil {
		logging.Errorf("Failed to send operator alert: %v", err)
		return
	}
	logging.Infof("Operator alert sent - reason: %s, external_id: %s", entry.Reason, entry.ExternalID)
}

// sendEmail sends email via Brevo API
func (s *AlertService) sendEmail(req emailRequest) error {
	jsonData, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal email request: %w", err)
	}

	httpReq, err := http.NewRequest("POST", "https://api.brevo.com/v3/smtp/email", bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create HTTP request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("api-key", s.apiKey)

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("brevo API error: status %d", resp.StatusCode)
	}

	return nil
}
