package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/zatekoja/clinicassistant/internal/domain/providers"
	"github.com/zatekoja/clinicassistant/internal/infrastructure/observability"
	"github.com/zatekoja/clinicassistant/pkg/config"
)

// WhatsAppCloudSender sends booking confirmations via the WhatsApp Cloud API
type WhatsAppCloudSender struct {
	accessToken   string
	phoneNumberID string
	httpClient    *http.Client
	baseURL       string
}

var _ providers.ConfirmationNotifier = (*WhatsAppCloudSender)(nil)

// NewWhatsAppCloudSender creates a new WhatsApp sender
func NewWhatsAppCloudSender(cfg *config.WhatsAppConfig) (*WhatsAppCloudSender, error) {
	if !cfg.Enabled() {
		return nil, errors.New("WHATSAPP_ACCESS_TOKEN and WHATSAPP_PHONE_NUMBER_ID must be set")
	}

	return &WhatsAppCloudSender{
		accessToken:   cfg.AccessToken,
		phoneNumberID: cfg.PhoneNumberID,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
	}, nil
}

// WhatsAppTextMessage represents a text message
type WhatsAppTextMessage struct {
	MessagingProduct string `json:"messaging_product"`
	RecipientType    string `json:"recipient_type"`
	To               string `json:"to"`
	Type             string `json:"type"`
	Text             struct {
		PreviewURL bool   `json:"preview_url"`
		Body       string `json:"body"`
	} `json:"text"`
}

// WhatsAppResponse represents the API response
type WhatsAppResponse struct {
	MessagingProduct string `json:"messaging_product"`
	Messages         []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

// SendConfirmation delivers a confirmation text to the patient's phone number
func (w *WhatsAppCloudSender) SendConfirmation(ctx context.Context, phoneNumber, message string) error {
	to := normalizePhoneNumber(phoneNumber)
	if to == "" {
		return fmt.Errorf("phone number %q has no digits", phoneNumber)
	}

	messageID, err := w.SendText(ctx, to, message)
	if err != nil {
		return err
	}

	observability.LoggerFromContext(ctx).Info().Str("message_id", messageID).Msg("WhatsApp confirmation sent")
	return nil
}

// SendText sends a text message
func (w *WhatsAppCloudSender) SendText(ctx context.Context, to, body string) (string, error) {
	message := WhatsAppTextMessage{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               to,
		Type:             "text",
	}
	message.Text.Body = body

	return w.sendMessage(ctx, message)
}

func (w *WhatsAppCloudSender) sendMessage(ctx context.Context, message interface{}) (string, error) {
	url := fmt.Sprintf("%s/%s/messages", w.baseURL, w.phoneNumberID)

	jsonData, err := json.Marshal(message)
	if err != nil {
		return "", fmt.Errorf("failed to marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+w.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("WhatsApp API error (status %d): %s", resp.StatusCode, string(body))
	}

	var whatsappResp WhatsAppResponse
	if err := json.Unmarshal(body, &whatsappResp); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if len(whatsappResp.Messages) > 0 {
		return whatsappResp.Messages[0].ID, nil
	}

	return "", fmt.Errorf("no message ID in response")
}

// normalizePhoneNumber keeps only digits, the form the Cloud API expects
func normalizePhoneNumber(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
