package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/logger"
)

// SMSSender sends a text message to a phone number.
type SMSSender interface {
	SendSMS(ctx context.Context, toPhone, message string) error
}

// SMSClient posts JSON to an HTTP SMS gateway.
type SMSClient struct {
	BaseURL    string
	APIKey     string
	SenderID   string
	HttpClient *http.Client
}

func NewSMSClient() *SMSClient {
	return &SMSClient{
		BaseURL:    os.Getenv("SMS_GATEWAY_URL"),
		APIKey:     os.Getenv("SMS_API_KEY"),
		SenderID:   os.Getenv("SMS_SENDER_ID"),
		HttpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

func (s *SMSClient) SendSMS(ctx context.Context, toPhone, message string) error {
	if s.BaseURL == "" {
		return fmt.Errorf("SMS gateway not configured")
	}

	payload := map[string]string{
		"to":      toPhone,
		"from":    s.SenderID,
		"message": message,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal SMS payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.BaseURL+"/messages", bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to build SMS request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.APIKey)

	resp, err := s.HttpClient.Do(req)
	if err != nil {
		logger.ErrorLogger.Errorf("SMS gateway request failed: %v", err)
		return fmt.Errorf("sms gateway error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		logger.ErrorLogger.Errorf("SMS gateway returned %d: %s", resp.StatusCode, string(respBody))
		return fmt.Errorf("sms gateway returned status %d", resp.StatusCode)
	}
	return nil
}
