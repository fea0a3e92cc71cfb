package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rpupo63/portfolio-intake-backend/errs"
)

const resendEmailsURL = "https://api.resend.com/emails"

// ResendEmailRequest represents the request payload for Resend API
type ResendEmailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Html    string   `json:"html,omitempty"`
	Text    string   `json:"text,omitempty"`
}

// ResendEmailResponse represents the response from Resend API
type ResendEmailResponse struct {
	ID string `json:"id"`
}

// ResendErrorResponse represents an error response from Resend API
type ResendErrorResponse struct {
	Message string `json:"message"`
}

// EmailMessage is one outbound notification.
type EmailMessage struct {
	From    string
	To      []string
	Subject string
	HTML    string
}

// ResendClient submits emails to the Resend API and returns the provider's message id.
type ResendClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewResendClient(apiKey string, timeout time.Duration) *ResendClient {
	return &ResendClient{
		apiKey:  apiKey,
		baseURL: resendEmailsURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// WithBaseURL points the client at another endpoint, e.g. a test server.
func (c *ResendClient) WithBaseURL(baseURL string) *ResendClient {
	c.baseURL = baseURL
	return c
}

// Send sends an email using the Resend API
func (c *ResendClient) Send(ctx context.Context, msg EmailMessage) (string, error) {
	if len(msg.To) == 0 {
		return "", fmt.Errorf("at least one recipient is required")
	}

	payload := ResendEmailRequest{
		From:    msg.From,
		To:      msg.To,
		Subject: msg.Subject,
		Html:    msg.HTML,
	}

	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal email payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewBuffer(jsonPayload))
	if err != nil {
		return "", fmt.Errorf("failed to create Resend API request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request to Resend API: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read Resend API response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errorResp ResendErrorResponse
		if err := json.Unmarshal(bodyBytes, &errorResp); err == nil && errorResp.Message != "" {
			return "", errs.NewEmailProviderError(resp.StatusCode, errorResp.Message)
		}
		return "", errs.NewEmailProviderError(resp.StatusCode, string(bodyBytes))
	}

	var emailResponse ResendEmailResponse
	if err := json.Unmarshal(bodyBytes, &emailResponse); err != nil {
		return "", fmt.Errorf("failed to parse Resend email response: %w", err)
	}
	if emailResponse.ID == "" {
		return "", errs.NewEmailProviderError(resp.StatusCode, "response carried no message id")
	}

	return emailResponse.ID, nil
}
