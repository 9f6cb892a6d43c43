package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

const resendEndpoint = "https://api.resend.com/emails"

// Mailer delivers transactional mail. The auth flows only ever send one kind
// of message, so the interface stays narrow.
type Mailer interface {
	SendOTP(ctx context.Context, toEmail, otp string) error
}

// ResendClient sends mail through the Resend HTTP API.
type ResendClient struct {
	apiKey   string
	from     string
	endpoint string
	client   *http.Client
}

// NewResendClient creates a Resend-backed Mailer.
func NewResendClient(apiKey, from string) *ResendClient {
	return &ResendClient{
		apiKey:   apiKey,
		from:     from,
		endpoint: resendEndpoint,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// SendOTP emails a one-time login code.
func (c *ResendClient) SendOTP(ctx context.Context, toEmail, otp string) error {
	body := resendRequest{
		From:    c.from,
		To:      []string{toEmail},
		Subject: "Your login verification code",
		HTML: fmt.Sprintf(
			"<p>Your verification code is <strong>%s</strong>.</p><p>It expires in 10 minutes. If you did not request this code, ignore this email.</p>",
			otp,
		),
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode mail request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build mail request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("mail provider returned %d: %s", resp.StatusCode, string(detail))
	}
	return nil
}

// LogMailer writes the code to the process log instead of sending mail. Used
// in local development when no API key is configured.
type LogMailer struct{}

// SendOTP logs the code.
func (LogMailer) SendOTP(_ context.Context, toEmail, otp string) error {
	log.Printf("mail disabled; OTP for %s: %s", toEmail, otp)
	return nil
}
