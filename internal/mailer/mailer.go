// Package mailer sends transactional mail through the mail provider's HTTP
// API. The client is constructed once at process start and injected
// wherever mail is sent.
package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/kosuite/shopcore/internal/config"
)

// Sender is the narrow interface the dispatcher depends on.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type Message struct {
	To       string `json:"to"`
	Subject  string `json:"subject"`
	TextBody string `json:"text_body"`
}

type Client struct {
	apiURL     string
	apiKey     string
	from       string
	fallback   string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(cfg config.MailConfig, logger *zap.Logger) *Client {
	return &Client{
		apiURL:   cfg.APIURL,
		apiKey:   cfg.APIKey,
		from:     cfg.From,
		fallback: cfg.FallbackRecipient,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

type sendRequest struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Subject  string `json:"subject"`
	TextBody string `json:"text_body"`
}

// Send delivers one message. A message without a recipient falls back to
// the configured notification address so the outcome is not lost silently.
func (c *Client) Send(ctx context.Context, msg Message) error {
	to := msg.To
	if to == "" {
		to = c.fallback
	}
	if to == "" {
		return fmt.Errorf("no recipient and no fallback configured")
	}

	body, err := json.Marshal(sendRequest{
		From:     c.from,
		To:       to,
		Subject:  msg.Subject,
		TextBody: msg.TextBody,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("mail API error: status %d, body: %s", resp.StatusCode, string(respBody))
	}

	c.logger.Info("Sent mail", zap.String("to", to), zap.String("subject", msg.Subject))
	return nil
}
