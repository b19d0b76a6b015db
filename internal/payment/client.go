// Package payment talks to the payment gateway's merchant API. The browser
// side (wallet and card popups) consumes the returned checkout token; a
// user cancelling a popup never reaches this package — order outcomes are
// only ever trusted from signed webhooks.
package payment

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

const (
	sandboxBaseURL = "https://sandbox-merchant.kosuite-pay.com/api/1.0"
	liveBaseURL    = "https://merchant.kosuite-pay.com/api/1.0"
)

type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a gateway client for the configured mode.
func NewClient(cfg config.PaymentConfig, logger *zap.Logger) *Client {
	baseURL := sandboxBaseURL
	if cfg.Mode == "live" {
		baseURL = liveBaseURL
	}

	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

// CreateOrderRequest asks the gateway for a payment session. The ext ref is
// echoed back in webhook payloads and is how events are correlated to a
// local order.
type CreateOrderRequest struct {
	// Amount in minor units (pence).
	Amount              int64  `json:"amount"`
	Currency            string `json:"currency"`
	MerchantOrderExtRef string `json:"merchant_order_ext_ref"`
	WebhookURL          string `json:"webhook_url"`
	CustomerEmail       string `json:"email,omitempty"`
}

type createOrderResponse struct {
	ID       string `json:"id"`
	PublicID string `json:"public_id"`
	State    string `json:"state"`
}

// CreateOrder creates a gateway order and returns the public checkout token
// the front end feeds to the pay-by-popup widget.
func (c *Client) CreateOrder(ctx context.Context, req CreateOrderRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/orders", bytes.NewBuffer(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("gateway error: status %d, body: %s", resp.StatusCode, string(respBody))
	}

	var orderResp createOrderResponse
	if err := json.Unmarshal(respBody, &orderResp); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if orderResp.PublicID == "" {
		return "", fmt.Errorf("gateway returned no checkout token for %s", req.MerchantOrderExtRef)
	}

	c.logger.Info("Created gateway order",
		zap.String("ext_ref", req.MerchantOrderExtRef),
		zap.String("gateway_order_id", orderResp.ID),
	)

	return orderResp.PublicID, nil
}
