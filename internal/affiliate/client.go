// Package affiliate reports commission conversions to the external
// affiliate-ledger API.
package affiliate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/kosuite/shopcore/internal/config"
)

// Tracker is the narrow interface the dispatcher depends on.
type Tracker interface {
	TrackSale(ctx context.Context, conv Conversion) error
}

// Conversion credits a referrer for a paid order.
type Conversion struct {
	AffiliateID string          `json:"affiliate_id"`
	OrderID     string          `json:"order_id"`
	OrderNumber string          `json:"order_number"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
}

type Client struct {
	apiURL     string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(cfg config.AffiliateConfig, logger *zap.Logger) *Client {
	return &Client{
		apiURL: cfg.APIURL,
		apiKey: cfg.APIKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

func (c *Client) TrackSale(ctx context.Context, conv Conversion) error {
	body, err := json.Marshal(conv)
	if err != nil {
		return fmt.Errorf("failed to marshal conversion: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/conversions", bytes.NewBuffer(body))
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
		return fmt.Errorf("affiliate API error: status %d, body: %s", resp.StatusCode, string(respBody))
	}

	c.logger.Info("Tracked affiliate conversion",
		zap.String("affiliate_id", conv.AffiliateID),
		zap.String("order_number", conv.OrderNumber),
	)
	return nil
}
