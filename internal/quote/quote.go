// Package quote fetches random quotes from a plain-text HTTP endpoint.
package quote

import (
	"context"
	"fmt"
	"strings"

	"github.com/flor3z/mlb-stats-bot/internal/gateway"
)

// Client reads one quote per request from a fixed URL
type Client struct {
	gw *gateway.Client
}

// NewClient creates a quote client. The gateway's base URL is the full
// quote endpoint.
func NewClient(gw *gateway.Client) *Client {
	return &Client{gw: gw}
}

// Random returns the response body with surrounding whitespace removed
func (c *Client) Random(ctx context.Context) (string, error) {
	body, err := c.gw.GetText(ctx, "", nil)
	if err != nil {
		return "", fmt.Errorf("failed to fetch quote: %w", err)
	}
	return strings.TrimSpace(body), nil
}
