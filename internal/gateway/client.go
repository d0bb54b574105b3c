package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultTimeout applies to every outbound request.
	DefaultTimeout = 10 * time.Second

	userAgent = "mlb-stats-bot/1.0 (+https://github.com/flor3z/mlb-stats-bot)"

	// maxErrorBody caps how much of a failed response body ends up in an error.
	maxErrorBody = 512
)

// HTTPDoer is the subset of *http.Client used by the gateway.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Observer receives the outcome of every request.
type Observer func(route string, duration time.Duration, err error)

// Config controls how the gateway reaches an upstream API.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient HTTPDoer
	Observer   Observer
}

// Client issues GET requests against a fixed base URL.
type Client struct {
	baseURL    string
	httpClient HTTPDoer
	observer   Observer
}

// NewClient creates a gateway client. A nil HTTPClient gets a client with
// the configured timeout (DefaultTimeout when unset).
func NewClient(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: httpClient,
		observer:   cfg.Observer,
	}
}

// GetJSON performs a GET request and decodes the JSON response into out.
func (c *Client) GetJSON(ctx context.Context, route string, query url.Values, out any) error {
	start := time.Now()
	err := c.getJSON(ctx, route, query, out)
	c.observe(route, time.Since(start), err)
	return err
}

// GetText performs a GET request and returns the response body as text.
func (c *Client) GetText(ctx context.Context, route string, query url.Values) (string, error) {
	start := time.Now()
	body, err := c.getText(ctx, route, query)
	c.observe(route, time.Since(start), err)
	return body, err
}

func (c *Client) getJSON(ctx context.Context, route string, query url.Values, out any) error {
	resp, err := c.do(ctx, route, query)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &NetworkError{Route: route, StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return nil
}

func (c *Client) getText(ctx context.Context, route string, query url.Values) (string, error) {
	resp, err := c.do(ctx, route, query)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &NetworkError{Route: route, StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read response: %w", err)}
	}
	return string(body), nil
}

// do sends the request and returns the response only for HTTP 200.
func (c *Client) do(ctx context.Context, route string, query url.Values) (*http.Response, error) {
	req, err := c.buildRequest(ctx, route, query)
	if err != nil {
		return nil, &NetworkError{Route: route, Err: fmt.Errorf("failed to create request: %w", err)}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Route: route, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		resp.Body.Close()
		return nil, &NetworkError{
			Route:      route,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
		}
	}

	return resp, nil
}

func (c *Client) buildRequest(ctx context.Context, route string, query url.Values) (*http.Request, error) {
	endpoint := c.baseURL + route
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	return req, nil
}

func (c *Client) observe(route string, d time.Duration, err error) {
	if c.observer != nil {
		c.observer(route, d, err)
	}
}
